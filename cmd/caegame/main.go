package main

import "github.com/mcoot/cardsagainstentropy/internal/cli"

func main() {
	cli.Execute()
}
