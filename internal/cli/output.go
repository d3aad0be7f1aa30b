package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Session:
		fmt.Fprintf(o.w, "Identity: %s\n", v.Identity)
		fmt.Fprintf(o.w, "Token: %s\n", v.SessionToken)
		fmt.Fprintf(o.w, "Expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04:05"))
	case response.Player:
		fmt.Fprintf(o.w, "Player: %s (%s)\n", v.DisplayName, v.Identity)
		fmt.Fprintf(o.w, "Score: %d\n", v.Score)
	case response.GameSummary:
		o.printSummary(v)
	case []response.GameSummary:
		if len(v) == 0 {
			fmt.Fprintln(o.w, "No games")
		}
		for _, g := range v {
			fmt.Fprintf(o.w, "#%d %s [%s] %d/3 players, created by %s\n",
				g.ID, g.Name, g.Status, len(g.Players), model.MaxPlayers, g.Creator)
		}
	case response.GameState:
		o.printGameState(v)
	case response.Hand:
		o.printHand(v)
	case response.FlipFee:
		fmt.Fprintf(o.w, "Fee: %d\n", v.Fee)
	case response.Flip:
		o.printFlip(v)
	case FlipTicket:
		o.printFlip(v.Flip)
		fmt.Fprintf(o.w, "Secret: %s\n", v.Secret)
	case response.Seed:
		fmt.Fprintf(o.w, "Sequence: %d\n", v.SequenceNumber)
		fmt.Fprintf(o.w, "Seed: %s\n", v.Seed)
	case response.Deck:
		fmt.Fprintf(o.w, "Deck: %s (%d cards)\n", v.Kind, len(v.Cards))
		for i, c := range v.Cards {
			fmt.Fprintf(o.w, "  %3d  %s\n", i, c)
		}
	case response.DeckEntry:
		fmt.Fprintf(o.w, "%s #%d: %s\n", v.Kind, v.Index, v.Text)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSummary(g response.GameSummary) {
	fmt.Fprintf(o.w, "Game: #%d %s\n", g.ID, g.Name)
	fmt.Fprintf(o.w, "Status: %s\n", g.Status)
	fmt.Fprintf(o.w, "Creator: %s\n", g.Creator)
	fmt.Fprintf(o.w, "Players (%d): %s\n", len(g.Players), strings.Join(g.Players, ", "))
}

func (o *Output) printGameState(g response.GameState) {
	o.printSummary(g.GameSummary)
	if g.Status == string(model.GameStatusPending) {
		return
	}

	fmt.Fprintf(o.w, "Round: %d\n", g.Round)
	if g.Phase != "" {
		fmt.Fprintf(o.w, "Phase: %s\n", g.Phase)
	}
	if g.Judge != "" {
		fmt.Fprintf(o.w, "Judge: %s\n", g.Judge)
	}
	if g.ActivePlayer != "" {
		fmt.Fprintf(o.w, "Active player: %s\n", g.ActivePlayer)
	}
	if g.Question != "" {
		fmt.Fprintf(o.w, "Question: %s\n", g.Question)
	}

	if len(g.Played) > 0 {
		fmt.Fprintln(o.w, "\nPlayed:")
		for i, pc := range g.Played {
			fmt.Fprintf(o.w, "  [%d] %s: %s\n", i, pc.Player, pc.Text)
		}
	}

	if len(g.Scores) > 0 {
		fmt.Fprintln(o.w, "\nScores:")
		players := make([]string, 0, len(g.Scores))
		for p := range g.Scores {
			players = append(players, p)
		}
		sort.Strings(players)
		for _, p := range players {
			fmt.Fprintf(o.w, "  %s: %d points, %d cards left\n", p, g.Scores[p], g.CardsLeft[p])
		}
	}

	if g.Status == string(model.GameStatusEnded) {
		if g.Winner != "" {
			fmt.Fprintf(o.w, "\nWinner: %s\n", g.Winner)
		} else {
			fmt.Fprintln(o.w, "\nDraw")
		}
	}
}

func (o *Output) printHand(h response.Hand) {
	fmt.Fprintf(o.w, "Hand for game #%d\n", h.GameID)
	for _, c := range h.Cards {
		used := ""
		if c.Used {
			used = " [used]"
		}
		fmt.Fprintf(o.w, "  [%d] %s%s\n", c.Slot, c.Text, used)
	}
	if h.HasPlayed {
		fmt.Fprintln(o.w, "Already played this round")
	}
}

func (o *Output) printFlip(f response.Flip) {
	fmt.Fprintf(o.w, "Sequence: %d\n", f.SequenceNumber)
	fmt.Fprintf(o.w, "Status: %s\n", f.Status)
	fmt.Fprintf(o.w, "Requester: %s\n", f.Requester)
	fmt.Fprintf(o.w, "Commitment: %s\n", f.Commitment)
	fmt.Fprintf(o.w, "Provider commitment: %s\n", f.ProviderCommitment)
	fmt.Fprintf(o.w, "Fee: %d\n", f.Fee)
	if f.Seed != "" {
		fmt.Fprintf(o.w, "Seed: %s\n", f.Seed)
	}
}
