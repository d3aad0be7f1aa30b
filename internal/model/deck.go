package model

// DeckKind selects one of the two fixed decks
type DeckKind string

const (
	DeckQuestion DeckKind = "question"
	DeckAnswer   DeckKind = "answer"
)

// ParseDeckKind validates a deck kind supplied by a client
func ParseDeckKind(s string) (DeckKind, error) {
	switch DeckKind(s) {
	case DeckQuestion, DeckAnswer:
		return DeckKind(s), nil
	default:
		return "", ErrUnknownDeckKind
	}
}

// CardRef refers to a deck entry. Index is resolved modulo the deck length.
type CardRef struct {
	Kind  DeckKind
	Index uint64
}
