package deck

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Service holds the two fixed decks. Decks are immutable after construction,
// so lookups need no locking.
type Service struct {
	questions []string
	answers   []string
}

// fileFormat is the on-disk layout accepted by LoadFromFile
type fileFormat struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

// New creates a Service from the given cards. Blank entries are dropped.
func New(questions, answers []string) (*Service, error) {
	q := clean(questions)
	a := clean(answers)
	if len(q) == 0 {
		return nil, fmt.Errorf("question deck: %w", model.ErrEmptyDeck)
	}
	if len(a) == 0 {
		return nil, fmt.Errorf("answer deck: %w", model.ErrEmptyDeck)
	}
	return &Service{questions: q, answers: a}, nil
}

// Default returns the bundled decks
func Default() *Service {
	return &Service{
		questions: slices.Clone(defaultQuestions),
		answers:   slices.Clone(defaultAnswers),
	}
}

// LoadFromFile reads decks from a JSON file of the form
// {"questions": [...], "answers": [...]}
func LoadFromFile(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse deck file: %w", err)
	}
	return New(f.Questions, f.Answers)
}

func clean(cards []string) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) deck(kind model.DeckKind) []string {
	if kind == model.DeckQuestion {
		return s.questions
	}
	return s.answers
}

// Len returns the number of cards in a deck
func (s *Service) Len(kind model.DeckKind) int {
	return len(s.deck(kind))
}

// GetEntry returns the card at index, wrapping around the deck length
func (s *Service) GetEntry(kind model.DeckKind, index uint64) string {
	d := s.deck(kind)
	return d[index%uint64(len(d))]
}

// Resolve returns the text of a card reference
func (s *Service) Resolve(ref model.CardRef) string {
	return s.GetEntry(ref.Kind, ref.Index)
}

// GetFullDeck returns a copy of every card in a deck
func (s *Service) GetFullDeck(kind model.DeckKind) []string {
	return slices.Clone(s.deck(kind))
}
