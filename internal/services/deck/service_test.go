package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = Default()
}

func (s *ServiceSuite) TestDefaultDecksHaveTwentyCards() {
	s.Equal(20, s.service.Len(model.DeckQuestion))
	s.Equal(20, s.service.Len(model.DeckAnswer))
}

func (s *ServiceSuite) TestGetEntryReturnsConfiguredOrder() {
	s.Equal("A bucket of fried chicken.", s.service.GetEntry(model.DeckAnswer, 0))
	s.Equal("Uncontrollable flatulence.", s.service.GetEntry(model.DeckAnswer, 1))
	s.Equal("What's the next big reality TV show? '_________ Wars.'", s.service.GetEntry(model.DeckQuestion, 0))
}

func (s *ServiceSuite) TestDefaultDeckFixedSlots() {
	s.Equal("The latest scientific discovery: ____________ causes global warming.", s.service.GetEntry(model.DeckQuestion, 3))
	s.Equal("A suspiciously confident llama.", s.service.GetEntry(model.DeckAnswer, 3))
	s.Equal(s.service.GetEntry(model.DeckQuestion, 3), s.service.GetEntry(model.DeckQuestion, 3+20*3))
}

func (s *ServiceSuite) TestGetEntryWrapsAround() {
	for i := uint64(0); i < 20; i++ {
		s.Equal(s.service.GetEntry(model.DeckAnswer, i), s.service.GetEntry(model.DeckAnswer, i+20))
		s.Equal(s.service.GetEntry(model.DeckQuestion, i), s.service.GetEntry(model.DeckQuestion, i+20*7))
	}
}

func (s *ServiceSuite) TestGetFullDeckReturnsCopy() {
	full := s.service.GetFullDeck(model.DeckAnswer)
	full[0] = "mutated"
	s.Equal("A bucket of fried chicken.", s.service.GetEntry(model.DeckAnswer, 0))
}

func (s *ServiceSuite) TestResolve() {
	ref := model.CardRef{Kind: model.DeckQuestion, Index: 21}
	s.Equal(s.service.GetEntry(model.DeckQuestion, 1), s.service.Resolve(ref))
}

func (s *ServiceSuite) TestNewRejectsEmptyDecks() {
	_, err := New(nil, []string{"a"})
	s.ErrorIs(err, model.ErrEmptyDeck)

	_, err = New([]string{"q"}, []string{"  ", ""})
	s.ErrorIs(err, model.ErrEmptyDeck)
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "decks.json")
	s.Require().NoError(os.WriteFile(path, []byte(`{"questions":["Q1 ____"],"answers":["A1","A2"]}`), 0o600))

	svc, err := LoadFromFile(path)
	s.Require().NoError(err)
	s.Equal(1, svc.Len(model.DeckQuestion))
	s.Equal("A2", svc.GetEntry(model.DeckAnswer, 3))
}

func (s *ServiceSuite) TestLoadFromFileRejectsMalformedJSON() {
	path := filepath.Join(s.T().TempDir(), "decks.json")
	s.Require().NoError(os.WriteFile(path, []byte(`{"questions":`), 0o600))

	_, err := LoadFromFile(path)
	s.Error(err)
}

// Derivation tests

func (s *ServiceSuite) TestDeriveIndexIsDeterministic() {
	seed := model.Bytes32{1, 2, 3}
	s.Equal(DeriveIndex(seed, domainDeal, 0, 0), DeriveIndex(seed, domainDeal, 0, 0))
	s.NotEqual(DeriveIndex(seed, domainDeal, 0, 0), DeriveIndex(seed, domainDeal, 0, 1))
	s.NotEqual(DeriveIndex(seed, domainDeal, 0, 0), DeriveIndex(seed, domainQuestion, 0, 0))
}

func (s *ServiceSuite) TestDealTableIsDeterministicAndDistinct() {
	seed := model.Bytes32{0xde, 0xad, 0xbe, 0xef}

	first := s.service.DealTable(seed, model.MaxPlayers, model.HandSize)
	second := s.service.DealTable(seed, model.MaxPlayers, model.HandSize)
	s.Equal(first, second)

	seen := map[uint64]bool{}
	for _, hand := range first {
		s.Len(hand, model.HandSize)
		for _, card := range hand {
			s.Equal(model.DeckAnswer, card.Kind)
			s.Less(card.Index, uint64(20))
			s.False(seen[card.Index], "card %d dealt twice", card.Index)
			seen[card.Index] = true
		}
	}
}

func (s *ServiceSuite) TestDealTableAllowsDuplicatesWhenDeckIsSmall() {
	small, err := New([]string{"q"}, []string{"only", "two"})
	s.Require().NoError(err)

	hands := small.DealTable(model.Bytes32{9}, 3, 2)
	s.Len(hands, 3)
	for _, hand := range hands {
		s.Len(hand, 2)
	}
}

func (s *ServiceSuite) TestDifferentSeedsDealDifferently() {
	a := s.service.DealTable(model.Bytes32{1}, 3, 2)
	b := s.service.DealTable(model.Bytes32{2}, 3, 2)
	s.NotEqual(a, b)
}

func (s *ServiceSuite) TestQuestionForStaysInDeck() {
	seed := model.Bytes32{7}
	for round := 1; round <= 5; round++ {
		q := s.service.QuestionFor(seed, round)
		s.Equal(model.DeckQuestion, q.Kind)
		s.Less(q.Index, uint64(20))
		s.Equal(q, s.service.QuestionFor(seed, round))
	}
}
