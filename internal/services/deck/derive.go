package deck

import (
	"encoding/binary"
	"slices"

	"golang.org/x/crypto/sha3"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Domain tags keep derivations for different purposes independent
const (
	domainDeal     = "cae/v1/deal"
	domainQuestion = "cae/v1/question"
)

// DeriveIndex maps a seed to a card index: keccak256 over the domain tag, the
// seed and each part as a little-endian u64, read back as a little-endian u64.
func DeriveIndex(seed model.Bytes32, domain string, parts ...uint64) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(domain))
	h.Write(seed[:])
	var buf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// DealTable deals size answer cards to each of seats players. Cards are
// distinct across the table while the deck has enough of them; after that
// duplicates are allowed.
func (s *Service) DealTable(seed model.Bytes32, seats, size int) [][]model.CardRef {
	n := uint64(len(s.answers))
	dealt := make([]uint64, 0, seats*size)
	hands := make([][]model.CardRef, seats)

	for seat := 0; seat < seats; seat++ {
		hand := make([]model.CardRef, 0, size)
		for draw := uint64(0); len(hand) < size; draw++ {
			idx := DeriveIndex(seed, domainDeal, uint64(seat), draw) % n
			if uint64(len(dealt)) < n && slices.Contains(dealt, idx) {
				continue
			}
			dealt = append(dealt, idx)
			hand = append(hand, model.CardRef{Kind: model.DeckAnswer, Index: idx})
		}
		hands[seat] = hand
	}
	return hands
}

// QuestionFor picks the question card for a round
func (s *Service) QuestionFor(seed model.Bytes32, round int) model.CardRef {
	idx := DeriveIndex(seed, domainQuestion, uint64(round)) % uint64(len(s.questions))
	return model.CardRef{Kind: model.DeckQuestion, Index: idx}
}
