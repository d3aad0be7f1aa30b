package random

import (
	"crypto/rand"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Random is the source of secrets, provider values, identities and session
// tokens. It can be mocked for testing.
type Random interface {
	// Read fills p with random bytes
	Read(p []byte)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Read fills p from crypto/rand, which never returns an error on supported platforms
func (r *CryptoRandom) Read(p []byte) {
	_, _ = rand.Read(p)
}

// Bytes32 draws a fresh 32-byte value
func Bytes32(r Random) model.Bytes32 {
	var b model.Bytes32
	r.Read(b[:])
	return b
}
