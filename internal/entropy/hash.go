package entropy

import (
	"golang.org/x/crypto/sha3"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

const seedDomain = "cae/v1/seed"

func keccak(parts ...[]byte) model.Bytes32 {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out model.Bytes32
	copy(out[:], h.Sum(nil))
	return out
}

// Commit returns keccak256(secret), the value published before the reveal
func Commit(secret model.Bytes32) model.Bytes32 {
	return keccak(secret[:])
}

// CombineSeed mixes both parties' contributions into the game seed. Neither
// side alone can bias the result once both commitments are fixed.
func CombineSeed(secret, providerValue model.Bytes32) model.Bytes32 {
	return keccak([]byte(seedDomain), secret[:], providerValue[:])
}
