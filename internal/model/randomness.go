package model

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Bytes32 is a fixed 32-byte value: secrets, commitments, provider values and seeds.
// It encodes as 0x-prefixed hex.
type Bytes32 [32]byte

// ParseBytes32 decodes a hex string with or without the 0x prefix
func ParseBytes32(s string) (Bytes32, error) {
	var b Bytes32
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 64 {
		return b, fmt.Errorf("expected 32 bytes of hex, got %d characters", len(s))
	}
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return b, fmt.Errorf("decode hex: %w", err)
	}
	return b, nil
}

// Hex returns the 0x-prefixed hex form
func (b Bytes32) Hex() string {
	return "0x" + hex.EncodeToString(b[:])
}

func (b Bytes32) String() string {
	return b.Hex()
}

// IsZero reports whether every byte is zero
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

func (b Bytes32) MarshalText() ([]byte, error) {
	return []byte(b.Hex()), nil
}

func (b *Bytes32) UnmarshalText(text []byte) error {
	parsed, err := ParseBytes32(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// SequenceNumber correlates a randomness request with the provider's revelation
type SequenceNumber uint64

// FlipStatus tracks a randomness request through its single-use lifecycle
type FlipStatus string

const (
	FlipPending   FlipStatus = "pending"
	FlipFulfilled FlipStatus = "fulfilled"
	FlipConsumed  FlipStatus = "consumed"
)

// RandomnessRequest is the ledger's record of one commit-reveal exchange
type RandomnessRequest struct {
	SequenceNumber     SequenceNumber
	Requester          Identity
	Commitment         Bytes32 // keccak256 of the requester's secret
	ProviderCommitment Bytes32 // keccak256 of the provider's value
	Fee                uint64
	Status             FlipStatus
	Seed               Bytes32 // zero until fulfilled
	CreatedAt          time.Time
	FulfilledAt        time.Time
}
