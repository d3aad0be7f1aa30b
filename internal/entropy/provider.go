// Package entropy implements the provider side of the commit-reveal
// randomness protocol: an in-process provider, its HTTP surface and a client.
package entropy

import (
	"context"
	"errors"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

var (
	// ErrRevealNotReady means the provider has not yet observed the request.
	// Callers may retry.
	ErrRevealNotReady = errors.New("revelation not ready")
	// ErrUnknownSequence means the provider never issued the sequence number
	ErrUnknownSequence = errors.New("unknown sequence number")
	// ErrMalformedRevelation means the provider answered with something unparseable
	ErrMalformedRevelation = errors.New("malformed revelation")
	// ErrUnexpectedStatus covers provider HTTP statuses that retrying will not fix
	ErrUnexpectedStatus = errors.New("unexpected provider status")
)

// Receipt is the provider's answer to a randomness request
type Receipt struct {
	SequenceNumber     model.SequenceNumber
	ProviderCommitment model.Bytes32
}

// Provider is an external randomness source
type Provider interface {
	// Request registers a user commitment and returns the sequence number the
	// provider will later reveal a value for.
	Request(ctx context.Context, commitment model.Bytes32, fee uint64) (Receipt, error)
	// Revelation returns the provider's value for a sequence number, or
	// ErrRevealNotReady if it is not available yet.
	Revelation(ctx context.Context, seq model.SequenceNumber) (model.Bytes32, error)
}

// IsTransient reports whether a Revelation error is worth retrying
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrMalformedRevelation),
		errors.Is(err, ErrUnknownSequence),
		errors.Is(err, ErrUnexpectedStatus),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
