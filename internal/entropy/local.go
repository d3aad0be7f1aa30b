package entropy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/random"
	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// LocalConfig holds settings for the in-process provider
type LocalConfig struct {
	// RevealDelay is how long after a request its revelation stays unavailable,
	// modelling a provider that has not yet observed the request
	RevealDelay time.Duration
}

// DefaultLocalConfig returns the development defaults
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{RevealDelay: 0}
}

type localEntry struct {
	value       model.Bytes32
	commitment  model.Bytes32
	requestedAt time.Time
}

// Local is an in-process Provider for development and tests
type Local struct {
	clock  clock.Clock
	random random.Random
	cfg    LocalConfig
	logger *slog.Logger

	mu      sync.Mutex
	nextSeq model.SequenceNumber
	entries map[model.SequenceNumber]*localEntry
}

var _ Provider = (*Local)(nil)

// NewLocal creates an in-process provider
func NewLocal(clock clock.Clock, random random.Random, cfg LocalConfig, logger *slog.Logger) *Local {
	return &Local{
		clock:   clock,
		random:  random,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "entropy-local")),
		nextSeq: 1,
		entries: make(map[model.SequenceNumber]*localEntry),
	}
}

// Request draws a provider value and commits to it
func (l *Local) Request(ctx context.Context, commitment model.Bytes32, fee uint64) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	var value model.Bytes32
	l.random.Read(value[:])

	l.mu.Lock()
	seq := l.nextSeq
	l.nextSeq++
	entry := &localEntry{
		value:       value,
		commitment:  Commit(value),
		requestedAt: l.clock.Now(),
	}
	l.entries[seq] = entry
	l.mu.Unlock()

	l.logger.Debug("randomness requested",
		slog.Uint64("sequence_number", uint64(seq)),
		slog.Uint64("fee", fee),
	)

	return Receipt{SequenceNumber: seq, ProviderCommitment: entry.commitment}, nil
}

// Revelation returns the provider value once the reveal delay has passed
func (l *Local) Revelation(ctx context.Context, seq model.SequenceNumber) (model.Bytes32, error) {
	if err := ctx.Err(); err != nil {
		return model.Bytes32{}, err
	}

	l.mu.Lock()
	entry, ok := l.entries[seq]
	l.mu.Unlock()
	if !ok {
		return model.Bytes32{}, ErrUnknownSequence
	}
	if l.clock.Now().Before(entry.requestedAt.Add(l.cfg.RevealDelay)) {
		return model.Bytes32{}, ErrRevealNotReady
	}
	return entry.value, nil
}
