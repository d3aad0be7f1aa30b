// Package randomness runs the ledger side of the commit-reveal protocol.
//
// A requester commits to keccak256(secret), the provider commits to its own
// value, and once both are revealed the seed is keccak256 over both. Seeds are
// single-use: a fulfilled request is consumed by exactly one game start.
package randomness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/random"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Config holds coordinator settings
type Config struct {
	// FlipFee is the minimum fee a randomness request must carry
	FlipFee uint64
}

// DefaultConfig returns the default coordinator configuration
func DefaultConfig() Config {
	return Config{FlipFee: 1}
}

// Coordinator records randomness requests and turns reveals into seeds
type Coordinator struct {
	storage   storage.Storage
	provider  entropy.Provider
	fetcher   *Fetcher
	locks     *lock.KeyedLock
	publisher notify.Publisher
	clock     clock.Clock
	random    random.Random
	cfg       Config
	logger    *slog.Logger
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	storage storage.Storage,
	provider entropy.Provider,
	fetcher *Fetcher,
	locks *lock.KeyedLock,
	publisher notify.Publisher,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		storage:   storage,
		provider:  provider,
		fetcher:   fetcher,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
		random:    random,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "randomness")),
	}
}

// FlipFee returns the minimum fee for a randomness request
func (c *Coordinator) FlipFee() uint64 {
	return c.cfg.FlipFee
}

// GetFlip returns a recorded randomness request
func (c *Coordinator) GetFlip(ctx context.Context, seq model.SequenceNumber) (*model.RandomnessRequest, error) {
	return c.storage.GetRandomnessRequest(ctx, seq)
}

// RequestFlip forwards a commitment to the provider and records the pending request
func (c *Coordinator) RequestFlip(ctx context.Context, requester model.Identity, commitment model.Bytes32, fee uint64) (*model.RandomnessRequest, error) {
	if fee < c.cfg.FlipFee {
		return nil, model.ErrInsufficientFee
	}

	receipt, err := c.provider.Request(ctx, commitment, fee)
	if err != nil {
		return nil, fmt.Errorf("request randomness: %w", err)
	}

	req := &model.RandomnessRequest{
		SequenceNumber:     receipt.SequenceNumber,
		Requester:          requester,
		Commitment:         commitment,
		ProviderCommitment: receipt.ProviderCommitment,
		Fee:                fee,
		Status:             model.FlipPending,
		CreatedAt:          c.clock.Now(),
	}

	err = c.locks.WithLock(ctx, lock.FlipKey(req.SequenceNumber), func() error {
		if _, err := c.storage.GetRandomnessRequest(ctx, req.SequenceNumber); err == nil {
			return fmt.Errorf("provider reused sequence number %d", req.SequenceNumber)
		}
		return c.storage.SaveRandomnessRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("flip requested",
		slog.Uint64("sequence_number", uint64(req.SequenceNumber)),
		slog.String("identity", string(requester)))

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventFlipRequested,
		Timestamp: req.CreatedAt,
		Identity:  requester,
		Payload:   model.FlipPayload{SequenceNumber: req.SequenceNumber},
	})

	return req, nil
}

// RevealFlip checks both revealed values against their commitments and
// records the combined seed
func (c *Coordinator) RevealFlip(ctx context.Context, seq model.SequenceNumber, secret, providerValue model.Bytes32) (model.Bytes32, error) {
	var req *model.RandomnessRequest
	err := c.locks.WithLock(ctx, lock.FlipKey(seq), func() error {
		var err error
		req, err = c.storage.GetRandomnessRequest(ctx, seq)
		if err != nil {
			return err
		}
		if req.Status != model.FlipPending {
			return model.ErrAlreadyFulfilled
		}
		if entropy.Commit(secret) != req.Commitment {
			return model.ErrCommitmentMismatch
		}
		if entropy.Commit(providerValue) != req.ProviderCommitment {
			return model.ErrProviderMismatch
		}

		req.Seed = entropy.CombineSeed(secret, providerValue)
		req.Status = model.FlipFulfilled
		req.FulfilledAt = c.clock.Now()
		return c.storage.SaveRandomnessRequest(ctx, req)
	})
	if err != nil {
		return model.Bytes32{}, err
	}

	c.logger.Info("flip revealed", slog.Uint64("sequence_number", uint64(seq)))

	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventFlipRevealed,
		Timestamp: req.FulfilledAt,
		Identity:  req.Requester,
		Payload:   model.FlipPayload{SequenceNumber: seq},
	})

	return req.Seed, nil
}

// ConsumeSeed hands a fulfilled seed to its requester exactly once
func (c *Coordinator) ConsumeSeed(ctx context.Context, seq model.SequenceNumber, requester model.Identity) (model.Bytes32, error) {
	var seed model.Bytes32
	err := c.locks.WithLock(ctx, lock.FlipKey(seq), func() error {
		req, err := c.storage.GetRandomnessRequest(ctx, seq)
		if err != nil {
			return err
		}
		// Other requesters' flips are indistinguishable from missing ones
		if req.Requester != requester {
			return model.ErrFlipNotFound
		}
		switch req.Status {
		case model.FlipPending:
			return model.ErrFlipNotFulfilled
		case model.FlipConsumed:
			return model.ErrSeedConsumed
		}

		req.Status = model.FlipConsumed
		if err := c.storage.SaveRandomnessRequest(ctx, req); err != nil {
			return err
		}
		seed = req.Seed
		return nil
	})
	if err != nil {
		return model.Bytes32{}, err
	}
	return seed, nil
}

// Draw runs the whole client flow on the server: fresh secret, request,
// bounded wait for the provider, reveal and consume.
func (c *Coordinator) Draw(ctx context.Context, requester model.Identity) (model.Bytes32, model.SequenceNumber, error) {
	secret := random.Bytes32(c.random)

	req, err := c.RequestFlip(ctx, requester, entropy.Commit(secret), c.cfg.FlipFee)
	if err != nil {
		return model.Bytes32{}, 0, err
	}

	providerValue, err := c.fetcher.Fetch(ctx, req.SequenceNumber)
	if err != nil {
		return model.Bytes32{}, req.SequenceNumber, err
	}

	if _, err := c.RevealFlip(ctx, req.SequenceNumber, secret, providerValue); err != nil {
		return model.Bytes32{}, req.SequenceNumber, err
	}

	seed, err := c.ConsumeSeed(ctx, req.SequenceNumber, requester)
	if err != nil {
		return model.Bytes32{}, req.SequenceNumber, err
	}
	return seed, req.SequenceNumber, nil
}
