package randomness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// FetchConfig bounds how long a caller waits for a provider revelation
type FetchConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultFetchConfig returns 3 attempts, one second apart
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Interval:    time.Second,
		MaxAttempts: 3,
	}
}

// Fetcher polls a provider for the revelation of a sequence number
type Fetcher struct {
	provider entropy.Provider
	clock    clock.Clock
	cfg      FetchConfig
	logger   *slog.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(provider entropy.Provider, clock clock.Clock, cfg FetchConfig, logger *slog.Logger) *Fetcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Fetcher{
		provider: provider,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "reveal-fetcher")),
	}
}

// Fetch returns the provider value for seq. Not-ready and transport failures
// are retried; anything else stops immediately. Exhaustion yields
// ErrRevealUnavailable wrapping the last error.
func (f *Fetcher) Fetch(ctx context.Context, seq model.SequenceNumber) (model.Bytes32, error) {
	var value model.Bytes32
	attempt := 0

	operation := func() error {
		attempt++
		v, err := f.provider.Revelation(ctx, seq)
		if err == nil {
			value = v
			return nil
		}
		if !entropy.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		f.logger.Debug("revelation not available, retrying",
			slog.Uint64("sequence_number", uint64(seq)),
			slog.Int("attempt", attempt),
			slog.Duration("next", next),
			slog.Any("error", err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.cfg.Interval), uint64(f.cfg.MaxAttempts-1)),
		ctx,
	)

	err := backoff.RetryNotifyWithTimer(operation, policy, notify, &clockTimer{clock: f.clock})
	if err == nil {
		return value, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return model.Bytes32{}, err
	}

	f.logger.Warn("revelation unavailable",
		slog.Uint64("sequence_number", uint64(seq)),
		slog.Int("attempts", attempt),
		slog.Any("error", err))
	return model.Bytes32{}, fmt.Errorf("%w: sequence %d after %d attempt(s): %w", model.ErrRevealUnavailable, seq, attempt, err)
}

// clockTimer drives backoff waits from a quartz clock so tests can advance time
type clockTimer struct {
	clock clock.Clock
	timer *clock.Timer
}

var _ backoff.Timer = (*clockTimer)(nil)

func (t *clockTimer) Start(d time.Duration) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.NewTimer(d, "randomness", "backoff")
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C
}
