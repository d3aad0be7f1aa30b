package randomness

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/mocks"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	"github.com/mcoot/cardsagainstentropy/internal/lock"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/storage/memory"
	"github.com/mcoot/cardsagainstentropy/internal/testutil"
)

type CoordinatorSuite struct {
	suite.Suite
	ctx         context.Context
	clock       *quartz.Mock
	random      *mocks.MockRandom
	provider    *entropy.Local
	storage     *memory.Storage
	recorder    *notify.Recorder
	coordinator *Coordinator
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = quartz.NewMock(s.T())
	s.random = mocks.NewMockRandom()
	s.storage = memory.New()
	s.recorder = &notify.Recorder{}
	s.provider = entropy.NewLocal(s.clock, s.random, entropy.DefaultLocalConfig(), testutil.NopLogger())
	s.coordinator = s.newCoordinator(s.provider, clock.New())
}

func (s *CoordinatorSuite) newCoordinator(provider entropy.Provider, fetchClock clock.Clock) *Coordinator {
	fetcher := NewFetcher(provider, fetchClock, FetchConfig{Interval: time.Millisecond, MaxAttempts: 3}, testutil.NopLogger())
	return NewCoordinator(
		s.storage, provider, fetcher, lock.New(), s.recorder,
		s.clock, s.random, Config{FlipFee: 10}, testutil.NopLogger(),
	)
}

func (s *CoordinatorSuite) request(secret model.Bytes32) *model.RandomnessRequest {
	req, err := s.coordinator.RequestFlip(s.ctx, "0xaaa", entropy.Commit(secret), 10)
	s.Require().NoError(err)
	return req
}

func (s *CoordinatorSuite) providerValue(seq model.SequenceNumber) model.Bytes32 {
	v, err := s.provider.Revelation(s.ctx, seq)
	s.Require().NoError(err)
	return v
}

func (s *CoordinatorSuite) TestFlipFee() {
	s.Equal(uint64(10), s.coordinator.FlipFee())
}

func (s *CoordinatorSuite) TestRequestFlipInsufficientFee() {
	_, err := s.coordinator.RequestFlip(s.ctx, "0xaaa", model.Bytes32{1}, 9)
	s.ErrorIs(err, model.ErrInsufficientFee)
	s.Empty(s.recorder.Events())
}

func (s *CoordinatorSuite) TestRequestFlipRecordsPending() {
	secret := model.Bytes32{1, 2, 3}
	req := s.request(secret)

	s.Equal(model.SequenceNumber(1), req.SequenceNumber)
	s.Equal(model.FlipPending, req.Status)
	s.Equal(entropy.Commit(secret), req.Commitment)
	s.False(req.ProviderCommitment.IsZero())

	stored, err := s.coordinator.GetFlip(s.ctx, req.SequenceNumber)
	s.Require().NoError(err)
	s.Equal(req.ProviderCommitment, stored.ProviderCommitment)

	s.Equal([]model.EventType{model.EventFlipRequested}, s.recorder.Types())
}

func (s *CoordinatorSuite) TestRevealFlipCombinesSeed() {
	secret := model.Bytes32{1, 2, 3}
	req := s.request(secret)
	pv := s.providerValue(req.SequenceNumber)

	seed, err := s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, secret, pv)
	s.Require().NoError(err)
	s.Equal(entropy.CombineSeed(secret, pv), seed)

	stored, err := s.coordinator.GetFlip(s.ctx, req.SequenceNumber)
	s.Require().NoError(err)
	s.Equal(model.FlipFulfilled, stored.Status)
	s.Equal(seed, stored.Seed)

	s.Equal([]model.EventType{model.EventFlipRequested, model.EventFlipRevealed}, s.recorder.Types())
}

func (s *CoordinatorSuite) TestRevealFlipValidationOrder() {
	secret := model.Bytes32{1, 2, 3}
	req := s.request(secret)
	pv := s.providerValue(req.SequenceNumber)

	_, err := s.coordinator.RevealFlip(s.ctx, 99, secret, pv)
	s.ErrorIs(err, model.ErrFlipNotFound)

	_, err = s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, model.Bytes32{4}, model.Bytes32{5})
	s.ErrorIs(err, model.ErrCommitmentMismatch)

	_, err = s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, secret, model.Bytes32{5})
	s.ErrorIs(err, model.ErrProviderMismatch)

	_, err = s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, secret, pv)
	s.Require().NoError(err)

	// Already fulfilled wins over a bad secret
	_, err = s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, model.Bytes32{4}, pv)
	s.ErrorIs(err, model.ErrAlreadyFulfilled)
}

func (s *CoordinatorSuite) TestConsumeSeed() {
	secret := model.Bytes32{1, 2, 3}
	req := s.request(secret)

	_, err := s.coordinator.ConsumeSeed(s.ctx, req.SequenceNumber, "0xaaa")
	s.ErrorIs(err, model.ErrFlipNotFulfilled)

	seed, err := s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, secret, s.providerValue(req.SequenceNumber))
	s.Require().NoError(err)

	_, err = s.coordinator.ConsumeSeed(s.ctx, req.SequenceNumber, "0xbbb")
	s.ErrorIs(err, model.ErrFlipNotFound)

	got, err := s.coordinator.ConsumeSeed(s.ctx, req.SequenceNumber, "0xaaa")
	s.Require().NoError(err)
	s.Equal(seed, got)

	_, err = s.coordinator.ConsumeSeed(s.ctx, req.SequenceNumber, "0xaaa")
	s.ErrorIs(err, model.ErrSeedConsumed)

	_, err = s.coordinator.RevealFlip(s.ctx, req.SequenceNumber, secret, s.providerValue(req.SequenceNumber))
	s.ErrorIs(err, model.ErrAlreadyFulfilled)
}

func (s *CoordinatorSuite) TestDraw() {
	seed, seq, err := s.coordinator.Draw(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.False(seed.IsZero())

	stored, err := s.coordinator.GetFlip(s.ctx, seq)
	s.Require().NoError(err)
	s.Equal(model.FlipConsumed, stored.Status)
	s.Equal(seed, stored.Seed)

	s.Equal([]model.EventType{model.EventFlipRequested, model.EventFlipRevealed}, s.recorder.Types())
}

func (s *CoordinatorSuite) TestDrawSeedsDiffer() {
	first, _, err := s.coordinator.Draw(s.ctx, "0xaaa")
	s.Require().NoError(err)
	second, _, err := s.coordinator.Draw(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.NotEqual(first, second)
}

func (s *CoordinatorSuite) TestDrawRevealUnavailableLeavesRequestPending() {
	// The provider's clock never advances past its delay
	slow := entropy.NewLocal(s.clock, s.random, entropy.LocalConfig{RevealDelay: time.Hour}, testutil.NopLogger())
	s.coordinator = s.newCoordinator(slow, clock.New())

	_, seq, err := s.coordinator.Draw(s.ctx, "0xaaa")
	s.ErrorIs(err, model.ErrRevealUnavailable)

	stored, err := s.coordinator.GetFlip(s.ctx, seq)
	s.Require().NoError(err)
	s.Equal(model.FlipPending, stored.Status)
}
