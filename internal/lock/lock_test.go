package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LockSuite struct {
	suite.Suite
	lock *KeyedLock
	ctx  context.Context
}

func TestLockSuite(t *testing.T) {
	suite.Run(t, new(LockSuite))
}

func (s *LockSuite) SetupTest() {
	s.lock = New()
	s.ctx = context.Background()
}

func (s *LockSuite) TestWithLockSerializesSameKey() {
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.lock.WithLock(s.ctx, "game:1", func() error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()
	s.Equal(50, counter)
}

func (s *LockSuite) TestDifferentKeysDoNotBlock() {
	s.Require().NoError(s.lock.Lock(s.ctx, "game:1"))
	defer s.lock.Unlock("game:1")

	done := make(chan struct{})
	go func() {
		_ = s.lock.WithLock(s.ctx, "game:2", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("lock on a different key blocked")
	}
}

func (s *LockSuite) TestLockRespectsContextCancellation() {
	s.Require().NoError(s.lock.Lock(s.ctx, "game:1"))
	defer s.lock.Unlock("game:1")

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	err := s.lock.Lock(ctx, "game:1")
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *LockSuite) TestKeysAreReleasedAfterUse() {
	s.Require().NoError(s.lock.WithLock(s.ctx, "player:a", func() error {
		s.Len(s.lock.locks, 1)
		return nil
	}))
	s.Empty(s.lock.locks)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Require().NoError(s.lock.Lock(s.ctx, "game:1"))
	s.ErrorIs(s.lock.Lock(ctx, "game:1"), context.Canceled)
	s.lock.Unlock("game:1")
	s.Empty(s.lock.locks)
}

func (s *LockSuite) TestKeyHelpers() {
	s.Equal("game:7", GameKey(7))
	s.Equal("player:0xabc", PlayerKey("0xabc"))
	s.Equal("flip:3", FlipKey(3))
}
