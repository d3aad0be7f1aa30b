// Package lock serializes ledger mutations per key so each operation
// observes and commits a consistent state.
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// keyMutex is a one-slot semaphore with reference counting for cleanup
type keyMutex struct {
	sem      chan struct{}
	refCount int
}

// KeyedLock provides per-key mutual exclusion. Unused keys are dropped.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

// New creates a new KeyedLock
func New() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*keyMutex)}
}

func (l *KeyedLock) acquireRef(key string) *keyMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	km, ok := l.locks[key]
	if !ok {
		km = &keyMutex{sem: make(chan struct{}, 1)}
		l.locks[key] = km
	}
	km.refCount++
	return km
}

func (l *KeyedLock) releaseRef(key string, km *keyMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	km.refCount--
	if km.refCount == 0 {
		delete(l.locks, key)
	}
}

// Lock blocks until the key is held or the context is done
func (l *KeyedLock) Lock(ctx context.Context, key string) error {
	km := l.acquireRef(key)
	select {
	case km.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.releaseRef(key, km)
		return ctx.Err()
	}
}

// Unlock releases a key held by Lock
func (l *KeyedLock) Unlock(key string) {
	l.mu.Lock()
	km, ok := l.locks[key]
	l.mu.Unlock()
	if !ok {
		return
	}
	<-km.sem
	l.releaseRef(key, km)
}

// WithLock runs fn while holding the key
func (l *KeyedLock) WithLock(ctx context.Context, key string, fn func() error) error {
	if err := l.Lock(ctx, key); err != nil {
		return err
	}
	defer l.Unlock(key)
	return fn()
}

// GameKey is the lock key for a game
func GameKey(id model.GameID) string {
	return fmt.Sprintf("game:%d", id)
}

// PlayerKey is the lock key for a player record
func PlayerKey(identity model.Identity) string {
	return "player:" + string(identity)
}

// FlipKey is the lock key for a randomness request
func FlipKey(seq model.SequenceNumber) string {
	return fmt.Sprintf("flip:%d", seq)
}
