package mocks

import (
	"sync"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued byte slices are consumed in order by Read.
type MockRandom struct {
	mu sync.Mutex

	// BytesResults is a queue of byte slices copied out by Read
	BytesResults [][]byte
	bytesIndex   int
	counter      byte
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Read copies the next queued byte slice into p. With nothing queued it fills
// p with a distinct counter byte per call so generated values never collide.
func (r *MockRandom) Read(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bytesIndex < len(r.BytesResults) {
		copy(p, r.BytesResults[r.bytesIndex])
		r.bytesIndex++
		return
	}
	r.counter++
	for i := range p {
		p[i] = r.counter
	}
}

// QueueBytes adds values to the Read result queue
func (r *MockRandom) QueueBytes(values ...[]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BytesResults = append(r.BytesResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BytesResults = nil
	r.bytesIndex = 0
	r.counter = 0
}
