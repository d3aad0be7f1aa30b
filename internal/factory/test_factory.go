package factory

import (
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/mocks"
	"github.com/mcoot/cardsagainstentropy/internal/notify"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
	"github.com/mcoot/cardsagainstentropy/internal/storage/memory"
	"github.com/mcoot/cardsagainstentropy/internal/testutil"
)

// TestEpoch is the mock clock's starting time
var TestEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *quartz.Mock
	MockRandom *mocks.MockRandom
	Events     *notify.Recorder
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// It uses memory storage, the built-in decks and a local provider with no reveal delay.
func NewTestApp(t testing.TB) *TestApp {
	return NewTestAppWithConfig(t, Config{})
}

// NewTestAppWithConfig is NewTestApp with service settings taken from cfg.
// Storage and logger settings in cfg are ignored.
func NewTestAppWithConfig(t testing.TB, cfg Config) *TestApp {
	mockClock := quartz.NewMock(t)
	mockClock.Set(TestEpoch)
	mockRandom := mocks.NewMockRandom()
	recorder := &notify.Recorder{}

	app, err := newWithDependencies(dependencies{
		store:    memory.New(),
		clock:    mockClock,
		random:   mockRandom,
		decks:    deck.Default(),
		logger:   testutil.NopLogger(),
		observer: recorder,
	}, cfg)
	if err != nil {
		t.Fatalf("build test app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Events:     recorder,
	}
}
