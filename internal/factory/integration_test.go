package factory

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cardsagainstentropy/internal/api/stream"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	"github.com/mcoot/cardsagainstentropy/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(s.T())
	s.ctx = context.Background()
}

// newIdentity issues an identity through the auth service and registers a name for it
func (s *IntegrationSuite) newIdentity(name string) model.Identity {
	session, err := s.app.AuthService.CreateIdentity(s.ctx, "correct horse battery")
	s.Require().NoError(err)
	_, err = s.app.PlayerService.Register(s.ctx, session.Identity, name)
	s.Require().NoError(err)
	return session.Identity
}

// fullTable creates a game and fills every seat
func (s *IntegrationSuite) fullTable() (model.GameID, []model.Identity) {
	seats := []model.Identity{s.newIdentity("Alice"), s.newIdentity("Bob"), s.newIdentity("Carol")}
	game, err := s.app.LobbyController.CreateGame(s.ctx, seats[0], "friday night")
	s.Require().NoError(err)
	for _, p := range seats[1:] {
		_, err = s.app.LobbyController.JoinGame(s.ctx, p, game.ID)
		s.Require().NoError(err)
	}
	return game.ID, seats
}

// playRound has every non-judge play their next unused slot, then the judge picks
// the card played at index pick
func (s *IntegrationSuite) playRound(id model.GameID, pick int) *model.Game {
	game, err := s.app.GameController.GetGame(s.ctx, id)
	s.Require().NoError(err)
	for game.Phase == model.PhasePlaying {
		active := game.ActivePlayer()
		game, err = s.app.GameController.PlayCard(s.ctx, id, active, len(game.Used[active]))
		s.Require().NoError(err)
	}
	game, err = s.app.GameController.JudgeCard(s.ctx, id, game.CurrentJudge(), pick)
	s.Require().NoError(err)
	return game
}

func (s *IntegrationSuite) TestCompleteGameWithServerDraw() {
	id, seats := s.fullTable()

	seed, seq, err := s.app.Coordinator.Draw(s.ctx, seats[1])
	s.Require().NoError(err)
	s.Equal(model.SequenceNumber(1), seq)

	game, err := s.app.GameController.StartGame(s.ctx, id, seats[1], seed)
	s.Require().NoError(err)
	s.Equal(seed, game.Seed)
	s.Equal(seats[0], game.CurrentJudge())

	// Picks are in play order: seat 2 wins rounds 1 and 2, seat 0 wins round 3
	s.playRound(id, 1)
	s.playRound(id, 0)
	game = s.playRound(id, 0)

	s.Equal(model.GameStatusEnded, game.Status)
	s.Equal(seats[2], game.Winner)
	s.Equal(map[model.Identity]int{seats[0]: 1, seats[1]: 0, seats[2]: 2}, game.Scores)
	s.False(game.PlayersCardsLeft())

	// Lifetime scores follow round wins
	carol, err := s.app.PlayerService.GetPlayer(s.ctx, seats[2])
	s.Require().NoError(err)
	s.Equal(2, carol.Score)

	ended, err := s.app.LobbyController.ListGames(s.ctx, model.GameStatusEnded)
	s.Require().NoError(err)
	s.Len(ended, 1)

	types := s.app.Events.Types()
	s.Contains(types, model.EventFlipRequested)
	s.Contains(types, model.EventFlipRevealed)
	s.Contains(types, model.EventGameStarted)
	s.Equal(model.EventGameEnded, types[len(types)-1])
}

func (s *IntegrationSuite) TestClientSideCommitReveal() {
	id, seats := s.fullTable()

	secret := model.Bytes32{0x42}
	req, err := s.app.Coordinator.RequestFlip(s.ctx, seats[0], entropy.Commit(secret), s.app.Coordinator.FlipFee())
	s.Require().NoError(err)

	providerValue, err := s.app.Fetcher.Fetch(s.ctx, req.SequenceNumber)
	s.Require().NoError(err)

	seed, err := s.app.Coordinator.RevealFlip(s.ctx, req.SequenceNumber, secret, providerValue)
	s.Require().NoError(err)
	s.Equal(entropy.CombineSeed(secret, providerValue), seed)

	consumed, err := s.app.Coordinator.ConsumeSeed(s.ctx, req.SequenceNumber, seats[0])
	s.Require().NoError(err)
	s.Equal(seed, consumed)

	game, err := s.app.GameController.StartGame(s.ctx, id, seats[0], consumed)
	s.Require().NoError(err)
	s.Equal(s.app.Decks.DealTable(seed, 3, model.HandSize)[0], game.Hands[seats[0]])

	_, err = s.app.Coordinator.ConsumeSeed(s.ctx, req.SequenceNumber, seats[0])
	s.ErrorIs(err, model.ErrSeedConsumed)
}

func (s *IntegrationSuite) TestRestartThenReplay() {
	id, seats := s.fullTable()

	game, err := s.app.GameController.StartGame(s.ctx, id, seats[0], model.Bytes32{1})
	s.Require().NoError(err)
	s.playRound(id, 1)

	game, err = s.app.GameController.RestartGame(s.ctx, id, "ops")
	s.Require().NoError(err)
	s.Equal(model.GameStatusPending, game.Status)
	s.Equal(seats, game.Seats)

	pending, err := s.app.LobbyController.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 1)

	game, err = s.app.GameController.StartGame(s.ctx, id, seats[2], model.Bytes32{2})
	s.Require().NoError(err)
	s.Equal(1, game.Round)
}

func (s *IntegrationSuite) TestEventsReachStreamHubs() {
	hub := s.app.HubManager.GetOrCreateHub(stream.AllTopic)
	client := stream.NewClient(hub, "", "test")
	hub.Register(client)
	defer hub.Unregister(client)

	s.newIdentity("Dana")

	select {
	case event := <-client.Events():
		s.Equal(model.EventPlayerRegistered, event.Type)
	case <-time.After(time.Second):
		s.Fail("no event delivered")
	}
}

func TestRemoteProviderAgainstLocalHandler(t *testing.T) {
	// One app plays the provider, another talks to it over HTTP
	provider := NewTestAppWithConfig(t, Config{Entropy: EntropyConfig{Chain: "devnet"}})
	r := mux.NewRouter()
	provider.EntropyHandler().Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	app := NewTestAppWithConfig(t, Config{Entropy: EntropyConfig{
		Mode:  EntropyModeRemote,
		URL:   srv.URL,
		Chain: "devnet",
	}})
	if app.LocalProvider != nil || app.EntropyHandler() != nil {
		t.Fatal("remote mode must not build a local provider")
	}

	ctx := context.Background()
	session, err := app.AuthService.CreateIdentity(ctx, "correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	seed, seq, err := app.Coordinator.Draw(ctx, session.Identity)
	if err != nil {
		t.Fatalf("draw over HTTP: %v", err)
	}
	if seq != 1 || seed.IsZero() {
		t.Fatalf("unexpected draw result seq=%d seed=%s", seq, seed)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := map[string]Config{
		"unknown storage":   {StorageType: "etcd"},
		"redis without cfg": {StorageType: StorageTypeRedis},
		"sqlite no path":    {StorageType: StorageTypeSQLite},
		"remote no url":     {Entropy: EntropyConfig{Mode: EntropyModeRemote}},
		"unknown entropy":   {Entropy: EntropyConfig{Mode: "oracle"}},
		"missing deck file": {DeckPath: "/does/not/exist.json"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(cfg); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestNewWithSQLite(t *testing.T) {
	app, err := New(Config{StorageType: StorageTypeSQLite, SQLitePath: t.TempDir() + "/cae.db"})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	id, err := app.Storage.NextGameID(context.Background())
	if err != nil || id != 1 {
		t.Fatalf("NextGameID = %d, %v", id, err)
	}
}
