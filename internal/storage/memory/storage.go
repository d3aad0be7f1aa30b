package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out.
type Storage struct {
	mu sync.RWMutex

	players     map[model.Identity]model.Player
	credentials map[model.Identity]model.Credential
	games       map[model.GameID]*model.Game
	requests    map[model.SequenceNumber]model.RandomnessRequest
	lastGameID  model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.Identity]model.Player),
		credentials: make(map[model.Identity]model.Credential),
		games:       make(map[model.GameID]*model.Game),
		requests:    make(map[model.SequenceNumber]model.RandomnessRequest),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.Identity] = *player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, identity model.Identity) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[identity]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &player, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[cred.Identity] = *cred
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, identity model.Identity) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[identity]
	if !ok {
		return nil, model.ErrCredentialMissing
	}
	return &cred, nil
}

// Game operations

func (s *Storage) NextGameID(ctx context.Context) (model.GameID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGameID++
	return s.lastGameID, nil
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) ListGames(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*model.Game
	for _, g := range s.games {
		if g.Status == status {
			games = append(games, g.Clone())
		}
	}
	slices.SortFunc(games, func(a, b *model.Game) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return games, nil
}

// Randomness operations

func (s *Storage) SaveRandomnessRequest(ctx context.Context, req *model.RandomnessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.SequenceNumber] = *req
	return nil
}

func (s *Storage) GetRandomnessRequest(ctx context.Context, seq model.SequenceNumber) (*model.RandomnessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[seq]
	if !ok {
		return nil, model.ErrFlipNotFound
	}
	return &req, nil
}
