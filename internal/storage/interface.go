package storage

import (
	"context"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Storage defines the interface for the authoritative game ledger.
// Implementations must never return values aliased with stored state.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, identity model.Identity) (*model.Player, error)

	// Credential operations
	SaveCredential(ctx context.Context, cred *model.Credential) error
	GetCredential(ctx context.Context, identity model.Identity) (*model.Credential, error)

	// Game operations
	NextGameID(ctx context.Context) (model.GameID, error)
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context, status model.GameStatus) ([]*model.Game, error) // ordered by ID

	// Randomness operations
	SaveRandomnessRequest(ctx context.Context, req *model.RandomnessRequest) error
	GetRandomnessRequest(ctx context.Context, seq model.SequenceNumber) (*model.RandomnessRequest, error)
}
