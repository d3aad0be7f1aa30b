package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidName       = errors.New("display name must not be empty")
	ErrAlreadyRegistered = errors.New("identity is already registered")
	ErrNotRegistered     = errors.New("identity is not registered")
	ErrCredentialMissing = errors.New("no credential for identity")

	// Lobby errors
	ErrInvalidGameName = errors.New("game name must not be empty")
	ErrGameFull        = errors.New("game is full")
	ErrAlreadyInGame   = errors.New("player is already seated in this game")

	// Game errors
	ErrGameNotFound        = errors.New("game not found")
	ErrNotPartOfGame       = errors.New("player is not part of this game")
	ErrGameNotFull         = errors.New("game needs a full table to start")
	ErrInvalidGameStatus   = errors.New("operation not allowed in the current game state")
	ErrNotThisPlayersTurn  = errors.New("not this player's turn")
	ErrInvalidCardIndex    = errors.New("invalid card index")
	ErrCardAlreadyUsed     = errors.New("card has already been played")
	ErrNotTheJudge         = errors.New("player is not the judge this round")
	ErrJudgeCannotVoteSelf = errors.New("judge cannot pick their own seat")
	ErrInvalidPlayerIndex  = errors.New("invalid player index")

	// Randomness errors
	ErrInsufficientFee    = errors.New("fee is below the flip fee")
	ErrFlipNotFound       = errors.New("randomness request not found")
	ErrAlreadyFulfilled   = errors.New("randomness request already fulfilled")
	ErrCommitmentMismatch = errors.New("secret does not match commitment")
	ErrProviderMismatch   = errors.New("provider value does not match provider commitment")
	ErrFlipNotFulfilled   = errors.New("randomness request has not been revealed")
	ErrSeedConsumed       = errors.New("seed has already been consumed")
	ErrRevealUnavailable  = errors.New("provider revelation unavailable")

	// Deck errors
	ErrEmptyDeck       = errors.New("deck must contain at least one card")
	ErrUnknownDeckKind = errors.New("unknown deck kind")
)
