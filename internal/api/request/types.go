package request

// CreateIdentityRequest is the request body for creating an identity
type CreateIdentityRequest struct {
	Passphrase string `json:"passphrase"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Identity   string `json:"identity"`
	Passphrase string `json:"passphrase"`
}

// RegisterPlayerRequest is the request body for registering a display name
type RegisterPlayerRequest struct {
	Name string `json:"name"`
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Name string `json:"name"`
}

// StartGameRequest is the request body for starting a game. Without a
// sequence number the server draws a seed itself.
type StartGameRequest struct {
	SequenceNumber *uint64 `json:"sequence_number,omitempty"`
}

// PlayCardRequest is the request body for playing a card
type PlayCardRequest struct {
	CardIndex *int `json:"card_index"`
}

// JudgeCardRequest is the request body for judging a round
type JudgeCardRequest struct {
	PlayerIndex *int `json:"player_index"`
}

// RequestFlipRequest is the request body for committing to a secret
type RequestFlipRequest struct {
	Commitment string `json:"commitment"`
	Fee        uint64 `json:"fee"`
}

// RevealFlipRequest is the request body for revealing a secret
type RevealFlipRequest struct {
	Secret        string `json:"secret"`
	ProviderValue string `json:"provider_value"`
}
