package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes, one per sentinel error
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeInternalError  = "INTERNAL_ERROR"

	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeInvalidName        = "INVALID_NAME"
	CodeAlreadyRegistered  = "ALREADY_REGISTERED"
	CodeNotRegistered      = "NOT_REGISTERED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeWeakPassphrase     = "WEAK_PASSPHRASE"

	CodeInvalidGameName = "INVALID_GAME_NAME"
	CodeGameFull        = "GAME_FULL"
	CodeAlreadyInGame   = "ALREADY_IN_GAME"

	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeNotPartOfGame       = "NOT_PART_OF_GAME"
	CodeGameNotFull         = "GAME_NOT_FULL"
	CodeInvalidGameStatus   = "INVALID_GAME_STATUS"
	CodeNotThisPlayersTurn  = "NOT_THIS_PLAYERS_TURN"
	CodeInvalidCardIndex    = "INVALID_CARD_INDEX"
	CodeCardAlreadyUsed     = "CARD_ALREADY_USED"
	CodeNotTheJudge         = "NOT_THE_JUDGE"
	CodeJudgeCannotVoteSelf = "JUDGE_CANNOT_VOTE_SELF"
	CodeInvalidPlayerIndex  = "INVALID_PLAYER_INDEX"

	CodeInsufficientFee    = "INSUFFICIENT_FEE"
	CodeFlipNotFound       = "FLIP_NOT_FOUND"
	CodeAlreadyFulfilled   = "ALREADY_FULFILLED"
	CodeCommitmentMismatch = "COMMITMENT_MISMATCH"
	CodeProviderMismatch   = "PROVIDER_MISMATCH"
	CodeFlipNotFulfilled   = "FLIP_NOT_FULFILLED"
	CodeSeedConsumed       = "SEED_CONSUMED"
	CodeRevealUnavailable  = "REVEAL_UNAVAILABLE"

	CodeUnknownDeckKind = "UNKNOWN_DECK_KIND"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status an error maps to
func StatusOf(err error) int {
	return toHTTPError(err).status
}

func newHTTPError(status int, code string, err error) *httpError {
	return &httpError{status, APIError{code, err.Error()}}
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Player registry
	case errors.Is(err, model.ErrPlayerNotFound):
		return newHTTPError(http.StatusNotFound, CodePlayerNotFound, model.ErrPlayerNotFound)
	case errors.Is(err, model.ErrInvalidName):
		return newHTTPError(http.StatusBadRequest, CodeInvalidName, model.ErrInvalidName)
	case errors.Is(err, model.ErrAlreadyRegistered):
		return newHTTPError(http.StatusConflict, CodeAlreadyRegistered, model.ErrAlreadyRegistered)
	case errors.Is(err, model.ErrNotRegistered):
		return newHTTPError(http.StatusForbidden, CodeNotRegistered, model.ErrNotRegistered)

	// Lobby
	case errors.Is(err, model.ErrInvalidGameName):
		return newHTTPError(http.StatusBadRequest, CodeInvalidGameName, model.ErrInvalidGameName)
	case errors.Is(err, model.ErrGameFull):
		return newHTTPError(http.StatusConflict, CodeGameFull, model.ErrGameFull)
	case errors.Is(err, model.ErrAlreadyInGame):
		return newHTTPError(http.StatusConflict, CodeAlreadyInGame, model.ErrAlreadyInGame)

	// Game state machine
	case errors.Is(err, model.ErrGameNotFound):
		return newHTTPError(http.StatusNotFound, CodeGameNotFound, model.ErrGameNotFound)
	case errors.Is(err, model.ErrNotPartOfGame):
		return newHTTPError(http.StatusForbidden, CodeNotPartOfGame, model.ErrNotPartOfGame)
	case errors.Is(err, model.ErrGameNotFull):
		return newHTTPError(http.StatusConflict, CodeGameNotFull, model.ErrGameNotFull)
	case errors.Is(err, model.ErrInvalidGameStatus):
		return newHTTPError(http.StatusConflict, CodeInvalidGameStatus, model.ErrInvalidGameStatus)
	case errors.Is(err, model.ErrNotThisPlayersTurn):
		return newHTTPError(http.StatusForbidden, CodeNotThisPlayersTurn, model.ErrNotThisPlayersTurn)
	case errors.Is(err, model.ErrInvalidCardIndex):
		return newHTTPError(http.StatusBadRequest, CodeInvalidCardIndex, model.ErrInvalidCardIndex)
	case errors.Is(err, model.ErrCardAlreadyUsed):
		return newHTTPError(http.StatusConflict, CodeCardAlreadyUsed, model.ErrCardAlreadyUsed)
	case errors.Is(err, model.ErrNotTheJudge):
		return newHTTPError(http.StatusForbidden, CodeNotTheJudge, model.ErrNotTheJudge)
	case errors.Is(err, model.ErrJudgeCannotVoteSelf):
		return newHTTPError(http.StatusBadRequest, CodeJudgeCannotVoteSelf, model.ErrJudgeCannotVoteSelf)
	case errors.Is(err, model.ErrInvalidPlayerIndex):
		return newHTTPError(http.StatusBadRequest, CodeInvalidPlayerIndex, model.ErrInvalidPlayerIndex)

	// Randomness
	case errors.Is(err, model.ErrInsufficientFee):
		return newHTTPError(http.StatusPaymentRequired, CodeInsufficientFee, model.ErrInsufficientFee)
	case errors.Is(err, model.ErrFlipNotFound):
		return newHTTPError(http.StatusNotFound, CodeFlipNotFound, model.ErrFlipNotFound)
	case errors.Is(err, model.ErrAlreadyFulfilled):
		return newHTTPError(http.StatusConflict, CodeAlreadyFulfilled, model.ErrAlreadyFulfilled)
	case errors.Is(err, model.ErrCommitmentMismatch):
		return newHTTPError(http.StatusUnprocessableEntity, CodeCommitmentMismatch, model.ErrCommitmentMismatch)
	case errors.Is(err, model.ErrProviderMismatch):
		return newHTTPError(http.StatusUnprocessableEntity, CodeProviderMismatch, model.ErrProviderMismatch)
	case errors.Is(err, model.ErrFlipNotFulfilled):
		return newHTTPError(http.StatusConflict, CodeFlipNotFulfilled, model.ErrFlipNotFulfilled)
	case errors.Is(err, model.ErrSeedConsumed):
		return newHTTPError(http.StatusConflict, CodeSeedConsumed, model.ErrSeedConsumed)
	case errors.Is(err, model.ErrRevealUnavailable):
		return newHTTPError(http.StatusServiceUnavailable, CodeRevealUnavailable, model.ErrRevealUnavailable)

	// Decks
	case errors.Is(err, model.ErrUnknownDeckKind):
		return newHTTPError(http.StatusNotFound, CodeUnknownDeckKind, model.ErrUnknownDeckKind)

	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		return newHTTPError(http.StatusUnauthorized, CodeInvalidCredentials, auth.ErrInvalidCredentials)
	case errors.Is(err, auth.ErrInvalidSession):
		return newHTTPError(http.StatusUnauthorized, CodeUnauthorized, auth.ErrInvalidSession)
	case errors.Is(err, auth.ErrWeakPassphrase):
		return newHTTPError(http.StatusBadRequest, CodeWeakPassphrase, auth.ErrWeakPassphrase)

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
