package entropy

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// RequestBody is the body of POST /v1/chains/{chain}/requests
type RequestBody struct {
	Commitment model.Bytes32 `json:"commitment"`
	Fee        uint64        `json:"fee"`
}

// RequestResponse is the reply to a randomness request
type RequestResponse struct {
	SequenceNumber     model.SequenceNumber `json:"sequence_number"`
	ProviderCommitment model.Bytes32        `json:"provider_commitment"`
}

// RevelationResponse mirrors the Fortuna revelation payload
type RevelationResponse struct {
	Value RevelationValue `json:"value"`
}

// RevelationValue holds the encoded provider value
type RevelationValue struct {
	Encoding string `json:"encoding"`
	Data     string `json:"data"` // hex without 0x prefix
}

// Handler serves a Local provider over HTTP
type Handler struct {
	provider *Local
	chain    string
	logger   *slog.Logger
}

// NewHandler creates a provider HTTP handler answering for one chain
func NewHandler(provider *Local, chain string, logger *slog.Logger) *Handler {
	return &Handler{
		provider: provider,
		chain:    chain,
		logger:   logger.With(slog.String("component", "entropy-http")),
	}
}

// Register mounts the provider routes on a router
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/chains/{chain}/requests", h.Request).Methods(http.MethodPost)
	r.HandleFunc("/v1/chains/{chain}/revelations/{sequence}", h.Revelation).Methods(http.MethodGet)
}

// Request handles POST /v1/chains/{chain}/requests
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["chain"] != h.chain {
		http.Error(w, "unknown chain", http.StatusNotFound)
		return
	}

	var body RequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := h.provider.Request(r.Context(), body.Commitment, body.Fee)
	if err != nil {
		h.logger.Error("randomness request failed", slog.Any("error", err))
		http.Error(w, "request failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, RequestResponse{
		SequenceNumber:     receipt.SequenceNumber,
		ProviderCommitment: receipt.ProviderCommitment,
	})
}

// Revelation handles GET /v1/chains/{chain}/revelations/{sequence}
func (h *Handler) Revelation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if vars["chain"] != h.chain {
		http.Error(w, "unknown chain", http.StatusNotFound)
		return
	}

	seq, err := strconv.ParseUint(vars["sequence"], 10, 64)
	if err != nil {
		http.Error(w, "invalid sequence number", http.StatusBadRequest)
		return
	}

	value, err := h.provider.Revelation(r.Context(), model.SequenceNumber(seq))
	switch {
	case errors.Is(err, ErrRevealNotReady), errors.Is(err, ErrUnknownSequence):
		// Fortuna answers 404 until it has processed the request
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("revelation failed", slog.Uint64("sequence_number", seq), slog.Any("error", err))
		http.Error(w, "revelation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, RevelationResponse{
		Value: RevelationValue{Encoding: "hex", Data: hex.EncodeToString(value[:])},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
