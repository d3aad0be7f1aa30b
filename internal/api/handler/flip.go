package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardsagainstentropy/internal/api/middleware"
	"github.com/mcoot/cardsagainstentropy/internal/api/request"
	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/randomness"
)

// FlipHandler handles the commit-reveal randomness endpoints
type FlipHandler struct {
	coordinator *randomness.Coordinator
}

// NewFlipHandler creates a new flip handler
func NewFlipHandler(coordinator *randomness.Coordinator) *FlipHandler {
	return &FlipHandler{coordinator: coordinator}
}

// Fee handles GET /api/v1/flips/fee
func (h *FlipHandler) Fee(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.FlipFee{Fee: h.coordinator.FlipFee()})
}

// Request handles POST /api/v1/flips
func (h *FlipHandler) Request(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.RequestFlipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	commitment, err := model.ParseBytes32(req.Commitment)
	if err != nil {
		WriteError(w, NewInvalidRequestError("commitment: "+err.Error()))
		return
	}

	flip, err := h.coordinator.RequestFlip(r.Context(), identity, commitment, req.Fee)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.FlipFromModel(flip))
}

// Get handles GET /api/v1/flips/{seq}
func (h *FlipHandler) Get(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceVar(w, r)
	if !ok {
		return
	}

	flip, err := h.coordinator.GetFlip(r.Context(), seq)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlipFromModel(flip))
}

// Reveal handles POST /api/v1/flips/{seq}/reveal
func (h *FlipHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceVar(w, r)
	if !ok {
		return
	}

	var req request.RevealFlipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	secret, err := model.ParseBytes32(req.Secret)
	if err != nil {
		WriteError(w, NewInvalidRequestError("secret: "+err.Error()))
		return
	}
	providerValue, err := model.ParseBytes32(req.ProviderValue)
	if err != nil {
		WriteError(w, NewInvalidRequestError("provider_value: "+err.Error()))
		return
	}

	seed, err := h.coordinator.RevealFlip(r.Context(), seq, secret, providerValue)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Seed{SequenceNumber: uint64(seq), Seed: seed.Hex()})
}

func sequenceVar(w http.ResponseWriter, r *http.Request) (model.SequenceNumber, bool) {
	seq, err := strconv.ParseUint(mux.Vars(r)["seq"], 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError("sequence number must be a non-negative integer"))
		return 0, false
	}
	return model.SequenceNumber(seq), true
}
