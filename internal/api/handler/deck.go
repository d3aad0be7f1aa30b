package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/deck"
)

// DeckHandler serves the fixed decks
type DeckHandler struct {
	decks *deck.Service
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(decks *deck.Service) *DeckHandler {
	return &DeckHandler{decks: decks}
}

// List handles GET /api/v1/decks/{kind}
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseDeckKind(mux.Vars(r)["kind"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Deck{Kind: string(kind), Cards: h.decks.GetFullDeck(kind)})
}

// Entry handles GET /api/v1/decks/{kind}/{index}. Indexes wrap around the deck.
func (h *DeckHandler) Entry(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseDeckKind(mux.Vars(r)["kind"])
	if err != nil {
		WriteError(w, err)
		return
	}
	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError("index must be a non-negative integer"))
		return
	}
	response.JSON(w, http.StatusOK, response.DeckEntry{
		Kind:  string(kind),
		Index: index,
		Text:  h.decks.GetEntry(kind, index),
	})
}
