package httpserver

import (
	"net/http"

	"github.com/and161185/flashcards/internal/convert"
	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/model"
)

type deckBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type cardBody struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// handleAPICreateDeck handles POST /api/decks.
func (s *Server) handleAPICreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	var in model.CreateDeckInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := s.decks.Create(r.Context(), userID, in)
	if err != nil {
		s.writeActionError(w, err, "create", "deck")
		return
	}
	writeJSON(w, http.StatusCreated, convert.DeckResult(d, "Deck created successfully"))
}

func (s *Server) handleAPIUpdateDeck(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "deckID")
	if !ok {
		writeJSON(w, http.StatusNotFound, convert.Failure(notFoundMessage("deck"), nil))
		return
	}
	var body deckBody
	if !decodeJSON(w, r, &body) {
		return
	}
	d, err := s.decks.Update(r.Context(), userID, model.UpdateDeckInput{ID: id, Name: body.Name, Description: body.Description})
	if err != nil {
		s.writeActionError(w, err, "update", "deck")
		return
	}
	writeJSON(w, http.StatusOK, convert.DeckResult(d, "Deck updated successfully"))
}

func (s *Server) handleAPIDeleteDeck(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "deckID")
	if !ok {
		writeJSON(w, http.StatusNotFound, convert.Failure(notFoundMessage("deck"), nil))
		return
	}
	d, err := s.decks.Delete(r.Context(), userID, model.DeleteDeckInput{ID: id})
	if err != nil {
		s.writeActionError(w, err, "delete", "deck")
		return
	}
	writeJSON(w, http.StatusOK, convert.DeckResult(d, "Deck deleted successfully"))
}

func (s *Server) handleAPICreateCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	var in model.CreateCardInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := s.cards.Create(r.Context(), userID, in)
	if err != nil {
		s.writeActionError(w, err, "create", "card")
		return
	}
	writeJSON(w, http.StatusCreated, convert.CardResult(c, "Card created successfully"))
}

func (s *Server) handleAPIUpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "cardID")
	if !ok {
		writeJSON(w, http.StatusNotFound, convert.Failure(notFoundMessage("card"), nil))
		return
	}
	var body cardBody
	if !decodeJSON(w, r, &body) {
		return
	}
	c, err := s.cards.Update(r.Context(), userID, model.UpdateCardInput{ID: id, Front: body.Front, Back: body.Back})
	if err != nil {
		s.writeActionError(w, err, "update", "card")
		return
	}
	writeJSON(w, http.StatusOK, convert.CardResult(c, "Card updated successfully"))
}

func (s *Server) handleAPIDeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "cardID")
	if !ok {
		writeJSON(w, http.StatusNotFound, convert.Failure(notFoundMessage("card"), nil))
		return
	}
	c, err := s.cards.Delete(r.Context(), userID, model.DeleteCardInput{ID: id})
	if err != nil {
		s.writeActionError(w, err, "delete", "card")
		return
	}
	writeJSON(w, http.StatusOK, convert.CardResult(c, "Card deleted successfully"))
}
