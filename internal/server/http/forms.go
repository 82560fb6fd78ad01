package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/model"
)

func deckPath(id int64) string { return "/decks/" + strconv.FormatInt(id, 10) }

func seeOther(w http.ResponseWriter, r *http.Request, path, key, value string) {
	if key != "" {
		path += "?" + url.Values{key: {value}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// formFailed redirects back to path with an error banner. Ownership failures render
// the not-found page instead.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, path string, err error) {
	if errors.Is(err, errs.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if !errs.IsValidation(err) {
		s.log.Error("form action failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	seeOther(w, r, path, "error", formErrorText(err))
}

// returnDeck is the deck page a card form came from, read from its hidden deckId field.
func returnDeck(r *http.Request) string {
	if id, err := strconv.ParseInt(r.PostFormValue("deckId"), 10, 64); err == nil && id > 0 {
		return deckPath(id)
	}
	return "/dashboard"
}

func (s *Server) handleCreateDeckForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	in := model.CreateDeckInput{Name: r.PostFormValue("name"), Description: r.PostFormValue("description")}
	d, err := s.decks.Create(r.Context(), userID, in)
	if err != nil {
		s.formFailed(w, r, "/dashboard", err)
		return
	}
	seeOther(w, r, deckPath(d.ID), "message", "deck-created")
}

func (s *Server) handleUpdateDeckForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "deckID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	in := model.UpdateDeckInput{ID: id, Name: r.PostFormValue("name"), Description: r.PostFormValue("description")}
	if _, err := s.decks.Update(r.Context(), userID, in); err != nil {
		s.formFailed(w, r, deckPath(id), err)
		return
	}
	seeOther(w, r, deckPath(id), "message", "deck-updated")
}

func (s *Server) handleDeleteDeckForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "deckID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	if _, err := s.decks.Delete(r.Context(), userID, model.DeleteDeckInput{ID: id}); err != nil {
		s.formFailed(w, r, deckPath(id), err)
		return
	}
	seeOther(w, r, "/dashboard", "message", "deck-deleted")
}

func (s *Server) handleCreateCardForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	deckID, ok := readID(r, "deckID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	in := model.CreateCardInput{DeckID: deckID, Front: r.PostFormValue("front"), Back: r.PostFormValue("back")}
	if _, err := s.cards.Create(r.Context(), userID, in); err != nil {
		s.formFailed(w, r, deckPath(deckID), err)
		return
	}
	seeOther(w, r, deckPath(deckID), "message", "card-created")
}

func (s *Server) handleUpdateCardForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "cardID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	in := model.UpdateCardInput{ID: id, Front: r.PostFormValue("front"), Back: r.PostFormValue("back")}
	c, err := s.cards.Update(r.Context(), userID, in)
	if err != nil {
		s.formFailed(w, r, returnDeck(r), err)
		return
	}
	seeOther(w, r, deckPath(c.DeckID), "message", "card-updated")
}

func (s *Server) handleDeleteCardForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "cardID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	c, err := s.cards.Delete(r.Context(), userID, model.DeleteCardInput{ID: id})
	if err != nil {
		s.formFailed(w, r, returnDeck(r), err)
		return
	}
	seeOther(w, r, deckPath(c.DeckID), "message", "card-deleted")
}
