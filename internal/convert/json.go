// Package convert maps domain values to wire shapes: JSON views, action envelopes and
// study-state form fields.
package convert

import (
	"time"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/model"
)

// DeckView is the JSON shape of a deck.
type DeckView struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CardCount   *int      `json:"cardCount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CardView is the JSON shape of a card.
type CardView struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deckId"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToDeckView converts a deck. The card count is included only when the deck came from a
// list query (withCount).
func ToDeckView(d *model.Deck, withCount bool) *DeckView {
	if d == nil {
		return nil
	}
	v := &DeckView{
		ID:          d.ID,
		UserID:      d.OwnerID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if withCount {
		n := d.CardCount
		v.CardCount = &n
	}
	return v
}

// ToCardView converts a card.
func ToCardView(c *model.Card) *CardView {
	if c == nil {
		return nil
	}
	return &CardView{
		ID:        c.ID,
		DeckID:    c.DeckID,
		Front:     c.Front,
		Back:      c.Back,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

// Result is the envelope returned by every mutation endpoint.
type Result struct {
	Success bool              `json:"success"`
	Deck    *DeckView         `json:"deck,omitempty"`
	Card    *CardView         `json:"card,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details []errs.FieldError `json:"details,omitempty"`
}

// DeckResult is a successful deck mutation.
func DeckResult(d *model.Deck, message string) Result {
	return Result{Success: true, Deck: ToDeckView(d, false), Message: message}
}

// CardResult is a successful card mutation.
func CardResult(c *model.Card, message string) Result {
	return Result{Success: true, Card: ToCardView(c), Message: message}
}

// Failure is a failed mutation; details are set only for validation failures.
func Failure(msg string, details []errs.FieldError) Result {
	return Result{Success: false, Error: msg, Details: details}
}
