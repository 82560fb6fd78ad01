// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/flashcards/internal/model"
)

// DeckRepository provides owner-scoped access to decks. Every method that takes an
// ownerID filters on it; a deck owned by someone else behaves as missing.
type DeckRepository interface {
	// Create inserts a deck for the owner and returns the stored row.
	Create(ctx context.Context, ownerID, name, description string) (*model.Deck, error)
	// GetOwned loads a deck by id and owner in a single query.
	GetOwned(ctx context.Context, ownerID string, id int64) (*model.Deck, error)
	// ListOwned returns the owner's decks with card counts, least recently updated first.
	ListOwned(ctx context.Context, ownerID string) ([]model.Deck, error)
	// UpdateOwned rewrites name/description and bumps updated_at.
	UpdateOwned(ctx context.Context, ownerID string, id int64, name, description string) (*model.Deck, error)
	// DeleteOwned removes a deck; the store cascades to its cards.
	DeleteOwned(ctx context.Context, ownerID string, id int64) (*model.Deck, error)
	// Touch bumps updated_at after a child card write. Not owner-scoped: callers check first.
	Touch(ctx context.Context, id int64) error
}
