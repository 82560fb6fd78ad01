package repository

import (
	"context"

	"github.com/and161185/flashcards/internal/model"
)

// CardRepository provides access to cards. Ownership is transitive through the parent
// deck, so writes are only issued after OwnedDeckID or DeckRepository.GetOwned succeeds.
type CardRepository interface {
	// Create inserts a card into a deck.
	Create(ctx context.Context, deckID int64, front, back string) (*model.Card, error)
	// OwnedDeckID returns the card's deck id if that deck belongs to ownerID.
	OwnedDeckID(ctx context.Context, ownerID string, cardID int64) (int64, error)
	// Update rewrites front/back and bumps updated_at.
	Update(ctx context.Context, id int64, front, back string) (*model.Card, error)
	// Delete removes a card and returns the deleted row.
	Delete(ctx context.Context, id int64) (*model.Card, error)
	// ListByDeck returns the deck's cards ordered by creation time.
	ListByDeck(ctx context.Context, deckID int64) ([]model.Card, error)
}
