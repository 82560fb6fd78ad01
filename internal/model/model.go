// Package model defines domain entities used by services and repositories.
package model

import "time"

// Deck is a named collection of cards owned by one user.
type Deck struct {
	ID          int64     // identity PK
	OwnerID     string    // opaque identity-provider user id, never changes
	Name        string    // 1..255 characters
	Description string    // empty when not provided
	CardCount   int       // derived by list queries, not stored
	CreatedAt   time.Time
	UpdatedAt   time.Time // bumped on deck edit and on any child card write
}

// Card is a front/back text pair belonging to exactly one deck.
type Card struct {
	ID        int64 // identity PK
	DeckID    int64 // FK -> decks.id, ON DELETE CASCADE
	Front     string
	Back      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateDeckInput carries a new deck's fields.
type CreateDeckInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateDeckInput carries an edited deck's fields. An omitted description clears it.
type UpdateDeckInput struct {
	ID          int64  `json:"id" validate:"gt=0"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// DeleteDeckInput identifies a deck to remove together with its cards.
type DeleteDeckInput struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// CreateCardInput carries a new card for an existing deck.
type CreateCardInput struct {
	DeckID int64  `json:"deckId" validate:"gt=0"`
	Front  string `json:"front" validate:"required,max=1000"`
	Back   string `json:"back" validate:"required,max=1000"`
}

// UpdateCardInput carries an edited card's text.
type UpdateCardInput struct {
	ID    int64  `json:"id" validate:"gt=0"`
	Front string `json:"front" validate:"required,max=1000"`
	Back  string `json:"back" validate:"required,max=1000"`
}

// DeleteCardInput identifies a card to remove.
type DeleteCardInput struct {
	ID int64 `json:"id" validate:"gt=0"`
}
