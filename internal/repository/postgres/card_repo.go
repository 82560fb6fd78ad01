package postgres

import (
	"context"
	"errors"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/model"
	"github.com/jackc/pgx/v5"
)

const cardCols = `id, deck_id, front, back, created_at, updated_at`

const (
	qInsertCard = `
INSERT INTO cards (deck_id, front, back)
VALUES ($1, $2, $3)
RETURNING ` + cardCols

	qOwnedCardDeck = `
SELECT c.deck_id
FROM cards c
JOIN decks d ON d.id = c.deck_id
WHERE c.id=$1 AND d.user_id=$2`

	qUpdateCard = `
UPDATE cards SET front=$2, back=$3, updated_at=now()
WHERE id=$1
RETURNING ` + cardCols

	qDeleteCard = `
DELETE FROM cards WHERE id=$1
RETURNING ` + cardCols

	qListDeckCards = `
SELECT ` + cardCols + `
FROM cards
WHERE deck_id=$1
ORDER BY created_at ASC, id ASC`
)

// CardRepo implements CardRepository using PostgreSQL.
type CardRepo struct{ db *DB }

// NewCardRepo constructs a card repository.
func NewCardRepo(db *DB) *CardRepo { return &CardRepo{db: db} }

func scanCard(row pgx.Row) (*model.Card, error) {
	var c model.Card
	if err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a card. A deck deleted in the meantime surfaces as ErrNotFound.
func (r *CardRepo) Create(ctx context.Context, deckID int64, front, back string) (*model.Card, error) {
	c, err := scanCard(r.db.Pool.QueryRow(ctx, qInsertCard, deckID, front, back))
	if isForeignKeyViolation(err) {
		return nil, errs.ErrNotFound
	}
	return c, err
}

// OwnedDeckID resolves the parent deck of a card through the owner join.
func (r *CardRepo) OwnedDeckID(ctx context.Context, ownerID string, cardID int64) (int64, error) {
	var deckID int64
	if err := r.db.Pool.QueryRow(ctx, qOwnedCardDeck, cardID, ownerID).Scan(&deckID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return deckID, nil
}

// Update rewrites a card's text.
func (r *CardRepo) Update(ctx context.Context, id int64, front, back string) (*model.Card, error) {
	return scanCard(r.db.Pool.QueryRow(ctx, qUpdateCard, id, front, back))
}

// Delete removes a card.
func (r *CardRepo) Delete(ctx context.Context, id int64) (*model.Card, error) {
	return scanCard(r.db.Pool.QueryRow(ctx, qDeleteCard, id))
}

// ListByDeck returns cards of a deck, oldest first.
func (r *CardRepo) ListByDeck(ctx context.Context, deckID int64) ([]model.Card, error) {
	rows, err := r.db.Pool.Query(ctx, qListDeckCards, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Card{}
	for rows.Next() {
		var c model.Card
		if err = rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
