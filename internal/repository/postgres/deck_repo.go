package postgres

import (
	"context"
	"errors"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/model"
	"github.com/jackc/pgx/v5"
)

const deckCols = `id, user_id, name, description, created_at, updated_at`

// bumpUpdatedAt keeps decks.updated_at strictly increasing even when two writes land
// within the clock's resolution.
const bumpUpdatedAt = `GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')`

const (
	qInsertDeck = `
INSERT INTO decks (user_id, name, description)
VALUES ($1, $2, $3)
RETURNING ` + deckCols

	qGetOwnedDeck = `
SELECT ` + deckCols + `
FROM decks WHERE id=$1 AND user_id=$2`

	qListOwnedDecks = `
SELECT d.id, d.user_id, d.name, d.description, d.created_at, d.updated_at,
       (SELECT count(*) FROM cards c WHERE c.deck_id = d.id)::int
FROM decks d
WHERE d.user_id=$1
ORDER BY d.updated_at ASC, d.id ASC`

	qUpdateOwnedDeck = `
UPDATE decks
SET name=$3, description=$4, updated_at=` + bumpUpdatedAt + `
WHERE id=$1 AND user_id=$2
RETURNING ` + deckCols

	qDeleteOwnedDeck = `
DELETE FROM decks WHERE id=$1 AND user_id=$2
RETURNING ` + deckCols

	qTouchDeck = `UPDATE decks SET updated_at=` + bumpUpdatedAt + ` WHERE id=$1`
)

// DeckRepo implements DeckRepository using PostgreSQL.
type DeckRepo struct{ db *DB }

// NewDeckRepo constructs a deck repository.
func NewDeckRepo(db *DB) *DeckRepo { return &DeckRepo{db: db} }

func scanDeck(row pgx.Row) (*model.Deck, error) {
	var d model.Deck
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a deck row.
func (r *DeckRepo) Create(ctx context.Context, ownerID, name, description string) (*model.Deck, error) {
	return scanDeck(r.db.Pool.QueryRow(ctx, qInsertDeck, ownerID, name, description))
}

// GetOwned selects a deck by id and owner.
func (r *DeckRepo) GetOwned(ctx context.Context, ownerID string, id int64) (*model.Deck, error) {
	return scanDeck(r.db.Pool.QueryRow(ctx, qGetOwnedDeck, id, ownerID))
}

// ListOwned returns all decks of the owner with their card counts.
func (r *DeckRepo) ListOwned(ctx context.Context, ownerID string) ([]model.Deck, error) {
	rows, err := r.db.Pool.Query(ctx, qListOwnedDecks, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Deck{}
	for rows.Next() {
		var d model.Deck
		if err = rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.CardCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateOwned rewrites a deck the owner holds.
func (r *DeckRepo) UpdateOwned(ctx context.Context, ownerID string, id int64, name, description string) (*model.Deck, error) {
	return scanDeck(r.db.Pool.QueryRow(ctx, qUpdateOwnedDeck, id, ownerID, name, description))
}

// DeleteOwned removes a deck the owner holds; cards go with it via ON DELETE CASCADE.
func (r *DeckRepo) DeleteOwned(ctx context.Context, ownerID string, id int64) (*model.Deck, error) {
	return scanDeck(r.db.Pool.QueryRow(ctx, qDeleteOwnedDeck, id, ownerID))
}

// Touch bumps a deck's updated_at.
func (r *DeckRepo) Touch(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, qTouchDeck, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
