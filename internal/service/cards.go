package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/model"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/repository"
)

// CardService defines card mutations scoped through the owning deck.
type CardService interface {
	// Create adds a card to an owned deck.
	Create(ctx context.Context, userID string, in model.CreateCardInput) (*model.Card, error)
	// Update rewrites a card whose deck the user owns.
	Update(ctx context.Context, userID string, in model.UpdateCardInput) (*model.Card, error)
	// Delete removes a card whose deck the user owns.
	Delete(ctx context.Context, userID string, in model.DeleteCardInput) (*model.Card, error)
}

// CardServiceImpl implements CardService over the deck and card repositories.
type CardServiceImpl struct {
	decks repository.DeckRepository
	cards repository.CardRepository
	pages pagecache.Store
	log   *zap.Logger
}

// NewCardService constructs CardService.
func NewCardService(decks repository.DeckRepository, cards repository.CardRepository, pages pagecache.Store, log *zap.Logger) *CardServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &CardServiceImpl{decks: decks, cards: cards, pages: pages, log: log}
}

// Create checks deck ownership, inserts the card and touches the deck.
func (s *CardServiceImpl) Create(ctx context.Context, userID string, in model.CreateCardInput) (*model.Card, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, err := s.decks.GetOwned(ctx, userID, in.DeckID)
	if err != nil {
		return nil, err
	}
	c, err := s.cards.Create(ctx, d.ID, in.Front, in.Back)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, userID, d.ID)
	return c, nil
}

// Update resolves the card's deck through the owner join before writing.
func (s *CardServiceImpl) Update(ctx context.Context, userID string, in model.UpdateCardInput) (*model.Card, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	deckID, err := s.cards.OwnedDeckID(ctx, userID, in.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.cards.Update(ctx, in.ID, in.Front, in.Back)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, userID, deckID)
	return c, nil
}

func (s *CardServiceImpl) Delete(ctx context.Context, userID string, in model.DeleteCardInput) (*model.Card, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	deckID, err := s.cards.OwnedDeckID(ctx, userID, in.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.cards.Delete(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, userID, deckID)
	return c, nil
}

// afterWrite bumps the parent deck and drops affected pages. The card write is already
// committed, so neither step can fail the action.
func (s *CardServiceImpl) afterWrite(ctx context.Context, userID string, deckID int64) {
	if err := s.decks.Touch(ctx, deckID); err != nil {
		s.log.Warn("deck touch failed", zap.Int64("deck_id", deckID), zap.Error(err))
	}
	invalidate(ctx, s.pages, s.log, userID, pagecache.ForCardChange(deckID))
}
