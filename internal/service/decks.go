package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/model"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/repository"
)

// DeckService defines owner-scoped deck reads and mutations.
type DeckService interface {
	// List returns the user's decks with card counts.
	List(ctx context.Context, userID string) ([]model.Deck, error)
	// Get returns one owned deck.
	Get(ctx context.Context, userID string, id int64) (*model.Deck, error)
	// WithCards returns an owned deck and all of its cards.
	WithCards(ctx context.Context, userID string, id int64) (*model.Deck, []model.Card, error)
	// StudyCards is WithCards that refuses an empty deck with errs.ErrNoCards.
	StudyCards(ctx context.Context, userID string, id int64) (*model.Deck, []model.Card, error)
	// Create adds a deck for the user.
	Create(ctx context.Context, userID string, in model.CreateDeckInput) (*model.Deck, error)
	// Update rewrites an owned deck's name and description.
	Update(ctx context.Context, userID string, in model.UpdateDeckInput) (*model.Deck, error)
	// Delete removes an owned deck and its cards.
	Delete(ctx context.Context, userID string, in model.DeleteDeckInput) (*model.Deck, error)
}

// DeckServiceImpl implements DeckService over the deck and card repositories.
type DeckServiceImpl struct {
	decks repository.DeckRepository
	cards repository.CardRepository
	pages pagecache.Store
	log   *zap.Logger
}

// NewDeckService constructs DeckService.
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository, pages pagecache.Store, log *zap.Logger) *DeckServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeckServiceImpl{decks: decks, cards: cards, pages: pages, log: log}
}

func (s *DeckServiceImpl) List(ctx context.Context, userID string) ([]model.Deck, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	return s.decks.ListOwned(ctx, userID)
}

func (s *DeckServiceImpl) Get(ctx context.Context, userID string, id int64) (*model.Deck, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.decks.GetOwned(ctx, userID, id)
}

func (s *DeckServiceImpl) WithCards(ctx context.Context, userID string, id int64) (*model.Deck, []model.Card, error) {
	d, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, d.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list cards: %w", err)
	}
	return d, cards, nil
}

func (s *DeckServiceImpl) StudyCards(ctx context.Context, userID string, id int64) (*model.Deck, []model.Card, error) {
	d, cards, err := s.WithCards(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if len(cards) == 0 {
		return d, nil, errs.ErrNoCards
	}
	return d, cards, nil
}

func (s *DeckServiceImpl) Create(ctx context.Context, userID string, in model.CreateDeckInput) (*model.Deck, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, err := s.decks.Create(ctx, userID, in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.pages, s.log, userID, pagecache.ForDeckCreate())
	return d, nil
}

func (s *DeckServiceImpl) Update(ctx context.Context, userID string, in model.UpdateDeckInput) (*model.Deck, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, err := s.decks.UpdateOwned(ctx, userID, in.ID, in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.pages, s.log, userID, pagecache.ForDeckChange(d.ID))
	return d, nil
}

func (s *DeckServiceImpl) Delete(ctx context.Context, userID string, in model.DeleteDeckInput) (*model.Deck, error) {
	if userID == "" {
		return nil, errs.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, err := s.decks.DeleteOwned(ctx, userID, in.ID)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.pages, s.log, userID, pagecache.ForDeckChange(d.ID))
	return d, nil
}

// invalidate drops cached pages. Failures leave stale pages until TTL and are only logged.
func invalidate(ctx context.Context, pages pagecache.Store, log *zap.Logger, userID string, targets []pagecache.Target) {
	if pages == nil {
		return
	}
	if err := pages.Invalidate(ctx, userID, targets...); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("page cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
