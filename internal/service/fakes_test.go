package service

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/model"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/repository"
)

type fakeDecks struct {
	byID map[int64]*model.Deck

	calls    int
	touched  []int64
	touchErr error
	nextID   int64
	// events records repository writes of both fakes in call order.
	events []string
}

var _ repository.DeckRepository = (*fakeDecks)(nil)

func newFakeDecks(decks ...model.Deck) *fakeDecks {
	f := &fakeDecks{byID: map[int64]*model.Deck{}, nextID: 100}
	for i := range decks {
		d := decks[i]
		f.byID[d.ID] = &d
	}
	return f
}

func (f *fakeDecks) Create(_ context.Context, ownerID, name, description string) (*model.Deck, error) {
	f.calls++
	f.nextID++
	now := time.Now()
	d := &model.Deck{ID: f.nextID, OwnerID: ownerID, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
	f.byID[d.ID] = d
	return d, nil
}

func (f *fakeDecks) GetOwned(_ context.Context, ownerID string, id int64) (*model.Deck, error) {
	f.calls++
	d, ok := f.byID[id]
	if !ok || d.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDecks) ListOwned(_ context.Context, ownerID string) ([]model.Deck, error) {
	f.calls++
	var out []model.Deck
	for _, d := range f.byID {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDecks) UpdateOwned(ctx context.Context, ownerID string, id int64, name, description string) (*model.Deck, error) {
	if _, err := f.GetOwned(ctx, ownerID, id); err != nil {
		return nil, err
	}
	d := f.byID[id]
	d.Name, d.Description = name, description
	cp := *d
	return &cp, nil
}

func (f *fakeDecks) DeleteOwned(ctx context.Context, ownerID string, id int64) (*model.Deck, error) {
	d, err := f.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	delete(f.byID, id)
	return d, nil
}

func (f *fakeDecks) Touch(_ context.Context, id int64) error {
	f.calls++
	f.touched = append(f.touched, id)
	f.events = append(f.events, "touch")
	if f.touchErr != nil {
		return f.touchErr
	}
	if d, ok := f.byID[id]; ok {
		next := time.Now()
		if !next.After(d.UpdatedAt) {
			next = d.UpdatedAt.Add(time.Microsecond)
		}
		d.UpdatedAt = next
	}
	return nil
}

type fakeCards struct {
	byID   map[int64]*model.Card
	decks  *fakeDecks
	calls  int
	nextID int64
}

var _ repository.CardRepository = (*fakeCards)(nil)

func newFakeCards(decks *fakeDecks, cards ...model.Card) *fakeCards {
	f := &fakeCards{byID: map[int64]*model.Card{}, decks: decks, nextID: 500}
	for i := range cards {
		c := cards[i]
		f.byID[c.ID] = &c
	}
	return f
}

func (f *fakeCards) Create(_ context.Context, deckID int64, front, back string) (*model.Card, error) {
	f.calls++
	f.nextID++
	c := &model.Card{ID: f.nextID, DeckID: deckID, Front: front, Back: back}
	f.byID[c.ID] = c
	f.decks.events = append(f.decks.events, "card.create")
	return c, nil
}

func (f *fakeCards) OwnedDeckID(_ context.Context, ownerID string, cardID int64) (int64, error) {
	f.calls++
	c, ok := f.byID[cardID]
	if !ok {
		return 0, errs.ErrNotFound
	}
	d, ok := f.decks.byID[c.DeckID]
	if !ok || d.OwnerID != ownerID {
		return 0, errs.ErrNotFound
	}
	return d.ID, nil
}

func (f *fakeCards) Update(_ context.Context, id int64, front, back string) (*model.Card, error) {
	f.calls++
	c, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c.Front, c.Back = front, back
	f.decks.events = append(f.decks.events, "card.update")
	cp := *c
	return &cp, nil
}

func (f *fakeCards) Delete(_ context.Context, id int64) (*model.Card, error) {
	f.calls++
	c, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	delete(f.byID, id)
	f.decks.events = append(f.decks.events, "card.delete")
	return c, nil
}

func (f *fakeCards) ListByDeck(_ context.Context, deckID int64) ([]model.Card, error) {
	f.calls++
	var out []model.Card
	for id := int64(0); id <= f.nextID+1000; id++ {
		if c, ok := f.byID[id]; ok && c.DeckID == deckID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type invalidation struct {
	userID  string
	targets []pagecache.Target
}

type fakePages struct {
	got []invalidation
	err error
}

var _ pagecache.Store = (*fakePages)(nil)

func (f *fakePages) Get(context.Context, string, pagecache.Target) (pagecache.Lookup, error) {
	return pagecache.Lookup{}, nil
}

func (f *fakePages) Set(context.Context, string, pagecache.Target, uint64, []byte) (bool, error) {
	return true, nil
}

func (f *fakePages) Invalidate(_ context.Context, userID string, targets ...pagecache.Target) error {
	f.got = append(f.got, invalidation{userID: userID, targets: targets})
	return f.err
}

var errBoom = errors.New("boom")
