package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/model"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/service"
)

var signingKey = []byte("http-test-key")

type fakeDeckSvc struct {
	decks map[int64]model.Deck
	cards map[int64][]model.Card

	listCalls int
	withCalls int
	// afterRead runs inside WithCards once the deck's cards have been read.
	afterRead func()

	createFn func(userID string, in model.CreateDeckInput) (*model.Deck, error)
	updateFn func(userID string, in model.UpdateDeckInput) (*model.Deck, error)
	deleteFn func(userID string, in model.DeleteDeckInput) (*model.Deck, error)
}

var _ service.DeckService = (*fakeDeckSvc)(nil)

func (f *fakeDeckSvc) List(_ context.Context, userID string) ([]model.Deck, error) {
	f.listCalls++
	var out []model.Deck
	for _, d := range f.decks {
		if d.OwnerID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeckSvc) Get(_ context.Context, userID string, id int64) (*model.Deck, error) {
	d, ok := f.decks[id]
	if !ok || d.OwnerID != userID {
		return nil, errs.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDeckSvc) WithCards(ctx context.Context, userID string, id int64) (*model.Deck, []model.Card, error) {
	f.withCalls++
	d, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	cards := f.cards[id]
	if f.afterRead != nil {
		f.afterRead()
	}
	return d, cards, nil
}

func (f *fakeDeckSvc) StudyCards(ctx context.Context, userID string, id int64) (*model.Deck, []model.Card, error) {
	d, cards, err := f.WithCards(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if len(cards) == 0 {
		return d, nil, errs.ErrNoCards
	}
	return d, cards, nil
}

func (f *fakeDeckSvc) Create(_ context.Context, userID string, in model.CreateDeckInput) (*model.Deck, error) {
	return f.createFn(userID, in)
}

func (f *fakeDeckSvc) Update(_ context.Context, userID string, in model.UpdateDeckInput) (*model.Deck, error) {
	return f.updateFn(userID, in)
}

func (f *fakeDeckSvc) Delete(_ context.Context, userID string, in model.DeleteDeckInput) (*model.Deck, error) {
	return f.deleteFn(userID, in)
}

type fakeCardSvc struct {
	createFn func(userID string, in model.CreateCardInput) (*model.Card, error)
	updateFn func(userID string, in model.UpdateCardInput) (*model.Card, error)
	deleteFn func(userID string, in model.DeleteCardInput) (*model.Card, error)
}

var _ service.CardService = (*fakeCardSvc)(nil)

func (f *fakeCardSvc) Create(_ context.Context, userID string, in model.CreateCardInput) (*model.Card, error) {
	return f.createFn(userID, in)
}

func (f *fakeCardSvc) Update(_ context.Context, userID string, in model.UpdateCardInput) (*model.Card, error) {
	return f.updateFn(userID, in)
}

func (f *fakeCardSvc) Delete(_ context.Context, userID string, in model.DeleteCardInput) (*model.Card, error) {
	return f.deleteFn(userID, in)
}

func fixtureDecks() *fakeDeckSvc {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeDeckSvc{
		decks: map[int64]model.Deck{
			1: {ID: 1, OwnerID: "user_alice", Name: "Math", CardCount: 2, CreatedAt: now, UpdatedAt: now},
			2: {ID: 2, OwnerID: "user_alice", Name: "Empty", CreatedAt: now, UpdatedAt: now},
			3: {ID: 3, OwnerID: "user_bob", Name: "Bob's <secret>", CreatedAt: now, UpdatedAt: now},
		},
		cards: map[int64][]model.Card{
			1: {
				{ID: 10, DeckID: 1, Front: "2+2", Back: "4"},
				{ID: 11, DeckID: 1, Front: "3+3", Back: "6"},
			},
		},
	}
}

type testEnv struct {
	srv   *Server
	h     http.Handler
	decks *fakeDeckSvc
	cards *fakeCardSvc
	pages *pagecache.Memory
}

func newEnv(t *testing.T, mut ...func(*Deps)) *testEnv {
	t.Helper()
	decks := fixtureDecks()
	cards := &fakeCardSvc{}
	pages := pagecache.NewMemory(time.Minute)
	d := Deps{
		Decks:     decks,
		Cards:     cards,
		Pages:     pages,
		Verifier:  identity.NewVerifier(signingKey, ""),
		Log:       zaptest.NewLogger(t),
		SignInURL: "https://idp.example/sign-in",
		APIRate:   100,
		APIBurst:  100,
	}
	for _, m := range mut {
		m(&d)
	}
	srv, err := New(d)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &testEnv{srv: srv, h: srv.Handler(ctx), decks: decks, cards: cards, pages: pages}
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)
	return tok
}

// do performs a request; a non-empty userID signs it in through the session cookie.
func (e *testEnv) do(t *testing.T, method, target, userID string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: identity.CookieName, Value: sessionToken(t, userID)})
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, target, userID string) *httptest.ResponseRecorder {
	return e.do(t, http.MethodGet, target, userID, nil, "")
}

func (e *testEnv) postForm(t *testing.T, target, userID, form string) *httptest.ResponseRecorder {
	return e.do(t, http.MethodPost, target, userID, strings.NewReader(form), "application/x-www-form-urlencoded")
}

func (e *testEnv) sendJSON(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	return e.do(t, method, target, userID, strings.NewReader(body), "application/json")
}
