package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/model"
	"github.com/and161185/flashcards/internal/pagecache"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	rec := e.get(t, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := newEnv(t, func(d *Deps) {
		d.Ping = func(context.Context) error { return errors.New("db down") }
	})
	rec = down.get(t, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHome_SignedInAndOut(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.get(t, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="https://idp.example/sign-in"`)
	assert.Contains(t, rec.Body.String(), `href="/sign-up"`)
	assert.NotContains(t, rec.Body.String(), "Go to Dashboard")

	rec = e.get(t, "/", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Go to Dashboard")
	assert.NotContains(t, rec.Body.String(), "/sign-up")
}

func TestPages_RequireSignIn(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	for _, path := range []string{"/dashboard", "/decks/1", "/decks/1/study"} {
		rec := e.get(t, path, "")
		require.Equalf(t, http.StatusSeeOther, rec.Code, path)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "idp.example", loc.Host)
		assert.Equal(t, path, loc.Query().Get("redirect_url"))
	}

	// An invalid token is treated as signed out.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: identity.CookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestDashboard_CachedPerUser(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.get(t, "/dashboard", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Page-Cache"))
	assert.Contains(t, rec.Body.String(), "Math")
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = e.get(t, "/dashboard", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Page-Cache"))
	assert.Equal(t, 1, e.decks.listCalls)

	rec = e.get(t, "/dashboard", "user_bob")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bob&#39;s &lt;secret&gt;")
	assert.Equal(t, 2, e.decks.listCalls)

	rec = e.get(t, "/dashboard?message=deck-deleted", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Page-Cache"))
	assert.Contains(t, rec.Body.String(), "Deck deleted successfully")
	assert.Equal(t, 3, e.decks.listCalls)
}

func TestDeckPage_WriteDuringRenderIsNotCached(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	// the card lands and its invalidation runs after the page read the deck
	e.decks.afterRead = func() {
		e.decks.cards[1] = append(e.decks.cards[1], model.Card{ID: 12, DeckID: 1, Front: "4+4", Back: "8"})
		require.NoError(t, e.pages.Invalidate(context.Background(), "user_alice", pagecache.ForCardChange(1)...))
	}
	rec := e.get(t, "/decks/1", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "4+4")
	e.decks.afterRead = nil

	rec = e.get(t, "/decks/1", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Page-Cache"))
	assert.Contains(t, rec.Body.String(), "4+4")
	assert.Equal(t, 2, e.decks.withCalls)

	rec = e.get(t, "/decks/1", "user_alice")
	assert.Equal(t, "hit", rec.Header().Get("X-Page-Cache"))
	assert.Contains(t, rec.Body.String(), "4+4")
}

func TestDeckPage(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.get(t, "/decks/1", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Math</h1>")
	assert.Contains(t, body, "2+2")
	assert.Contains(t, body, `action="/cards/11/edit"`)
	assert.Contains(t, body, `href="/decks/1/study"`)

	rec = e.get(t, "/decks/2?message=no-cards", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This deck has no cards yet")
	assert.NotContains(t, rec.Body.String(), `href="/decks/2/study"`)

	rec = e.get(t, "/decks/1?error="+url.QueryEscape("<b>bad</b>"), "user_alice")
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;bad&lt;/b&gt;")
}

func TestDeckPage_NotFound(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	for _, path := range []string{"/decks/3", "/decks/999", "/decks/abc", "/decks/0", "/decks/-1", "/nowhere"} {
		rec := e.get(t, path, "user_alice")
		assert.Equalf(t, http.StatusNotFound, rec.Code, path)
		assert.Containsf(t, rec.Body.String(), "Not Found", path)
	}
}

func studyForm(state url.Values, action string) string {
	f := url.Values{}
	for k, v := range state {
		f[k] = v
	}
	f.Set("action", action)
	return f.Encode()
}

func TestStudy_Get(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.get(t, "/decks/1/study", "user_alice")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Card 1 of 2")
	assert.Contains(t, body, "<small>Front</small> 2+2")
	assert.Contains(t, body, "50%")
	assert.Contains(t, body, `value="previous" disabled`)

	rec = e.get(t, "/decks/2/study", "user_alice")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/decks/2?message=no-cards", rec.Header().Get("Location"))

	rec = e.get(t, "/decks/3/study", "user_alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudy_PostTransitions(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	start := url.Values{"total": {"2"}, "index": {"0"}, "flipped": {"false"}, "correct": {"0"}, "incorrect": {"0"}, "complete": {"false"}}

	rec := e.postForm(t, "/decks/1/study", "user_alice", studyForm(start, "flip"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<small>Back</small> 4")
	assert.Empty(t, rec.Header().Get("X-Page-Cache"), "posted study pages are never cached")

	rec = e.postForm(t, "/decks/1/study", "user_alice", studyForm(start, "correct"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Card 2 of 2")
	assert.Contains(t, rec.Body.String(), "Correct: 1")
	// Last card unflipped: Finish stays disabled.
	assert.Contains(t, rec.Body.String(), `value="next" disabled>Finish`)

	last := url.Values{"total": {"2"}, "index": {"1"}, "flipped": {"true"}, "correct": {"1"}, "incorrect": {"0"}, "complete": {"false"}}
	rec = e.postForm(t, "/decks/1/study", "user_alice", studyForm(last, "incorrect"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Study Complete!")
	assert.Contains(t, body, "Correct: 1 · Incorrect: 1")
	assert.Contains(t, body, "Accuracy: 50%")

	done := url.Values{"total": {"2"}, "index": {"1"}, "flipped": {"false"}, "correct": {"1"}, "incorrect": {"1"}, "complete": {"true"}}
	rec = e.postForm(t, "/decks/1/study", "user_alice", studyForm(done, "next"))
	assert.Contains(t, rec.Body.String(), "Study Complete!", "actions other than restart keep the summary")

	rec = e.postForm(t, "/decks/1/study", "user_alice", studyForm(done, "restart"))
	assert.Contains(t, rec.Body.String(), "Card 1 of 2")
	assert.Contains(t, rec.Body.String(), "Correct: 0")
}

func TestStudy_InconsistentStateRestartsWithoutApplyingAction(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	stale := url.Values{"total": {"5"}, "index": {"4"}, "flipped": {"true"}, "correct": {"3"}, "incorrect": {"1"}, "complete": {"false"}}

	rec := e.postForm(t, "/decks/1/study", "user_alice", studyForm(stale, "next"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Card 1 of 2")
	assert.Contains(t, rec.Body.String(), "Correct: 0")
	assert.Contains(t, rec.Body.String(), "<small>Front</small> 2+2")

	rec = e.postForm(t, "/decks/1/study", "user_alice", "action=flip&index=zero")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Card 1 of 2")
	assert.NotContains(t, rec.Body.String(), "<small>Back</small>")

	start := url.Values{"total": {"2"}, "index": {"0"}, "flipped": {"false"}, "correct": {"0"}, "incorrect": {"0"}, "complete": {"false"}}
	rec = e.postForm(t, "/decks/1/study", "user_alice", studyForm(start, "dance"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<small>Front</small> 2+2")

	rec = e.postForm(t, "/decks/1/study", "user_alice", studyForm(start, "flip"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<small>Back</small> 4")
}
