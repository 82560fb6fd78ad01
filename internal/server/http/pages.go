package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/convert"
	"github.com/and161185/flashcards/internal/errs"
	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/model"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/study"
)

// flashMessages maps ?message= codes to banner text.
var flashMessages = map[string]string{
	"no-cards":     "This deck has no cards yet. Add some cards to start studying.",
	"deck-created": "Deck created successfully",
	"deck-updated": "Deck updated successfully",
	"deck-deleted": "Deck deleted successfully",
	"card-created": "Card created successfully",
	"card-updated": "Card updated successfully",
	"card-deleted": "Card deleted successfully",
}

func (s *Server) withBanners(r *http.Request, p page) page {
	q := r.URL.Query()
	p.Flash = flashMessages[q.Get("message")]
	p.Error = q.Get("error")
	return p
}

type homeData struct {
	SignUpURL string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, "home", s.newPage(r, "Home", homeData{SignUpURL: s.signUpURL}), cacheSlot{})
}

type dashboardData struct {
	Decks []model.Deck
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	target := cacheTarget(r, pagecache.Dashboard())
	slot, hit := s.serveCached(w, r, userID, target)
	if hit {
		return
	}
	decks, err := s.decks.List(r.Context(), userID)
	if err != nil {
		s.serveError(w, r, err)
		return
	}
	p := s.withBanners(r, s.newPage(r, "Dashboard", dashboardData{Decks: decks}))
	s.servePage(w, r, "dashboard", p, slot)
}

type deckData struct {
	Deck  *model.Deck
	Cards []model.Card
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "deckID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	target := cacheTarget(r, pagecache.Deck(id))
	slot, hit := s.serveCached(w, r, userID, target)
	if hit {
		return
	}
	deck, cards, err := s.decks.WithCards(r.Context(), userID, id)
	if err != nil {
		s.pageLoadError(w, r, err)
		return
	}
	p := s.withBanners(r, s.newPage(r, deck.Name, deckData{Deck: deck, Cards: cards}))
	s.servePage(w, r, "deck", p, slot)
}

type studyData struct {
	Deck        *model.Deck
	Card        model.Card
	Fields      [][2]string
	Total       int
	Position    int
	Flipped     bool
	Correct     int
	Incorrect   int
	Complete    bool
	Progress    int
	Accuracy    int
	CanPrevious bool
	CanFinish   bool
	IsLast      bool
}

func newStudyData(deck *model.Deck, cards []model.Card, sess *study.Session) studyData {
	st := sess.State()
	return studyData{
		Deck:        deck,
		Card:        cards[st.Index],
		Fields:      convert.StudyStateFields(st),
		Total:       st.Total,
		Position:    st.Index + 1,
		Flipped:     st.Flipped,
		Correct:     st.Correct,
		Incorrect:   st.Incorrect,
		Complete:    st.Complete,
		Progress:    sess.Progress(),
		Accuracy:    sess.Accuracy(),
		CanPrevious: sess.CanPrevious(),
		CanFinish:   sess.CanFinish(),
		IsLast:      sess.IsLast(),
	}
}

// handleStudy serves the study page. GET starts a session; POST applies one action to
// the posted state. A posted state that no longer fits the deck restarts the session.
func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserID(r.Context())
	id, ok := readID(r, "deckID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	target := cacheTarget(r, pagecache.Study(id))
	slot, hit := s.serveCached(w, r, userID, target)
	if hit {
		return
	}
	deck, cards, err := s.decks.StudyCards(r.Context(), userID, id)
	if errors.Is(err, errs.ErrNoCards) {
		http.Redirect(w, r, "/decks/"+strconv.FormatInt(id, 10)+"?message=no-cards", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.pageLoadError(w, r, err)
		return
	}

	sess, err := study.New(len(cards))
	if err != nil {
		s.serveError(w, r, err)
		return
	}
	if r.Method == http.MethodPost {
		sess = s.applyStudyAction(r, sess, len(cards))
	}

	p := s.newPage(r, "Study "+deck.Name, newStudyData(deck, cards, sess))
	s.servePage(w, r, "study", p, slot)
}

// applyStudyAction restores the posted state and applies the posted action to it.
// A state that cannot be restored yields the fresh session with no action applied.
func (s *Server) applyStudyAction(r *http.Request, fresh *study.Session, total int) *study.Session {
	if err := r.ParseForm(); err != nil {
		return fresh
	}
	st, err := convert.StudyStateFromForm(r.PostForm)
	if err != nil {
		s.log.Debug("study state restarted", zap.Error(err))
		return fresh
	}
	sess, err := study.Restore(total, st)
	if err != nil {
		s.log.Debug("study state restarted", zap.Error(err))
		return fresh
	}
	action, err := study.ParseAction(r.PostForm.Get(convert.FieldAction))
	if err != nil {
		return sess
	}
	if err := sess.Apply(action); err != nil && !errors.Is(err, study.ErrComplete) {
		s.log.Debug("study action rejected", zap.String("action", string(action)), zap.Error(err))
	}
	return sess
}

func (s *Server) pageLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errs.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	s.serveError(w, r, err)
}
