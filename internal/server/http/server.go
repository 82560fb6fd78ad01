// Package httpserver exposes the flashcards pages, form actions and JSON API over HTTP.
package httpserver

import (
	"context"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/service"
)

// Deps are the collaborators of Server.
type Deps struct {
	Decks     service.DeckService
	Cards     service.CardService
	Pages     pagecache.Store
	Verifier  *identity.Verifier
	Log       *zap.Logger
	SignInURL string
	SignUpURL string
	// Ping reports store health for /healthz; nil means always healthy.
	Ping func(ctx context.Context) error
	// APIRate and APIBurst bound mutation requests per user on /api.
	APIRate  float64
	APIBurst int
}

// Server wires services into HTTP handlers.
type Server struct {
	decks     service.DeckService
	cards     service.CardService
	pages     pagecache.Store
	verifier  *identity.Verifier
	log       *zap.Logger
	signInURL string
	signUpURL string
	ping      func(ctx context.Context) error
	apiRate   float64
	apiBurst  int
	tmpl      map[string]*template.Template
}

// New constructs a Server and parses the embedded templates.
func New(d Deps) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Pages == nil {
		d.Pages = pagecache.NewMemory(0)
	}
	if d.SignInURL == "" {
		d.SignInURL = "/sign-in"
	}
	if d.SignUpURL == "" {
		d.SignUpURL = "/sign-up"
	}
	if d.APIRate <= 0 {
		d.APIRate = 5
	}
	if d.APIBurst <= 0 {
		d.APIBurst = 10
	}
	return &Server{
		decks:     d.Decks,
		cards:     d.Cards,
		pages:     d.Pages,
		verifier:  d.Verifier,
		log:       d.Log,
		signInURL: d.SignInURL,
		signUpURL: d.SignUpURL,
		ping:      d.Ping,
		apiRate:   d.APIRate,
		apiBurst:  d.APIBurst,
		tmpl:      tmpl,
	}, nil
}

// Handler builds the router. ctx bounds background work such as limiter cleanup.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingHTTP(s.log), RecoverHTTP(s.log), Identify(s.verifier))

	r.NotFound(s.handleNotFound)
	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleHome)

	r.Group(func(r chi.Router) {
		r.Use(SameOrigin(rejectCrossSiteForm), RequirePageUser(s.signInURL))

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/decks/{deckID}", s.handleDeck)
		r.Get("/decks/{deckID}/study", s.handleStudy)
		r.Post("/decks/{deckID}/study", s.handleStudy)

		r.Post("/decks", s.handleCreateDeckForm)
		r.Post("/decks/{deckID}/edit", s.handleUpdateDeckForm)
		r.Post("/decks/{deckID}/delete", s.handleDeleteDeckForm)
		r.Post("/decks/{deckID}/cards", s.handleCreateCardForm)
		r.Post("/cards/{cardID}/edit", s.handleUpdateCardForm)
		r.Post("/cards/{cardID}/delete", s.handleDeleteCardForm)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(SameOrigin(rejectCrossSiteAPI), RequireAPIUser, RateLimit(ctx, s.apiRate, s.apiBurst))

		r.Post("/decks", s.handleAPICreateDeck)
		r.Put("/decks/{deckID}", s.handleAPIUpdateDeck)
		r.Delete("/decks/{deckID}", s.handleAPIDeleteDeck)
		r.Post("/cards", s.handleAPICreateCard)
		r.Put("/cards/{cardID}", s.handleAPIUpdateCard)
		r.Delete("/cards/{cardID}", s.handleAPIDeleteCard)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.log.Error("health check failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
