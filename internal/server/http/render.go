package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/pagecache"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "dashboard", "deck", "study", "notfound", "error"}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006") },
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// page is the data every template receives.
type page struct {
	Title     string
	SignedIn  bool
	SignInURL string
	Flash     string
	Error     string
	Data      any
}

func (s *Server) newPage(r *http.Request, title string, data any) page {
	_, signedIn := identity.ViewerFrom(r.Context()).(identity.SignedIn)
	return page{Title: title, SignedIn: signedIn, SignInURL: s.signInURL, Data: data}
}

func (s *Server) render(name string, p page) ([]byte, error) {
	t, ok := s.tmpl[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// cacheSlot is where a rendered page may be stored. The zero value stores nothing.
type cacheSlot struct {
	userID string
	target pagecache.Target
	gen    uint64
}

// servePage renders p and writes it. A non-zero slot also caches the body.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, name string, p page, slot cacheSlot) {
	body, err := s.render(name, p)
	if err != nil {
		s.serveError(w, r, err)
		return
	}
	if slot.target != "" {
		stored, err := s.pages.Set(r.Context(), slot.userID, slot.target, slot.gen, body)
		if err != nil {
			s.log.Warn("page cache set failed", zap.String("target", string(slot.target)), zap.Error(err))
		} else if !stored {
			s.log.Debug("page cache set skipped after invalidation", zap.String("target", string(slot.target)))
		}
		w.Header().Set("X-Page-Cache", "miss")
	}
	writeHTML(w, http.StatusOK, body)
}

// cacheTarget returns target when the request may be served from cache, "" otherwise.
// Only plain GETs are cacheable; query strings carry one-off banners.
func cacheTarget(r *http.Request, target pagecache.Target) pagecache.Target {
	if r.Method != http.MethodGet || r.URL.RawQuery != "" {
		return ""
	}
	return target
}

// serveCached writes a cached page and reports whether it did. On a miss it returns
// the slot to store the freshly rendered page in; it must be called before loading data.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, userID string, target pagecache.Target) (cacheSlot, bool) {
	if target == "" {
		return cacheSlot{}, false
	}
	l, err := s.pages.Get(r.Context(), userID, target)
	if err != nil {
		s.log.Warn("page cache get failed", zap.String("target", string(target)), zap.Error(err))
		return cacheSlot{}, false
	}
	if !l.Hit {
		return cacheSlot{userID: userID, target: target, gen: l.Gen}, false
	}
	w.Header().Set("X-Page-Cache", "hit")
	writeHTML(w, http.StatusOK, l.Body)
	return cacheSlot{}, true
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	body, err := s.render("notfound", s.newPage(r, "Not Found", nil))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, body)
}

func (s *Server) serveError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	body, rerr := s.render("error", s.newPage(r, "Error", nil))
	if rerr != nil {
		http.Error(w, "internal", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusInternalServerError, body)
}
