package httpserver

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/and161185/flashcards/internal/convert"
	"github.com/and161185/flashcards/internal/identity"
)

// RequestIDHeader carries the per-request id in responses.
const RequestIDHeader = "X-Request-Id"

// LoggingHTTP logs one line per request: metadata only, never bodies.
func LoggingHTTP(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.Must(uuid.NewV4()).String()
			w.Header().Set(RequestIDHeader, reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", reqID),
			)
		})
	}
}

// RecoverHTTP turns handler panics into 500 responses.
func RecoverHTTP(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", r.URL.Path),
					)
					http.Error(w, "internal", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Identify resolves the viewer once per request and stores it in context.
func Identify(v *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var viewer identity.Viewer = identity.SignedOut{}
			if v != nil {
				viewer = v.Resolve(r)
			}
			next.ServeHTTP(w, r.WithContext(identity.WithViewer(r.Context(), viewer)))
		})
	}
}

// RequirePageUser redirects signed-out page requests to the sign-in page, asking it to
// come back to the requested URL.
func RequirePageUser(signInURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := identity.UserID(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, signInRedirect(signInURL, r.URL.RequestURI()), http.StatusSeeOther)
		})
	}
}

func signInRedirect(signInURL, back string) string {
	u, err := url.Parse(signInURL)
	if err != nil {
		return signInURL
	}
	q := u.Query()
	q.Set("redirect_url", back)
	u.RawQuery = q.Encode()
	return u.String()
}

// RequireAPIUser answers signed-out API requests with 401 JSON.
func RequireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.UserID(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, convert.Failure("unauthenticated", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// crossSite reports whether an unsafe request was started by another site. Sec-Fetch-Site
// wins when the browser sends it; otherwise Origin must match Host. Requests carrying
// neither header come from non-browser clients and pass.
func crossSite(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	switch r.Header.Get("Sec-Fetch-Site") {
	case "same-origin", "none":
		return false
	case "":
	default:
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return true
	}
	return !strings.EqualFold(u.Host, r.Host)
}

// SameOrigin answers cross-site unsafe requests with reject instead of next.
func SameOrigin(reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if crossSite(r) {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectCrossSiteForm(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Cross-site request rejected", http.StatusForbidden)
}

func rejectCrossSiteAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusForbidden, convert.Failure("Cross-site request rejected", nil))
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter keeps one token bucket per user (or per IP for anonymous callers).
type userLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
}

func newUserLimiter(ctx context.Context, rps float64, burst int, idle time.Duration) *userLimiter {
	l := &userLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     idle,
	}
	go l.cleanup(ctx)
	return l
}

func (l *userLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (l *userLimiter) cleanup(ctx context.Context) {
	t := time.NewTicker(l.idle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.sweep(time.Now())
		}
	}
}

func (l *userLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, k)
		}
	}
}

// RateLimit bounds requests per signed-in user. The cleanup goroutine stops with ctx.
func RateLimit(ctx context.Context, rps float64, burst int) func(http.Handler) http.Handler {
	l := newUserLimiter(ctx, rps, burst, 10*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := identity.UserID(r.Context())
			if !ok {
				ip, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					ip = r.RemoteAddr
				}
				key = "ip:" + ip
			}
			if !l.get(key).Allow() {
				writeJSON(w, http.StatusTooManyRequests, convert.Failure("Too many requests", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
