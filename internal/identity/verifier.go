package identity

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the identity provider sets for browser sessions.
const CookieName = "__session"

var (
	// ErrNoToken indicates the request carries no session token.
	ErrNoToken = errors.New("identity: no session token")
	// ErrInvalidToken indicates a token that failed verification.
	ErrInvalidToken = errors.New("identity: invalid session token")
)

// Verifier checks HS256 session tokens issued by the identity provider.
type Verifier struct {
	key    []byte
	issuer string
	leeway time.Duration
}

// NewVerifier constructs a Verifier. An empty issuer disables the issuer check.
func NewVerifier(key []byte, issuer string) *Verifier {
	return &Verifier{key: key, issuer: issuer, leeway: 30 * time.Second}
}

// Verify validates a token and returns its subject, the provider's user id.
func (v *Verifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Resolve turns a request into a Viewer. Any verification failure is SignedOut.
func (v *Verifier) Resolve(r *http.Request) Viewer {
	uid, err := v.Verify(TokenFromRequest(r))
	if err != nil {
		return SignedOut{}
	}
	return SignedIn{UserID: uid}
}

// TokenFromRequest extracts the session token from the cookie or a Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) >= 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
