// Package identity resolves who is making a request from the identity provider's
// session token. It never signs users in; it only verifies what the provider issued.
package identity

import "context"

// Viewer is either SignedIn or SignedOut.
type Viewer interface{ isViewer() }

// SignedIn is a request carrying a valid provider session.
type SignedIn struct{ UserID string }

// SignedOut is a request without a (valid) provider session.
type SignedOut struct{}

func (SignedIn) isViewer()  {}
func (SignedOut) isViewer() {}

type ctxKey string

const viewerKey ctxKey = "fc.viewer"

// WithViewer stores the resolved viewer in context.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerFrom fetches the viewer from context; SignedOut when none was stored.
func ViewerFrom(ctx context.Context) Viewer {
	v, ok := ctx.Value(viewerKey).(Viewer)
	if !ok || v == nil {
		return SignedOut{}
	}
	return v
}

// UserID returns the signed-in user's id.
func UserID(ctx context.Context) (string, bool) {
	if s, ok := ViewerFrom(ctx).(SignedIn); ok && s.UserID != "" {
		return s.UserID, true
	}
	return "", false
}
