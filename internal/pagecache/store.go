package pagecache

import "context"

// Lookup is the result of Store.Get. Gen is the target's generation when it was read;
// pass it back to Set so a page rendered from data older than an invalidation is dropped.
type Lookup struct {
	Body []byte
	Hit  bool
	Gen  uint64
}

// Store keeps rendered page bodies keyed by user and target.
type Store interface {
	// Get returns the cached body, if any, and the current generation.
	Get(ctx context.Context, userID string, t Target) (Lookup, error)
	// Set stores body only if the target is still at generation gen.
	Set(ctx context.Context, userID string, t Target, gen uint64, body []byte) (stored bool, err error)
	// Invalidate drops the given targets for the user and advances their generations.
	Invalidate(ctx context.Context, userID string, targets ...Target) error
}

func key(userID string, t Target) string    { return "page:" + userID + ":" + string(t) }
func genKey(userID string, t Target) string { return "pagegen:" + userID + ":" + string(t) }
