package pagecache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	body    []byte
	expires time.Time
}

// Memory is an in-process Store with a fixed TTL.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	gens    map[string]uint64
	now     func() time.Time
}

// NewMemory constructs an in-process store. ttl <= 0 means entries never expire.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: map[string]memEntry{}, gens: map[string]uint64{}, now: time.Now}
}

// Get returns a copy of a live entry.
func (m *Memory) Get(_ context.Context, userID string, t Target) (Lookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(userID, t)
	l := Lookup{Gen: m.gens[k]}
	e, ok := m.entries[k]
	if !ok {
		return l, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, k)
		return l, nil
	}
	l.Body = append([]byte(nil), e.body...)
	l.Hit = true
	return l, nil
}

// Set stores a copy of body unless the target was invalidated after gen was read.
func (m *Memory) Set(_ context.Context, userID string, t Target, gen uint64, body []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(userID, t)
	if m.gens[k] != gen {
		return false, nil
	}
	e := memEntry{body: append([]byte(nil), body...)}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[k] = e
	return true, nil
}

// Invalidate removes entries and bumps their generations.
func (m *Memory) Invalidate(_ context.Context, userID string, targets ...Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range targets {
		k := key(userID, t)
		delete(m.entries, k)
		m.gens[k]++
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
