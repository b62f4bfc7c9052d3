// Package blob keeps downloaded videos in memory behind revocable handles,
// the server-side counterpart of a browser object URL.
package blob

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultURLPrefix mimics browser object URLs for callers without an HTTP surface.
const DefaultURLPrefix = "blob:masterpiece/"

// Handle references bytes held by a Registry. It stays valid until revoked.
type Handle struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	MIMEType  string    `json:"mime_type"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// IsZero reports whether h is the empty handle returned alongside errors.
func (h Handle) IsZero() bool {
	return h.ID == ""
}

type entry struct {
	handle Handle
	data   []byte
}

// Registry owns the bytes behind every live handle.
type Registry struct {
	prefix string

	mu    sync.RWMutex
	items map[string]entry
}

// NewRegistry builds a registry whose handle URLs are prefix + id.
func NewRegistry(prefix string) *Registry {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultURLPrefix
	}
	return &Registry{prefix: prefix, items: make(map[string]entry)}
}

// Register stores data and returns a fresh handle. The registry keeps its
// own copy of data.
func (r *Registry) Register(data []byte, mime string) Handle {
	id := uuid.NewString()
	h := Handle{
		ID:        id,
		URL:       r.prefix + id,
		MIMEType:  mime,
		Size:      len(data),
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.items[id] = entry{handle: h, data: append([]byte(nil), data...)}
	r.mu.Unlock()
	return h
}

// Open returns the bytes behind id. Callers must not modify the slice.
func (r *Registry) Open(id string) ([]byte, Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, Handle{}, false
	}
	return e.data, e.handle, true
}

// Revoke releases the bytes behind id. Revoking twice is a no-op.
func (r *Registry) Revoke(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

// RevokeAll releases every handle and returns how many were live.
func (r *Registry) RevokeAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = make(map[string]entry)
	return n
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
