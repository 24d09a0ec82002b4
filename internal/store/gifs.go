package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/alexander-datskov/chat67/internal/models"
)

// GifRegistry remembers every GIF URL shared through send-gif, keyed by a
// ULID assigned at share time.
type GifRegistry struct {
	mu   sync.RWMutex
	gifs map[string]models.GifRecord
}

// NewGifRegistry returns an empty registry.
func NewGifRegistry() *GifRegistry {
	return &GifRegistry{gifs: make(map[string]models.GifRecord)}
}

// Add records a shared GIF and returns its assigned ID.
func (g *GifRegistry) Add(url, uploader string, now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	g.mu.Lock()
	g.gifs[id] = models.GifRecord{ID: id, URL: url, Uploader: uploader, SharedAt: now}
	g.mu.Unlock()
	return id
}

// Count returns the number of recorded GIFs.
func (g *GifRegistry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.gifs)
}
