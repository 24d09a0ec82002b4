package store

import (
	"sync"
	"time"

	"github.com/alexander-datskov/chat67/internal/models"
)

// ProfileStore keeps per-user cosmetic preferences. Unknown theme or layout
// values fall back to the defaults instead of erroring.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

// NewProfileStore returns an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]models.Profile)}
}

// Init creates a profile with defaults on a user's first login. Existing
// profiles are left alone so preferences survive re-login.
func (p *ProfileStore) Init(username, avatar string, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.profiles[username]; ok {
		return
	}
	p.profiles[username] = models.Profile{
		Avatar: avatar,
		Theme:  models.DefaultTheme,
		Layout: models.DefaultLayout,
		Joined: now,
	}
}

// SetTheme stores a theme preference, falling back to the default for
// unknown names.
func (p *ProfileStore) SetTheme(username, theme string) {
	if !models.Themes[theme] {
		theme = models.DefaultTheme
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if prof, ok := p.profiles[username]; ok {
		prof.Theme = theme
		p.profiles[username] = prof
	}
}

// SetLayout stores a layout preference, falling back to the default for
// unknown names.
func (p *ProfileStore) SetLayout(username, layout string) {
	if !models.Layouts[layout] {
		layout = models.DefaultLayout
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if prof, ok := p.profiles[username]; ok {
		prof.Layout = layout
		p.profiles[username] = prof
	}
}

// Get returns a user's profile.
func (p *ProfileStore) Get(username string) (models.Profile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prof, ok := p.profiles[username]
	return prof, ok
}
