package store

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/alexander-datskov/chat67/internal/models"
)

// RoomLogCapacity bounds each room's ring buffer. Once full, the oldest
// message is evicted on insert; a client that stalls past a full buffer's
// worth of traffic silently loses the evicted history.
const RoomLogCapacity = 500

// NewMessageID returns a fresh 16-hex-char message ID.
func NewMessageID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("message id entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// roomLog is one room's bounded message window plus its cumulative append
// counter. The counter keeps growing after eviction; the window does not.
type roomLog struct {
	entries []models.Message
	total   uint64
}

// deletionOverlay shadows deleted message IDs under its own lock so that
// deletes never contend with appends or reads on the log lock.
type deletionOverlay struct {
	mu      sync.RWMutex
	deleted map[string]struct{}
}

func (o *deletionOverlay) mark(id string) {
	o.mu.Lock()
	o.deleted[id] = struct{}{}
	o.mu.Unlock()
}

func (o *deletionOverlay) isDeleted(id string) bool {
	o.mu.RLock()
	_, ok := o.deleted[id]
	o.mu.RUnlock()
	return ok
}

// MessageStore holds every room's bounded, append-only log. Offsets handed
// to clients are positions in the current buffer window; the per-room total
// is the count of all messages ever appended.
type MessageStore struct {
	mu      sync.RWMutex
	logs    map[string]*roomLog
	overlay deletionOverlay
}

// NewMessageStore returns an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		logs:    make(map[string]*roomLog),
		overlay: deletionOverlay{deleted: make(map[string]struct{})},
	}
}

func (s *MessageStore) log(roomID string) *roomLog {
	if l, ok := s.logs[roomID]; ok {
		return l
	}
	l := &roomLog{}
	s.logs[roomID] = l
	return l
}

// Append stores a message in the room's ring buffer and returns the room's
// new cumulative total. Append order within a room is the offset order.
func (s *MessageStore) Append(roomID string, msg models.Message) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.log(roomID)
	if len(l.entries) >= RoomLogCapacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, msg)
	l.total++
	return l.total
}

// ReadSince returns the messages at or past position after in the current
// buffer window, with the deletion overlay resolved, plus the window length
// for the client to send back on its next poll. A cursor past the window
// yields an empty batch; no gap detection is attempted after eviction.
func (s *MessageStore) ReadSince(roomID string, after int) ([]models.VisibleMessage, int) {
	s.mu.RLock()
	l, ok := s.logs[roomID]
	var window []models.Message
	var n int
	if ok {
		n = len(l.entries)
		if after < 0 {
			after = 0
		}
		if after < n {
			window = make([]models.Message, n-after)
			copy(window, l.entries[after:])
		}
	}
	s.mu.RUnlock()

	out := make([]models.VisibleMessage, 0, len(window))
	for _, msg := range window {
		vm := models.VisibleMessage{Message: msg}
		if s.overlay.isDeleted(msg.ID) {
			vm.Deleted = true
			vm.Text = models.DeletedPlaceholder
			vm.GifURL = ""
		}
		out = append(out, vm)
	}
	return out, n
}

// Lookup finds a message by ID in one room's current window.
func (s *MessageStore) Lookup(roomID, messageID string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logs[roomID]
	if !ok {
		return models.Message{}, false
	}
	for _, msg := range l.entries {
		if msg.ID == messageID {
			return msg, true
		}
	}
	return models.Message{}, false
}

// SoftDelete marks a message deleted if it is still present in the room's
// window. Ownership checks belong to the caller.
func (s *MessageStore) SoftDelete(roomID, messageID string) bool {
	if _, ok := s.Lookup(roomID, messageID); !ok {
		return false
	}
	s.overlay.mark(messageID)
	return true
}

// DeleteAllByAuthor soft-deletes every message by author still in the
// room's window and returns how many were marked.
func (s *MessageStore) DeleteAllByAuthor(roomID, author string) int {
	s.mu.RLock()
	var ids []string
	if l, ok := s.logs[roomID]; ok {
		for _, msg := range l.entries {
			if msg.User == author {
				ids = append(ids, msg.ID)
			}
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.overlay.mark(id)
	}
	return len(ids)
}

// ClearRoom physically empties a room's buffer. The cumulative total is
// untouched so offsets stay monotonic.
func (s *MessageStore) ClearRoom(roomID string) {
	s.mu.Lock()
	if l, ok := s.logs[roomID]; ok {
		l.entries = nil
	}
	s.mu.Unlock()
}

// ExportAll snapshots every room's current window, oldest first, with the
// deletion overlay applied.
func (s *MessageStore) ExportAll() map[string][]models.VisibleMessage {
	s.mu.RLock()
	snapshot := make(map[string][]models.Message, len(s.logs))
	for roomID, l := range s.logs {
		window := make([]models.Message, len(l.entries))
		copy(window, l.entries)
		snapshot[roomID] = window
	}
	s.mu.RUnlock()

	out := make(map[string][]models.VisibleMessage, len(snapshot))
	for roomID, window := range snapshot {
		msgs := make([]models.VisibleMessage, 0, len(window))
		for _, msg := range window {
			vm := models.VisibleMessage{Message: msg}
			if s.overlay.isDeleted(msg.ID) {
				vm.Deleted = true
				vm.Text = models.DeletedPlaceholder
				vm.GifURL = ""
			}
			msgs = append(msgs, vm)
		}
		out[roomID] = msgs
	}
	return out
}

// Total returns the cumulative number of messages ever appended to a room.
func (s *MessageStore) Total(roomID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.logs[roomID]; ok {
		return l.total
	}
	return 0
}

// StoredCount returns the number of messages currently buffered across all
// rooms, for debug stats.
func (s *MessageStore) StoredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.logs {
		n += len(l.entries)
	}
	return n
}
