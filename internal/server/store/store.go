package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"leafscan/internal/report"
	"leafscan/internal/result"
)

// Entry is one rendered analysis kept for its report link.
type Entry struct {
	ID        string
	Result    result.Result
	Preview   *report.Image
	CreatedAt time.Time
	LastRead  time.Time
}

// Store is an in-memory result store with expiry and LRU eviction.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// New creates a store holding at most maxSize entries for ttl each.
func New(maxSize int, ttl time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores a result and returns its id.
func (s *Store) Put(res result.Result, preview *report.Image) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	// make room first so the new entry never competes for eviction
	if len(s.entries) >= s.maxSize {
		s.evictLocked(len(s.entries) - s.maxSize + 1)
	}

	id := uuid.NewString()
	s.entries[id] = &Entry{
		ID:        id,
		Result:    res,
		Preview:   preview,
		CreatedAt: now,
		LastRead:  now,
	}
	return id
}

// Get returns a live entry and refreshes its read time.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	now := s.now()
	if now.Sub(entry.CreatedAt) > s.ttl {
		delete(s.entries, id)
		return Entry{}, false
	}
	entry.LastRead = now
	return *entry, true
}

// Delete removes an entry.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, entry := range s.entries {
		if now.Sub(entry.CreatedAt) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// evictLocked removes the count least recently read entries.
func (s *Store) evictLocked(count int) {
	for ; count > 0; count-- {
		var oldest *Entry
		for _, entry := range s.entries {
			if oldest == nil || entry.LastRead.Before(oldest.LastRead) {
				oldest = entry
			}
		}
		if oldest == nil {
			return
		}
		delete(s.entries, oldest.ID)
	}
}
