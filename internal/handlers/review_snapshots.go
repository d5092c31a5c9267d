package handlers

import (
	"sync"
	"time"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
)

const (
	reviewSnapshotTTL        = 10 * time.Minute
	reviewSnapshotMaxEntries = 2048
)

// reviewSnapshots keeps the active review list fetched by a visitor's testimonial page so that
// pager clicks slice the same list instead of asking the backend again.
type reviewSnapshots struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]reviewSnapshot
}

type reviewSnapshot struct {
	list    []reviews.Review
	expires time.Time
}

func newReviewSnapshots(now func() time.Time) *reviewSnapshots {
	return &reviewSnapshots{
		ttl:   reviewSnapshotTTL,
		now:   now,
		items: make(map[string]reviewSnapshot),
	}
}

func (s *reviewSnapshots) get(key string) ([]reviews.Review, bool) {
	if key == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expires) {
		delete(s.items, key)
		return nil, false
	}
	return entry.list, true
}

func (s *reviewSnapshots) put(key string, list []reviews.Review) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.items) >= reviewSnapshotMaxEntries {
		for k, entry := range s.items {
			if now.After(entry.expires) {
				delete(s.items, k)
			}
		}
		// still full: drop an arbitrary entry
		for k := range s.items {
			if len(s.items) < reviewSnapshotMaxEntries {
				break
			}
			delete(s.items, k)
		}
	}
	s.items[key] = reviewSnapshot{
		list:    append([]reviews.Review(nil), list...),
		expires: now.Add(s.ttl),
	}
}
