// Package verification implements the one-time code workflow behind email
// confirmation, password change and password recovery: a transient in-memory
// table of outstanding codes, a code issuer that dispatches over email, and a
// verifier enforcing expiry and single use.
package verification

import (
	"context"
	"sync"
	"time"
)

// Record is one outstanding verification code for an identity.
type Record struct {
	Identity  string
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

// Store is the process-wide table of outstanding codes, keyed by identity.
// A single coarse mutex guards the map. State does not survive restarts; an
// issued code dies with the process.
type Store struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Put stores rec, replacing any outstanding record for the same identity.
// There is never more than one live code per identity.
func (s *Store) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Identity] = rec
}

// Get returns the outstanding record for identity, if any.
func (s *Store) Get(identity string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	return rec, ok
}

// Delete removes the record for identity. Deleting a missing record is a no-op.
func (s *Store) Delete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identity)
}

// IncrementAttempts bumps the failed-attempt counter for identity and returns
// the new count. Returns 0 when no record exists (it was consumed or re-issued
// between the caller's read and this write).
func (s *Store) IncrementAttempts(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	if !ok {
		return 0
	}
	rec.Attempts++
	s.records[identity] = rec
	return rec.Attempts
}

// Len returns the number of outstanding records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// sweep removes every record whose expiry is at or before now.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for identity, rec := range s.records {
		if !now.Before(rec.ExpiresAt) {
			delete(s.records, identity)
			removed++
		}
	}
	return removed
}

// StartSweeper launches a background goroutine that purges expired records
// every interval until ctx is cancelled. Without it, codes that are never
// verified or re-issued would sit in memory for the life of the process.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				s.sweep(t)
			}
		}
	}()
}
