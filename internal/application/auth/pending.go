package auth

import (
	"sync"
	"time"
)

// pendingChanges holds password hashes awaiting code verification, keyed by
// email. Records share the verification TTL so an expired code can never
// resurrect a stale pending change.
type pendingChanges struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]pendingChange
}

type pendingChange struct {
	hash      string
	expiresAt time.Time
}

func newPendingChanges(ttl time.Duration) *pendingChanges {
	return &pendingChanges{ttl: ttl, records: make(map[string]pendingChange)}
}

// put stores the hash, replacing any prior pending change for the email.
func (p *pendingChanges) put(email, hash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[email] = pendingChange{hash: hash, expiresAt: time.Now().Add(p.ttl)}
}

// take removes and returns the pending hash for email. Expired records
// report as absent.
func (p *pendingChanges) take(email string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.records[email]
	if !ok {
		return "", false
	}
	delete(p.records, email)
	if time.Now().After(rec.expiresAt) {
		return "", false
	}
	return rec.hash, true
}
