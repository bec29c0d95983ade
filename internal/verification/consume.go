package verification

import (
	"time"

	"github.com/storefront-api/internal/domain"
)

// Consume runs a verification attempt against the outstanding record for
// identity, entirely under the store lock so a concurrent re-issue for the
// same identity can never interleave with the read-check-delete sequence.
//
// Outcomes:
//   - no record            → domain.ErrNotFound
//   - past expiry          → domain.ErrCodeExpired, record deleted
//   - wrong code           → domain.ErrCodeMismatch, record kept for retry;
//     the maxAttempts-th miss deletes it and returns domain.ErrTooManyAttempts
//   - match                → nil, record deleted (single use)
func (s *Store) Consume(identity, submitted string, now time.Time, maxAttempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok {
		return domain.ErrNotFound
	}
	if !now.Before(rec.ExpiresAt) {
		delete(s.records, identity)
		return domain.ErrCodeExpired
	}
	if rec.Code != submitted {
		rec.Attempts++
		if maxAttempts > 0 && rec.Attempts >= maxAttempts {
			delete(s.records, identity)
			return domain.ErrTooManyAttempts
		}
		s.records[identity] = rec
		return domain.ErrCodeMismatch
	}
	delete(s.records, identity)
	return nil
}
