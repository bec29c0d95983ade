package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification-specific sentinels. Each maps to a distinct failure the UI
// surfaces differently: expired and too-many-attempts require re-issuing a
// code, a mismatch allows another try, a dispatch failure means the email
// never left the building.
var (
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeMismatch    = errors.New("invalid code")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrDispatchFailed  = errors.New("dispatch failed")
)

// ErrVerificationPending marks an account that authenticated correctly but
// has not yet confirmed its email; the session is withheld until a code
// verifies.
var ErrVerificationPending = errors.New("verification pending")

