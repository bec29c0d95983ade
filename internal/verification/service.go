package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/validate"
)

// Mailer is the outbound email channel the issuer dispatches codes through.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Service issues and verifies one-time codes against a shared Store.
type Service struct {
	store       *Store
	mailer      Mailer
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewService(store *Store, mailer Mailer, ttl time.Duration, maxAttempts int) *Service {
	return &Service{
		store:       store,
		mailer:      mailer,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

type issueEmail struct {
	Identity string `validate:"required,email"`
}

// Issue generates a fresh 6-digit code for identity, stores it with a
// ttl-bounded expiry (replacing any outstanding code for the same identity)
// and dispatches it over email. On dispatch failure the stored record is left
// in place and domain.ErrDispatchFailed is returned; the caller must treat
// the code as undelivered and re-issue.
func (s *Service) Issue(ctx context.Context, identity string) error {
	if err := validate.Struct(&issueEmail{Identity: identity}); err != nil {
		return fmt.Errorf("invalid identity %q: %w", identity, domain.ErrBadRequest)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	s.store.Put(Record{
		Identity:  identity,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	})

	subject := "Your AllInOne Verification Code"
	if err := s.mailer.SendEmail(identity, subject, renderCodeEmail(code, s.ttl)); err != nil {
		slog.Error("verification email dispatch failed", "identity", identity, "err", err)
		return fmt.Errorf("send verification email: %w", domain.ErrDispatchFailed)
	}
	slog.Info("verification code issued", "identity", identity, "expires_in", s.ttl)
	return nil
}

// Verify checks submitted against the outstanding code for identity.
// See Store.Consume for the full outcome table.
func (s *Service) Verify(ctx context.Context, identity, submitted string) error {
	if identity == "" {
		return fmt.Errorf("identity required: %w", domain.ErrBadRequest)
	}
	return s.store.Consume(identity, submitted, s.now(), s.maxAttempts)
}

// generateCode draws a uniform random 6-digit code, zero-padded, covering the
// full 000000–999999 space.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func renderCodeEmail(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome to AllInOne!</h2>
  <p style="font-size: 16px; color: #666;">Your verification code is:</p>
  <div style="background: #f5f5f5; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #333;">%s</span>
  </div>
  <p style="font-size: 14px; color: #999;">This code will expire in %d minutes.</p>
  <p style="font-size: 14px; color: #999;">If you didn't request this code, please ignore this email.</p>
</div>`, code, int(ttl.Minutes()))
}
