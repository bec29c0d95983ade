// Package auth orchestrates the verification-gated flows: signup/login,
// in-account password change and password recovery. The one-time code
// mechanics live in internal/verification; this layer adds the
// post-verification side effects each flow needs.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/storefront-api/internal/domain"
	googleinfra "github.com/storefront-api/internal/infrastructure/google"
	"github.com/storefront-api/internal/pkg/id"
	pkgtoken "github.com/storefront-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ConfirmEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type LoginResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error)
	ResendCode(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, req ConfirmEmailRequest) (*LoginResult, error)

	RequestPasswordChange(ctx context.Context, userID, newPassword string) error
	ConfirmPasswordChange(ctx context.Context, userID, code string) error

	RequestPasswordRecovery(ctx context.Context, email string) error
	ConfirmPasswordRecovery(ctx context.Context, email, code, newPassword string) error
}

// codeService is the issue/verify primitive from internal/verification.
type codeService interface {
	Issue(ctx context.Context, identity string) error
	Verify(ctx context.Context, identity, submitted string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*googleinfra.Payload, error)
}

type service struct {
	codes           codeService
	userRepo        userStore
	sessionRepo     sessionStore
	jwtProvider     jwtSigner
	google          googleVerifier
	pending         *pendingChanges
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	Codes           codeService
	UserRepo        userStore
	SessionRepo     sessionStore
	JWTProvider     jwtSigner
	Google          googleVerifier
	PendingTTL      time.Duration
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		codes:           deps.Codes,
		userRepo:        deps.UserRepo,
		sessionRepo:     deps.SessionRepo,
		jwtProvider:     deps.JWTProvider,
		google:          deps.Google,
		pending:         newPendingChanges(deps.PendingTTL),
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

// Register creates the account unconfirmed and issues the first code. The
// session is withheld until ConfirmEmail succeeds.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		AuthProvider: "local",
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	if err := s.codes.Issue(ctx, u.Email); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.EmailConfirmed {
		// Credentials are good but the gate is still closed: re-issue a code
		// and hold the caller in the pending state.
		if err := s.codes.Issue(ctx, u.Email); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("email not confirmed: %w", domain.ErrVerificationPending)
	}
	return s.mintSession(ctx, u)
}

func (s *service) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google sign-in is not configured: %w", domain.ErrBadRequest)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByEmail(ctx, payload.Email)
	if err != nil {
		// First Google sign-in provisions the account. Google already
		// verified the address, so the code gate is skipped.
		now := time.Now().UTC()
		u = &domain.User{
			UserID:         id.New(),
			Email:          payload.Email,
			Name:           payload.Name,
			Role:           domain.RoleUser,
			EmailConfirmed: payload.EmailVerified,
			AuthProvider:   "google",
			GoogleSub:      payload.Sub,
			Enable:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.userRepo.Put(ctx, u); err != nil {
			return nil, err
		}
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return s.mintSession(ctx, u)
}

// ResendCode re-issues a code for an unconfirmed account. Re-issuing
// overwrites the outstanding code, so this is always safe to call.
func (s *service) ResendCode(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if u.EmailConfirmed {
		return fmt.Errorf("email already confirmed: %w", domain.ErrConflict)
	}
	return s.codes.Issue(ctx, u.Email)
}

func (s *service) ConfirmEmail(ctx context.Context, req ConfirmEmailRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.codes.Verify(ctx, req.Email, req.Code); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"email_confirmed": true}); err != nil {
		return nil, err
	}
	u.EmailConfirmed = true
	return s.mintSession(ctx, u)
}

// RequestPasswordChange hashes the new password immediately and parks it in a
// short-lived server-side pending record; only the code travels to the user.
func (s *service) RequestPasswordChange(ctx context.Context, userID, newPassword string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.pending.put(u.Email, string(hash))
	return s.codes.Issue(ctx, u.Email)
}

func (s *service) ConfirmPasswordChange(ctx context.Context, userID, code string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.codes.Verify(ctx, u.Email, code); err != nil {
		return err
	}
	hash, ok := s.pending.take(u.Email)
	if !ok {
		return fmt.Errorf("no pending password change: %w", domain.ErrNotFound)
	}
	return s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash})
}

// RequestPasswordRecovery issues a code when the account exists. The response
// is identical either way so the endpoint can't be used to probe for
// registered addresses.
func (s *service) RequestPasswordRecovery(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("password recovery requested for unknown email", "email", email)
		return nil
	}
	return s.codes.Issue(ctx, u.Email)
}

func (s *service) ConfirmPasswordRecovery(ctx context.Context, email, code, newPassword string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.codes.Verify(ctx, u.Email, code); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *service) mintSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}
