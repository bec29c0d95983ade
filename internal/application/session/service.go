package session

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront-api/internal/domain"
	pkgtoken "github.com/storefront-api/internal/pkg/token"
)

type Service interface {
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	sessionRepo     sessionStore
	userRepo        userStore
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

func NewService(sessionRepo sessionStore, userRepo userStore, jwtProvider jwtSigner, refreshTokenDur time.Duration) Service {
	return &service{
		sessionRepo:     sessionRepo,
		userRepo:        userRepo,
		jwtProvider:     jwtProvider,
		refreshTokenDur: refreshTokenDur,
	}
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if !sess.Enable {
		return "", "", fmt.Errorf("session revoked: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}
