package user

import (
	"context"
	"fmt"

	"github.com/storefront-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail  = "email"
	fieldName   = "name"
	fieldRole   = "role"
	fieldEnable = "enable"
)

type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type sessionStore interface {
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type service struct {
	repo        userStore
	sessionRepo sessionStore
}

func NewService(repo userStore, sessionRepo sessionStore) Service {
	return &service{repo: repo, sessionRepo: sessionRepo}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Email != nil {
		if existing, err := s.repo.GetByEmail(ctx, *req.Email); err == nil && existing.UserID != userID {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		updates[fieldEmail] = *req.Email
	}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleUser:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
		}
	}
	if req.Enable != nil {
		updates[fieldEnable] = *req.Enable
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// Delete soft-deletes the user and revokes every open session.
func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByUser(ctx, userID)
}
