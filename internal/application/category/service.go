package category

import (
	"context"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/id"
)

type Service interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Create(ctx context.Context, req domain.CategoryRequest) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, req domain.CategoryRequest) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

type categoryStore interface {
	Scan(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Put(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, categoryID string) error
}

type service struct {
	repo categoryStore
}

func NewService(repo categoryStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Create(ctx context.Context, req domain.CategoryRequest) (*domain.Category, error) {
	now := time.Now().UTC()
	c := &domain.Category{
		CategoryID: id.New(),
		Name:       req.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, categoryID string, req domain.CategoryRequest) (*domain.Category, error) {
	if err := s.repo.Update(ctx, categoryID, map[string]interface{}{"name": req.Name}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, categoryID)
}

// Delete removes the category row only. Products keep their category_id;
// the storefront renders them uncategorised, matching the original behaviour
// of no cross-entity cascade.
func (s *service) Delete(ctx context.Context, categoryID string) error {
	return s.repo.HardDelete(ctx, categoryID)
}
