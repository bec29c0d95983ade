package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/id"
)

// imageURLTTL bounds how long a presigned product image link stays valid.
const imageURLTTL = time.Hour

type Service interface {
	List(ctx context.Context, filter domain.ProductFilter, limit int, cursor string) ([]domain.Product, string, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
	UploadImage(ctx context.Context, productID, filename string, r io.Reader, contentType string) (*domain.Product, error)
	UploadImageBase64(ctx context.Context, productID, filename, b64Data string) (*domain.Product, error)
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	QueryByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Product, string, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, productID string) error
}

type categoryStore interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo         productStore
	categoryRepo categoryStore
	images       imageStore
}

func NewService(repo productStore, categoryRepo categoryStore, images imageStore) Service {
	return &service{repo: repo, categoryRepo: categoryRepo, images: images}
}

func (s *service) List(ctx context.Context, filter domain.ProductFilter, limit int, cursor string) ([]domain.Product, string, error) {
	if limit < 1 {
		limit = 50
	}

	var products []domain.Product
	var nextCursor string
	var err error
	if filter.CategoryID != "" {
		// The GSI already narrows to one category; filters below trim further.
		products, err = s.repo.QueryByCategory(ctx, filter.CategoryID)
	} else {
		products, nextCursor, err = s.repo.ScanPage(ctx, int32(limit), cursor)
	}
	if err != nil {
		return nil, "", err
	}

	filtered := products[:0]
	for _, p := range products {
		if filter.InStockOnly && !p.InStock() {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		filtered = append(filtered, p)
	}
	for i := range filtered {
		s.resolveImageURLs(ctx, &filtered[i])
	}
	return filtered, nextCursor, nil
}

func (s *service) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Enable {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	s.resolveImageURLs(ctx, p)
	return p, nil
}

func (s *service) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if _, err := s.categoryRepo.Get(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("unknown category %q: %w", req.CategoryID, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	p := &domain.Product{
		ProductID:   id.New(),
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.Get(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("unknown category %q: %w", *req.CategoryID, domain.ErrBadRequest)
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Sizes != nil {
		updates["sizes"] = *req.Sizes
	}
	if req.Enable != nil {
		updates["enable"] = *req.Enable
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, productID)
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, productID)
}

func (s *service) Delete(ctx context.Context, productID string) error {
	return s.repo.SoftDelete(ctx, productID)
}

func (s *service) UploadImage(ctx context.Context, productID, filename string, r io.Reader, contentType string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("products/%s/%s-%s", productID, id.New(), filename)
	if _, err := s.images.Upload(ctx, key, r, contentType); err != nil {
		return nil, err
	}
	return s.appendImageKey(ctx, p, key)
}

func (s *service) UploadImageBase64(ctx context.Context, productID, filename, b64Data string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("products/%s/%s-%s", productID, id.New(), filename)
	if _, err := s.images.UploadBase64(ctx, key, b64Data); err != nil {
		return nil, err
	}
	return s.appendImageKey(ctx, p, key)
}

func (s *service) appendImageKey(ctx context.Context, p *domain.Product, key string) (*domain.Product, error) {
	keys := append(p.ImageKeys, key)
	if err := s.repo.Update(ctx, p.ProductID, map[string]interface{}{"image_keys": keys}); err != nil {
		return nil, err
	}
	p.ImageKeys = keys
	s.resolveImageURLs(ctx, p)
	return p, nil
}

// resolveImageURLs fills ImageURLs with presigned links. A presign failure
// only drops that image from the response.
func (s *service) resolveImageURLs(ctx context.Context, p *domain.Product) {
	if s.images == nil || len(p.ImageKeys) == 0 {
		return
	}
	urls := make([]string, 0, len(p.ImageKeys))
	for _, key := range p.ImageKeys {
		u, err := s.images.PresignedURL(ctx, key, imageURLTTL)
		if err != nil {
			slog.Warn("could not presign product image", "product_id", p.ProductID, "key", key, "err", err)
			continue
		}
		urls = append(urls, u)
	}
	p.ImageURLs = urls
}
