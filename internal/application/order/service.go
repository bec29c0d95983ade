package order

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/id"
)

type Service interface {
	Checkout(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListAll(ctx context.Context, limit int, cursor string) ([]domain.Order, string, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Order, string, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
}

type orderPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *domain.Order) error
}

type service struct {
	repo         orderStore
	productRepo  productStore
	publisher    orderPublisher
	paymentDelay time.Duration
}

// NewService builds the order service. publisher may be nil when no SNS topic
// is configured.
func NewService(repo orderStore, productRepo productStore, publisher orderPublisher, paymentDelay time.Duration) Service {
	return &service{
		repo:         repo,
		productRepo:  productRepo,
		publisher:    publisher,
		paymentDelay: paymentDelay,
	}
}

// Checkout prices every line from the products table (never trusting client
// prices), simulates payment capture, persists the order and best-effort
// decrements stock. Stock decrement and order creation are intentionally not
// transactional.
func (s *service) Checkout(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order has no items: %w", domain.ErrBadRequest)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	total := 0.0
	for _, line := range req.Items {
		p, err := s.productRepo.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrBadRequest)
		}
		if !p.Enable {
			return nil, fmt.Errorf("product %s is unavailable: %w", line.ProductID, domain.ErrBadRequest)
		}
		if p.Stock < line.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s: %w", p.Name, domain.ErrConflict)
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
		})
		total += p.Price * float64(line.Quantity)
	}
	total = math.Round(total*100) / 100

	// No payment gateway exists; capture is a fixed delay, as in the
	// original storefront.
	if s.paymentDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.paymentDelay):
		}
	}

	now := time.Now().UTC()
	o := &domain.Order{
		OrderID:   id.New(),
		UserID:    userID,
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatusPending,
		Shipping:  req.Shipping,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			slog.Warn("could not decrement stock", "order_id", o.OrderID, "product_id", item.ProductID, "err", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, o); err != nil {
			slog.Warn("could not publish order event", "order_id", o.OrderID, "err", err)
		}
	}
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

func (s *service) ListAll(ctx context.Context, limit int, cursor string) ([]domain.Order, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusCompleted, domain.OrderStatusCancelled:
	default:
		return nil, fmt.Errorf("invalid status %q: %w", status, domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orderID)
}
