package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) Put(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderStore) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *mockOrderStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Order, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.Order), args.String(1), args.Error(2)
}
func (m *mockOrderStore) UpdateStatus(ctx context.Context, orderID, status string) error {
	return m.Called(ctx, orderID, status).Error(0)
}

type mockProductStore struct{ mock.Mock }

func (m *mockProductStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProductStore) DecrementStock(ctx context.Context, productID string, qty int) error {
	return m.Called(ctx, productID, qty).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

// --- Checkout ---

func TestCheckout_NoItems(t *testing.T) {
	svc := NewService(&mockOrderStore{}, &mockProductStore{}, nil, 0)
	_, err := svc.Checkout(context.Background(), "u1", domain.CheckoutRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCheckout_UnknownProduct(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockOrderStore{}, ps, nil, 0)
	_, err := svc.Checkout(context.Background(), "u1", domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "ghost", Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCheckout_InsufficientStock(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{
		ProductID: "p1", Name: "Hoodie", Price: 30, Stock: 1, Enable: true,
	}, nil)

	svc := NewService(&mockOrderStore{}, ps, nil, 0)
	_, err := svc.Checkout(context.Background(), "u1", domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "p1", Quantity: 5}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCheckout_PricesFromCatalogueNotClient(t *testing.T) {
	os := &mockOrderStore{}
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{
		ProductID: "p1", Name: "Hoodie", Price: 29.99, Stock: 10, Enable: true,
	}, nil)
	ps.On("Get", mock.Anything, "p2").Return(&domain.Product{
		ProductID: "p2", Name: "Cap", Price: 9.99, Stock: 10, Enable: true,
	}, nil)
	ps.On("DecrementStock", mock.Anything, "p1", 2).Return(nil)
	ps.On("DecrementStock", mock.Anything, "p2", 1).Return(nil)
	os.On("Put", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Total == 69.97 && o.Status == domain.OrderStatusPending && o.UserID == "u1"
	})).Return(nil)

	svc := NewService(os, ps, nil, 0)
	o, err := svc.Checkout(context.Background(), "u1", domain.CheckoutRequest{
		Items: []domain.CheckoutItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 69.97, o.Total)
	assert.Equal(t, "Hoodie", o.Items[0].Name)
	assert.Equal(t, 29.99, o.Items[0].Price)
	os.AssertExpectations(t)
	ps.AssertExpectations(t)
}

func TestCheckout_StockDecrementFailureDoesNotFailOrder(t *testing.T) {
	os := &mockOrderStore{}
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{
		ProductID: "p1", Name: "Hoodie", Price: 30, Stock: 10, Enable: true,
	}, nil)
	ps.On("DecrementStock", mock.Anything, "p1", 1).Return(errors.New("conditional check failed"))
	os.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(os, ps, nil, 0)
	o, err := svc.Checkout(context.Background(), "u1", domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "p1", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
}

func TestCheckout_PublishesOrderPlaced(t *testing.T) {
	os := &mockOrderStore{}
	ps := &mockProductStore{}
	pub := &mockPublisher{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{
		ProductID: "p1", Name: "Hoodie", Price: 30, Stock: 10, Enable: true,
	}, nil)
	ps.On("DecrementStock", mock.Anything, "p1", 1).Return(nil)
	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishOrderPlaced", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	svc := NewService(os, ps, pub, 0)
	_, err := svc.Checkout(context.Background(), "u1", domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "p1", Quantity: 1}},
	})

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestCheckout_CancelledContextDuringPaymentDelay(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{
		ProductID: "p1", Name: "Hoodie", Price: 30, Stock: 10, Enable: true,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&mockOrderStore{}, ps, nil, 5*time.Second)
	_, err := svc.Checkout(ctx, "u1", domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "p1", Quantity: 1}},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

// --- UpdateStatus ---

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc := NewService(&mockOrderStore{}, &mockProductStore{}, nil, 0)
	_, err := svc.UpdateStatus(context.Background(), "o1", "shipped")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(&domain.Order{OrderID: "o1", Status: domain.OrderStatusPending}, nil).Once()
	os.On("UpdateStatus", mock.Anything, "o1", domain.OrderStatusCompleted).Return(nil)
	os.On("Get", mock.Anything, "o1").Return(&domain.Order{OrderID: "o1", Status: domain.OrderStatusCompleted}, nil).Once()

	svc := NewService(os, &mockProductStore{}, nil, 0)
	o, err := svc.UpdateStatus(context.Background(), "o1", domain.OrderStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, o.Status)
	os.AssertExpectations(t)
}
