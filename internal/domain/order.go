package domain

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	OrderID   string      `json:"id" dynamodbav:"order_id"`
	UserID    string      `json:"user_id" dynamodbav:"user_id"`
	Items     []OrderItem `json:"items" dynamodbav:"items"`
	Total     float64     `json:"total" dynamodbav:"total"`
	Status    string      `json:"status" dynamodbav:"status"`
	Shipping  Shipping    `json:"shipping" dynamodbav:"shipping"`
	CreatedAt time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// OrderItem snapshots the product name and unit price at checkout time, so
// later catalog edits don't rewrite order history.
type OrderItem struct {
	ProductID string  `json:"product_id" dynamodbav:"product_id"`
	Name      string  `json:"name" dynamodbav:"name"`
	Price     float64 `json:"price" dynamodbav:"price"`
	Quantity  int     `json:"quantity" dynamodbav:"quantity"`
	Size      *int    `json:"size,omitempty" dynamodbav:"size"`
}

type Shipping struct {
	Name    string `json:"name" dynamodbav:"name"`
	Address string `json:"address" dynamodbav:"address"`
	City    string `json:"city" dynamodbav:"city"`
	ZipCode string `json:"zip_code" dynamodbav:"zip_code"`
}

type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Size      *int   `json:"size"`
}

type CheckoutRequest struct {
	Items    []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	Shipping Shipping       `json:"shipping"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed cancelled"`
}
