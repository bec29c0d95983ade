package domain

import "time"

type Product struct {
	ProductID   string    `json:"id" dynamodbav:"product_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description,omitempty" dynamodbav:"description"`
	Brand       string    `json:"brand,omitempty" dynamodbav:"brand"`
	CategoryID  string    `json:"category_id" dynamodbav:"category_id"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Stock       int       `json:"stock" dynamodbav:"stock"`
	Sizes       []int     `json:"sizes,omitempty" dynamodbav:"sizes"`
	ImageKeys   []string  `json:"-" dynamodbav:"image_keys"`
	ImageURLs   []string  `json:"images,omitempty" dynamodbav:"-"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// InStock reports whether the product can currently be added to a cart.
func (p *Product) InStock() bool { return p.Stock > 0 }

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	CategoryID  string  `json:"category_id" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Sizes       []int   `json:"sizes"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	CategoryID  *string  `json:"category_id"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Sizes       *[]int   `json:"sizes"`
	Enable      *bool    `json:"enable"`
}

// ProductFilter narrows public product listings.
type ProductFilter struct {
	CategoryID  string
	InStockOnly bool
	MinPrice    float64
	MaxPrice    float64
}
