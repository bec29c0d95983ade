package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Email          string     `json:"email" dynamodbav:"email"`
	Name           string     `json:"name" dynamodbav:"name"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	Role           string     `json:"role" dynamodbav:"role"`
	EmailConfirmed bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	AuthProvider   string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub      string     `json:"-" dynamodbav:"google_sub"`
	Enable         bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required"`
}

type UpdateUserRequest struct {
	Email  *string `json:"email" validate:"omitempty,email"`
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Enable *bool   `json:"enable"`
}
