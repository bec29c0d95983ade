package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/storefront-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/register/refresh responses.
type AuthEnvelope struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
	User         *SafeUser       `json:"user,omitempty"`
	Message      string          `json:"message,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session,omitempty"`
	User    *SafeUser       `json:"user,omitempty"`
}

// PageEnvelope wraps cursor-paginated list responses.
type PageEnvelope struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// SafeUser is the user shape exposed over the wire. Credential fields never
// leave the server.
type SafeUser struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	EmailConfirmed bool      `json:"email_confirmed"`
	AuthProvider   string    `json:"auth_provider"`
	Enable         bool      `json:"enable"`
	CreatedAt      time.Time `json:"created_at"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:         u.UserID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		EmailConfirmed: u.EmailConfirmed,
		AuthProvider:   u.AuthProvider,
		Enable:         u.Enable,
		CreatedAt:      u.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
