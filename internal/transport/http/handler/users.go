package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-api/internal/application/user"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parsePage(r)
	users, next, err := h.svc.List(r.Context(), limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	safe := make([]*SafeUser, len(users))
	for i := range users {
		safe[i] = toSafeUser(&users[i])
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: safe, NextCursor: next})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot view another user")
		return
	}
	u, err := h.svc.Get(r.Context(), targetID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot update another user")
		return
	}
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Only admins may touch role or enable.
	if claims.Role != domain.RoleAdmin {
		req.Role = nil
		req.Enable = nil
	}
	u, err := h.svc.Update(r.Context(), targetID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

func parsePage(r *http.Request) (limit int, cursor string) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	return limit, r.URL.Query().Get("cursor")
}
