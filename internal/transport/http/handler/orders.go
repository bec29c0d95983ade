package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-api/internal/application/order"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/validate"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// OrderHandler handles checkout and order endpoints.
type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler { return &OrderHandler{svc: svc} }

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	o, err := h.svc.Checkout(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orders, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	if o.UserID != claims.UserID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot view another user's order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parsePage(r)
	orders, next, err := h.svc.ListAll(r.Context(), limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: orders, NextCursor: next})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
