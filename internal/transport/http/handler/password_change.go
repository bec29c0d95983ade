package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/pkg/validate"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// PasswordChangeHandler handles the in-account password change flow. The
// caller is authenticated; the new password is only applied after the emailed
// code is verified.
type PasswordChangeHandler struct {
	svc auth.Service
}

func NewPasswordChangeHandler(svc auth.Service) *PasswordChangeHandler {
	return &PasswordChangeHandler{svc: svc}
}

func (h *PasswordChangeHandler) Action(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	switch chi.URLParam(r, "action") {
	case "request":
		var body struct {
			NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.RequestPasswordChange(r.Context(), claims.UserID, body.NewPassword); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
	case "confirm":
		var body struct {
			Code string `json:"code" validate:"required,len=6"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.ConfirmPasswordChange(r.Context(), claims.UserID, body.Code); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
