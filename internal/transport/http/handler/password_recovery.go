package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/pkg/validate"
)

// PasswordRecoveryHandler handles the forgotten-password flow endpoints.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var body struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.RequestPasswordRecovery(r.Context(), body.Email); err != nil {
			httpError(w, err)
			return
		}
		// Same response for unknown addresses.
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
	case "confirm":
		var body struct {
			Email       string `json:"email" validate:"required,email"`
			Code        string `json:"code" validate:"required,len=6"`
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
		if err := h.svc.ConfirmPasswordRecovery(r.Context(), body.Email, body.Code, body.NewPassword); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
