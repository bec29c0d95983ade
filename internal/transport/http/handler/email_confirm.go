package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/pkg/validate"
)

// EmailConfirmHandler handles the email confirmation flow. Both actions are
// public: the caller holds no session until confirmation succeeds.
type EmailConfirmHandler struct {
	svc auth.Service
}

func NewEmailConfirmHandler(svc auth.Service) *EmailConfirmHandler {
	return &EmailConfirmHandler{svc: svc}
}

func (h *EmailConfirmHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "send":
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
		if err := h.svc.ResendCode(r.Context(), body.Email); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
	case "verify":
		var req auth.ConfirmEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		result, err := h.svc.ConfirmEmail(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AuthEnvelope{
			AccessToken:  result.Bearer,
			RefreshToken: result.RefreshToken,
			Session:      result.Session,
			User:         toSafeUser(result.Session.User),
			Message:      "email confirmed",
		})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
