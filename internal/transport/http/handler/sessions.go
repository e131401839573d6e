package handler

import (
	"net/http"

	"github.com/linkedcreds-api/internal/application/session"
	"github.com/linkedcreds-api/internal/pkg/validate"
)

// SessionHandler issues session tokens for third-party sign-in.
type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req session.GoogleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	res, err := h.svc.LoginWithGoogle(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
