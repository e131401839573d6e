package handler

import (
	"net/http"

	"github.com/linkedcreds-api/internal/application/verification"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/transport/http/middleware"
)

// VerificationHandler serves the email verification code endpoints.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Valid email address is required")
		return
	}
	err := h.svc.RequestCode(r.Context(), verification.RequestCodeInput{
		Email:    req.Email,
		Purpose:  req.Purpose,
		Metadata: req.Metadata,
		ClientIP: middleware.RealIP(r),
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true})
}

func (h *VerificationHandler) SendInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DescriptorEnvelope{
		Status:   "API is running",
		Endpoint: "Email verification endpoint",
		Method:   "POST requires: { email, purpose (optional), metadata (optional) }",
	})
}

func (h *VerificationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req domain.ConfirmCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and verification code are required")
		return
	}
	res, err := h.svc.ConfirmCode(r.Context(), verification.ConfirmCodeInput{Email: req.Email, Code: req.Code})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true, Token: res.Token})
}

func (h *VerificationHandler) ConfirmInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DescriptorEnvelope{
		Status:   "API is running",
		Endpoint: "Verification confirmation endpoint",
		Method:   "POST requires: { email, code }",
	})
}
