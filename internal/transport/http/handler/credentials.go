package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/linkedcreds-api/internal/application/credential"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/pkg/validate"
	"github.com/linkedcreds-api/internal/transport/http/middleware"
)

// CredentialHandler serves raw credential documents from object storage.
type CredentialHandler struct {
	svc credential.Service
}

func NewCredentialHandler(svc credential.Service) *CredentialHandler {
	return &CredentialHandler{svc: svc}
}

func (h *CredentialHandler) GetRaw(w http.ResponseWriter, r *http.Request) {
	fileID, err := url.PathUnescape(chi.URLParam(r, "fileId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed file ID")
		return
	}
	raw, err := h.svc.Get(r.Context(), fileID)
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *CredentialHandler) PutRaw(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	put := h.svc.Put
	if r.URL.Query().Get("publish") == "true" {
		put = h.svc.PutAndPublish
	}
	a, err := put(r.Context(), body, claims.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Publish forwards a signed credential to LinkedTrust.
func (h *CredentialHandler) Publish(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.PublishCredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	res, err := h.svc.Publish(r.Context(), req, claims.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PublishEnvelope{Success: true, PublishedCredential: res})
}
