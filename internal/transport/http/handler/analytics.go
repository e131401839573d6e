package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkedcreds-api/internal/application/analytics"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/pkg/validate"
	"github.com/linkedcreds-api/internal/transport/http/middleware"
)

// AnalyticsHandler serves the caller's usage counters.
type AnalyticsHandler struct {
	svc analytics.Service
}

func NewAnalyticsHandler(svc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.Get(r.Context(), claims.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Increment returns a handler that bumps a counter of group by one.
func (h *AnalyticsHandler) Increment(group string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		a, err := h.svc.Increment(r.Context(), claims.Email, group, chi.URLParam(r, "type"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// Set returns a handler that overwrites a counter of group.
func (h *AnalyticsHandler) Set(group string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req domain.SetCounterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			httpError(w, err)
			return
		}
		a, err := h.svc.Set(r.Context(), claims.Email, group, chi.URLParam(r, "type"), *req.Value)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
