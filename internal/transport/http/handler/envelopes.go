package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linkedcreds-api/internal/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SuccessEnvelope is returned by the verification endpoints.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
}

// PublishEnvelope is returned by the credential publish endpoint.
type PublishEnvelope struct {
	Success bool `json:"success"`
	*domain.PublishedCredential
}

// DescriptorEnvelope describes an endpoint on GET.
type DescriptorEnvelope struct {
	Status   string `json:"status"`
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

const rateLimitedMessage = "Too many verification attempts. Please try again later."

// httpError maps domain errors to status codes. 5xx responses never carry
// the underlying error text.
func httpError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var rl *domain.RateLimitedError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Msg)
	case errors.As(err, &rl):
		setRateLimitHeaders(w, rl, time.Now())
		writeError(w, http.StatusTooManyRequests, rateLimitedMessage)
	case errors.Is(err, domain.ErrCodeNotFound):
		writeError(w, http.StatusBadRequest, domain.ErrCodeNotFound.Error())
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidCode.Error())
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusBadRequest, domain.ErrTooManyAttempts.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, strings.TrimSuffix(err.Error(), ": "+domain.ErrBadRequest.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusInternalServerError, "Failed to send verification email")
	case errors.Is(err, domain.ErrPublishFailed):
		writeError(w, http.StatusBadGateway, "Failed to publish credential")
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func setRateLimitHeaders(w http.ResponseWriter, rl *domain.RateLimitedError, now time.Time) {
	d := rl.Decision
	retry := int(rl.RetryAfter(now) / time.Second)
	if retry < 1 {
		retry = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}
