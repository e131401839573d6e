package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/linkedcreds-api/internal/config"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/transport/http/handler"
	appmiddleware "github.com/linkedcreds-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the application router. The returned stop func ends the
// background cleanup of the per-IP limiter.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on public endpoints that reach third parties.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		if deps.Verification != nil {
			verifyH := handler.NewVerificationHandler(deps.Verification)
			r.Get("/verification/send", verifyH.SendInfo)
			r.Post("/verification/send", verifyH.Send)
			r.Get("/verification/confirm", verifyH.ConfirmInfo)
			r.Post("/verification/confirm", verifyH.Confirm)
		}
		if deps.Sessions != nil {
			r.With(sensitiveRL.Limit).Post("/sessions/google", handler.NewSessionHandler(deps.Sessions).Google)
		}

		var credH *handler.CredentialHandler
		if deps.Credentials != nil {
			credH = handler.NewCredentialHandler(deps.Credentials)
			r.With(sensitiveRL.Limit).Get("/credential-raw/{fileId}", credH.GetRaw)
		}

		if deps.TokenVerifier == nil {
			return
		}

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.TokenVerifier))

			if credH != nil {
				r.Post("/credential-raw", credH.PutRaw)
				r.Post("/credentials/publish", credH.Publish)
			}
			if deps.Analytics != nil {
				analyticsH := handler.NewAnalyticsHandler(deps.Analytics)
				r.Get("/analytics", analyticsH.Get)
				for _, group := range []string{domain.AnalyticsCredentials, domain.AnalyticsClicks, domain.AnalyticsEvidence} {
					r.Post("/analytics/"+group+"/{type}", analyticsH.Increment(group))
				}
				for _, group := range []string{domain.AnalyticsCredentials, domain.AnalyticsEvidence} {
					r.Put("/analytics/"+group+"/{type}", analyticsH.Set(group))
				}
			}
		})
	})

	return r, sensitiveRL.Stop
}
