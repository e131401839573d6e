package http

import (
	"github.com/linkedcreds-api/internal/application/analytics"
	"github.com/linkedcreds-api/internal/application/credential"
	"github.com/linkedcreds-api/internal/application/session"
	"github.com/linkedcreds-api/internal/application/verification"
	"github.com/linkedcreds-api/internal/transport/http/middleware"
)

// Deps holds the application services the router exposes. Any service left
// nil has its routes omitted.
type Deps struct {
	Verification verification.Service
	Credentials  credential.Service
	Analytics    analytics.Service
	Sessions     session.Service

	// TokenVerifier guards the authenticated routes. When nil those routes
	// are not mounted.
	TokenVerifier middleware.TokenVerifier
}
