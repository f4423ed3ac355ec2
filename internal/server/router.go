// Package server assembles the HTTP router and runs the HTTP server.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	companyhandler "company-registration/backend/internal/company/handler"
	healthhandler "company-registration/backend/internal/health/handler"
	"company-registration/backend/internal/logostore"
	"company-registration/backend/internal/response"
	"company-registration/backend/internal/server/middleware"
)

// Deps holds the handlers and collaborators the router mounts.
type Deps struct {
	Company *companyhandler.Handler
	Tokens  middleware.TokenValidator
	Health  *healthhandler.Server
	// Logos serves uploaded logos under /uploads/logos/. If nil, the route is not mounted.
	Logos LogoOpener
	// DevOTP is the dev-only OTP lookup. Set only when dev OTP mode is enabled outside production.
	DevOTP http.Handler
	Log    logrus.FieldLogger

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	CORSOrigins    []string
}

// NewRouter mounts the middleware stack and routes:
//
//	POST /api/company/register
//	POST /api/company/validate-otp
//	POST /api/company/set-password
//	POST /api/company/resend-otp
//	POST /api/company/login
//	GET  /api/company/profile        (Bearer)
//	GET  /healthz, /readyz
//	GET  /uploads/logos/{file}
//	GET  /dev/otp?email=             (dev OTP mode only)
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(d.Log))
	r.Use(middleware.AccessLog(d.Log))
	r.Use(middleware.CORS(d.CORSOrigins))
	if d.TracerProvider != nil && d.MeterProvider != nil {
		r.Use(middleware.Telemetry(d.TracerProvider, d.MeterProvider, map[string]bool{"/healthz": true, "/readyz": true}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Live)
		r.Get("/readyz", d.Health.Ready)
	}
	if d.Company != nil {
		r.Route("/api/company", func(r chi.Router) {
			d.Company.Routes(r, middleware.RequireBearer(d.Tokens))
		})
	}
	if d.Logos != nil {
		r.Get(logostore.PathPrefix+"{file}", serveLogo(d.Logos))
	}
	if d.DevOTP != nil {
		r.Method(http.MethodGet, "/dev/otp", d.DevOTP)
	}
	return r
}
