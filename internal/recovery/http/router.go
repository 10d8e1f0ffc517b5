package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/slogx"

	_ "github.com/aussiebroadwan/regain/api/recovery" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	SessionService    *service.SessionService
	TokenService      *service.TokenService
	EnrollmentService *service.EnrollmentService

	// Fixed-window limiters per route class, consulted before any service
	// work. Backed by memory or Redis depending on deployment.
	StartLimiter    httpx.WindowLimiter
	VerifyLimiter   httpx.WindowLimiter
	CompleteLimiter httpx.WindowLimiter

	// PublicGuard covers the diagnostic surface (stats, health, swagger).
	PublicGuard *httpx.PublicGuard
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerRecovery()
	r.registerTokens()
	r.registerEnrollments()
	r.registerSystem()

	r.Mux.Handle("/swagger/", r.public(httpSwagger.Handler()))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Regain Account Recovery Service API
//	@version		0.1.0
//	@description	Risk-scored account recovery: adaptive re-verification questions,
//	@description	single-use recovery tokens and signed completion grants.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/regain
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerRecovery() {
	startHandler := &StartHandler{SessionService: r.SessionService}
	// Keyed on IP plus identifier so one address cannot burn a stranger's
	// quota, and one identifier cannot be hammered from many addresses.
	r.Mux.Handle("POST /v1/recovery/start",
		httpx.Chain(startHandler,
			httpx.RateLimit(r.StartLimiter, httpx.StartPolicy, httpx.IPKeyExtractor),
		),
	)

	getHandler := &GetSessionHandler{SessionService: r.SessionService}
	r.Mux.Handle("GET /v1/recovery/{id}",
		httpx.Chain(getHandler,
			httpx.RateLimit(r.CompleteLimiter, httpx.CompletePolicy, httpx.IPKeyExtractor),
		),
	)

	answersHandler := &AnswersHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /v1/recovery/{id}/answers",
		httpx.Chain(answersHandler,
			httpx.RateLimit(r.VerifyLimiter, httpx.VerifyPolicy,
				httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.PathValueKeyExtractor("id")),
			),
		),
	)

	completeHandler := &CompleteHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /v1/recovery/complete",
		httpx.Chain(completeHandler,
			httpx.RateLimit(r.CompleteLimiter, httpx.CompletePolicy, httpx.IPKeyExtractor),
		),
	)
}

func (r *Router) registerTokens() {
	validateHandler := &ValidateHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/tokens/validate",
		httpx.Chain(validateHandler,
			httpx.RateLimit(r.CompleteLimiter, httpx.CompletePolicy, httpx.IPKeyExtractor),
		),
	)

	revokeHandler := &RevokeHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/users/{id}/tokens/revoke",
		httpx.Chain(revokeHandler,
			httpx.RateLimit(r.VerifyLimiter, httpx.VerifyPolicy,
				httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.PathValueKeyExtractor("id")),
			),
		),
	)

	statsHandler := &StatsHandler{TokenService: r.TokenService}
	r.Mux.Handle("GET /v1/tokens/stats", r.public(statsHandler))
}

func (r *Router) registerEnrollments() {
	h := &EnrollmentHandler{EnrollmentService: r.EnrollmentService}
	r.Mux.Handle("PUT /v1/enrollments/{identifier}",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			httpx.RateLimit(r.VerifyLimiter, httpx.VerifyPolicy, httpx.IPKeyExtractor),
		),
	)
	r.Mux.Handle("DELETE /v1/enrollments/{identifier}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimit(r.VerifyLimiter, httpx.VerifyPolicy, httpx.IPKeyExtractor),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", r.public(LivezHandler(r.startTime, r.buildVersion)))
	r.Mux.Handle("GET /readyz", r.public(ReadyzHandler(r.store, r.startTime, r.buildVersion)))
}

// public wraps diagnostic endpoints with the token-bucket guard when one is
// configured.
func (r *Router) public(h http.Handler) http.Handler {
	if r.PublicGuard == nil {
		return h
	}
	return httpx.Chain(h, r.PublicGuard.Middleware())
}
