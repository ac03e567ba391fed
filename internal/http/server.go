// Package http exposes the transaction and user services as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/middleware/ratelimit"
	"budgetbuddy/internal/middleware/security"
	"budgetbuddy/internal/middleware/trace"
	"budgetbuddy/internal/services"
)

const maxBodyBytes = 1 << 20

// Config holds the HTTP surface settings.
type Config struct {
	Addr               string
	CORSOrigin         string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	transactions *services.TransactionService
	users        *services.UserService
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	logger       *applog.Logger
	startedAt    time.Time

	// ready reports store reachability for /readyz; nil means always ready.
	ready func(ctx context.Context) error
}

func NewServer(cfg Config, transactions *services.TransactionService, users *services.UserService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	ips := security.NewClientIPResolver()

	s := &Server{
		transactions: transactions,
		users:        users,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		tracer:       trace.NewMiddleware(logger, ips.ClientIP),
		logger:       logger,
		startedAt:    time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions/{email}", s.handleListTransactions)
		r.Get("/user/{email}", s.handleGetUser)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware(ips.ClientIP, s.handleRateLimited))
			r.Post("/transaction", s.handleCreateTransaction)
			r.Put("/transaction/{id}", s.handleUpdateTransaction)
			r.Delete("/transaction/{id}", s.handleDeleteTransaction)
			r.Post("/user", s.handleRegisterUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// SetReadinessCheck installs the probe used by /readyz.
func (s *Server) SetReadinessCheck(check func(ctx context.Context) error) {
	s.ready = check
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldPath, r.URL.Path,
		"rejected_total", s.limiter.Rejected())
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
