package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/config"
	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/infra/observability"
	"github.com/boddenberg/statement-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/statement-ledger-go/internal/port"
	"github.com/boddenberg/statement-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const defaultBulkheadWait = 2 * time.Second

// Options tunes the traffic-shaping middleware. The zero value disables both.
type Options struct {
	MaxConcurrency int
	BulkheadWait   time.Duration
	RateLimit      config.RateLimitConfig
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.LedgerService, resolver port.IdentityResolver, metrics *observability.Metrics, opts Options, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

	// --- Ledger API ---
	r.Group(func(r chi.Router) {
		r.Use(NewRateLimiter(opts.RateLimit, logger).Middleware)
		if opts.MaxConcurrency > 0 {
			wait := opts.BulkheadWait
			if wait <= 0 {
				wait = defaultBulkheadWait
			}
			r.Use(BulkheadMiddleware(resilience.NewBulkhead(opts.MaxConcurrency), wait, logger))
		}

		r.Post("/account", createAccountHandler(svc, logger))
		r.Get("/accounts", listAccountsHandler(svc, logger))

		// Everything below acts on the customer the request identifies.
		r.Group(func(r chi.Router) {
			r.Use(IdentityMiddleware(resolver, svc, logger))

			r.Get("/account", getAccountHandler())
			r.Put("/account", updateAccountHandler(svc, logger))
			r.Delete("/account", deleteAccountHandler(svc, logger))

			r.Get("/statement", statementHandler(svc))
			r.Get("/statement/date", statementByDateHandler(svc, logger))
			r.Get("/balance", balanceHandler(svc))
			r.Post("/deposit", depositHandler(svc, logger))
			r.Post("/withdraw", withdrawHandler(svc, logger))
		})
	})

	return r
}

func healthzHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		start := time.Now()
		count, err := svc.AccountCount(r.Context())
		store := domain.ServiceHealth{
			Name:        "account-store",
			Status:      "healthy",
			LatencyMs:   time.Since(start).Milliseconds(),
			Accounts:    count,
			LastChecked: now,
		}
		if err != nil {
			store.Status = "unhealthy"
		}

		status := http.StatusOK
		if store.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, domain.HealthStatus{
			Status:   store.Status,
			Services: []domain.ServiceHealth{store},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
