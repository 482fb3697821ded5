package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/statement-ledger-go/internal/port"
	"github.com/boddenberg/statement-ledger-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const customerKey contextKey = "customer"

// IdentityMiddleware resolves the identity a request claims to a customer
// and injects it into the context. Unknown identities never reach the handler.
func IdentityMiddleware(resolver port.IdentityResolver, svc *service.LedgerService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := resolver.ResolveIdentity(r)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}

			customer, err := svc.GetAccount(r.Context(), key)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), customerKey, customer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerFromContext returns the customer injected by IdentityMiddleware.
func CustomerFromContext(ctx context.Context) *domain.Customer {
	c, _ := ctx.Value(customerKey).(*domain.Customer)
	return c
}

// BulkheadMiddleware caps in-flight requests. A request waits at most wait
// for a slot before it is turned away with 503.
func BulkheadMiddleware(bh *resilience.Bulkhead, wait time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), wait)
			err := bh.Acquire(ctx)
			cancel()
			if err != nil {
				logger.Warn("bulkhead full",
					zap.String("path", r.URL.Path),
					zap.Int("in_flight", bh.InFlight()),
				)
				writeError(w, http.StatusServiceUnavailable, "server busy")
				return
			}
			defer bh.Release()

			next.ServeHTTP(w, r)
		})
	}
}
