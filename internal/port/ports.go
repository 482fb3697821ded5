// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"net/http"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
)

// AccountStore owns the customer collection and their statements.
// Implementations must keep at most one customer per identity key and
// must never rewrite an appended operation.
type AccountStore interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	FindByIdentity(ctx context.Context, identityKey string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	UpdateName(ctx context.Context, customerID, name string) (*domain.Customer, error)
	Remove(ctx context.Context, customerID string) error
	Count(ctx context.Context) (int, error)

	// Append calls build with the customer's current statement while holding
	// the write lock and appends the operation it returns. If build fails,
	// nothing is appended.
	Append(ctx context.Context, customerID string, build func(statement []domain.Operation) (*domain.Operation, error)) (*domain.Operation, error)
}

// IdentityResolver extracts the identity key a request claims.
type IdentityResolver interface {
	ResolveIdentity(r *http.Request) (string, error)
}

// OperationNotifier is told about every appended operation.
type OperationNotifier interface {
	Notify(ctx context.Context, event domain.OperationEvent)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
