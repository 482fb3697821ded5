// Package service provides the business logic layer (use cases).
// LedgerService handles accounts and their statements.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/infra/observability"
	"github.com/boddenberg/statement-ledger-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/ledger")

const eventOperationAppended = "operation.appended"

// LedgerService orchestrates account and statement operations over an AccountStore.
type LedgerService struct {
	store    port.AccountStore
	balances port.Cache[float64]
	notifier port.OperationNotifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	now      func() time.Time
	location *time.Location
}

// Option customises a LedgerService.
type Option func(*LedgerService)

// WithClock overrides the timestamp source for new operations.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithLocation sets the time zone calendar days are compared in.
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) { s.location = loc }
}

// NewLedgerService creates the ledger service with all dependencies injected.
func NewLedgerService(
	store port.AccountStore,
	balances port.Cache[float64],
	notifier port.OperationNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *LedgerService {
	s := &LedgerService{
		store:    store,
		balances: balances,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================
// Accounts
// ============================================================

// CreateAccount opens an account with an empty statement.
func (s *LedgerService) CreateAccount(ctx context.Context, req *domain.CreateAccountRequest) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.CreateAccount")
	defer span.End()
	defer s.observe("create_account", time.Now())

	identityKey := strings.TrimSpace(req.IdentityKey)
	if identityKey == "" {
		return nil, &domain.ErrValidation{Field: "cpf", Message: "is required"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "is required"}
	}

	customer, err := s.store.Create(ctx, &domain.Customer{
		ID:          uuid.NewString(),
		IdentityKey: identityKey,
		Name:        req.Name,
		Statement:   []domain.Operation{},
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("customer.id", customer.ID))

	s.refreshAccountGauge(ctx)
	s.logger.Info("account created", zap.String("customer_id", customer.ID))
	return customer, nil
}

// ListAccounts returns every customer in creation order.
func (s *LedgerService) ListAccounts(ctx context.Context) ([]domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.ListAccounts")
	defer span.End()

	return s.store.List(ctx)
}

// GetAccount looks a customer up by identity key.
func (s *LedgerService) GetAccount(ctx context.Context, identityKey string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.GetAccount")
	defer span.End()

	return s.store.FindByIdentity(ctx, identityKey)
}

// UpdateName renames the customer. The identity key never changes.
func (s *LedgerService) UpdateName(ctx context.Context, customer *domain.Customer, name string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.UpdateName")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customer.ID))

	if strings.TrimSpace(name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "is required"}
	}
	return s.store.UpdateName(ctx, customer.ID, name)
}

// DeleteAccount removes the customer together with its statement.
func (s *LedgerService) DeleteAccount(ctx context.Context, customer *domain.Customer) error {
	ctx, span := tracer.Start(ctx, "LedgerService.DeleteAccount")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customer.ID))

	if err := s.store.Remove(ctx, customer.ID); err != nil {
		return err
	}

	s.refreshAccountGauge(ctx)
	s.logger.Info("account removed", zap.String("customer_id", customer.ID))
	return nil
}

// AccountCount reports how many customers the store holds.
func (s *LedgerService) AccountCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *LedgerService) refreshAccountGauge(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetAccounts(n)
	}
}

func (s *LedgerService) observe(operation string, start time.Time) {
	s.metrics.RecordOperationDuration(operation, time.Since(start))
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return &domain.ErrValidation{Field: "amount", Message: "must be a finite number"}
	}
	if amount < 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}
	return nil
}

func balanceKey(customer *domain.Customer) string {
	return fmt.Sprintf("balance:%s:%d", customer.ID, len(customer.Statement))
}
