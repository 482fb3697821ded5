package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Statement
// ============================================================

// Statement returns the customer's operations in append order.
func (s *LedgerService) Statement(ctx context.Context, customer *domain.Customer) []domain.Operation {
	_, span := tracer.Start(ctx, "LedgerService.Statement")
	defer span.End()
	span.SetAttributes(attribute.Int("statement.length", len(customer.Statement)))

	if customer.Statement == nil {
		return []domain.Operation{}
	}
	return customer.Statement
}

// StatementByDate returns the operations created on the calendar day named by date.
func (s *LedgerService) StatementByDate(ctx context.Context, customer *domain.Customer, date string) ([]domain.Operation, error) {
	_, span := tracer.Start(ctx, "LedgerService.StatementByDate")
	defer span.End()

	day, err := domain.ParseStatementDate(date, s.location)
	if err != nil {
		return nil, err
	}
	return domain.FilterByDate(customer.Statement, day), nil
}

// Balance computes credits minus debits. A statement prefix never changes,
// so the result is memoised per (customer, statement length).
func (s *LedgerService) Balance(ctx context.Context, customer *domain.Customer) float64 {
	_, span := tracer.Start(ctx, "LedgerService.Balance")
	defer span.End()

	key := balanceKey(customer)
	if b, ok := s.balances.Get(key); ok {
		s.metrics.IncrCacheHit("balance")
		return b
	}
	s.metrics.IncrCacheMiss("balance")

	b := domain.Balance(customer.Statement)
	s.balances.Set(key, b)
	return b
}

// Deposit appends a credit unconditionally.
func (s *LedgerService) Deposit(ctx context.Context, customer *domain.Customer, req *domain.DepositRequest) (*domain.Operation, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.Deposit")
	defer span.End()
	defer s.observe("deposit", time.Now())
	span.SetAttributes(attribute.String("customer.id", customer.ID))

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	op, err := s.store.Append(ctx, customer.ID, func(_ []domain.Operation) (*domain.Operation, error) {
		return s.newOperation(domain.OperationCredit, req.Amount, req.Description), nil
	})
	if err != nil {
		return nil, err
	}

	s.afterAppend(ctx, customer, op)
	return op, nil
}

// Withdraw appends a debit if the balance covers amount. The balance check
// and the append happen atomically; a rejected withdrawal appends nothing.
func (s *LedgerService) Withdraw(ctx context.Context, customer *domain.Customer, req *domain.WithdrawRequest) (*domain.Operation, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.Withdraw")
	defer span.End()
	defer s.observe("withdraw", time.Now())
	span.SetAttributes(attribute.String("customer.id", customer.ID))

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	op, err := s.store.Append(ctx, customer.ID, func(statement []domain.Operation) (*domain.Operation, error) {
		if !domain.CanWithdraw(statement, req.Amount) {
			return nil, &domain.ErrInsufficientFunds{
				Available: domain.Balance(statement),
				Required:  req.Amount,
			}
		}
		return s.newOperation(domain.OperationDebit, req.Amount, req.Description), nil
	})
	if err != nil {
		var insufficient *domain.ErrInsufficientFunds
		if errors.As(err, &insufficient) {
			s.metrics.IncrRejected("insufficient_funds")
			s.logger.Info("withdraw rejected",
				zap.String("customer_id", customer.ID),
				zap.Float64("amount", req.Amount),
			)
		}
		return nil, err
	}

	s.afterAppend(ctx, customer, op)
	return op, nil
}

func (s *LedgerService) newOperation(typ domain.OperationType, amount float64, description string) *domain.Operation {
	return &domain.Operation{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		CreatedAt:   s.now(),
		Type:        typ,
	}
}

func (s *LedgerService) afterAppend(ctx context.Context, customer *domain.Customer, op *domain.Operation) {
	s.metrics.RecordOperation(*op)
	s.notifier.Notify(ctx, domain.OperationEvent{
		Event:      eventOperationAppended,
		CustomerID: customer.ID,
		Operation:  *op,
	})
}
