package handler

import (
	"net/http"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Statement Handlers
// ============================================================

func statementHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /statement")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Statement(ctx, CustomerFromContext(ctx)))
	}
}

func statementByDateHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /statement/date")
		defer span.End()

		date := r.URL.Query().Get("date")
		span.SetAttributes(attribute.String("statement.date", date))

		ops, err := svc.StatementByDate(ctx, CustomerFromContext(ctx), date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ops)
	}
}

func balanceHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /balance")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Balance(ctx, CustomerFromContext(ctx)))
	}
}

func depositHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /deposit")
		defer span.End()

		var req domain.DepositRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		op, err := svc.Deposit(ctx, CustomerFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, op)
	}
}

func withdrawHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /withdraw")
		defer span.End()

		var req domain.WithdrawRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		op, err := svc.Withdraw(ctx, CustomerFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, op)
	}
}
