package handler

import (
	"net/http"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Accounts Handlers
// ============================================================

func createAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /account")
		defer span.End()

		var req domain.CreateAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		customer, err := svc.CreateAccount(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, customer)
	}
}

func listAccountsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /accounts")
		defer span.End()

		customers, err := svc.ListAccounts(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, customers)
	}
}

func getAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CustomerFromContext(r.Context()))
	}
}

func updateAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /account")
		defer span.End()

		var req domain.UpdateAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		customer, err := svc.UpdateName(ctx, CustomerFromContext(ctx), req.Name)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, customer)
	}
}

func deleteAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /account")
		defer span.End()

		if err := svc.DeleteAccount(ctx, CustomerFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
