package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/config"
	"github.com/boddenberg/statement-ledger-go/internal/handler"
	"github.com/boddenberg/statement-ledger-go/internal/identity"
	"github.com/boddenberg/statement-ledger-go/internal/infra/cache"
	"github.com/boddenberg/statement-ledger-go/internal/infra/memory"
	"github.com/boddenberg/statement-ledger-go/internal/infra/notify"
	"github.com/boddenberg/statement-ledger-go/internal/infra/observability"
	"github.com/boddenberg/statement-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/statement-ledger-go/internal/port"
	"github.com/boddenberg/statement-ledger-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("identity_mode", cfg.IdentityMode),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Int("webhooks", len(cfg.WebhookURLs)),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, "statement-ledger")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store & cache ---
	store := memory.NewStore()
	balances := cache.New[float64](cfg.CacheTTL)
	defer balances.Close()

	// --- Notifier ---
	var notifier port.OperationNotifier = notify.Nop{}
	var webhook *notify.Webhook
	if len(cfg.WebhookURLs) > 0 {
		webhook = notify.NewWebhook(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.WebhookURLs,
			resilience.NewCircuitBreaker("webhooks"),
			resilience.Config{MaxRetries: cfg.MaxRetries, InitialBackoff: cfg.InitialBackoff},
			cfg.HTTPTimeout*time.Duration(cfg.MaxRetries+1),
			metrics,
			logger,
		)
		notifier = webhook
		logger.Info("webhook notifier enabled", zap.Strings("urls", cfg.WebhookURLs))
	}

	// --- Identity ---
	var resolver port.IdentityResolver
	switch cfg.IdentityMode {
	case config.IdentityModeBearer:
		resolver = identity.NewBearerResolver(cfg.JWTSecret)
	default:
		resolver = identity.NewHeaderResolver(cfg.IdentityHeader)
		logger.Warn("identity is taken from a request header without verification",
			zap.String("header", cfg.IdentityHeader),
		)
	}

	// --- Services ---
	ledgerSvc := service.NewLedgerService(store, balances, notifier, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(ledgerSvc, resolver, metrics, handler.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimit:      cfg.RateLimit,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}
	if webhook != nil {
		webhook.Wait()
	}

	logger.Info("server stopped")
}
