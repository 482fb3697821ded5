// Package notify delivers operation events to external webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/boddenberg/statement-ledger-go/internal/infra/observability"
	"github.com/boddenberg/statement-ledger-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("infra/notify")

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, domain.OperationEvent) {}

// Webhook POSTs each event to every configured URL.
type Webhook struct {
	httpClient *http.Client
	urls       []string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	timeout    time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger

	wg sync.WaitGroup
}

// NewWebhook creates a webhook notifier. timeout bounds one background
// delivery, retries included.
func NewWebhook(httpClient *http.Client, urls []string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, timeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Webhook {
	return &Webhook{
		httpClient: httpClient,
		urls:       urls,
		cb:         cb,
		cfg:        cfg,
		timeout:    timeout,
		metrics:    metrics,
		logger:     logger,
	}
}

// Notify delivers event in the background. The request that produced the
// event may finish (and cancel its context) before delivery does.
func (n *Webhook) Notify(ctx context.Context, event domain.OperationEvent) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.Deliver(dctx, event); err != nil {
			n.logger.Warn("webhook delivery failed",
				zap.String("customer_id", event.CustomerID),
				zap.String("event", event.Event),
				zap.Error(err),
			)
		}
	}()
}

// Deliver sends event to all URLs concurrently and returns the first failure.
// A failing URL does not cancel delivery to the others.
func (n *Webhook) Deliver(ctx context.Context, event domain.OperationEvent) error {
	ctx, span := tracer.Start(ctx, "Webhook.Deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("event", event.Event),
		attribute.Int("targets", len(n.urls)),
	)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var g errgroup.Group
	for _, url := range n.urls {
		g.Go(func() error {
			err := resilience.Execute(n.cb, func() error {
				return resilience.RetryWithBackoff(ctx, n.cfg, func() error {
					return n.post(ctx, url, body)
				})
			})
			if err != nil {
				n.metrics.IncrNotifyError(url)
				return &domain.ErrExternalService{Service: url, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// Wait blocks until all background deliveries have finished.
func (n *Webhook) Wait() {
	n.wg.Wait()
}

func (n *Webhook) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
