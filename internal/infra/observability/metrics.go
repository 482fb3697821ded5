package observability

import (
	"time"

	"github.com/boddenberg/statement-ledger-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	operations        *prometheus.CounterVec
	operationAmount   *prometheus.CounterVec
	rejected          *prometheus.CounterVec
	accounts          prometheus.Gauge
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	notifyErrors      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it, so NewMetrics can be called once per test.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger use cases.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "HTTP requests by route pattern and status code.",
			},
			[]string{"method", "route", "status"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Statement operations appended, by type.",
			},
			[]string{"type"},
		),
		operationAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operation_amount_total",
				Help: "Sum of appended amounts, by type.",
			},
			[]string{"type"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_rejected_operations_total",
				Help: "Operations rejected by a ledger rule.",
			},
			[]string{"reason"},
		),
		accounts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_accounts",
				Help: "Customers currently in the store.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		notifyErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_notify_errors_total",
				Help: "Webhook deliveries that failed after retries.",
			},
			[]string{"target"},
		),
	}
}

// RecordOperationDuration records the duration of a use case.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrHTTPRequest counts a served request.
func (m *Metrics) IncrHTTPRequest(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
}

// RecordOperation counts an appended statement operation.
func (m *Metrics) RecordOperation(op domain.Operation) {
	m.operations.WithLabelValues(string(op.Type)).Inc()
	m.operationAmount.WithLabelValues(string(op.Type)).Add(op.Amount)
}

// IncrRejected counts an operation refused by a ledger rule.
func (m *Metrics) IncrRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// SetAccounts sets the current number of customers.
func (m *Metrics) SetAccounts(n int) {
	m.accounts.Set(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrNotifyError counts a failed webhook delivery.
func (m *Metrics) IncrNotifyError(target string) {
	m.notifyErrors.WithLabelValues(target).Inc()
}

// Snapshot returns the cumulative ledger counters for GET /metrics/ledger.
func (m *Metrics) Snapshot() *domain.LedgerMetrics {
	credit := string(domain.OperationCredit)
	debit := string(domain.OperationDebit)

	hits := counterValue(m.cacheHits.WithLabelValues("balance"))
	misses := counterValue(m.cacheMisses.WithLabelValues("balance"))
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetrics{
		Accounts:            int64(gaugeValue(m.accounts)),
		Deposits:            int64(counterValue(m.operations.WithLabelValues(credit))),
		Withdrawals:         int64(counterValue(m.operations.WithLabelValues(debit))),
		RejectedWithdrawals: int64(counterValue(m.rejected.WithLabelValues("insufficient_funds"))),
		CreditedAmount:      counterValue(m.operationAmount.WithLabelValues(credit)),
		DebitedAmount:       counterValue(m.operationAmount.WithLabelValues(debit)),
		CacheHitRate:        hitRate,
		NotifyFailures:      int64(sumCounterVec(m.notifyErrors)),
	}
}

func counterValue(c prometheus.Counter) float64 {
	pb := &dto.Metric{}
	if err := c.Write(pb); err != nil || pb.Counter == nil {
		return 0
	}
	return pb.Counter.GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	pb := &dto.Metric{}
	if err := g.Write(pb); err != nil || pb.Gauge == nil {
		return 0
	}
	return pb.Gauge.GetValue()
}

func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		pb := &dto.Metric{}
		if err := metric.Write(pb); err == nil && pb.Counter != nil {
			total += pb.Counter.GetValue()
		}
	}
	return total
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
