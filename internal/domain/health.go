package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	Accounts    int    `json:"accounts,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /metrics/ledger.
type LedgerMetrics struct {
	Accounts            int64   `json:"accounts"`
	Deposits            int64   `json:"deposits"`
	Withdrawals         int64   `json:"withdrawals"`
	RejectedWithdrawals int64   `json:"rejectedWithdrawals"`
	CreditedAmount      float64 `json:"creditedAmount"`
	DebitedAmount       float64 `json:"debitedAmount"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	NotifyFailures      int64   `json:"notifyFailures"`
}
