// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of service requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gateway_request_duration_seconds",
			Help: "Duration of the full request lifecycle in seconds",
		},
		[]string{"outcome"},
	)

	InvoicesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_invoices_issued_total",
			Help: "Total number of payment challenges issued",
		},
	)

	TokensRedeemed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_tokens_redeemed_total",
			Help: "Total number of invoices redeemed for bearer tokens",
		},
	)

	AuditVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_verdicts_total",
			Help: "Total number of audit verdicts by status",
		},
		[]string{"status"},
	)

	WorkerDispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "worker_dispatch_duration_seconds",
			Help: "Wall-clock duration of worker execution in seconds",
		},
	)

	ReputationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reputation_submissions_total",
			Help: "Total number of reputation ledger writes by result",
		},
		[]string{"result"},
	)
)
