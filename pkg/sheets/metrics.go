package sheets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budget_sync_sheet_fetch_requests_total",
		Help: "Spreadsheet read requests issued, by outcome.",
	}, []string{"outcome"})

	rateLimitRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budget_sync_sheet_rate_limit_retries_total",
		Help: "Reads retried after the Sheets API reported quota exhaustion.",
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "budget_sync_sheet_fetch_duration_seconds",
		Help:    "Latency of spreadsheet reads including retries.",
		Buckets: prometheus.DefBuckets,
	})
)
