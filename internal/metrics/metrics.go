// Package metrics exposes Prometheus collectors for RPC traffic and split activity.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "splitledger_"

var (
	registerOnce sync.Once

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	splitsCreated        *prometheus.CounterVec
	allocationRejections *prometheus.CounterVec
	settlementChanges    *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		rpcRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rpc_requests_total",
				Help: "Total RPC requests by procedure and result code",
			},
			[]string{"procedure", "code"},
		)
		rpcDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "rpc_duration_seconds",
				Help:    "RPC latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		)
		splitsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "splits_created_total",
				Help: "Total splits saved by allocation method",
			},
			[]string{"method"},
		)
		allocationRejections = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "allocation_rejections_total",
				Help: "Total save attempts rejected by validation, by reason",
			},
			[]string{"reason"},
		)
		settlementChanges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_changes_total",
				Help: "Total share status changes by actor and new status",
			},
			[]string{"actor", "status"},
		)

		prometheus.MustRegister(
			rpcRequests,
			rpcDuration,
			splitsCreated,
			allocationRejections,
			settlementChanges,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRPC records one RPC outcome.
func ObserveRPC(procedure, code string, duration time.Duration) {
	if code == "" {
		code = "ok"
	}
	if rpcRequests != nil {
		rpcRequests.WithLabelValues(procedure, code).Inc()
	}
	if rpcDuration != nil {
		rpcDuration.WithLabelValues(procedure).Observe(duration.Seconds())
	}
}

// IncSplitCreated counts a saved split.
func IncSplitCreated(method string) {
	if splitsCreated != nil {
		splitsCreated.WithLabelValues(method).Inc()
	}
}

// IncAllocationRejected counts a save blocked by the validation gate.
func IncAllocationRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if allocationRejections != nil {
		allocationRejections.WithLabelValues(reason).Inc()
	}
}

// IncSettlementChange counts a share status transition.
func IncSettlementChange(actor, status string) {
	if settlementChanges != nil {
		settlementChanges.WithLabelValues(actor, status).Inc()
	}
}
