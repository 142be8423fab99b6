package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChainCallsTotal tracks node calls per method and outcome
	ChainCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_chain_calls_total",
			Help: "Total number of node RPC calls",
		},
		[]string{"method", "result"},
	)

	// ChainCallLatency tracks node call latency
	ChainCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_chain_call_latency_seconds",
			Help:    "Node RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ListingsSubmitted tracks listing transactions by outcome
	ListingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_listings_submitted_total",
			Help: "Total number of listing transactions submitted",
		},
		[]string{"result"},
	)

	// TimeToMine tracks the time between broadcast and receipt
	TimeToMine = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketplace_time_to_mine_seconds",
			Help:    "Time from broadcast until the receipt was available",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120},
		},
	)

	// NodeConnected is 1 when the last node probe succeeded
	NodeConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_node_connected",
			Help: "Whether the last node probe succeeded",
		},
	)

	// NodeLatestBlock tracks the latest block height seen by the health probe
	NodeLatestBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_node_latest_block",
			Help: "Latest block height reported by the node",
		},
	)

	// HTTPRequestsTotal tracks API requests per route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	// HTTPRequestDuration tracks API request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// RateLimited tracks requests rejected by the rate limiter
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
