package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rss_picks_requests_total",
		Help: "Requests handled, by route and envelope status",
	}, []string{"route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rss_picks_request_duration_seconds",
		Help:    "End-to-end request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rss_picks_auth_failures_total",
		Help: "Credential verification failures by reason",
	}, []string{"reason"})

	MatchedItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rss_picks_matched_items",
		Help:    "Items kept by the matching engine per request",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1..128
	}, []string{"predicate"})

	UpstreamFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rss_picks_upstream_fetch_duration_seconds",
		Help:    "Remote feed fetch and parse latency",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source", "outcome"})
)
