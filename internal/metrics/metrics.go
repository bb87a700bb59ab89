package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)
)

// Oracle Metrics
var (
	OracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOracleRequestsTotal,
			Help: HelpTextOracleRequestsTotal,
		},
		[]string{LabelProvider, LabelResult},
	)

	OracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameOracleRequestDuration,
			Help:    HelpTextOracleRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelProvider},
	)

	OracleRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOracleRejections,
			Help: HelpTextOracleRejections,
		},
		[]string{LabelReason},
	)
)

// Business Metrics
var (
	MatchesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMatchesCreated,
			Help: HelpTextMatchesCreated,
		},
		[]string{LabelMarket},
	)

	MatchesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMatchesResolved,
			Help: HelpTextMatchesResolved,
		},
		[]string{LabelMarket, LabelOutcome},
	)

	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimsTotal,
			Help: HelpTextClaimsTotal,
		},
		[]string{LabelPoolKind},
	)

	PayoutAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePayoutAmount,
			Help: HelpTextPayoutAmount,
		},
		[]string{LabelPoolKind},
	)

	FeesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFeesSwept,
			Help: HelpTextFeesSwept,
		},
	)

	SettledVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSettledVolume,
			Help: HelpTextSettledVolume,
		},
	)

	OutcomeTrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOutcomeTrades,
			Help: HelpTextOutcomeTrades,
		},
		[]string{LabelSide},
	)

	ProposalsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameProposalsResolved,
			Help: HelpTextProposalsResolved,
		},
		[]string{LabelStatus},
	)
)

// Worker Metrics
var (
	ResolutionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameResolutionAttempts,
			Help: HelpTextResolutionAttempts,
		},
		[]string{LabelPoolKind, LabelResult},
	)

	StaleMatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameStaleMatches,
			Help: HelpTextStaleMatches,
		},
	)
)
