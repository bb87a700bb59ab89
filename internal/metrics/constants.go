package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished = "events_published_total"
)

// Oracle metric names
const (
	MetricNameOracleRequestsTotal   = "oracle_requests_total"
	MetricNameOracleRequestDuration = "oracle_request_duration_seconds"
	MetricNameOracleRejections      = "oracle_rejections_total"
)

// Business metric names
const (
	MetricNameMatchesCreated    = "matches_created_total"
	MetricNameMatchesResolved   = "matches_resolved_total"
	MetricNameClaimsTotal       = "claims_total"
	MetricNamePayoutAmount      = "payout_amount_total"
	MetricNameFeesSwept         = "fees_swept_total"
	MetricNameSettledVolume     = "settled_volume_total"
	MetricNameOutcomeTrades     = "outcome_trades_total"
	MetricNameProposalsResolved = "proposals_resolved_total"
)

// Worker metric names
const (
	MetricNameResolutionAttempts = "resolution_attempts_total"
	MetricNameStaleMatches       = "stale_matches"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished = "Total number of events published"
)

// Oracle metric help text
const (
	HelpTextOracleRequestsTotal   = "Total number of oracle feed requests"
	HelpTextOracleRequestDuration = "Oracle feed request latency in seconds"
	HelpTextOracleRejections      = "Total number of quotes rejected by the validator"
)

// Business metric help text
const (
	HelpTextMatchesCreated    = "Total number of matches created"
	HelpTextMatchesResolved   = "Total number of matches resolved"
	HelpTextClaimsTotal       = "Total number of successful claims"
	HelpTextPayoutAmount      = "Total base units paid out by claims"
	HelpTextFeesSwept         = "Total base units of platform fees swept to the treasury"
	HelpTextSettledVolume     = "Total base units of pot settled by match resolution"
	HelpTextOutcomeTrades     = "Total number of council trades"
	HelpTextProposalsResolved = "Total number of proposals resolved"
)

// Worker metric help text
const (
	HelpTextResolutionAttempts = "Total number of automatic resolution attempts"
	HelpTextStaleMatches       = "Unresolved matches past their resolution window, as of the last scan"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelProvider = "provider"
	LabelResult   = "result"
	LabelReason   = "reason"
	LabelMarket   = "market"
	LabelOutcome  = "outcome"
	LabelPoolKind = "pool_kind"
	LabelSide     = "side"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets ranges from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgPayloadDecodeFailed = "Event payload could not be decoded"
	LogMsgMetricsRecorded     = "Metrics recorded for event"
)
