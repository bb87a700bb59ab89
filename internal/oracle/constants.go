package oracle

import "time"

// Validation policy defaults
const (
	DefaultMaxAge           = 60 * time.Second
	DefaultMaxClockSkew     = 5 * time.Second
	DefaultMaxConfidenceBps = 100
	DefaultTargetDecimals   = 6
)

// Hermes client defaults
const (
	DefaultHermesURL      = "https://hermes.pyth.network"
	DefaultRequestsPerSec = 10
	DefaultBurst          = 5
	DefaultCacheSize      = 128
	DefaultCacheTTL       = time.Second
	DefaultHTTPTimeout    = 5 * time.Second

	hermesLatestPath = "/v2/updates/price/latest"
)

// Provider names accepted by configuration
const (
	ProviderHermes = "hermes"
	ProviderStatic = "static"
)

// Log messages
const (
	LogMsgQuoteRejected   = "Oracle quote rejected"
	LogMsgQuoteAccepted   = "Oracle quote accepted"
	LogMsgHermesRequest   = "Requesting Hermes price update"
	LogMsgHermesCacheHit  = "Hermes quote served from cache"
	LogMsgHermesBadStatus = "Hermes returned non-200 status"
)

// Error contexts
const (
	ErrContextFetchQuote    = "failed to fetch oracle quote"
	ErrContextHermesRequest = "hermes request failed"
	ErrContextHermesDecode  = "failed to decode hermes response"
	ErrContextRateLimit     = "oracle rate limiter"
	ErrContextParsePrice    = "failed to parse hermes price"
	ErrContextStaticPrice   = "invalid static price"
)
