package config

import "time"

const (
	// Configuration file paths
	ConfigPathMarkets = "configs/markets.yaml"
)

// Defaults applied when the environment leaves a value unset
const (
	DefaultPort        = "8080"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultLogDir      = "logs"
	DefaultEnvironment = "dev"
	DefaultServiceName = "fate-protocol"
	DefaultVersion     = "dev"

	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultOracleProvider      = "hermes"
	DefaultOracleMaxAge        = 60 * time.Second
	DefaultOracleMaxClockSkew  = 5 * time.Second
	DefaultOracleMaxConfidence = 100
	DefaultMarketSyncInterval  = time.Minute

	DefaultResolutionWindow = 60 * time.Second
	DefaultScanInterval     = 5 * time.Second
	DefaultWorkerPoolSize   = 4

	DefaultRequestsPerSecond = 20
	DefaultRequestBurst      = 60

	DefaultEventMaxRetries     = 5
	DefaultEventRetryDelay     = 2 * time.Second
	DefaultEventDeadLetterPath = "logs/event_deadletter.jsonl"

	DefaultEventLogRetentionDays   = 90
	DefaultEventLogCleanupInterval = 24 * time.Hour
)

// Placeholder values shipped in .env.example
const (
	ExampleDBPassword = "change_this_secure_password"
	ExampleAPIKey     = "generate_with_openssl_rand_hex_32"
)
