package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Config holds the application configuration
type Config struct {
	Port           int
	APIKey         string // API key for authentication
	AdminAPIKey    string // Optional second key guarding /api/v1/admin
	TrustedProxies []string

	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string
	ServiceName string
	Version     string

	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// Oracle
	OracleProvider         string // "hermes" or "static"
	HermesURL              string
	HermesRequestsPerSec   float64
	HermesBurst            int
	HermesCacheSize        int
	HermesCacheTTL         time.Duration
	OracleMaxAge           time.Duration
	OracleMaxClockSkew     time.Duration
	OracleMaxConfidenceBps uint64
	StaticPrices           string // "SOL/USD=150.25,BTC/USD=64000", served by the static provider
	MarketsFile            string
	MarketSyncInterval     time.Duration // how often listings made on other instances are picked up

	// Protocol defaults written to global config on first start
	FeeBps            uint16
	Treasury          string
	ProposalStake     uint64
	ProposerBonusBps  uint16
	MaxPriceImpactBps uint16

	// Workers
	ResolutionWindow time.Duration
	ScanInterval     time.Duration
	WorkerPoolSize   int

	// HTTP rate limiting
	RequestsPerSecond float64
	RequestBurst      int

	// Redis lock backend, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DiscordWebhookURL string

	EventMaxRetries     int
	EventRetryDelay     time.Duration
	EventDeadLetterPath string

	// Event journal
	EventLogRetentionDays   int
	EventLogCleanupInterval time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:         getEnv("API_KEY", ""),
		AdminAPIKey:    getEnv("ADMIN_API_KEY", ""),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		LogDir:      getEnv("LOG_DIR", DefaultLogDir),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", DefaultVersion),

		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "fateprotocol"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		OracleProvider:         strings.ToLower(getEnv("ORACLE_PROVIDER", DefaultOracleProvider)),
		HermesURL:              getEnv("HERMES_URL", ""),
		HermesRequestsPerSec:   getEnvAsFloat("HERMES_REQUESTS_PER_SEC", 0),
		HermesBurst:            getEnvAsInt("HERMES_BURST", 0),
		HermesCacheSize:        getEnvAsInt("HERMES_CACHE_SIZE", 0),
		HermesCacheTTL:         getEnvAsDuration("HERMES_CACHE_TTL", 0),
		OracleMaxAge:           getEnvAsDuration("ORACLE_MAX_AGE", DefaultOracleMaxAge),
		OracleMaxClockSkew:     getEnvAsDuration("ORACLE_MAX_CLOCK_SKEW", DefaultOracleMaxClockSkew),
		OracleMaxConfidenceBps: uint64(getEnvAsInt("ORACLE_MAX_CONFIDENCE_BPS", DefaultOracleMaxConfidence)),
		StaticPrices:           getEnv("STATIC_PRICES", ""),
		MarketsFile:            getEnv("MARKETS_FILE", ConfigPathMarkets),
		MarketSyncInterval:     getEnvAsDuration("MARKET_SYNC_INTERVAL", DefaultMarketSyncInterval),

		FeeBps:            uint16(getEnvAsInt("PLATFORM_FEE_BPS", int(domain.DefaultPlatformFeeBps))),
		Treasury:          getEnv("TREASURY_ACCOUNT", domain.DefaultTreasury),
		ProposalStake:     uint64(getEnvAsInt("PROPOSAL_STAKE", int(domain.DefaultProposalStake))),
		ProposerBonusBps:  uint16(getEnvAsInt("PROPOSER_BONUS_BPS", int(domain.DefaultProposerBonus))),
		MaxPriceImpactBps: uint16(getEnvAsInt("MAX_PRICE_IMPACT_BPS", 0)),

		ResolutionWindow: getEnvAsDuration("RESOLUTION_WINDOW", DefaultResolutionWindow),
		ScanInterval:     getEnvAsDuration("RESOLUTION_SCAN_INTERVAL", DefaultScanInterval),
		WorkerPoolSize:   getEnvAsInt("WORKER_POOL_SIZE", DefaultWorkerPoolSize),

		RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", DefaultRequestsPerSecond),
		RequestBurst:      getEnvAsInt("RATE_LIMIT_BURST", DefaultRequestBurst),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),

		EventMaxRetries:     getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries),
		EventRetryDelay:     getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay),
		EventDeadLetterPath: getEnv("EVENT_DEADLETTER_PATH", DefaultEventDeadLetterPath),

		EventLogRetentionDays:   getEnvAsInt("EVENT_LOG_RETENTION_DAYS", DefaultEventLogRetentionDays),
		EventLogCleanupInterval: getEnvAsDuration("EVENT_LOG_CLEANUP_INTERVAL", DefaultEventLogCleanupInterval),
	}

	portStr := getEnv("PORT", DefaultPort)
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	if cfg.OracleProvider != "hermes" && cfg.OracleProvider != "static" {
		return nil, fmt.Errorf("invalid ORACLE_PROVIDER %q: expected hermes or static", cfg.OracleProvider)
	}

	return cfg, nil
}

// GlobalConfig returns the protocol config seeded into storage on first start
func (c *Config) GlobalConfig() domain.GlobalConfig {
	return domain.GlobalConfig{
		FeeBps:            c.FeeBps,
		Treasury:          c.Treasury,
		ProposalStake:     c.ProposalStake,
		ProposerBonusBps:  c.ProposerBonusBps,
		MaxPriceImpactBps: c.MaxPriceImpactBps,
	}
}

// RedisEnabled reports whether a Redis lock backend is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back on a missing or malformed value
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a time.ParseDuration string such as "5m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
