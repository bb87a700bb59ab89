package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/oracle"
)

// InitializeOracle builds the configured price feed behind a validating policy.
// The static provider serves STATIC_PRICES pinned to the current time.
func InitializeOracle(cfg *config.Config, registry market.Registry) (*oracle.Validator, error) {
	policy := oracle.Policy{
		MaxAge:           cfg.OracleMaxAge,
		MaxClockSkew:     cfg.OracleMaxClockSkew,
		MaxConfidenceBps: cfg.OracleMaxConfidenceBps,
		TargetDecimals:   oracle.DefaultTargetDecimals,
	}

	var feed oracle.Feed
	switch cfg.OracleProvider {
	case oracle.ProviderStatic:
		static, err := staticFeed(cfg.StaticPrices, registry)
		if err != nil {
			return nil, err
		}
		feed = static
	default:
		feed = oracle.NewHermesFeed(oracle.HermesConfig{
			BaseURL:        cfg.HermesURL,
			RequestsPerSec: cfg.HermesRequestsPerSec,
			Burst:          cfg.HermesBurst,
			CacheSize:      cfg.HermesCacheSize,
			CacheTTL:       cfg.HermesCacheTTL,
		})
	}

	slog.Info(LogMsgOracleInitialized,
		"provider", cfg.OracleProvider,
		"max_age", policy.MaxAge,
		"max_clock_skew", policy.MaxClockSkew,
		"max_confidence_bps", policy.MaxConfidenceBps)
	return oracle.NewValidator(feed, policy), nil
}

func staticFeed(list string, registry market.Registry) (*oracle.StaticFeed, error) {
	prices, err := oracle.ParseStaticPrices(list)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedStaticPrices, err)
	}

	feed := oracle.NewStaticFeed()
	for symbol, q := range prices {
		m, err := registry.Lookup(symbol)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedStaticPrices, err)
		}
		feed.Pin(domain.RawQuote{FeedID: m.FeedID, Price: q.Price, Exponent: q.Exponent})
	}
	if len(prices) == 0 {
		slog.Warn(LogMsgStaticFeedEmpty)
	}
	return feed, nil
}
