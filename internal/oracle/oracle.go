// Package oracle validates and normalizes externally reported prices before they
// are allowed to decide a match.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/metrics"
	"github.com/osse101/FateProtocol_Go/internal/payout"
)

// Feed is a source of raw price reports
type Feed interface {
	GetQuote(ctx context.Context, feedID string) (domain.RawQuote, error)
}

// Policy bounds what a usable quote looks like.
// MaxClockSkew is how far past now a publish time may sit; zero allows none.
type Policy struct {
	MaxAge           time.Duration
	MaxClockSkew     time.Duration
	MaxConfidenceBps uint64
	TargetDecimals   int32
}

// DefaultPolicy returns the 60s / 5s skew / 100bps / 6 decimal policy
func DefaultPolicy() Policy {
	return Policy{
		MaxAge:           DefaultMaxAge,
		MaxClockSkew:     DefaultMaxClockSkew,
		MaxConfidenceBps: DefaultMaxConfidenceBps,
		TargetDecimals:   DefaultTargetDecimals,
	}
}

// Validator fetches quotes from a feed and applies a Policy
type Validator struct {
	feed   Feed
	policy Policy
}

// NewValidator creates a validator over feed
func NewValidator(feed Feed, policy Policy) *Validator {
	return &Validator{feed: feed, policy: policy}
}

// Policy returns the active validation policy
func (v *Validator) Policy() Policy {
	return v.policy
}

// FetchQuote reads feedID and returns the validated, normalized quote
func (v *Validator) FetchQuote(ctx context.Context, feedID string, now time.Time) (*domain.OracleQuote, error) {
	raw, err := v.feed.GetQuote(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFetchQuote, err)
	}
	if !SameFeed(raw.FeedID, feedID) {
		logger.FromContext(ctx).Warn(LogMsgQuoteRejected, "feed_id", feedID, "returned", raw.FeedID)
		metrics.OracleRejections.WithLabelValues(domain.ErrMsgFeedMismatch).Inc()
		return nil, domain.ErrFeedMismatch
	}

	quote, err := Validate(raw, v.policy, now)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgQuoteRejected, "feed_id", feedID, "error", err,
			"price", raw.Price, "conf", raw.Confidence, "publish_time", raw.PublishTime)
		metrics.OracleRejections.WithLabelValues(err.Error()).Inc()
		return nil, err
	}
	logger.FromContext(ctx).Debug(LogMsgQuoteAccepted, "feed_id", feedID, "normalized", quote.Normalized)
	return quote, nil
}

// Validate applies policy to raw as of now. It has no side effects.
func Validate(raw domain.RawQuote, policy Policy, now time.Time) (*domain.OracleQuote, error) {
	if now.Sub(raw.PublishTime) > policy.MaxAge {
		return nil, domain.ErrStaleQuote
	}
	if raw.PublishTime.Sub(now) > policy.MaxClockSkew {
		return nil, domain.ErrFutureQuote
	}
	if raw.Price <= 0 {
		return nil, domain.ErrPriceUnavailable
	}

	confBps, err := ConfidenceBps(raw.Confidence, uint64(raw.Price))
	if err != nil || confBps > policy.MaxConfidenceBps {
		return nil, domain.ErrConfidenceTooWide
	}

	normalized, err := Normalize(raw.Price, raw.Exponent, policy.TargetDecimals)
	if err != nil {
		return nil, err
	}

	return &domain.OracleQuote{
		RawQuote:      raw,
		Normalized:    normalized,
		ConfidenceBps: confBps,
	}, nil
}

// ConfidenceBps returns conf as a fraction of price in basis points
func ConfidenceBps(conf, price uint64) (uint64, error) {
	if price == 0 {
		return 0, domain.ErrPriceUnavailable
	}
	return payout.MulDiv(conf, domain.BasisPoints, price)
}

// Normalize rescales price*10^exponent to targetDecimals fixed-point.
// Extra precision is truncated; a result that does not fit fails with ErrArithmeticOverflow.
func Normalize(price int64, exponent, targetDecimals int32) (uint64, error) {
	if price <= 0 {
		return 0, domain.ErrPriceUnavailable
	}
	value := uint64(price)
	shift := exponent + targetDecimals

	switch {
	case shift > 0:
		if shift >= int32(len(pow10)) {
			return 0, domain.ErrArithmeticOverflow
		}
		return payout.MulDiv(value, pow10[shift], 1)
	case shift < 0:
		if -shift >= int32(len(pow10)) {
			return 0, domain.ErrPriceUnavailable
		}
		value /= pow10[-shift]
	}

	if value == 0 {
		return 0, domain.ErrPriceUnavailable
	}
	return value, nil
}

var pow10 = [...]uint64{
	1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10,
	1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19,
}

// SameFeed compares feed ids ignoring a 0x prefix and hex case
func SameFeed(a, b string) bool {
	return NormalizeFeedID(a) == NormalizeFeedID(b)
}

// NormalizeFeedID lowercases a feed id and strips its 0x prefix
func NormalizeFeedID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.TrimPrefix(id, "0x")
}
