package oracle

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

const testFeed = "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func rawQuote(age time.Duration) domain.RawQuote {
	return domain.RawQuote{
		FeedID:      testFeed,
		Price:       15_012_345_678, // 150.12345678 at 1e-8
		Exponent:    -8,
		Confidence:  10_000_000,
		PublishTime: testNow.Add(-age),
	}
}

func TestValidate_Staleness(t *testing.T) {
	policy := DefaultPolicy()

	_, err := Validate(rawQuote(59*time.Second), policy, testNow)
	assert.NoError(t, err, "59s old quote is within a 60s bound")

	_, err = Validate(rawQuote(60*time.Second), policy, testNow)
	assert.NoError(t, err, "exactly at the bound is accepted")

	_, err = Validate(rawQuote(61*time.Second), policy, testNow)
	assert.ErrorIs(t, err, domain.ErrStaleQuote)
	assert.ErrorIs(t, err, domain.ErrOracle)
}

func TestValidate_FutureQuote(t *testing.T) {
	policy := DefaultPolicy()

	_, err := Validate(rawQuote(-5*time.Second), policy, testNow)
	assert.NoError(t, err, "5s ahead is within the skew allowance")

	_, err = Validate(rawQuote(-6*time.Second), policy, testNow)
	assert.ErrorIs(t, err, domain.ErrFutureQuote)
	assert.ErrorIs(t, err, domain.ErrOracle)

	_, err = Validate(rawQuote(-24*time.Hour), policy, testNow)
	assert.ErrorIs(t, err, domain.ErrFutureQuote, "a far-future quote never passes as fresh")

	policy.MaxClockSkew = 0
	_, err = Validate(rawQuote(0), policy, testNow)
	assert.NoError(t, err)
	_, err = Validate(rawQuote(-time.Nanosecond), policy, testNow)
	assert.ErrorIs(t, err, domain.ErrFutureQuote)
}

func TestValidate_PriceUnavailable(t *testing.T) {
	for _, price := range []int64{0, -1, math.MinInt64} {
		q := rawQuote(0)
		q.Price = price
		_, err := Validate(q, DefaultPolicy(), testNow)
		assert.ErrorIs(t, err, domain.ErrPriceUnavailable, "price %d", price)
	}
}

func TestValidate_Confidence(t *testing.T) {
	q := rawQuote(0)
	q.Price = 1_000_000
	q.Confidence = 10_000 // exactly 100 bps

	quote, err := Validate(q, DefaultPolicy(), testNow)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), quote.ConfidenceBps)

	q.Confidence = 10_100
	_, err = Validate(q, DefaultPolicy(), testNow)
	assert.ErrorIs(t, err, domain.ErrConfidenceTooWide)

	q.Price = math.MaxInt64
	q.Confidence = math.MaxUint64
	_, err = Validate(q, DefaultPolicy(), testNow)
	assert.ErrorIs(t, err, domain.ErrConfidenceTooWide, "huge confidence must not wrap around")
}

func TestValidate_Normalizes(t *testing.T) {
	quote, err := Validate(rawQuote(0), DefaultPolicy(), testNow)
	require.NoError(t, err)
	assert.Equal(t, uint64(150_123_456), quote.Normalized, "truncates to 6 decimals")
	assert.Equal(t, int64(15_012_345_678), quote.Price)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		exponent int32
		expected uint64
		err      error
	}{
		{name: "same scale", price: 100_000_000, exponent: -6, expected: 100_000_000},
		{name: "positive exponent multiplies", price: 100, exponent: 2, expected: 10_000_000_000},
		{name: "coarser scale multiplies", price: 12_345, exponent: -2, expected: 123_450_000},
		{name: "finer scale truncates", price: 123_456_789, exponent: -8, expected: 1_234_567},
		{name: "overflow", price: math.MaxInt64, exponent: 0, err: domain.ErrArithmeticOverflow},
		{name: "truncated to zero", price: 5, exponent: -10, err: domain.ErrPriceUnavailable},
		{name: "shift beyond table", price: 1, exponent: 30, err: domain.ErrArithmeticOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.price, tt.exponent, DefaultTargetDecimals)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidator_FetchQuote(t *testing.T) {
	feed := NewStaticFeed()
	feed.Set(rawQuote(5 * time.Second))
	v := NewValidator(feed, DefaultPolicy())

	quote, err := v.FetchQuote(context.Background(), "0x"+testFeed, testNow)
	require.NoError(t, err)
	assert.Equal(t, uint64(150_123_456), quote.Normalized)
}

func TestValidator_FetchQuote_FeedMismatch(t *testing.T) {
	feed := &fixedFeed{quote: rawQuote(0)}
	feed.quote.FeedID = "deadbeef"
	v := NewValidator(feed, DefaultPolicy())

	_, err := v.FetchQuote(context.Background(), testFeed, testNow)
	assert.ErrorIs(t, err, domain.ErrFeedMismatch)
}

func TestValidator_FetchQuote_FeedError(t *testing.T) {
	feed := NewStaticFeed()
	boom := errors.New("connection refused")
	feed.Fail(testFeed, boom)
	v := NewValidator(feed, DefaultPolicy())

	_, err := v.FetchQuote(context.Background(), testFeed, testNow)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), ErrContextFetchQuote)
}

func TestSameFeed(t *testing.T) {
	assert.True(t, SameFeed("0xABCDEF", "abcdef"))
	assert.False(t, SameFeed("0xabc", "abd"))
}

type fixedFeed struct {
	quote domain.RawQuote
}

func (f *fixedFeed) GetQuote(context.Context, string) (domain.RawQuote, error) {
	return f.quote, nil
}
