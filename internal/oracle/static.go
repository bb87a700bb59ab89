package oracle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// ErrInvalidDecimal is returned for malformed static prices
var ErrInvalidDecimal = errors.New("invalid decimal price")

// StaticFeed serves quotes set in memory. It backs local development and tests.
type StaticFeed struct {
	mu     sync.RWMutex
	quotes map[string]domain.RawQuote
	pinned map[string]bool
	errs   map[string]error
	now    func() time.Time
}

// NewStaticFeed creates an empty static feed
func NewStaticFeed() *StaticFeed {
	return &StaticFeed{
		quotes: make(map[string]domain.RawQuote),
		pinned: make(map[string]bool),
		errs:   make(map[string]error),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Set stores the quote returned for its feed id
func (f *StaticFeed) Set(q domain.RawQuote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := NormalizeFeedID(q.FeedID)
	f.quotes[key] = q
	delete(f.pinned, key)
	delete(f.errs, key)
}

// Pin stores a quote that is re-stamped with the current time on every read,
// so it never goes stale
func (f *StaticFeed) Pin(q domain.RawQuote) {
	f.Set(q)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinned[NormalizeFeedID(q.FeedID)] = true
}

// Fail makes every read of feedID return err
func (f *StaticFeed) Fail(feedID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[NormalizeFeedID(feedID)] = err
}

func (f *StaticFeed) GetQuote(_ context.Context, feedID string) (domain.RawQuote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	key := NormalizeFeedID(feedID)
	if err, ok := f.errs[key]; ok {
		return domain.RawQuote{}, err
	}
	q, ok := f.quotes[key]
	if !ok {
		return domain.RawQuote{}, fmt.Errorf("%w: no quote for feed %s", domain.ErrPriceUnavailable, feedID)
	}
	if f.pinned[key] {
		q.PublishTime = f.now()
	}
	return q, nil
}

// ParseStaticPrices reads "SYMBOL=decimal" pairs separated by commas,
// e.g. "SOL/USD=150.25,BTC/USD=64000". Symbols are returned uppercased.
func ParseStaticPrices(list string) (map[string]domain.RawQuote, error) {
	out := make(map[string]domain.RawQuote)
	for _, pair := range strings.Split(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		symbol, value, ok := strings.Cut(pair, "=")
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if !ok || symbol == "" {
			return nil, fmt.Errorf("%s: %q", ErrContextStaticPrice, pair)
		}
		price, exponent, err := ParseDecimal(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrContextStaticPrice, symbol, err)
		}
		out[symbol] = domain.RawQuote{Price: price, Exponent: exponent}
	}
	return out, nil
}

// ParseDecimal splits a positive decimal string into Pyth-style mantissa and exponent:
// "150.25" is 15025 with exponent -2.
func ParseDecimal(s string) (int64, int32, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, 0, fmt.Errorf("%w: empty price", ErrInvalidDecimal)
	}
	mantissa, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil || mantissa <= 0 || strings.HasPrefix(whole, "-") || strings.HasPrefix(whole, "+") {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return mantissa, -int32(len(frac)), nil
}
