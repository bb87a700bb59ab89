package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/metrics"
)

// HermesConfig configures the Pyth Hermes HTTP feed
type HermesConfig struct {
	BaseURL        string
	RequestsPerSec float64
	Burst          int
	CacheSize      int
	CacheTTL       time.Duration
	Timeout        time.Duration
}

// HermesFeed reads the latest parsed price updates from a Pyth Hermes endpoint.
// Concurrent reads of the same feed share one request, and results are cached briefly.
type HermesFeed struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	cache   *expirable.LRU[string, domain.RawQuote]
}

// NewHermesFeed creates a Hermes client, filling zero config fields with defaults
func NewHermesFeed(cfg HermesConfig) *HermesFeed {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHermesURL
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = DefaultRequestsPerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}

	return &HermesFeed{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		cache:   expirable.NewLRU[string, domain.RawQuote](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

type hermesResponse struct {
	Parsed []hermesParsed `json:"parsed"`
}

type hermesParsed struct {
	ID    string      `json:"id"`
	Price hermesPrice `json:"price"`
}

type hermesPrice struct {
	Price       string `json:"price"`
	Conf        string `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

func (f *HermesFeed) GetQuote(ctx context.Context, feedID string) (domain.RawQuote, error) {
	key := NormalizeFeedID(feedID)
	if q, ok := f.cache.Get(key); ok {
		logger.FromContext(ctx).Debug(LogMsgHermesCacheHit, "feed_id", key)
		return q, nil
	}

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		return f.fetch(ctx, key)
	})
	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues(ProviderHermes, metrics.ResultError).Inc()
		return domain.RawQuote{}, err
	}
	metrics.OracleRequestsTotal.WithLabelValues(ProviderHermes, metrics.ResultSuccess).Inc()

	q := v.(domain.RawQuote)
	f.cache.Add(key, q)
	return q, nil
}

func (f *HermesFeed) fetch(ctx context.Context, feedID string) (domain.RawQuote, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", ErrContextRateLimit, err)
	}

	q := url.Values{}
	q.Add("ids[]", "0x"+feedID)
	q.Set("parsed", "true")
	endpoint := f.baseURL + hermesLatestPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", ErrContextHermesRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	logger.FromContext(ctx).Debug(LogMsgHermesRequest, "feed_id", feedID)
	start := time.Now()
	resp, err := f.http.Do(req)
	metrics.OracleRequestDuration.WithLabelValues(ProviderHermes).Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w: %v", ErrContextHermesRequest, domain.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.FromContext(ctx).Warn(LogMsgHermesBadStatus, "status", resp.StatusCode, "body", string(body))
		return domain.RawQuote{}, fmt.Errorf("%s: %w: status %d", ErrContextHermesRequest, domain.ErrPriceUnavailable, resp.StatusCode)
	}

	var decoded hermesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", ErrContextHermesDecode, err)
	}
	if len(decoded.Parsed) == 0 {
		return domain.RawQuote{}, fmt.Errorf("%s: %w: empty update", ErrContextHermesRequest, domain.ErrPriceUnavailable)
	}

	return decoded.Parsed[0].toRaw()
}

func (p hermesParsed) toRaw() (domain.RawQuote, error) {
	price, err := strconv.ParseInt(p.Price.Price, 10, 64)
	if err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", ErrContextParsePrice, err)
	}
	conf, err := strconv.ParseUint(p.Price.Conf, 10, 64)
	if err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", ErrContextParsePrice, err)
	}
	return domain.RawQuote{
		FeedID:      NormalizeFeedID(p.ID),
		Price:       price,
		Exponent:    p.Price.Expo,
		Confidence:  conf,
		PublishTime: time.Unix(p.Price.PublishTime, 0).UTC(),
	}, nil
}
