package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

func newHermesServer(t *testing.T, hits *int32, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, hermesLatestPath, r.URL.Path)
		assert.Equal(t, "0x"+testFeed, r.URL.Query().Get("ids[]"))
		assert.Equal(t, "true", r.URL.Query().Get("parsed"))

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"binary":{"encoding":"hex","data":[]},"parsed":[{"id":"%s","price":{"price":"15012345678","conf":"10000000","expo":-8,"publish_time":%d},"ema_price":{"price":"15000000000","conf":"9000000","expo":-8,"publish_time":%d}}]}`,
			testFeed, testNow.Unix(), testNow.Unix())
	}))
}

func TestHermesFeed_GetQuote(t *testing.T) {
	var hits int32
	srv := newHermesServer(t, &hits, http.StatusOK)
	defer srv.Close()

	feed := NewHermesFeed(HermesConfig{BaseURL: srv.URL, CacheTTL: time.Minute})

	q, err := feed.GetQuote(context.Background(), "0x"+testFeed)
	require.NoError(t, err)
	assert.Equal(t, testFeed, q.FeedID)
	assert.Equal(t, int64(15_012_345_678), q.Price)
	assert.Equal(t, int32(-8), q.Exponent)
	assert.Equal(t, uint64(10_000_000), q.Confidence)
	assert.True(t, q.PublishTime.Equal(testNow))

	_, err = feed.GetQuote(context.Background(), testFeed)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second read is served from cache")
}

func TestHermesFeed_ConcurrentReadsShareRequest(t *testing.T) {
	var hits int32
	srv := newHermesServer(t, &hits, http.StatusOK)
	defer srv.Close()

	feed := NewHermesFeed(HermesConfig{BaseURL: srv.URL, CacheTTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := feed.GetQuote(context.Background(), testFeed)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(20))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&hits), int32(1))
}

func TestHermesFeed_BadStatus(t *testing.T) {
	var hits int32
	srv := newHermesServer(t, &hits, http.StatusServiceUnavailable)
	defer srv.Close()

	feed := NewHermesFeed(HermesConfig{BaseURL: srv.URL})

	_, err := feed.GetQuote(context.Background(), testFeed)
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestHermesFeed_WithValidator(t *testing.T) {
	var hits int32
	srv := newHermesServer(t, &hits, http.StatusOK)
	defer srv.Close()

	v := NewValidator(NewHermesFeed(HermesConfig{BaseURL: srv.URL}), DefaultPolicy())

	quote, err := v.FetchQuote(context.Background(), testFeed, testNow.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, uint64(150_123_456), quote.Normalized)

	_, err = v.FetchQuote(context.Background(), testFeed, testNow.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrStaleQuote)
}
