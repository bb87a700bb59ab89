package arena

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/oracle"
	"github.com/osse101/FateProtocol_Go/internal/testing/memstore"
)

const (
	testSymbol = "SOL/USD"
	testFeedID = "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"

	startPrice uint64 = 150_000_000
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) PublishWithRetry(_ context.Context, evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) count(t event.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type harness struct {
	t     *testing.T
	store *memstore.Store
	feed  *oracle.StaticFeed
	pub   *recordingPublisher
	svc   *service
	now   time.Time
	price uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.NewWithConfig(memstore.DefaultConfig())
	feed := oracle.NewStaticFeed()
	markets, err := market.New([]domain.Market{{Symbol: testSymbol, FeedID: testFeedID, Active: true}})
	require.NoError(t, err)

	h := &harness{
		t:     t,
		store: store,
		feed:  feed,
		pub:   &recordingPublisher{},
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = newService(store, oracle.NewValidator(feed, oracle.DefaultPolicy()), markets, h.pub, time.Minute)
	h.svc.now = func() time.Time { return h.now }
	h.setPrice(startPrice)
	return h
}

// setPrice publishes a fresh quote at the harness clock
func (h *harness) setPrice(price uint64) {
	h.price = price
	h.feed.Set(domain.RawQuote{
		FeedID:      testFeedID,
		Price:       int64(price),
		Exponent:    -6,
		Confidence:  price / 1000,
		PublishTime: h.now,
	})
}

// advance moves the clock and keeps the current price fresh
func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
	h.setPrice(h.price)
}

func (h *harness) createDirection(entryFee uint64, maxPlayers int) *domain.Match {
	h.t.Helper()
	m, err := h.svc.CreateMatch(context.Background(), CreateMatchRequest{
		CreatorID:    "creator",
		MarketSymbol: testSymbol,
		MarketType:   domain.MarketTypePriceDirection,
		EntryFee:     entryFee,
		MaxPlayers:   maxPlayers,
	})
	require.NoError(h.t, err)
	return m
}

func (h *harness) join(matchID uuid.UUID, players ...string) {
	h.t.Helper()
	for _, p := range players {
		_, err := h.svc.JoinMatch(context.Background(), matchID, p)
		require.NoError(h.t, err)
	}
}

func (h *harness) predict(matchID uuid.UUID, player string, side domain.PredictionSide) {
	h.t.Helper()
	_, err := h.svc.LockInPrediction(context.Background(), matchID, player, side)
	require.NoError(h.t, err)
}

func (h *harness) match(id uuid.UUID) *domain.Match {
	h.t.Helper()
	m, err := h.svc.GetMatch(context.Background(), id)
	require.NoError(h.t, err)
	return m
}

// resolveAt moves the clock to the match's resolution time, sets the exit
// price and resolves
func (h *harness) resolveAt(id uuid.UUID, exit uint64) *domain.Match {
	h.t.Helper()
	m := h.match(id)
	h.now = m.ResolutionTime
	h.setPrice(exit)
	resolved, err := h.svc.ResolveMatch(context.Background(), id)
	require.NoError(h.t, err)
	return resolved
}
