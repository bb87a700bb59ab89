package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/admin"
	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/oracle"
	"github.com/osse101/FateProtocol_Go/internal/testing/memstore"
)

const (
	testSymbol = "SOL/USD"
	testFeedID = "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"
	testPrice  = 150_000_000

	testDogeFeed = "dcef50dd0a4cd2dcc17e45df1676dcb336a11a61c69df7a0299b0150c672d25c"
)

type testAPI struct {
	store  *memstore.Store
	feed   *oracle.StaticFeed
	router chi.Router
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memstore.NewWithConfig(memstore.DefaultConfig())
	feed := oracle.NewStaticFeed()
	registry, err := market.New([]domain.Market{
		{Symbol: testSymbol, FeedID: testFeedID, Active: true},
		{Symbol: "BTC/USD", FeedID: "e62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43", Active: false},
	})
	require.NoError(t, err)
	quotes := oracle.NewValidator(feed, oracle.DefaultPolicy())

	matches := arena.NewService(store, quotes, registry, nil, time.Minute)
	proposals := council.NewService(store, registry, nil)
	adminSvc := admin.NewService(store, nil)

	api := &testAPI{store: store, feed: feed}
	api.setPrice(testPrice)

	mh := NewMatchHandler(matches)
	ph := NewProposalHandler(proposals)
	ah := NewAdminHandler(adminSvc, matches, proposals)
	kh := NewMarketHandler(registry, quotes)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", mh.HandleListMatches)
			r.Post("/", mh.HandleCreateMatch)
			r.Get("/{id}", mh.HandleGetMatch)
			r.Get("/{id}/entries", mh.HandleGetEntries)
			r.Post("/{id}/join", mh.HandleJoinMatch)
			r.Post("/{id}/predict", mh.HandlePredict)
			r.Post("/{id}/start", mh.HandleStartMatch)
			r.Post("/{id}/resolve", mh.HandleResolveMatch)
			r.Post("/{id}/claim", mh.HandleClaimWinnings)
			r.Post("/{id}/cancel", mh.HandleCancelMatch)
		})
		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", ph.HandleListProposals)
			r.Post("/", ph.HandleCreateProposal)
			r.Get("/{id}", ph.HandleGetProposal)
			r.Get("/{id}/votes", ph.HandleGetVotes)
			r.Post("/{id}/trade", ph.HandleTrade)
			r.Post("/{id}/resolve", ph.HandleResolveProposal)
			r.Post("/{id}/execute", ph.HandleExecuteProposal)
			r.Post("/{id}/claim", ph.HandleClaimVote)
			r.Post("/{id}/cancel", ph.HandleCancelProposal)
		})
		r.Get("/markets", kh.HandleListMarkets)
		r.Get("/oracle/*", kh.HandleGetQuote)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/config", ah.HandleGetConfig)
			r.Put("/config", ah.HandleUpdateConfig)
			r.Post("/pause", ah.HandlePause)
			r.Post("/matches/{id}/void", ah.HandleVoidMatch)
			r.Post("/matches/{id}/sweep", ah.HandleSweepMatch)
			r.Post("/proposals/{id}/sweep", ah.HandleSweepProposal)
			r.Get("/balances/{account}", ah.HandleGetBalance)
			r.Get("/transfers", ah.HandleListTransfers)
		})
	})
	api.router = r
	return api
}

func (a *testAPI) setPrice(price int64) {
	a.feed.Set(domain.RawQuote{
		FeedID:      testFeedID,
		Price:       price,
		Exponent:    -6,
		Confidence:  uint64(price) / 1000,
		PublishTime: time.Now().UTC(),
	})
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) createMatch(t *testing.T, maxPlayers int) domain.Match {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/matches", CreateMatchRequest{
		CreatorID:    "creator",
		MarketSymbol: testSymbol,
		MarketType:   string(domain.MarketTypePriceDirection),
		EntryFee:     domain.MinEntryFee,
		MaxPlayers:   maxPlayers,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Match](t, rec)
}

func (a *testAPI) createProposal(t *testing.T) domain.Proposal {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/proposals", CreateProposalRequest{
		ProposerID:  "alice",
		MarketName:  "DOGE/USD",
		Description: "List a doge market",
		FeedID:      testDogeFeed,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Proposal](t, rec)
}
