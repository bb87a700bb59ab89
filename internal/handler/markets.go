package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/market"
)

// QuoteSource returns validated oracle quotes
type QuoteSource interface {
	FetchQuote(ctx context.Context, feedID string, now time.Time) (*domain.OracleQuote, error)
}

// MarketHandler serves the market registry and live oracle prices
type MarketHandler struct {
	registry market.Registry
	quotes   QuoteSource
	now      func() time.Time
}

// NewMarketHandler creates a MarketHandler
func NewMarketHandler(registry market.Registry, quotes QuoteSource) *MarketHandler {
	return &MarketHandler{
		registry: registry,
		quotes:   quotes,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// QuoteResponse is a validated oracle price for one market
type QuoteResponse struct {
	Symbol string             `json:"symbol"`
	Quote  domain.OracleQuote `json:"quote"`
}

// HandleListMarkets returns every configured market
// @Summary List markets
// @Tags markets
// @Produce json
// @Success 200 {array} domain.Market
// @Router /api/v1/markets [get]
func (h *MarketHandler) HandleListMarkets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.List())
}

// HandleGetQuote returns the current validated price for a symbol such as SOL/USD
// @Summary Get oracle quote
// @Tags markets
// @Produce json
// @Param symbol path string true "Market symbol, e.g. SOL/USD"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/oracle/{symbol} [get]
func (h *MarketHandler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "*")
	mkt, err := h.registry.Lookup(symbol)
	if err != nil {
		respondServiceError(w, r, "Get quote", err)
		return
	}

	q, err := h.quotes.FetchQuote(r.Context(), mkt.FeedID, h.now())
	if err != nil {
		respondServiceError(w, r, "Get quote", err)
		return
	}
	respondJSON(w, http.StatusOK, QuoteResponse{Symbol: mkt.Symbol, Quote: *q})
}
