package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/oracle"
)

func testRegistry(t *testing.T) market.Registry {
	t.Helper()
	registry, err := market.New([]domain.Market{
		{Symbol: "SOL/USD", FeedID: "0xef0d", Active: true},
		{Symbol: "BTC/USD", FeedID: "0xe62d", Active: true},
	})
	require.NoError(t, err)
	return registry
}

func TestInitializeOracle_Static(t *testing.T) {
	cfg := &config.Config{
		OracleProvider:         oracle.ProviderStatic,
		OracleMaxAge:           time.Minute,
		OracleMaxConfidenceBps: 100,
		StaticPrices:           "SOL/USD=150.25",
	}

	quotes, err := InitializeOracle(cfg, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, quotes.Policy().MaxAge)

	q, err := quotes.FetchQuote(context.Background(), "0xef0d", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, uint64(150_250_000), q.Normalized)

	_, err = quotes.FetchQuote(context.Background(), "0xe62d", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestInitializeOracle_StaticUnknownSymbol(t *testing.T) {
	cfg := &config.Config{OracleProvider: oracle.ProviderStatic, StaticPrices: "DOGE/USD=0.1"}

	_, err := InitializeOracle(cfg, testRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFailedStaticPrices)
}

func TestInitializeOracle_Hermes(t *testing.T) {
	cfg := &config.Config{
		OracleProvider:         oracle.ProviderHermes,
		OracleMaxAge:           30 * time.Second,
		OracleMaxConfidenceBps: 50,
	}

	quotes, err := InitializeOracle(cfg, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(50), quotes.Policy().MaxConfidenceBps)
	assert.Equal(t, int32(oracle.DefaultTargetDecimals), quotes.Policy().TargetDecimals)
}
