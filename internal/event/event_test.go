package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	var got Event

	bus.Subscribe(MatchResolved, func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	payload := domain.MatchResolvedPayload{MatchID: uuid.New(), MarketSymbol: "SOL/USD", TotalPot: 3_000_000}
	require.NoError(t, bus.Publish(context.Background(), NewMatchResolvedEvent(payload)))

	assert.Equal(t, MatchResolved, got.Type)
	assert.Equal(t, EventSchemaVersion, got.Version)
	assert.Equal(t, "SOL/USD", got.GetMetadataValue(MetadataKeyMarket))
	assert.Equal(t, payload, got.Payload)
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	count := 0
	handler := func(ctx context.Context, e Event) error {
		count++
		return nil
	}

	bus.Subscribe(MatchCreated, handler)
	bus.Subscribe(MatchCreated, handler)

	require.NoError(t, bus.Publish(context.Background(), NewMatchCreatedEvent(domain.Match{})))
	assert.Equal(t, 2, count)
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	bus.Subscribe(VoteClaimed, func(ctx context.Context, e Event) error {
		return errors.New("handler error")
	})

	err := bus.Publish(context.Background(), NewClaimEvent(domain.ClaimPayload{PoolKind: domain.PoolKindProposal}))
	assert.Error(t, err)
}

func TestNewClaimEvent_TypeFollowsPoolKind(t *testing.T) {
	assert.Equal(t, WinningsClaimed, NewClaimEvent(domain.ClaimPayload{PoolKind: domain.PoolKindMatch}).Type)
	assert.Equal(t, VoteClaimed, NewClaimEvent(domain.ClaimPayload{PoolKind: domain.PoolKindProposal}).Type)
}

func TestSubscribeAll(t *testing.T) {
	bus := NewMemoryBus()
	seen := map[Type]bool{}
	SubscribeAll(bus, func(ctx context.Context, e Event) error {
		seen[e.Type] = true
		return nil
	})

	for _, typ := range AllTypes() {
		require.NoError(t, bus.Publish(context.Background(), Event{Type: typ}))
	}
	assert.Len(t, seen, len(AllTypes()))
}

func TestDecodePayload(t *testing.T) {
	want := domain.ClaimPayload{PoolKind: domain.PoolKindMatch, Participant: "alice", Amount: 975_000}

	got, err := DecodePayload[domain.ClaimPayload](want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	generic := map[string]interface{}{"pool_kind": "match", "participant": "alice", "amount": 975000}
	got, err = DecodePayload[domain.ClaimPayload](generic)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Participant)
	assert.Equal(t, uint64(975_000), got.Amount)
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 1))
	assert.Equal(t, 4*RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 3))
	assert.Equal(t, RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 0))
}
