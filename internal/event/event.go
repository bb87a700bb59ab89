package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version   string      `json:"version"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Metadata  Metadata    `json:"metadata,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Settlement event types
const (
	MatchCreated      = Type(domain.EventTypeMatchCreated)
	MatchJoined       = Type(domain.EventTypeMatchJoined)
	MatchStarted      = Type(domain.EventTypeMatchStarted)
	MatchResolved     = Type(domain.EventTypeMatchResolved)
	MatchCancelled    = Type(domain.EventTypeMatchCancelled)
	WinningsClaimed   = Type(domain.EventTypeWinningsClaimed)
	ResidualSwept     = Type(domain.EventTypeResidualSwept)
	ProposalCreated   = Type(domain.EventTypeProposalCreated)
	OutcomeTraded     = Type(domain.EventTypeOutcomeTraded)
	ProposalResolved  = Type(domain.EventTypeProposalResolved)
	ProposalExecuted  = Type(domain.EventTypeProposalExecuted)
	ProposalCancelled = Type(domain.EventTypeProposalCancelled)
	VoteClaimed       = Type(domain.EventTypeVoteClaimed)
	MarketListed      = Type(domain.EventTypeMarketListed)
	ConfigUpdated     = Type(domain.EventTypeConfigUpdated)
)

// MatchJoinedPayloadV1 is the typed payload for join events
type MatchJoinedPayloadV1 struct {
	MatchID        string `json:"match_id"`
	PlayerID       string `json:"player_id"`
	Stake          uint64 `json:"stake"`
	CurrentPlayers int    `json:"current_players"`
	TotalPot       uint64 `json:"total_pot"`
}

// PoolPayloadV1 identifies a pool for lifecycle events that carry no other data
type PoolPayloadV1 struct {
	PoolKind string `json:"pool_kind"`
	PoolID   string `json:"pool_id"`
	ActorID  string `json:"actor_id,omitempty"`
}

func newEvent(t Type, payload interface{}, metadata Metadata) Event {
	return Event{
		Version:   EventSchemaVersion,
		Type:      t,
		Payload:   payload,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchCreatedEvent snapshots a newly created match
func NewMatchCreatedEvent(m domain.Match) Event {
	return newEvent(MatchCreated, m, Metadata{MetadataKeyMarket: m.MarketSymbol})
}

// NewMatchJoinedEvent records a player joining
func NewMatchJoinedEvent(m domain.Match, playerID string) Event {
	return newEvent(MatchJoined, MatchJoinedPayloadV1{
		MatchID:        m.ID.String(),
		PlayerID:       playerID,
		Stake:          m.EntryFee,
		CurrentPlayers: m.CurrentPlayers,
		TotalPot:       m.TotalPot,
	}, Metadata{MetadataKeyMarket: m.MarketSymbol})
}

// NewMatchStartedEvent snapshots a match at its entry price
func NewMatchStartedEvent(m domain.Match) Event {
	return newEvent(MatchStarted, m, Metadata{MetadataKeyMarket: m.MarketSymbol})
}

// NewMatchResolvedEvent records the settlement of a match
func NewMatchResolvedEvent(p domain.MatchResolvedPayload) Event {
	return newEvent(MatchResolved, p, Metadata{MetadataKeyMarket: p.MarketSymbol})
}

// NewMatchCancelledEvent records a creator cancellation
func NewMatchCancelledEvent(matchID, creatorID string) Event {
	return newEvent(MatchCancelled, PoolPayloadV1{PoolKind: domain.PoolKindMatch, PoolID: matchID, ActorID: creatorID}, nil)
}

// NewClaimEvent records a claim on a match or proposal
func NewClaimEvent(p domain.ClaimPayload) Event {
	t := WinningsClaimed
	if p.PoolKind == domain.PoolKindProposal {
		t = VoteClaimed
	}
	return newEvent(t, p, Metadata{MetadataKeyPoolKind: p.PoolKind})
}

// NewResidualSweptEvent records dust moving to the treasury
func NewResidualSweptEvent(poolKind string, r domain.ResidualResult) Event {
	return newEvent(ResidualSwept, r, Metadata{MetadataKeyPoolKind: poolKind})
}

// NewProposalCreatedEvent snapshots a new proposal
func NewProposalCreatedEvent(p domain.Proposal) Event {
	return newEvent(ProposalCreated, p, nil)
}

// NewOutcomeTradedEvent records a council trade
func NewOutcomeTradedEvent(p domain.OutcomeTradedPayload) Event {
	return newEvent(OutcomeTraded, p, nil)
}

// NewProposalResolvedEvent records the close of voting
func NewProposalResolvedEvent(p domain.ProposalResolvedPayload) Event {
	return newEvent(ProposalResolved, p, nil)
}

// NewProposalExecutedEvent records execution and the proposer bonus
func NewProposalExecutedEvent(p domain.ProposalExecutedPayload) Event {
	return newEvent(ProposalExecuted, p, nil)
}

// NewProposalCancelledEvent records a proposer cancellation
func NewProposalCancelledEvent(proposalID, proposerID string) Event {
	return newEvent(ProposalCancelled, PoolPayloadV1{PoolKind: domain.PoolKindProposal, PoolID: proposalID, ActorID: proposerID}, nil)
}

// NewMarketListedEvent records a market added to the registry by an executed proposal
func NewMarketListedEvent(m domain.Market) Event {
	return newEvent(MarketListed, m, Metadata{MetadataKeyMarket: m.Symbol})
}

// NewConfigUpdatedEvent carries the config after an admin change
func NewConfigUpdatedEvent(cfg domain.GlobalConfig) Event {
	return newEvent(ConfigUpdated, cfg, nil)
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// Publisher is what services depend on: fire-and-forget publishing that never fails the caller
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll subscribes handler to every settlement event type
func SubscribeAll(bus Bus, handler Handler) {
	for _, t := range AllTypes() {
		bus.Subscribe(t, handler)
	}
}

// AllTypes lists every event type the services publish
func AllTypes() []Type {
	return []Type{
		MatchCreated, MatchJoined, MatchStarted, MatchResolved, MatchCancelled,
		WinningsClaimed, ResidualSwept,
		ProposalCreated, OutcomeTraded, ProposalResolved, ProposalExecuted,
		ProposalCancelled, VoteClaimed, MarketListed, ConfigUpdated,
	}
}
