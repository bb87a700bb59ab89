package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "match.resolved")
const (
	EventTypeMatchCreated    = "match.created"
	EventTypeMatchJoined     = "match.joined"
	EventTypeMatchStarted    = "match.started"
	EventTypeMatchResolved   = "match.resolved"
	EventTypeMatchCancelled  = "match.cancelled"
	EventTypeWinningsClaimed = "match.claimed"
	EventTypeResidualSwept   = "escrow.residual_swept"

	EventTypeProposalCreated   = "proposal.created"
	EventTypeOutcomeTraded     = "proposal.traded"
	EventTypeProposalResolved  = "proposal.resolved"
	EventTypeProposalExecuted  = "proposal.executed"
	EventTypeProposalCancelled = "proposal.cancelled"
	EventTypeVoteClaimed       = "proposal.claimed"

	EventTypeMarketListed = "market.listed"

	EventTypeConfigUpdated = "config.updated"
)

// MatchResolvedPayload is published after a match settles
type MatchResolvedPayload struct {
	MatchID      uuid.UUID `json:"match_id"`
	MarketSymbol string    `json:"market_symbol"`
	StartPrice   uint64    `json:"start_price"`
	EndPrice     uint64    `json:"end_price"`
	PriceChange  int64     `json:"price_change"`
	Outcome      Outcome   `json:"outcome"`
	TotalPot     uint64    `json:"total_pot"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// ClaimPayload is published for every successful claim on either pool kind
type ClaimPayload struct {
	PoolKind    string    `json:"pool_kind"`
	PoolID      uuid.UUID `json:"pool_id"`
	Participant string    `json:"participant"`
	Amount      uint64    `json:"amount"`
	Refund      bool      `json:"refund"`
	FeeSwept    uint64    `json:"fee_swept"`
}

// OutcomeTradedPayload is published after every council trade
type OutcomeTradedPayload struct {
	ProposalID uuid.UUID   `json:"proposal_id"`
	VoterID    string      `json:"voter_id"`
	Side       OutcomeSide `json:"side"`
	Amount     uint64      `json:"amount"`
	PassPool   uint64      `json:"pass_pool"`
	FailPool   uint64      `json:"fail_pool"`
	PassPrice  uint64      `json:"pass_price"`
	FailPrice  uint64      `json:"fail_price"`
}

// ProposalResolvedPayload is published when voting closes
type ProposalResolvedPayload struct {
	ProposalID uuid.UUID      `json:"proposal_id"`
	MarketName string         `json:"market_name"`
	Status     ProposalStatus `json:"status"`
	PassPool   uint64         `json:"pass_pool"`
	FailPool   uint64         `json:"fail_pool"`
	PassPrice  uint64         `json:"pass_price"`
	FailPrice  uint64         `json:"fail_price"`
}

// ProposalExecutedPayload is published when a passed proposal is executed
type ProposalExecutedPayload struct {
	ProposalID    uuid.UUID `json:"proposal_id"`
	ProposerID    string    `json:"proposer_id"`
	MarketName    string    `json:"market_name"`
	ProposerBonus uint64    `json:"proposer_bonus"`
	ExecutedAt    time.Time `json:"executed_at"`
}

// Pool kinds used in claim payloads and metric labels
const (
	PoolKindMatch    = "match"
	PoolKindProposal = "proposal"
)
