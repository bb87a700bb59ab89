package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus represents the lifecycle phase of a futarchy proposal
type ProposalStatus string

const (
	ProposalStatusActive    ProposalStatus = "Active"
	ProposalStatusPassed    ProposalStatus = "Passed"
	ProposalStatusRejected  ProposalStatus = "Rejected"
	ProposalStatusExecuted  ProposalStatus = "Executed"
	ProposalStatusCancelled ProposalStatus = "Cancelled"
)

// IsResolved reports whether the market closed and votes can be claimed
func (s ProposalStatus) IsResolved() bool {
	return s == ProposalStatusPassed || s == ProposalStatusRejected || s == ProposalStatusExecuted
}

// OutcomeSide is the side a council vote backs
type OutcomeSide string

const (
	OutcomePass OutcomeSide = "Pass"
	OutcomeFail OutcomeSide = "Fail"
)

// IsValid reports whether the side is Pass or Fail
func (s OutcomeSide) IsValid() bool {
	return s == OutcomePass || s == OutcomeFail
}

// Proposal is a futarchy market deciding whether a new arena market is created
type Proposal struct {
	ID            uuid.UUID      `json:"id"`
	ProposerID    string         `json:"proposer_id"`
	MarketName    string         `json:"market_name"`
	Description   string         `json:"description"`
	FeedID        string         `json:"feed_id,omitempty"`
	Stake         uint64         `json:"stake"`
	PassPool      uint64         `json:"pass_pool"`
	FailPool      uint64         `json:"fail_pool"`
	PassPrice     uint64         `json:"pass_price"`
	FailPrice     uint64         `json:"fail_price"`
	PassVoters    int            `json:"pass_voters"`
	FailVoters    int            `json:"fail_voters"`
	Status        ProposalStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	VotingEndsAt  time.Time      `json:"voting_ends_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
	ExecutedAt    *time.Time     `json:"executed_at,omitempty"`
	ClaimedCount  int            `json:"claimed_count"`
	ResidualSwept bool           `json:"residual_swept"`
}

// TotalLiquidity is the sum of both sides
func (p *Proposal) TotalLiquidity() uint64 {
	return p.PassPool + p.FailPool
}

// WinningSide returns the side that won once resolved
func (p *Proposal) WinningSide() (OutcomeSide, bool) {
	switch p.Status {
	case ProposalStatusPassed, ProposalStatusExecuted:
		return OutcomePass, true
	case ProposalStatusRejected:
		return OutcomeFail, true
	default:
		return "", false
	}
}

// EscrowAccount returns the ledger account that holds this proposal's liquidity and bond
func (p *Proposal) EscrowAccount() string {
	return ProposalEscrowAccount(p.ID)
}

// ProposalEscrowAccount builds the escrow account key for a proposal id
func ProposalEscrowAccount(id uuid.UUID) string {
	return EscrowPrefixProposal + id.String()
}

// Vote is one voter's two-sided position in a proposal market
type Vote struct {
	ProposalID uuid.UUID  `json:"proposal_id"`
	VoterID    string     `json:"voter_id"`
	PassAmount uint64     `json:"pass_amount"`
	FailAmount uint64     `json:"fail_amount"`
	Claimed    bool       `json:"claimed"`
	Winnings   *uint64    `json:"winnings,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
}

// AmountOn returns the voter's stake on side
func (v *Vote) AmountOn(side OutcomeSide) uint64 {
	if side == OutcomePass {
		return v.PassAmount
	}
	return v.FailAmount
}

// ProposalFilter narrows proposal listings
type ProposalFilter struct {
	Status *ProposalStatus
	Limit  int
}
