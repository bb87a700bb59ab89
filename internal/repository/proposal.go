package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Proposal defines the data access required by the council service
type Proposal interface {
	GetProposal(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error)
	GetVote(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error)
	GetVotes(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error)
	// ListExpiredProposals returns Active proposals whose voting ended before now
	ListExpiredProposals(ctx context.Context, now time.Time, limit int) ([]domain.Proposal, error)
	GetConfig(ctx context.Context) (*domain.GlobalConfig, error)
	// ListListedMarkets returns the markets executed proposals have listed
	ListListedMarkets(ctx context.Context) ([]domain.Market, error)

	BeginProposalTx(ctx context.Context) (ProposalTx, error)
}

// ProposalTx groups every write a proposal operation needs into one atomic transaction
type ProposalTx interface {
	Tx
	Escrow
	ConfigTx

	CreateProposal(ctx context.Context, proposal *domain.Proposal) error
	GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	// UpdateProposalMarket stores pools, prices and voter counters after a trade
	UpdateProposalMarket(ctx context.Context, proposal *domain.Proposal) error
	// ResolveProposal moves an Active proposal to Passed or Rejected
	ResolveProposal(ctx context.Context, id uuid.UUID, status domain.ProposalStatus, resolvedAt time.Time) (int64, error)
	// ExecuteProposal moves a Passed proposal to Executed
	ExecuteProposal(ctx context.Context, id uuid.UUID, executedAt time.Time) (int64, error)
	// ListMarket records a market listed by an executed proposal. It reports false
	// when the symbol is already listed.
	ListMarket(ctx context.Context, market *domain.Market) (bool, error)
	// CancelProposal cancels an Active proposal with empty pools
	CancelProposal(ctx context.Context, id uuid.UUID) (int64, error)

	GetVoteForUpdate(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error)
	UpsertVote(ctx context.Context, vote *domain.Vote) error
	MarkVoteClaimed(ctx context.Context, proposalID uuid.UUID, voterID string, winnings uint64, at time.Time) (int64, error)
	IncrementProposalClaims(ctx context.Context, id uuid.UUID) error
	MarkProposalResidualSwept(ctx context.Context, id uuid.UUID) error
}
