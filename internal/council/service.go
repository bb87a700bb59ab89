// Package council runs futarchy proposal markets: stakers trade pass and fail
// exposure on whether a new arena market should be listed, and the cheaper
// side at the end of voting decides.
package council

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// Service defines the proposal market operations
type Service interface {
	CreateProposal(ctx context.Context, req CreateProposalRequest) (*domain.Proposal, error)
	TradeOutcome(ctx context.Context, proposalID uuid.UUID, voterID string, side domain.OutcomeSide, amount uint64) (*domain.Proposal, error)
	ResolveProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error)
	ExecuteProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error)
	CancelProposal(ctx context.Context, proposalID uuid.UUID, callerID string) (*domain.Proposal, error)
	ClaimVote(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.PayoutResult, error)
	SweepResidual(ctx context.Context, proposalID uuid.UUID) (*domain.ResidualResult, error)

	GetProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error)
	ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error)
	GetVotes(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error)
}

// CreateProposalRequest describes a new proposal. A zero voting period takes the default.
type CreateProposalRequest struct {
	ProposerID   string
	MarketName   string
	Description  string
	FeedID       string
	VotingPeriod time.Duration
}

type service struct {
	repo      repository.Proposal
	markets   market.Registry
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new council service. Executed proposals list their
// market in markets; a nil registry only persists the listing.
func NewService(repo repository.Proposal, markets market.Registry, publisher event.Publisher) Service {
	return newService(repo, markets, publisher)
}

func newService(repo repository.Proposal, markets market.Registry, publisher event.Publisher) *service {
	return &service{
		repo:      repo,
		markets:   markets,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, evt)
	}
}

func (s *service) GetProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	p, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetProposal, err)
	}
	if p == nil {
		return nil, domain.ErrProposalNotFound
	}
	return p, nil
}

func (s *service) ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error) {
	proposals, err := s.repo.ListProposals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetProposal, err)
	}
	return proposals, nil
}

func (s *service) GetVotes(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	votes, err := s.repo.GetVotes(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetVote, err)
	}
	return votes, nil
}

func lockProposal(ctx context.Context, tx repository.ProposalTx, id uuid.UUID) (*domain.Proposal, error) {
	p, err := tx.GetProposalForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetProposal, err)
	}
	if p == nil {
		return nil, domain.ErrProposalNotFound
	}
	return p, nil
}

// readConfig loads the global config without locking it and rejects an uninitialized protocol
func readConfig(ctx context.Context, tx repository.ConfigTx) (*domain.GlobalConfig, error) {
	cfg, err := tx.ReadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetConfig, err)
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotInitialized
	}
	return cfg, nil
}

func lockConfig(ctx context.Context, tx repository.ConfigTx) (*domain.GlobalConfig, error) {
	cfg, err := tx.GetConfigForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetConfig, err)
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotInitialized
	}
	return cfg, nil
}

func validParticipant(id string) bool {
	return id != "" && len(id) <= domain.MaxParticipantIDLen
}
