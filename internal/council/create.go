package council

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/amm"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// CreateProposal opens a proposal market and escrows the proposer's bond
func (s *service) CreateProposal(ctx context.Context, req CreateProposalRequest) (*domain.Proposal, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCreateProposalCalled, "proposer", req.ProposerID, "market", req.MarketName)

	if err := validateCreate(&req); err != nil {
		return nil, err
	}
	if s.markets != nil {
		if _, err := s.markets.Lookup(req.MarketName); err == nil {
			return nil, domain.ErrMarketAlreadyListed
		}
	}

	tx, err := s.repo.BeginProposalTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	cfg, err := readConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, domain.ErrProtocolPaused
	}

	now := s.now()
	p := &domain.Proposal{
		ID:           uuid.New(),
		ProposerID:   req.ProposerID,
		MarketName:   req.MarketName,
		Description:  req.Description,
		FeedID:       req.FeedID,
		Stake:        cfg.ProposalStake,
		PassPrice:    amm.HalfPrice,
		FailPrice:    amm.HalfPrice,
		Status:       domain.ProposalStatusActive,
		CreatedAt:    now,
		VotingEndsAt: now.Add(req.VotingPeriod),
	}

	if err := tx.CreateProposal(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreateProposal, err)
	}
	if err := tx.Deposit(ctx, p.EscrowAccount(), p.ProposerID, domain.TransferBond, p.Stake); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToDeposit, err)
	}
	if err := tx.AddTotals(ctx, domain.TotalsDelta{Proposals: 1}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateTotals, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	log.Info(LogMsgProposalCreated, "proposal_id", p.ID, "bond", p.Stake, "voting_ends_at", p.VotingEndsAt)
	s.publish(ctx, event.NewProposalCreatedEvent(*p))
	return p, nil
}

func validateCreate(req *CreateProposalRequest) error {
	if !validParticipant(req.ProposerID) {
		return domain.ErrInvalidParticipant
	}
	req.MarketName = market.Canonical(req.MarketName)
	if len(req.MarketName) > domain.MaxMarketNameLength || !market.ValidSymbol(req.MarketName) {
		return domain.ErrInvalidMarketName
	}
	if len(req.Description) > domain.MaxDescriptionLength {
		return domain.ErrInvalidMarketDescription
	}
	if !market.ValidFeedID(req.FeedID) {
		return domain.ErrInvalidFeedID
	}
	if req.VotingPeriod == 0 {
		req.VotingPeriod = domain.DefaultVotingPeriod
	}
	if req.VotingPeriod < domain.MinVotingPeriod || req.VotingPeriod > domain.MaxVotingPeriod {
		return domain.ErrInvalidVotingPeriod
	}
	return nil
}
