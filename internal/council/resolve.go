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
	"github.com/osse101/FateProtocol_Go/internal/payout"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// ResolveProposal closes voting. Pass wins only when its price is strictly
// below fail's. A rejected proposal forfeits the bond to the treasury.
func (s *service) ResolveProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	log := logger.FromContext(ctx)

	tx, err := s.repo.BeginProposalTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	p, err := lockProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProposalStatusActive {
		return nil, domain.ErrProposalNotActive
	}
	now := s.now()
	if now.Before(p.VotingEndsAt) {
		return nil, domain.ErrVotingPeriodNotEnded
	}
	cfg, err := lockConfig(ctx, tx)
	if err != nil {
		return nil, err
	}

	pool := amm.FromProposal(p)
	passed, err := pool.HasPassed()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPrice, err)
	}
	status := domain.ProposalStatusRejected
	if passed {
		status = domain.ProposalStatusPassed
	}

	n, err := tx.ResolveProposal(ctx, proposalID, status, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateProposal, err)
	}
	if n == 0 {
		return nil, domain.ErrProposalNotActive
	}
	if !passed && p.Stake > 0 {
		if err := tx.Transfer(ctx, p.EscrowAccount(), cfg.Treasury, domain.TransferForfeiture, p.Stake); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
		}
		log.Info(LogMsgBondForfeited, "proposal_id", proposalID, "bond", p.Stake, "treasury", cfg.Treasury)
	}
	if err := tx.AddTotals(ctx, domain.TotalsDelta{Volume: p.TotalLiquidity()}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateTotals, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	p.Status = status
	p.ResolvedAt = &now
	log.Info(LogMsgProposalResolved, "proposal_id", proposalID, "status", status,
		"pass_price", p.PassPrice, "fail_price", p.FailPrice)
	s.publish(ctx, event.NewProposalResolvedEvent(domain.ProposalResolvedPayload{
		ProposalID: p.ID,
		MarketName: p.MarketName,
		Status:     status,
		PassPool:   p.PassPool,
		FailPool:   p.FailPool,
		PassPrice:  p.PassPrice,
		FailPrice:  p.FailPrice,
	}))
	return p, nil
}

// ExecuteProposal returns the bond to the proposer of a passed proposal, pays
// the proposer bonus out of the treasury and lists the proposed market
func (s *service) ExecuteProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	tx, err := s.repo.BeginProposalTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	p, err := lockProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case domain.ProposalStatusPassed:
	case domain.ProposalStatusExecuted:
		return nil, domain.ErrProposalAlreadyExecuted
	case domain.ProposalStatusActive:
		return nil, domain.ErrProposalNotResolved
	default:
		return nil, domain.ErrProposalDidNotPass
	}
	cfg, err := lockConfig(ctx, tx)
	if err != nil {
		return nil, err
	}

	bonus, err := payout.Fee(p.TotalLiquidity(), cfg.ProposerBonusBps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToComputePayout, err)
	}
	treasury, err := tx.EscrowBalance(ctx, cfg.Treasury)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPay, err)
	}
	if treasury < bonus {
		return nil, domain.ErrInsufficientLiquidity
	}

	now := s.now()
	n, err := tx.ExecuteProposal(ctx, proposalID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateProposal, err)
	}
	if n == 0 {
		return nil, domain.ErrProposalAlreadyExecuted
	}
	if err := tx.Withdraw(ctx, p.EscrowAccount(), p.ProposerID, domain.TransferBond, p.Stake); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPay, err)
	}
	if err := tx.Withdraw(ctx, cfg.Treasury, p.ProposerID, domain.TransferBonus, bonus); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPay, err)
	}
	listing := &domain.Market{
		Symbol:      market.Canonical(p.MarketName),
		FeedID:      p.FeedID,
		Description: p.Description,
		Active:      true,
		ProposalID:  &p.ID,
		ListedAt:    &now,
	}
	listed, err := tx.ListMarket(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToListMarket, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	log := logger.FromContext(ctx)
	p.Status = domain.ProposalStatusExecuted
	p.ExecutedAt = &now
	log.Info(LogMsgProposalExecuted, "proposal_id", proposalID, "proposer", p.ProposerID,
		"bond", p.Stake, "bonus", bonus)
	s.publish(ctx, event.NewProposalExecutedEvent(domain.ProposalExecutedPayload{
		ProposalID:    p.ID,
		ProposerID:    p.ProposerID,
		MarketName:    p.MarketName,
		ProposerBonus: bonus,
		ExecutedAt:    now,
	}))
	if !listed {
		log.Warn(LogMsgMarketAlreadyListed, "proposal_id", proposalID, "market", listing.Symbol)
		return p, nil
	}
	s.registerListing(ctx, *listing)
	s.publish(ctx, event.NewMarketListedEvent(*listing))
	return p, nil
}

// registerListing makes a committed listing tradable on this instance. Other
// instances pick it up on their next registry sync.
func (s *service) registerListing(ctx context.Context, m domain.Market) {
	if s.markets == nil {
		return
	}
	log := logger.FromContext(ctx)
	if _, err := s.markets.Register(m); err != nil {
		log.Error(LogMsgMarketRegisterFailed, "market", m.Symbol, "error", err)
		return
	}
	log.Info(LogMsgMarketListed, "market", m.Symbol, "feed_id", m.FeedID)
}

// CancelProposal withdraws a proposal nobody has traded and refunds the bond
func (s *service) CancelProposal(ctx context.Context, proposalID uuid.UUID, callerID string) (*domain.Proposal, error) {
	tx, err := s.repo.BeginProposalTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	p, err := lockProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.ProposerID != callerID {
		return nil, domain.ErrUnauthorized
	}
	if p.Status != domain.ProposalStatusActive {
		return nil, domain.ErrProposalNotActive
	}
	if p.TotalLiquidity() > 0 {
		return nil, domain.ErrCannotCancelAfterVoting
	}

	n, err := tx.CancelProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateProposal, err)
	}
	if n == 0 {
		return nil, domain.ErrProposalNotActive
	}
	if err := tx.Withdraw(ctx, p.EscrowAccount(), p.ProposerID, domain.TransferRefund, p.Stake); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPay, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	p.Status = domain.ProposalStatusCancelled
	logger.FromContext(ctx).Info(LogMsgProposalCancelled, "proposal_id", proposalID, "proposer", callerID)
	s.publish(ctx, event.NewProposalCancelledEvent(proposalID.String(), callerID))
	return p, nil
}
