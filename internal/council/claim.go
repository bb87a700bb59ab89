package council

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/payout"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// ClaimVote pays the voter's winning-side stake plus its pro-rata share of the
// losing pool. No fee is taken.
func (s *service) ClaimVote(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.PayoutResult, error) {
	tx, err := s.repo.BeginProposalTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	p, err := lockProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, err
	}
	side, ok := p.WinningSide()
	if !ok {
		return nil, domain.ErrProposalNotResolved
	}

	vote, err := tx.GetVoteForUpdate(ctx, proposalID, voterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetVote, err)
	}
	if vote == nil {
		return nil, domain.ErrNoPosition
	}
	if vote.Claimed {
		return nil, domain.ErrAlreadyClaimed
	}
	stake := vote.AmountOn(side)
	if stake == 0 {
		return nil, domain.ErrNoWinnings
	}

	winningPool, losingPool := p.PassPool, p.FailPool
	if side == domain.OutcomeFail {
		winningPool, losingPool = p.FailPool, p.PassPool
	}
	amount, err := payout.FutarchyPayout(stake, winningPool, losingPool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToComputePayout, err)
	}

	now := s.now()
	if err := tx.Withdraw(ctx, p.EscrowAccount(), voterID, domain.TransferPayout, amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPay, err)
	}
	n, err := tx.MarkVoteClaimed(ctx, proposalID, voterID, amount, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSaveVote, err)
	}
	if n == 0 {
		return nil, domain.ErrAlreadyClaimed
	}
	if err := tx.IncrementProposalClaims(ctx, proposalID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateProposal, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	logger.FromContext(ctx).Info(LogMsgVoteClaimed, "proposal_id", proposalID, "voter", voterID, "side", side, "amount", amount)
	s.publish(ctx, event.NewClaimEvent(domain.ClaimPayload{
		PoolKind:    domain.PoolKindProposal,
		PoolID:      proposalID,
		Participant: voterID,
		Amount:      amount,
	}))
	return &domain.PayoutResult{
		PoolID:      proposalID,
		Participant: voterID,
		Amount:      amount,
		Destination: voterID,
	}, nil
}

// SweepResidual moves rounding dust left after every winning voter claimed.
// A passed proposal still holds the proposer bond until it is executed.
func (s *service) SweepResidual(ctx context.Context, proposalID uuid.UUID) (*domain.ResidualResult, error) {
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
	case domain.ProposalStatusRejected, domain.ProposalStatusExecuted:
	case domain.ProposalStatusPassed:
		return nil, domain.ErrClaimsOutstanding
	default:
		return nil, domain.ErrProposalNotResolved
	}
	if p.ResidualSwept {
		return nil, domain.ErrResidualAlreadySwept
	}
	entitled := p.FailVoters
	if p.Status == domain.ProposalStatusExecuted {
		entitled = p.PassVoters
	}
	if p.ClaimedCount < entitled {
		return nil, domain.ErrClaimsOutstanding
	}

	cfg, err := lockConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	amount, err := tx.EscrowBalance(ctx, p.EscrowAccount())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}
	if err := tx.Transfer(ctx, p.EscrowAccount(), cfg.Treasury, domain.TransferResidual, amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}
	if err := tx.MarkProposalResidualSwept(ctx, proposalID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateProposal, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	result := &domain.ResidualResult{PoolID: proposalID, Amount: amount, Treasury: cfg.Treasury}
	logger.FromContext(ctx).Info(LogMsgResidualSwept, "proposal_id", proposalID, "amount", amount)
	s.publish(ctx, event.NewResidualSweptEvent(domain.PoolKindProposal, *result))
	return result, nil
}
