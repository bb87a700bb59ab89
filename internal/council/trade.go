package council

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/amm"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/payout"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// TradeOutcome adds amount to the voter's position on side and reprices the pool
func (s *service) TradeOutcome(ctx context.Context, proposalID uuid.UUID, voterID string, side domain.OutcomeSide, amount uint64) (*domain.Proposal, error) {
	if !validParticipant(voterID) {
		return nil, domain.ErrInvalidParticipant
	}
	if !side.IsValid() {
		return nil, domain.ErrInvalidOutcomeSide
	}
	if amount < domain.MinTradeAmount {
		return nil, domain.ErrTradeAmountTooSmall
	}
	if amount > domain.MaxTradeAmount {
		return nil, domain.ErrTradeAmountTooLarge
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

	p, err := lockProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProposalStatusActive {
		return nil, domain.ErrProposalNotActive
	}
	now := s.now()
	if !now.Before(p.VotingEndsAt) {
		return nil, domain.ErrVotingPeriodEnded
	}

	pool := amm.FromProposal(p)
	if err := pool.CheckImpact(side, amount, cfg.MaxPriceImpactBps); err != nil {
		return nil, err
	}
	next, err := pool.Update(side, amount)
	if err != nil {
		return nil, err
	}
	passPrice, failPrice, err := next.Prices()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPrice, err)
	}

	vote, err := tx.GetVoteForUpdate(ctx, proposalID, voterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetVote, err)
	}
	if vote == nil {
		vote = &domain.Vote{ProposalID: proposalID, VoterID: voterID, CreatedAt: now}
	}
	firstOnSide := vote.AmountOn(side) == 0
	if side == domain.OutcomePass {
		vote.PassAmount, err = payout.Add(vote.PassAmount, amount)
	} else {
		vote.FailAmount, err = payout.Add(vote.FailAmount, amount)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Deposit(ctx, p.EscrowAccount(), voterID, domain.TransferDeposit, amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToDeposit, err)
	}
	if err := tx.UpsertVote(ctx, vote); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSaveVote, err)
	}

	p.PassPool, p.FailPool = next.Pass, next.Fail
	p.PassPrice, p.FailPrice = passPrice, failPrice
	if firstOnSide {
		if side == domain.OutcomePass {
			p.PassVoters++
		} else {
			p.FailVoters++
		}
	}
	if err := tx.UpdateProposalMarket(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateProposal, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	logger.FromContext(ctx).Info(LogMsgOutcomeTraded, "proposal_id", proposalID, "voter", voterID,
		"side", side, "amount", amount, "pass_price", passPrice, "fail_price", failPrice)
	s.publish(ctx, event.NewOutcomeTradedEvent(domain.OutcomeTradedPayload{
		ProposalID: proposalID,
		VoterID:    voterID,
		Side:       side,
		Amount:     amount,
		PassPool:   p.PassPool,
		FailPool:   p.FailPool,
		PassPrice:  passPrice,
		FailPrice:  failPrice,
	}))
	return p, nil
}
