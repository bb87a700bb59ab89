package arena

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

// ClaimWinnings pays playerID once from a Completed match.
// Refund outcomes return the stake; otherwise a winner receives an equal share of the prize pool.
// The first non-refund claim sweeps the platform fee to the treasury.
func (s *service) ClaimWinnings(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.PayoutResult, error) {
	log := logger.FromContext(ctx)

	tx, err := s.repo.BeginMatchTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	m, err := lockMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.MatchStatusCompleted {
		return nil, domain.ErrMatchNotResolved
	}

	entry, err := tx.GetEntryForUpdate(ctx, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetEntry, err)
	}
	if entry == nil {
		return nil, domain.ErrPlayerNotInMatch
	}
	if entry.Claimed {
		return nil, domain.ErrAlreadyClaimed
	}

	cfg, err := lockConfig(ctx, tx)
	if err != nil {
		return nil, err
	}

	amount, kind, err := s.claimAmount(ctx, tx, m, entry)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := tx.Withdraw(ctx, m.EscrowAccount(), playerID, kind, amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToPay, err)
	}
	n, err := tx.MarkEntryClaimed(ctx, matchID, playerID, amount, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if n == 0 {
		return nil, domain.ErrAlreadyClaimed
	}

	feeSwept, settled, err := s.sweepFee(ctx, tx, m, cfg)
	if err != nil {
		return nil, err
	}
	if err := tx.RecordMatchClaim(ctx, matchID, settled); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	result := &domain.PayoutResult{
		PoolID:      matchID,
		Participant: playerID,
		Amount:      amount,
		Refund:      m.Outcome.IsRefund(),
		FeeSwept:    feeSwept,
		Destination: playerID,
	}
	log.Info(LogMsgWinningsClaimed, "match_id", matchID, "player", playerID, "amount", amount, "refund", result.Refund)
	s.publish(ctx, event.NewClaimEvent(domain.ClaimPayload{
		PoolKind:    domain.PoolKindMatch,
		PoolID:      matchID,
		Participant: playerID,
		Amount:      amount,
		Refund:      result.Refund,
		FeeSwept:    feeSwept,
	}))
	return result, nil
}

// claimAmount works out what entry is owed
func (s *service) claimAmount(ctx context.Context, tx repository.MatchTx, m *domain.Match, entry *domain.Entry) (uint64, domain.TransferKind, error) {
	if m.Outcome.IsRefund() {
		return entry.Stake, domain.TransferRefund, nil
	}

	side, ok := m.Outcome.Winner()
	if !ok {
		return 0, "", domain.ErrMatchNotResolved
	}
	if entry.Prediction == nil || *entry.Prediction != side {
		return 0, "", domain.ErrNoWinnings
	}

	winners, err := tx.GetSideCount(ctx, m.ID, side)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
	}
	prize, err := payout.PrizePool(m.TotalPot, m.FeeBps)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", ErrContextFailedToComputePayout, err)
	}
	amount, err := payout.PerWinner(prize, winners)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", ErrContextFailedToComputePayout, err)
	}
	return amount, domain.TransferPayout, nil
}

// sweepFee moves the match fee to the treasury the first time a winner claims.
// It returns the amount moved and whether the fee is now settled for the match.
// Refund outcomes never carry a fee.
func (s *service) sweepFee(ctx context.Context, tx repository.MatchTx, m *domain.Match, cfg *domain.GlobalConfig) (uint64, bool, error) {
	if m.Outcome.IsRefund() || m.FeeSwept {
		return 0, m.FeeSwept, nil
	}
	fee, err := payout.Fee(m.TotalPot, m.FeeBps)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", ErrContextFailedToComputePayout, err)
	}
	if fee == 0 {
		return 0, true, nil
	}

	balance, err := tx.EscrowBalance(ctx, m.EscrowAccount())
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}
	if balance < fee {
		logger.FromContext(ctx).Warn(LogMsgFeeSweepDeferred, "match_id", m.ID, "balance", balance, "fee", fee)
		return 0, false, nil
	}

	if err := tx.Transfer(ctx, m.EscrowAccount(), cfg.Treasury, domain.TransferFeeSweep, fee); err != nil {
		return 0, false, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}
	if err := tx.AddTotals(ctx, domain.TotalsDelta{Fees: fee}); err != nil {
		return 0, false, fmt.Errorf("%s: %w", ErrContextFailedToUpdateTotals, err)
	}
	logger.FromContext(ctx).Info(LogMsgFeeSwept, "match_id", m.ID, "fee", fee, "treasury", cfg.Treasury)
	return fee, true, nil
}
