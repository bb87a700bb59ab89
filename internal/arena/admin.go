package arena

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// CancelMatch cancels an Open match that holds no stakes. Only the creator may cancel.
func (s *service) CancelMatch(ctx context.Context, matchID uuid.UUID, callerID string) (*domain.Match, error) {
	tx, err := s.repo.BeginMatchTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	m, err := lockMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if m.CreatorID != callerID {
		return nil, domain.ErrUnauthorized
	}
	if m.Status != domain.MatchStatusOpen {
		return nil, domain.ErrMatchNotOpen
	}
	if m.TotalPot > 0 {
		return nil, domain.ErrCannotCancelStartedMatch
	}

	n, err := tx.CancelMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if n == 0 {
		return nil, domain.ErrInvalidMatchState
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	m.Status = domain.MatchStatusCancelled
	logger.FromContext(ctx).Info(LogMsgMatchCancelled, "match_id", matchID, "creator", callerID)
	s.publish(ctx, event.NewMatchCancelledEvent(matchID.String(), callerID))
	return m, nil
}

// VoidMatch completes a stuck match with a refund outcome once its resolution
// deadline has passed. Every position can then reclaim its stake.
func (s *service) VoidMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	tx, err := s.repo.BeginMatchTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	m, err := lockMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	switch m.Status {
	case domain.MatchStatusOpen, domain.MatchStatusInProgress:
	case domain.MatchStatusCompleted:
		return nil, domain.ErrMatchAlreadyResolved
	default:
		return nil, domain.ErrInvalidMatchState
	}
	now := s.now()
	if !now.After(m.ResolutionDeadline(s.resolutionWindow)) {
		return nil, domain.ErrResolutionWindowOpen
	}

	outcome := domain.RefundOutcome(domain.RefundReasonVoided)
	n, err := tx.CompleteMatch(ctx, matchID, m.Status, outcome, nil, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if n == 0 {
		return nil, domain.ErrMatchAlreadyResolved
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	m.Status = domain.MatchStatusCompleted
	m.Outcome = outcome
	m.ResolvedAt = &now
	logger.FromContext(ctx).Warn(LogMsgMatchVoided, "match_id", matchID, "pot", m.TotalPot)

	var start uint64
	if m.StartPrice != nil {
		start = *m.StartPrice
	}
	s.publish(ctx, event.NewMatchResolvedEvent(domain.MatchResolvedPayload{
		MatchID:      m.ID,
		MarketSymbol: m.MarketSymbol,
		StartPrice:   start,
		Outcome:      outcome,
		TotalPot:     m.TotalPot,
		ResolvedAt:   now,
	}))
	return m, nil
}

// SweepResidual moves what is left in escrow to the treasury after every
// entitled position has claimed
func (s *service) SweepResidual(ctx context.Context, matchID uuid.UUID) (*domain.ResidualResult, error) {
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
	if m.ResidualSwept {
		return nil, domain.ErrResidualAlreadySwept
	}

	entitled := m.CurrentPlayers
	if side, ok := m.Outcome.Winner(); ok {
		if entitled, err = tx.GetSideCount(ctx, matchID, side); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
		}
		if !m.FeeSwept {
			return nil, domain.ErrClaimsOutstanding
		}
	}
	if m.ClaimedCount < entitled {
		return nil, domain.ErrClaimsOutstanding
	}

	cfg, err := lockConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	amount, err := tx.EscrowBalance(ctx, m.EscrowAccount())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}
	if err := tx.Transfer(ctx, m.EscrowAccount(), cfg.Treasury, domain.TransferResidual, amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToSweep, err)
	}
	if err := tx.MarkMatchResidualSwept(ctx, matchID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	result := &domain.ResidualResult{PoolID: matchID, Amount: amount, Treasury: cfg.Treasury}
	logger.FromContext(ctx).Info(LogMsgResidualSwept, "match_id", matchID, "amount", amount)
	s.publish(ctx, event.NewResidualSweptEvent(domain.PoolKindMatch, *result))
	return result, nil
}
