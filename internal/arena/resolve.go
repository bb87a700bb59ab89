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

// ResolveMatch settles an InProgress match against a fresh quote.
// It is accepted only within [resolution_time, resolution_time + resolution window].
func (s *service) ResolveMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
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
	switch m.Status {
	case domain.MatchStatusInProgress:
	case domain.MatchStatusCompleted:
		return nil, domain.ErrMatchAlreadyResolved
	case domain.MatchStatusOpen:
		return nil, domain.ErrMatchNotStarted
	default:
		return nil, domain.ErrInvalidMatchState
	}

	now := s.now()
	if now.Before(m.ResolutionTime) {
		return nil, domain.ErrResolutionTimeNotReached
	}
	if now.After(m.ResolutionDeadline(s.resolutionWindow)) {
		return nil, domain.ErrResolutionWindowPassed
	}

	quote, err := s.quotes.FetchQuote(ctx, m.FeedID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToFetchQuote, err)
	}
	exit := quote.Normalized

	outcome := DecideOutcome(m, exit)
	if side, ok := outcome.Winner(); ok {
		winners, err := tx.GetSideCount(ctx, matchID, side)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
		}
		if winners == 0 {
			outcome = domain.RefundOutcome(domain.RefundReasonNoWinners)
		}
	}

	n, err := tx.CompleteMatch(ctx, matchID, domain.MatchStatusInProgress, outcome, &exit, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if n == 0 {
		return nil, domain.ErrMatchAlreadyResolved
	}
	if err := tx.AddTotals(ctx, domain.TotalsDelta{Volume: m.TotalPot}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateTotals, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	m.Status = domain.MatchStatusCompleted
	m.Outcome = outcome
	m.EndPrice = &exit
	m.ResolvedAt = &now

	var start uint64
	if m.StartPrice != nil {
		start = *m.StartPrice
	}
	if outcome.IsRefund() {
		log.Info(LogMsgMatchRefunded, "match_id", matchID, "reason", outcome.RefundReason(), "start", start, "end", exit)
	} else {
		log.Info(LogMsgMatchResolved, "match_id", matchID, "outcome", outcome, "start", start, "end", exit)
	}

	s.publish(ctx, event.NewMatchResolvedEvent(domain.MatchResolvedPayload{
		MatchID:      m.ID,
		MarketSymbol: m.MarketSymbol,
		StartPrice:   start,
		EndPrice:     exit,
		PriceChange:  priceChange(start, exit),
		Outcome:      outcome,
		TotalPot:     m.TotalPot,
		ResolvedAt:   now,
	}))
	return m, nil
}

// DecideOutcome applies the market rule to the exit price. A direction market
// whose exit equals its entry settles as a tie refund.
func DecideOutcome(m *domain.Match, exit uint64) domain.Outcome {
	switch m.MarketType {
	case domain.MarketTypePriceDirection:
		var entry uint64
		if m.StartPrice != nil {
			entry = *m.StartPrice
		}
		switch {
		case exit > entry:
			return domain.WinningOutcome(domain.SideHigher)
		case exit < entry:
			return domain.WinningOutcome(domain.SideLower)
		default:
			return domain.RefundOutcome(domain.RefundReasonTie)
		}
	case domain.MarketTypePriceTarget:
		if exit >= m.TargetPrice {
			return domain.WinningOutcome(domain.SideTargetHit)
		}
		return domain.WinningOutcome(domain.SideTargetMissed)
	case domain.MarketTypePriceRange:
		if exit >= m.RangeLow && exit <= m.RangeHigh {
			return domain.WinningOutcome(domain.SideInRange)
		}
		return domain.WinningOutcome(domain.SideOutOfRange)
	default:
		return domain.RefundOutcome(domain.RefundReasonVoided)
	}
}

func priceChange(start, end uint64) int64 {
	if end >= start {
		return int64(end - start)
	}
	return -int64(start - end)
}
