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

// JoinMatch escrows the entry fee for playerID. Filling the last seat starts the match.
func (s *service) JoinMatch(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.Match, error) {
	if !validParticipant(playerID) {
		return nil, domain.ErrInvalidParticipant
	}

	tx, err := s.repo.BeginMatchTx(ctx)
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

	m, err := lockMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.MatchStatusOpen {
		return nil, domain.ErrMatchNotOpen
	}
	if m.IsFull() {
		return nil, domain.ErrMatchFull
	}
	now := s.now()
	if !now.Before(m.PredictionDeadline()) {
		return nil, domain.ErrPredictionWindowClosed
	}

	existing, err := tx.GetEntryForUpdate(ctx, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetEntry, err)
	}
	if existing != nil {
		return nil, domain.ErrPlayerAlreadyJoined
	}

	pot, err := payout.Add(m.TotalPot, m.EntryFee)
	if err != nil {
		return nil, err
	}
	if err := tx.Deposit(ctx, m.EscrowAccount(), playerID, domain.TransferDeposit, m.EntryFee); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToDeposit, err)
	}
	if err := tx.AddEntry(ctx, &domain.Entry{MatchID: matchID, PlayerID: playerID, Stake: m.EntryFee, JoinedAt: now}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToAddEntry, err)
	}
	m.CurrentPlayers++
	m.TotalPot = pot
	if err := tx.UpdateMatchPot(ctx, matchID, m.CurrentPlayers, m.TotalPot); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}

	started := false
	if m.IsFull() {
		if err := s.startLocked(ctx, tx, m); err != nil {
			return nil, err
		}
		started = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	logger.FromContext(ctx).Info(LogMsgPlayerJoined, "match_id", matchID, "player", playerID, "players", m.CurrentPlayers, "pot", m.TotalPot)
	s.publish(ctx, event.NewMatchJoinedEvent(*m, playerID))
	if started {
		s.publish(ctx, event.NewMatchStartedEvent(*m))
	}
	return m, nil
}

// LockInPrediction records the player's side and bumps the side counter.
// The first lock-in on an Open match starts it.
func (s *service) LockInPrediction(ctx context.Context, matchID uuid.UUID, playerID string, side domain.PredictionSide) (*domain.Entry, error) {
	tx, err := s.repo.BeginMatchTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	m, err := lockMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status.IsTerminal() {
		return nil, domain.ErrInvalidMatchState
	}
	now := s.now()
	if !now.Before(m.PredictionDeadline()) {
		return nil, domain.ErrPredictionWindowClosed
	}
	if !m.MarketType.Accepts(side) {
		return nil, domain.ErrInvalidPrediction
	}

	entry, err := tx.GetEntryForUpdate(ctx, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetEntry, err)
	}
	if entry == nil {
		return nil, domain.ErrPlayerNotInMatch
	}
	if entry.Prediction != nil {
		return nil, domain.ErrPredictionAlreadyLocked
	}

	n, err := tx.LockPrediction(ctx, matchID, playerID, side, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if n == 0 {
		return nil, domain.ErrPredictionAlreadyLocked
	}
	if err := tx.IncrementSideCount(ctx, matchID, side); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}

	started := false
	if m.Status == domain.MatchStatusOpen {
		if err := s.startLocked(ctx, tx, m); err != nil {
			return nil, err
		}
		started = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	entry.Prediction = &side
	entry.PredictedAt = &now
	logger.FromContext(ctx).Info(LogMsgPredictionLocked, "match_id", matchID, "player", playerID, "side", side)
	if started {
		s.publish(ctx, event.NewMatchStartedEvent(*m))
	}
	return entry, nil
}

// StartMatch freezes the entry price of an Open match holding at least two players
func (s *service) StartMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
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
	case domain.MatchStatusOpen:
	case domain.MatchStatusCancelled:
		return nil, domain.ErrMatchNotOpen
	default:
		return nil, domain.ErrMatchAlreadyStarted
	}
	if m.CurrentPlayers < domain.MinPlayers {
		return nil, domain.ErrNotEnoughPlayers
	}

	if err := s.startLocked(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	s.publish(ctx, event.NewMatchStartedEvent(*m))
	return m, nil
}

// startLocked moves an Open match to InProgress at a fresh validated price.
// The caller holds the match row lock.
func (s *service) startLocked(ctx context.Context, tx repository.MatchTx, m *domain.Match) error {
	now := s.now()
	quote, err := s.quotes.FetchQuote(ctx, m.FeedID, now)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToFetchQuote, err)
	}

	n, err := tx.StartMatch(ctx, m.ID, quote.Normalized, now)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToUpdateMatch, err)
	}
	if n == 0 {
		return domain.ErrMatchAlreadyStarted
	}

	price := quote.Normalized
	m.Status = domain.MatchStatusInProgress
	m.StartPrice = &price
	m.StartedAt = &now
	logger.FromContext(ctx).Info(LogMsgMatchStarted, "match_id", m.ID, "start_price", price)
	return nil
}
