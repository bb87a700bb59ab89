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

// CreateMatch opens a new match. The creator does not join automatically.
func (s *service) CreateMatch(ctx context.Context, req CreateMatchRequest) (*domain.Match, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCreateMatchCalled, "creator", req.CreatorID, "market", req.MarketSymbol, "type", req.MarketType)

	mkt, err := s.validateCreate(&req)
	if err != nil {
		return nil, err
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

	now := s.now()
	m := &domain.Match{
		ID:               uuid.New(),
		CreatorID:        req.CreatorID,
		MarketSymbol:     mkt.Symbol,
		FeedID:           mkt.FeedID,
		MarketType:       req.MarketType,
		EntryFee:         req.EntryFee,
		FeeBps:           cfg.FeeBps,
		MaxPlayers:       req.MaxPlayers,
		TargetPrice:      req.TargetPrice,
		RangeLow:         req.RangeLow,
		RangeHigh:        req.RangeHigh,
		Status:           domain.MatchStatusOpen,
		Outcome:          domain.PendingOutcome(),
		PredictionWindow: req.PredictionWindow,
		Duration:         req.Duration,
		CreatedAt:        now,
		ResolutionTime:   now.Add(req.PredictionWindow + req.Duration),
	}

	if err := tx.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreateMatch, err)
	}
	if err := tx.AddTotals(ctx, domain.TotalsDelta{Matches: 1}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateTotals, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	log.Info(LogMsgMatchCreated, "match_id", m.ID, "resolution_time", m.ResolutionTime)
	s.publish(ctx, event.NewMatchCreatedEvent(*m))
	return m, nil
}

// validateCreate checks the request and fills in default durations
func (s *service) validateCreate(req *CreateMatchRequest) (domain.Market, error) {
	if !validParticipant(req.CreatorID) {
		return domain.Market{}, domain.ErrInvalidParticipant
	}
	mkt, err := s.markets.Lookup(req.MarketSymbol)
	if err != nil {
		return domain.Market{}, err
	}
	if !req.MarketType.IsValid() {
		return domain.Market{}, domain.ErrInvalidMarketType
	}
	if req.EntryFee < domain.MinEntryFee || req.EntryFee > domain.MaxEntryFee {
		return domain.Market{}, domain.ErrInvalidBetAmount
	}
	if req.MaxPlayers < domain.MinPlayers || req.MaxPlayers > domain.MaxPlayers {
		return domain.Market{}, domain.ErrInvalidPlayerCount
	}

	if req.Duration == 0 {
		req.Duration = domain.DefaultMatchDuration
	}
	if req.Duration < domain.MinMatchDuration || req.Duration > domain.MaxMatchDuration {
		return domain.Market{}, domain.ErrInvalidMatchDuration
	}
	if req.PredictionWindow == 0 {
		req.PredictionWindow = domain.DefaultPredictionWindow
	}
	if req.PredictionWindow < domain.MinPredictionWindow || req.PredictionWindow > domain.MaxPredictionWindow {
		return domain.Market{}, domain.ErrInvalidPredictionWindow
	}

	switch req.MarketType {
	case domain.MarketTypePriceDirection:
		req.TargetPrice, req.RangeLow, req.RangeHigh = 0, 0, 0
	case domain.MarketTypePriceTarget:
		if req.TargetPrice == 0 {
			return domain.Market{}, domain.ErrInvalidPriceThreshold
		}
		req.RangeLow, req.RangeHigh = 0, 0
	case domain.MarketTypePriceRange:
		if req.RangeLow >= req.RangeHigh {
			return domain.Market{}, domain.ErrInvalidPriceThreshold
		}
		req.TargetPrice = 0
	}
	return mkt, nil
}
