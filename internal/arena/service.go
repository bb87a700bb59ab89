package arena

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

// Service defines the prediction match operations
type Service interface {
	CreateMatch(ctx context.Context, req CreateMatchRequest) (*domain.Match, error)
	JoinMatch(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.Match, error)
	LockInPrediction(ctx context.Context, matchID uuid.UUID, playerID string, side domain.PredictionSide) (*domain.Entry, error)
	StartMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)
	ResolveMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)
	ClaimWinnings(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.PayoutResult, error)
	CancelMatch(ctx context.Context, matchID uuid.UUID, callerID string) (*domain.Match, error)

	// VoidMatch refunds a match that was never resolved inside its window
	VoidMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)
	// SweepResidual moves rounding dust to the treasury once every entitled position claimed
	SweepResidual(ctx context.Context, matchID uuid.UUID) (*domain.ResidualResult, error)

	GetMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)
	ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error)
	GetEntries(ctx context.Context, matchID uuid.UUID) ([]domain.Entry, error)
	GetSideCounts(ctx context.Context, matchID uuid.UUID) ([]domain.SideCount, error)
}

// QuoteSource returns validated oracle quotes
type QuoteSource interface {
	FetchQuote(ctx context.Context, feedID string, now time.Time) (*domain.OracleQuote, error)
}

// CreateMatchRequest describes a new match. Zero durations take the defaults.
type CreateMatchRequest struct {
	CreatorID        string
	MarketSymbol     string
	MarketType       domain.MarketType
	EntryFee         uint64
	MaxPlayers       int
	TargetPrice      uint64
	RangeLow         uint64
	RangeHigh        uint64
	Duration         time.Duration
	PredictionWindow time.Duration
}

type service struct {
	repo             repository.Match
	quotes           QuoteSource
	markets          market.Registry
	publisher        event.Publisher
	resolutionWindow time.Duration
	now              func() time.Time
}

// NewService creates a new arena service
func NewService(repo repository.Match, quotes QuoteSource, markets market.Registry, publisher event.Publisher, resolutionWindow time.Duration) Service {
	return newService(repo, quotes, markets, publisher, resolutionWindow)
}

func newService(repo repository.Match, quotes QuoteSource, markets market.Registry, publisher event.Publisher, resolutionWindow time.Duration) *service {
	if resolutionWindow <= 0 {
		resolutionWindow = domain.DefaultResolutionWindow
	}
	return &service{
		repo:             repo,
		quotes:           quotes,
		markets:          markets,
		publisher:        publisher,
		resolutionWindow: resolutionWindow,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, evt)
	}
}

// GetMatch returns a match or ErrMatchNotFound
func (s *service) GetMatch(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
	}
	if m == nil {
		return nil, domain.ErrMatchNotFound
	}
	return m, nil
}

func (s *service) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	matches, err := s.repo.ListMatches(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
	}
	return matches, nil
}

func (s *service) GetEntries(ctx context.Context, matchID uuid.UUID) ([]domain.Entry, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	entries, err := s.repo.GetEntries(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetEntry, err)
	}
	return entries, nil
}

func (s *service) GetSideCounts(ctx context.Context, matchID uuid.UUID) ([]domain.SideCount, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	counts, err := s.repo.GetSideCounts(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
	}
	return counts, nil
}

// lockMatch loads a match under the transaction's row lock
func lockMatch(ctx context.Context, tx repository.MatchTx, matchID uuid.UUID) (*domain.Match, error) {
	m, err := tx.GetMatchForUpdate(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetMatch, err)
	}
	if m == nil {
		return nil, domain.ErrMatchNotFound
	}
	return m, nil
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

// lockConfig loads the global config under lock and rejects an uninitialized protocol
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
