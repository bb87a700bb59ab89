package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Match defines the data access required by the arena service
type Match interface {
	GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error)
	GetEntry(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.Entry, error)
	GetEntries(ctx context.Context, matchID uuid.UUID) ([]domain.Entry, error)
	GetSideCounts(ctx context.Context, matchID uuid.UUID) ([]domain.SideCount, error)
	// ListDueMatches returns InProgress matches whose resolution time lies in [from, to], earliest first
	ListDueMatches(ctx context.Context, from, to time.Time, limit int) ([]domain.Match, error)
	// ListStaleMatches returns Open and InProgress matches whose resolution time is before cutoff.
	// They can no longer resolve and wait for an admin void.
	ListStaleMatches(ctx context.Context, cutoff time.Time, limit int) ([]domain.Match, error)
	GetConfig(ctx context.Context) (*domain.GlobalConfig, error)

	BeginMatchTx(ctx context.Context) (MatchTx, error)
}

// MatchTx groups every write a match operation needs into one atomic transaction
type MatchTx interface {
	Tx
	Escrow
	ConfigTx

	CreateMatch(ctx context.Context, match *domain.Match) error
	GetMatchForUpdate(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	// UpdateMatchPot stores the player count and pot after a join
	UpdateMatchPot(ctx context.Context, id uuid.UUID, players int, pot uint64) error
	// StartMatch moves an Open match to InProgress with its entry price.
	// Returns rows affected; 0 means the match was no longer Open.
	StartMatch(ctx context.Context, id uuid.UUID, startPrice uint64, startedAt time.Time) (int64, error)
	// CompleteMatch records the outcome if the match is still in expected status
	CompleteMatch(ctx context.Context, id uuid.UUID, expected domain.MatchStatus, outcome domain.Outcome, endPrice *uint64, resolvedAt time.Time) (int64, error)
	// CancelMatch cancels an Open match that holds no stakes
	CancelMatch(ctx context.Context, id uuid.UUID) (int64, error)

	AddEntry(ctx context.Context, entry *domain.Entry) error
	GetEntryForUpdate(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.Entry, error)
	// LockPrediction sets the entry's prediction if none is set yet
	LockPrediction(ctx context.Context, matchID uuid.UUID, playerID string, side domain.PredictionSide, at time.Time) (int64, error)
	IncrementSideCount(ctx context.Context, matchID uuid.UUID, side domain.PredictionSide) error
	GetSideCount(ctx context.Context, matchID uuid.UUID, side domain.PredictionSide) (int, error)

	// MarkEntryClaimed flips claimed false->true and stores the payout
	MarkEntryClaimed(ctx context.Context, matchID uuid.UUID, playerID string, winnings uint64, at time.Time) (int64, error)
	RecordMatchClaim(ctx context.Context, matchID uuid.UUID, feeSwept bool) error
	MarkMatchResidualSwept(ctx context.Context, matchID uuid.UUID) error
}
