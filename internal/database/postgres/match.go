package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

const matchColumns = `match_id, creator_id, market_symbol, feed_id, market_type, entry_fee, fee_bps,
	max_players, current_players, total_pot, target_price, range_low, range_high, status,
	start_price, end_price, outcome_kind, outcome_side, refund_reason,
	prediction_window_seconds, duration_seconds, created_at, started_at, resolved_at,
	resolution_time, fee_swept, residual_swept, claimed_count`

const entryColumns = `match_id, player_id, stake, prediction, predicted_at, joined_at, claimed, winnings, claimed_at`

// MatchRepository implements repository.Match
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var (
		m                        domain.Match
		marketType, status, kind string
		side, reason             *string
		windowSecs, durationSecs int64
	)
	err := row.Scan(
		&m.ID, &m.CreatorID, &m.MarketSymbol, &m.FeedID, &marketType, &m.EntryFee, &m.FeeBps,
		&m.MaxPlayers, &m.CurrentPlayers, &m.TotalPot, &m.TargetPrice, &m.RangeLow, &m.RangeHigh, &status,
		&m.StartPrice, &m.EndPrice, &kind, &side, &reason,
		&windowSecs, &durationSecs, &m.CreatedAt, &m.StartedAt, &m.ResolvedAt,
		&m.ResolutionTime, &m.FeeSwept, &m.ResidualSwept, &m.ClaimedCount,
	)
	if err != nil {
		return nil, err
	}

	outcome, err := domain.ParseOutcome(kind, side, reason)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeMatchState, err)
	}
	m.MarketType = domain.MarketType(marketType)
	m.Status = domain.MatchStatus(status)
	m.Outcome = outcome
	m.PredictionWindow = fromSeconds(windowSecs)
	m.Duration = fromSeconds(durationSecs)
	return &m, nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	var prediction *string
	err := row.Scan(&e.MatchID, &e.PlayerID, &e.Stake, &prediction, &e.PredictedAt, &e.JoinedAt, &e.Claimed, &e.Winnings, &e.ClaimedAt)
	if err != nil {
		return nil, err
	}
	if prediction != nil {
		side := domain.PredictionSide(*prediction)
		e.Prediction = &side
	}
	return &e, nil
}

func getMatch(ctx context.Context, q querier, query string, id uuid.UUID) (*domain.Match, error) {
	m, err := scanMatch(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetMatch, err)
	}
	return m, nil
}

func getEntry(ctx context.Context, q querier, query string, matchID uuid.UUID, playerID string) (*domain.Entry, error) {
	e, err := scanEntry(q.QueryRow(ctx, query, matchID, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetEntry, err)
	}
	return e, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	defer rows.Close()
	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMatches, err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// GetMatch returns a match or nil when it does not exist
func (r *MatchRepository) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	return getMatch(ctx, r.db, `SELECT `+matchColumns+` FROM matches WHERE match_id = $1`, id)
}

// ListMatches returns the newest matches, optionally filtered by status
func (r *MatchRepository) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	rows, err := r.db.Query(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT $2`, status, clampLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMatches, err)
	}
	return collectMatches(rows)
}

// ListDueMatches returns InProgress matches with from <= resolution_time <= to, earliest first
func (r *MatchRepository) ListDueMatches(ctx context.Context, from, to time.Time, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE status = $1 AND resolution_time >= $2 AND resolution_time <= $3
		ORDER BY resolution_time
		LIMIT $4`, string(domain.MatchStatusInProgress), from, to, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMatches, err)
	}
	return collectMatches(rows)
}

// ListStaleMatches returns Open and InProgress matches whose resolution time passed before cutoff
func (r *MatchRepository) ListStaleMatches(ctx context.Context, cutoff time.Time, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `SELECT `+matchColumns+` FROM matches
		WHERE status IN ($1, $2) AND resolution_time < $3
		ORDER BY resolution_time
		LIMIT $4`, string(domain.MatchStatusOpen), string(domain.MatchStatusInProgress), cutoff, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMatches, err)
	}
	return collectMatches(rows)
}

// GetEntry returns one player's entry or nil
func (r *MatchRepository) GetEntry(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.Entry, error) {
	return getEntry(ctx, r.db, `SELECT `+entryColumns+` FROM match_entries WHERE match_id = $1 AND player_id = $2`, matchID, playerID)
}

// GetEntries returns every entry of a match in join order
func (r *MatchRepository) GetEntries(ctx context.Context, matchID uuid.UUID) ([]domain.Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM match_entries WHERE match_id = $1 ORDER BY joined_at, player_id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetEntry, err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetEntry, err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetSideCounts returns the lock-in counters of a match
func (r *MatchRepository) GetSideCounts(ctx context.Context, matchID uuid.UUID) ([]domain.SideCount, error) {
	rows, err := r.db.Query(ctx, `SELECT match_id, side, count FROM match_side_counts WHERE match_id = $1 ORDER BY side`, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSideCounts, err)
	}
	defer rows.Close()

	var counts []domain.SideCount
	for rows.Next() {
		var c domain.SideCount
		var side string
		if err := rows.Scan(&c.MatchID, &side, &c.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSideCounts, err)
		}
		c.Side = domain.PredictionSide(side)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetConfig returns the global config without locking it
func (r *MatchRepository) GetConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	return getConfig(ctx, r.db, `SELECT `+configColumns+` FROM global_config WHERE id = 1`)
}

// BeginMatchTx starts a match transaction
func (r *MatchRepository) BeginMatchTx(ctx context.Context) (repository.MatchTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &matchTx{ledgerTx{txBase{tx: tx}}}, nil
}

type matchTx struct {
	ledgerTx
}

func (t *matchTx) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateMatch, err)
	}
	return tag.RowsAffected(), nil
}

func (t *matchTx) CreateMatch(ctx context.Context, m *domain.Match) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO matches (match_id, creator_id, market_symbol, feed_id, market_type, entry_fee, fee_bps,
			max_players, current_players, total_pot, target_price, range_low, range_high, status,
			outcome_kind, prediction_window_seconds, duration_seconds, created_at, resolution_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.ID, m.CreatorID, m.MarketSymbol, m.FeedID, string(m.MarketType), m.EntryFee, m.FeeBps,
		m.MaxPlayers, m.CurrentPlayers, m.TotalPot, m.TargetPrice, m.RangeLow, m.RangeHigh, string(m.Status),
		string(m.Outcome.Kind()), seconds(m.PredictionWindow), seconds(m.Duration), m.CreatedAt, m.ResolutionTime)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateMatch, err)
	}
	return nil
}

func (t *matchTx) GetMatchForUpdate(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	return getMatch(ctx, t.tx, `SELECT `+matchColumns+` FROM matches WHERE match_id = $1 FOR UPDATE`, id)
}

func (t *matchTx) UpdateMatchPot(ctx context.Context, id uuid.UUID, players int, pot uint64) error {
	_, err := t.exec(ctx, `UPDATE matches SET current_players = $2, total_pot = $3 WHERE match_id = $1`, id, players, pot)
	return err
}

func (t *matchTx) StartMatch(ctx context.Context, id uuid.UUID, startPrice uint64, startedAt time.Time) (int64, error) {
	return t.exec(ctx, `
		UPDATE matches SET status = $2, start_price = $3, started_at = $4
		WHERE match_id = $1 AND status = $5`,
		id, string(domain.MatchStatusInProgress), startPrice, startedAt, string(domain.MatchStatusOpen))
}

func (t *matchTx) CompleteMatch(ctx context.Context, id uuid.UUID, expected domain.MatchStatus, outcome domain.Outcome, endPrice *uint64, resolvedAt time.Time) (int64, error) {
	var side *string
	if s, ok := outcome.Winner(); ok {
		side = strPtr(string(s))
	}
	var reason *string
	if outcome.IsRefund() {
		reason = strPtr(string(outcome.RefundReason()))
	}
	return t.exec(ctx, `
		UPDATE matches
		SET status = $2, outcome_kind = $3, outcome_side = $4, refund_reason = $5, end_price = $6, resolved_at = $7
		WHERE match_id = $1 AND status = $8`,
		id, string(domain.MatchStatusCompleted), string(outcome.Kind()), side, reason, endPrice, resolvedAt, string(expected))
}

func (t *matchTx) CancelMatch(ctx context.Context, id uuid.UUID) (int64, error) {
	return t.exec(ctx, `
		UPDATE matches SET status = $2
		WHERE match_id = $1 AND status = $3 AND total_pot = 0`,
		id, string(domain.MatchStatusCancelled), string(domain.MatchStatusOpen))
}

func (t *matchTx) AddEntry(ctx context.Context, e *domain.Entry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO match_entries (match_id, player_id, stake, joined_at)
		VALUES ($1, $2, $3, $4)`,
		e.MatchID, e.PlayerID, e.Stake, e.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlayerAlreadyJoined
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToAddEntry, err)
	}
	return nil
}

func (t *matchTx) GetEntryForUpdate(ctx context.Context, matchID uuid.UUID, playerID string) (*domain.Entry, error) {
	return getEntry(ctx, t.tx, `SELECT `+entryColumns+` FROM match_entries WHERE match_id = $1 AND player_id = $2 FOR UPDATE`, matchID, playerID)
}

func (t *matchTx) LockPrediction(ctx context.Context, matchID uuid.UUID, playerID string, side domain.PredictionSide, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE match_entries SET prediction = $3, predicted_at = $4
		WHERE match_id = $1 AND player_id = $2 AND prediction IS NULL`,
		matchID, playerID, string(side), at)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateEntry, err)
	}
	return tag.RowsAffected(), nil
}

func (t *matchTx) IncrementSideCount(ctx context.Context, matchID uuid.UUID, side domain.PredictionSide) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO match_side_counts (match_id, side, count) VALUES ($1, $2, 1)
		ON CONFLICT (match_id, side) DO UPDATE SET count = match_side_counts.count + 1`,
		matchID, string(side))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateSideCount, err)
	}
	return nil
}

func (t *matchTx) GetSideCount(ctx context.Context, matchID uuid.UUID, side domain.PredictionSide) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `SELECT count FROM match_side_counts WHERE match_id = $1 AND side = $2`, matchID, string(side)).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetSideCounts, err)
	}
	return count, nil
}

func (t *matchTx) MarkEntryClaimed(ctx context.Context, matchID uuid.UUID, playerID string, winnings uint64, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE match_entries SET claimed = TRUE, winnings = $3, claimed_at = $4
		WHERE match_id = $1 AND player_id = $2 AND claimed = FALSE`,
		matchID, playerID, winnings, at)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateEntry, err)
	}
	return tag.RowsAffected(), nil
}

func (t *matchTx) RecordMatchClaim(ctx context.Context, matchID uuid.UUID, feeSwept bool) error {
	_, err := t.exec(ctx, `
		UPDATE matches SET claimed_count = claimed_count + 1, fee_swept = fee_swept OR $2
		WHERE match_id = $1`, matchID, feeSwept)
	return err
}

func (t *matchTx) MarkMatchResidualSwept(ctx context.Context, matchID uuid.UUID) error {
	_, err := t.exec(ctx, `UPDATE matches SET residual_swept = TRUE WHERE match_id = $1`, matchID)
	return err
}

var _ repository.Match = (*MatchRepository)(nil)
