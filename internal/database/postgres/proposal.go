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

const proposalColumns = `proposal_id, proposer_id, market_name, description, feed_id, stake,
	pass_pool, fail_pool, pass_price, fail_price, pass_voters, fail_voters, status,
	created_at, voting_ends_at, resolved_at, executed_at, claimed_count, residual_swept`

const voteColumns = `proposal_id, voter_id, pass_amount, fail_amount, claimed, winnings, created_at, claimed_at`

// ProposalRepository implements repository.Proposal
type ProposalRepository struct {
	db *pgxpool.Pool
}

// NewProposalRepository creates a new ProposalRepository
func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func scanProposal(row pgx.Row) (*domain.Proposal, error) {
	var p domain.Proposal
	var status string
	err := row.Scan(
		&p.ID, &p.ProposerID, &p.MarketName, &p.Description, &p.FeedID, &p.Stake,
		&p.PassPool, &p.FailPool, &p.PassPrice, &p.FailPrice, &p.PassVoters, &p.FailVoters, &status,
		&p.CreatedAt, &p.VotingEndsAt, &p.ResolvedAt, &p.ExecutedAt, &p.ClaimedCount, &p.ResidualSwept,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProposalStatus(status)
	return &p, nil
}

func scanVote(row pgx.Row) (*domain.Vote, error) {
	var v domain.Vote
	err := row.Scan(&v.ProposalID, &v.VoterID, &v.PassAmount, &v.FailAmount, &v.Claimed, &v.Winnings, &v.CreatedAt, &v.ClaimedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func getProposal(ctx context.Context, q querier, query string, id uuid.UUID) (*domain.Proposal, error) {
	p, err := scanProposal(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetProposal, err)
	}
	return p, nil
}

func getVote(ctx context.Context, q querier, query string, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	v, err := scanVote(q.QueryRow(ctx, query, proposalID, voterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetVote, err)
	}
	return v, nil
}

func collectProposals(rows pgx.Rows) ([]domain.Proposal, error) {
	defer rows.Close()
	var proposals []domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListProposals, err)
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

// GetProposal returns a proposal or nil when it does not exist
func (r *ProposalRepository) GetProposal(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	return getProposal(ctx, r.db, `SELECT `+proposalColumns+` FROM proposals WHERE proposal_id = $1`, id)
}

// ListProposals returns the newest proposals, optionally filtered by status
func (r *ProposalRepository) ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error) {
	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	rows, err := r.db.Query(ctx, `SELECT `+proposalColumns+` FROM proposals
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT $2`, status, clampLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListProposals, err)
	}
	return collectProposals(rows)
}

// ListExpiredProposals returns Active proposals whose voting closed before now
func (r *ProposalRepository) ListExpiredProposals(ctx context.Context, now time.Time, limit int) ([]domain.Proposal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+proposalColumns+` FROM proposals
		WHERE status = $1 AND voting_ends_at <= $2
		ORDER BY voting_ends_at
		LIMIT $3`, string(domain.ProposalStatusActive), now, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListProposals, err)
	}
	return collectProposals(rows)
}

// GetVote returns one voter's position or nil
func (r *ProposalRepository) GetVote(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	return getVote(ctx, r.db, `SELECT `+voteColumns+` FROM proposal_votes WHERE proposal_id = $1 AND voter_id = $2`, proposalID, voterID)
}

// GetVotes returns every position in a proposal
func (r *ProposalRepository) GetVotes(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	rows, err := r.db.Query(ctx, `SELECT `+voteColumns+` FROM proposal_votes WHERE proposal_id = $1 ORDER BY created_at, voter_id`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetVote, err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetVote, err)
		}
		votes = append(votes, *v)
	}
	return votes, rows.Err()
}

// ListListedMarkets returns every market added by an executed proposal
func (r *ProposalRepository) ListListedMarkets(ctx context.Context) ([]domain.Market, error) {
	rows, err := r.db.Query(ctx, `
		SELECT symbol, feed_id, description, proposal_id, listed_at
		FROM listed_markets ORDER BY listed_at, symbol`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetListings, err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		var m domain.Market
		var proposalID uuid.UUID
		var listedAt time.Time
		if err := rows.Scan(&m.Symbol, &m.FeedID, &m.Description, &proposalID, &listedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetListings, err)
		}
		m.Active = true
		m.ProposalID = &proposalID
		m.ListedAt = &listedAt
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

// GetConfig returns the global config without locking it
func (r *ProposalRepository) GetConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	return getConfig(ctx, r.db, `SELECT `+configColumns+` FROM global_config WHERE id = 1`)
}

// BeginProposalTx starts a proposal transaction
func (r *ProposalRepository) BeginProposalTx(ctx context.Context) (repository.ProposalTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &proposalTx{ledgerTx{txBase{tx: tx}}}, nil
}

type proposalTx struct {
	ledgerTx
}

func (t *proposalTx) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateProposal, err)
	}
	return tag.RowsAffected(), nil
}

func (t *proposalTx) CreateProposal(ctx context.Context, p *domain.Proposal) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO proposals (proposal_id, proposer_id, market_name, description, feed_id, stake,
			pass_pool, fail_pool, pass_price, fail_price, status, created_at, voting_ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.ProposerID, p.MarketName, p.Description, p.FeedID, p.Stake,
		p.PassPool, p.FailPool, p.PassPrice, p.FailPrice, string(p.Status), p.CreatedAt, p.VotingEndsAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateProposal, err)
	}
	return nil
}

func (t *proposalTx) GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	return getProposal(ctx, t.tx, `SELECT `+proposalColumns+` FROM proposals WHERE proposal_id = $1 FOR UPDATE`, id)
}

func (t *proposalTx) UpdateProposalMarket(ctx context.Context, p *domain.Proposal) error {
	_, err := t.exec(ctx, `
		UPDATE proposals
		SET pass_pool = $2, fail_pool = $3, pass_price = $4, fail_price = $5, pass_voters = $6, fail_voters = $7
		WHERE proposal_id = $1`,
		p.ID, p.PassPool, p.FailPool, p.PassPrice, p.FailPrice, p.PassVoters, p.FailVoters)
	return err
}

func (t *proposalTx) ResolveProposal(ctx context.Context, id uuid.UUID, status domain.ProposalStatus, resolvedAt time.Time) (int64, error) {
	return t.exec(ctx, `
		UPDATE proposals SET status = $2, resolved_at = $3
		WHERE proposal_id = $1 AND status = $4`,
		id, string(status), resolvedAt, string(domain.ProposalStatusActive))
}

func (t *proposalTx) ExecuteProposal(ctx context.Context, id uuid.UUID, executedAt time.Time) (int64, error) {
	return t.exec(ctx, `
		UPDATE proposals SET status = $2, executed_at = $3
		WHERE proposal_id = $1 AND status = $4`,
		id, string(domain.ProposalStatusExecuted), executedAt, string(domain.ProposalStatusPassed))
}

func (t *proposalTx) ListMarket(ctx context.Context, m *domain.Market) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO listed_markets (symbol, feed_id, description, proposal_id, listed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		m.Symbol, m.FeedID, m.Description, m.ProposalID, m.ListedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToListMarket, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *proposalTx) CancelProposal(ctx context.Context, id uuid.UUID) (int64, error) {
	return t.exec(ctx, `
		UPDATE proposals SET status = $2
		WHERE proposal_id = $1 AND status = $3 AND pass_pool = 0 AND fail_pool = 0`,
		id, string(domain.ProposalStatusCancelled), string(domain.ProposalStatusActive))
}

func (t *proposalTx) GetVoteForUpdate(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	return getVote(ctx, t.tx, `SELECT `+voteColumns+` FROM proposal_votes WHERE proposal_id = $1 AND voter_id = $2 FOR UPDATE`, proposalID, voterID)
}

func (t *proposalTx) UpsertVote(ctx context.Context, v *domain.Vote) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO proposal_votes (proposal_id, voter_id, pass_amount, fail_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (proposal_id, voter_id) DO UPDATE
		SET pass_amount = EXCLUDED.pass_amount, fail_amount = EXCLUDED.fail_amount`,
		v.ProposalID, v.VoterID, v.PassAmount, v.FailAmount, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpsertVote, err)
	}
	return nil
}

func (t *proposalTx) MarkVoteClaimed(ctx context.Context, proposalID uuid.UUID, voterID string, winnings uint64, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE proposal_votes SET claimed = TRUE, winnings = $3, claimed_at = $4
		WHERE proposal_id = $1 AND voter_id = $2 AND claimed = FALSE`,
		proposalID, voterID, winnings, at)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateVote, err)
	}
	return tag.RowsAffected(), nil
}

func (t *proposalTx) IncrementProposalClaims(ctx context.Context, id uuid.UUID) error {
	_, err := t.exec(ctx, `UPDATE proposals SET claimed_count = claimed_count + 1 WHERE proposal_id = $1`, id)
	return err
}

func (t *proposalTx) MarkProposalResidualSwept(ctx context.Context, id uuid.UUID) error {
	_, err := t.exec(ctx, `UPDATE proposals SET residual_swept = TRUE WHERE proposal_id = $1`, id)
	return err
}

var _ repository.Proposal = (*ProposalRepository)(nil)
