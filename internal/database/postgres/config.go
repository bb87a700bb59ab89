package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/repository"
)

// ConfigRepository implements repository.Config
type ConfigRepository struct {
	db *pgxpool.Pool
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// GetConfig returns the config row without locking it
func (r *ConfigRepository) GetConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	return getConfig(ctx, r.db, `SELECT `+configColumns+` FROM global_config WHERE id = 1`)
}

// InitConfig inserts cfg unless a config row already exists
func (r *ConfigRepository) InitConfig(ctx context.Context, cfg *domain.GlobalConfig) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO global_config (id, fee_bps, treasury, paused, proposal_stake, proposer_bonus_bps, max_price_impact_bps, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		cfg.FeeBps, cfg.Treasury, cfg.Paused, cfg.ProposalStake, cfg.ProposerBonusBps, cfg.MaxPriceImpactBps, cfg.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToInitConfig, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetEscrowBalance returns the balance of account without locking it
func (r *ConfigRepository) GetEscrowBalance(ctx context.Context, account string) (uint64, error) {
	var balance uint64
	err := r.db.QueryRow(ctx, `SELECT balance FROM escrow_accounts WHERE account = $1`, account).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetEscrowBalance, err)
	}
	return balance, nil
}

// ListTransfers returns the newest transfers touching account, or every account when empty
func (r *ConfigRepository) ListTransfers(ctx context.Context, account string, limit int) ([]domain.EscrowTransfer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT transfer_id, source, destination, kind, amount, created_at
		FROM escrow_transfers
		WHERE $1 = '' OR source = $1 OR destination = $1
		ORDER BY created_at DESC, transfer_id
		LIMIT $2`,
		account, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransfers, err)
	}
	defer rows.Close()

	var transfers []domain.EscrowTransfer
	for rows.Next() {
		var t domain.EscrowTransfer
		var kind string
		if err := rows.Scan(&t.ID, &t.Source, &t.Destination, &kind, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransfers, err)
		}
		t.Kind = domain.TransferKind(kind)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// BeginConfigTx starts an administrative transaction
func (r *ConfigRepository) BeginConfigTx(ctx context.Context) (repository.AdminTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &adminTx{ledgerTx{txBase{tx: tx}}}, nil
}

type adminTx struct {
	ledgerTx
}

// SaveConfig overwrites the administrative fields; totals are left alone
func (t *adminTx) SaveConfig(ctx context.Context, cfg *domain.GlobalConfig) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE global_config
		SET fee_bps = $1, treasury = $2, paused = $3, proposal_stake = $4,
		    proposer_bonus_bps = $5, max_price_impact_bps = $6, updated_at = $7
		WHERE id = 1`,
		cfg.FeeBps, cfg.Treasury, cfg.Paused, cfg.ProposalStake, cfg.ProposerBonusBps, cfg.MaxPriceImpactBps, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSaveConfig, err)
	}
	return nil
}

var _ repository.Config = (*ConfigRepository)(nil)
