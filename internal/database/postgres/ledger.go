package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

const configColumns = `fee_bps, treasury, paused, proposal_stake, proposer_bonus_bps,
	max_price_impact_bps, total_volume, total_fees, total_matches, total_proposals, updated_at`

// ledgerTx implements repository.Escrow and repository.ConfigTx on a pgx transaction
type ledgerTx struct {
	txBase
}

func (l *ledgerTx) credit(ctx context.Context, account string, amount uint64) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO escrow_accounts (account, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account) DO UPDATE
		SET balance = escrow_accounts.balance + EXCLUDED.balance, updated_at = NOW()`,
		account, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreditAccount, err)
	}
	return nil
}

func (l *ledgerTx) debit(ctx context.Context, account string, amount uint64) error {
	tag, err := l.tx.Exec(ctx, `
		UPDATE escrow_accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE account = $1 AND balance >= $2`,
		account, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDebitAccount, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientEscrow
	}
	return nil
}

func (l *ledgerTx) record(ctx context.Context, source, destination string, kind domain.TransferKind, amount uint64) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO escrow_transfers (source, destination, kind, amount)
		VALUES ($1, $2, $3, $4)`,
		source, destination, string(kind), amount)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToRecordTransfer, err)
	}
	return nil
}

// Deposit credits account with funds arriving from source
func (l *ledgerTx) Deposit(ctx context.Context, account, source string, kind domain.TransferKind, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := l.credit(ctx, account, amount); err != nil {
		return err
	}
	return l.record(ctx, source, account, kind, amount)
}

// Withdraw debits account and releases the funds to destination
func (l *ledgerTx) Withdraw(ctx context.Context, account, destination string, kind domain.TransferKind, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := l.debit(ctx, account, amount); err != nil {
		return err
	}
	return l.record(ctx, account, destination, kind, amount)
}

// Transfer moves funds between two ledger accounts
func (l *ledgerTx) Transfer(ctx context.Context, from, to string, kind domain.TransferKind, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := l.debit(ctx, from, amount); err != nil {
		return err
	}
	if err := l.credit(ctx, to, amount); err != nil {
		return err
	}
	return l.record(ctx, from, to, kind, amount)
}

// EscrowBalance returns the locked balance of account; unknown accounts hold zero
func (l *ledgerTx) EscrowBalance(ctx context.Context, account string) (uint64, error) {
	var balance uint64
	err := l.tx.QueryRow(ctx, `SELECT balance FROM escrow_accounts WHERE account = $1 FOR UPDATE`, account).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetEscrowBalance, err)
	}
	return balance, nil
}

// ReadConfig reads the singleton config row without a row lock
func (l *ledgerTx) ReadConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	return getConfig(ctx, l.tx, `SELECT `+configColumns+` FROM global_config WHERE id = 1`)
}

// GetConfigForUpdate locks the singleton config row
func (l *ledgerTx) GetConfigForUpdate(ctx context.Context) (*domain.GlobalConfig, error) {
	return getConfig(ctx, l.tx, `SELECT `+configColumns+` FROM global_config WHERE id = 1 FOR UPDATE`)
}

// AddTotals adds delta to the running totals
func (l *ledgerTx) AddTotals(ctx context.Context, delta domain.TotalsDelta) error {
	_, err := l.tx.Exec(ctx, `
		UPDATE global_config
		SET total_volume = total_volume + $1,
		    total_fees = total_fees + $2,
		    total_matches = total_matches + $3,
		    total_proposals = total_proposals + $4,
		    updated_at = NOW()
		WHERE id = 1`,
		delta.Volume, delta.Fees, delta.Matches, delta.Proposals)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateTotals, err)
	}
	return nil
}

func getConfig(ctx context.Context, q querier, query string) (*domain.GlobalConfig, error) {
	var cfg domain.GlobalConfig
	err := q.QueryRow(ctx, query).Scan(
		&cfg.FeeBps, &cfg.Treasury, &cfg.Paused, &cfg.ProposalStake, &cfg.ProposerBonusBps,
		&cfg.MaxPriceImpactBps, &cfg.TotalVolume, &cfg.TotalFees, &cfg.TotalMatches,
		&cfg.TotalProposals, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetConfig, err)
	}
	return &cfg, nil
}
