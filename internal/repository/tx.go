package repository

import (
	"context"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Tx defines the interface for transactional operations
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Escrow moves funds between ledger accounts inside the caller's transaction.
// Every movement is appended to the transfer log.
type Escrow interface {
	// Deposit credits account with funds arriving from source (a participant id)
	Deposit(ctx context.Context, account, source string, kind domain.TransferKind, amount uint64) error
	// Withdraw debits account and releases the funds to destination (a participant id).
	// Fails with domain.ErrInsufficientEscrow when the balance is short.
	Withdraw(ctx context.Context, account, destination string, kind domain.TransferKind, amount uint64) error
	// Transfer moves funds between two ledger accounts
	Transfer(ctx context.Context, from, to string, kind domain.TransferKind, amount uint64) error
	// EscrowBalance returns the balance of account, locking the row
	EscrowBalance(ctx context.Context, account string) (uint64, error)
}

// ConfigTx exposes the global config row inside a transaction.
//
// Lock order: a transaction locks its pool row (match or proposal) first, then the
// config row, then ledger accounts. Paths that only check Paused or FeeBps use
// ReadConfig and take no config lock; GetConfigForUpdate and AddTotals come after
// the pool row lock.
type ConfigTx interface {
	// ReadConfig returns the config row without locking it, or nil when it was never initialized
	ReadConfig(ctx context.Context) (*domain.GlobalConfig, error)
	// GetConfigForUpdate locks and returns the config row, or nil when it was never initialized
	GetConfigForUpdate(ctx context.Context) (*domain.GlobalConfig, error)
	AddTotals(ctx context.Context, delta domain.TotalsDelta) error
}
