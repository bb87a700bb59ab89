package repository

import (
	"context"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Config defines data access for the global configuration and the escrow ledger
type Config interface {
	GetConfig(ctx context.Context) (*domain.GlobalConfig, error)
	// InitConfig inserts cfg if no config row exists and reports whether it did
	InitConfig(ctx context.Context, cfg *domain.GlobalConfig) (bool, error)
	GetEscrowBalance(ctx context.Context, account string) (uint64, error)
	ListTransfers(ctx context.Context, account string, limit int) ([]domain.EscrowTransfer, error)

	BeginConfigTx(ctx context.Context) (AdminTx, error)
}

// AdminTx is the transaction used for administrative config changes
type AdminTx interface {
	Tx
	ConfigTx
	SaveConfig(ctx context.Context, cfg *domain.GlobalConfig) error
}
