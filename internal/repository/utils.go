package repository

import (
	"context"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error other than an
// already-closed transaction
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil && err.Error() != domain.ErrMsgTxClosed {
		logger.FromContext(ctx).Error(LogMsgRollbackFailed, "error", err)
	}
}

// LogMsgRollbackFailed is logged when a deferred rollback fails
const LogMsgRollbackFailed = "Failed to rollback transaction"
