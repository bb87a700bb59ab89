package market

import (
	"context"

	"github.com/osse101/FateProtocol_Go/internal/logger"
)

// SyncJob pulls listings made by other instances into the local registry
type SyncJob struct {
	registry Registry
	source   Source
}

// NewSyncJob creates a new sync job
func NewSyncJob(registry Registry, source Source) *SyncJob {
	return &SyncJob{registry: registry, source: source}
}

// Process registers every persisted listing the registry has not seen yet
func (j *SyncJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	added, err := Sync(ctx, j.registry, j.source)
	if err != nil {
		log.Warn(LogMsgSyncFailed, "added", added, "error", err)
		return err
	}
	if added > 0 {
		log.Info(LogMsgSyncAdded, "added", added)
	}
	return nil
}
