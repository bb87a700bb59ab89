package bootstrap

import (
	"log/slog"

	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/eventlog"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/scheduler"
	"github.com/osse101/FateProtocol_Go/internal/worker"
)

// JobDependencies holds what the periodic jobs operate on
type JobDependencies struct {
	Journal eventlog.Service
	// Markets and Listings enable the registry sync when both are set
	Markets  market.Registry
	Listings market.Source
}

// ScheduleJobs starts the periodic maintenance jobs on the shared worker pool.
// A non-positive retention or interval leaves the journal untrimmed.
func ScheduleJobs(pool *worker.Pool, deps JobDependencies, cfg *config.Config) *scheduler.Scheduler {
	sched := scheduler.New(pool)

	if deps.Journal == nil || cfg.EventLogRetentionDays <= 0 || cfg.EventLogCleanupInterval <= 0 {
		slog.Info(LogMsgJournalCleanupOff)
	} else {
		sched.Schedule(JobNameEventLogCleanup, cfg.EventLogCleanupInterval,
			eventlog.NewCleanupJob(deps.Journal, cfg.EventLogRetentionDays))
	}

	if deps.Markets == nil || deps.Listings == nil || cfg.MarketSyncInterval <= 0 {
		slog.Info(LogMsgMarketSyncOff)
	} else {
		sched.Schedule(JobNameMarketSync, cfg.MarketSyncInterval, market.NewSyncJob(deps.Markets, deps.Listings))
	}

	return sched
}
