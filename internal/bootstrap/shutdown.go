package bootstrap

import (
	"context"
	"io"
	"log/slog"

	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/scheduler"
	"github.com/osse101/FateProtocol_Go/internal/server"
	"github.com/osse101/FateProtocol_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
// Nil fields are skipped.
type ShutdownComponents struct {
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	ResolutionWorker   *worker.ResolutionWorker
	ResilientPublisher *event.ResilientPublisher
	// Closers are released last, in order (Redis client, database pool wrappers)
	Closers []io.Closer
}

// GracefulShutdown performs graceful shutdown of all application components in order:
// 1. HTTP server (stop accepting new requests)
// 2. Scheduler (no new periodic jobs)
// 3. Resolution worker (cancel timers, drain queued settlements, stop the pool)
// 4. Event publisher (flush pending events)
// 5. Remaining closers
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}

	if components.ResolutionWorker != nil {
		if err := components.ResolutionWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResolutionWorkerFailed, "error", err)
		}
	}

	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	for _, c := range components.Closers {
		if err := c.Close(); err != nil {
			slog.Error(LogMsgCloseFailed, "error", err)
		}
	}

	slog.Info(LogMsgServerStopped)
}
