// Command app runs the Fate Protocol HTTP API and its resolution worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/FateProtocol_Go/internal/admin"
	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/bootstrap"
	redisc "github.com/osse101/FateProtocol_Go/internal/cache/redis"
	"github.com/osse101/FateProtocol_Go/internal/concurrency"
	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/database"
	"github.com/osse101/FateProtocol_Go/internal/eventlog"
	"github.com/osse101/FateProtocol_Go/internal/handler"
	"github.com/osse101/FateProtocol_Go/internal/server"
	"github.com/osse101/FateProtocol_Go/internal/worker"
)

// ShutdownTimeout bounds the whole graceful shutdown sequence
const ShutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Fate Protocol exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		return fmt.Errorf("environment validation failed: %w", err)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	repos := bootstrap.InitializeRepositories(pool)

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}
	journal := eventlog.NewService(repos.EventLog)
	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{EventBus: bus, Config: cfg, Journal: journal}); err != nil {
		return err
	}

	registry, err := bootstrap.LoadMarkets(cfg)
	if err != nil {
		return err
	}
	if err := bootstrap.SyncListedMarkets(ctx, registry, repos.Proposals); err != nil {
		return err
	}
	quotes, err := bootstrap.InitializeOracle(cfg, registry)
	if err != nil {
		return err
	}

	adminSvc := admin.NewService(repos.Config, publisher)
	if _, err := bootstrap.SyncGlobalConfig(ctx, adminSvc, cfg); err != nil {
		return err
	}
	matchSvc := arena.NewService(repos.Matches, quotes, registry, publisher, cfg.ResolutionWindow)
	proposalSvc := council.NewService(repos.Proposals, registry, publisher)

	readiness := map[string]handler.Pinger{"database": pool}
	var closers []io.Closer
	var locker concurrency.Locker = concurrency.NewLockManager()
	if cfg.RedisEnabled() {
		client, err := redisc.New(ctx, redisc.ClientConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		locker = redisc.NewLockManager(client, redisc.DefaultLockPrefix)
		readiness["redis"] = client
		closers = append(closers, client)
		slog.Info("Using Redis resolution locks", "addr", cfg.RedisAddr)
	}

	jobs := worker.NewPool(cfg.WorkerPoolSize, worker.DefaultQueueSize, worker.DefaultJobTimeout)
	jobs.Start()
	resolver := worker.NewResolutionWorker(matchSvc, proposalSvc, repos.Matches, repos.Proposals, locker, jobs, worker.ResolutionConfig{
		ScanInterval:     cfg.ScanInterval,
		ResolutionWindow: cfg.ResolutionWindow,
	})
	resolver.Subscribe(bus)
	resolver.Start(ctx)
	sched := bootstrap.ScheduleJobs(jobs, bootstrap.JobDependencies{
		Journal:  journal,
		Markets:  registry,
		Listings: repos.Proposals,
	}, cfg)

	srv := server.NewServer(server.Options{
		Port:              cfg.Port,
		APIKey:            cfg.APIKey,
		AdminAPIKey:       cfg.AdminAPIKey,
		TrustedProxies:    cfg.TrustedProxies,
		RequestsPerSecond: cfg.RequestsPerSecond,
		RequestBurst:      cfg.RequestBurst,
	}, server.Services{
		Matches:   matchSvc,
		Proposals: proposalSvc,
		Admin:     adminSvc,
		Markets:   registry,
		Quotes:    quotes,
		Events:    journal,
		Readiness: readiness,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
			Server:             srv,
			Scheduler:          sched,
			ResolutionWorker:   resolver,
			ResilientPublisher: publisher,
			Closers:            closers,
		})
		return nil
	})

	return g.Wait()
}
