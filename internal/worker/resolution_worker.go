package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/concurrency"
	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/metrics"
)

// MatchLister finds matches by resolution time
type MatchLister interface {
	ListDueMatches(ctx context.Context, from, to time.Time, limit int) ([]domain.Match, error)
	ListStaleMatches(ctx context.Context, cutoff time.Time, limit int) ([]domain.Match, error)
}

// ProposalLister returns proposals whose voting has ended
type ProposalLister interface {
	ListExpiredProposals(ctx context.Context, now time.Time, limit int) ([]domain.Proposal, error)
}

// ResolutionConfig tunes the resolution worker
type ResolutionConfig struct {
	ScanInterval     time.Duration
	LockTTL          time.Duration
	BatchSize        int
	ResolutionWindow time.Duration
}

func (c *ResolutionConfig) applyDefaults() {
	if c.ScanInterval <= 0 {
		c.ScanInterval = DefaultScanInterval
	}
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultLockTTL
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.ResolutionWindow <= 0 {
		c.ResolutionWindow = domain.DefaultResolutionWindow
	}
}

// ResolutionWorker resolves matches at their resolution time and proposals
// once voting ends. A timer fires at each match's resolution time and a
// periodic scan retries anything still unresolved inside its window.
type ResolutionWorker struct {
	BaseWorker

	matches   arena.Service
	proposals council.Service
	pending   MatchLister
	expired   ProposalLister
	locker    concurrency.Locker
	pool      *Pool
	cfg       ResolutionConfig
	now       func() time.Time
}

// NewResolutionWorker creates a resolution worker. Jobs run on pool.
func NewResolutionWorker(
	matches arena.Service,
	proposals council.Service,
	pending MatchLister,
	expired ProposalLister,
	locker concurrency.Locker,
	pool *Pool,
	cfg ResolutionConfig,
) *ResolutionWorker {
	cfg.applyDefaults()
	w := &ResolutionWorker{
		matches:   matches,
		proposals: proposals,
		pending:   pending,
		expired:   expired,
		locker:    locker,
		pool:      pool,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
	w.init()
	return w
}

// Start schedules started matches that can still resolve and begins the periodic scan
func (w *ResolutionWorker) Start(ctx context.Context) {
	log := logger.FromContext(ctx)

	now := w.now()
	horizon := now.Add(domain.MaxPredictionWindow + domain.MaxMatchDuration)
	matches, err := w.pending.ListDueMatches(ctx, now.Add(-w.cfg.ResolutionWindow), horizon, w.cfg.BatchSize)
	if err != nil {
		log.Error(LogMsgFailedToListPending, "error", err)
	}
	for i := range matches {
		w.scheduleMatch(matches[i].ID, matches[i].ResolutionTime)
	}

	w.wg.Add(1)
	go w.loop()
	log.Info(LogMsgResolutionWorkerStarted, "scheduled", len(matches), "interval", w.cfg.ScanInterval)
}

// Subscribe schedules matches as they are created
func (w *ResolutionWorker) Subscribe(bus event.Bus) {
	bus.Subscribe(event.MatchCreated, w.handleMatchCreated)
}

func (w *ResolutionWorker) handleMatchCreated(_ context.Context, e event.Event) error {
	m, err := event.DecodePayload[domain.Match](e.Payload)
	if err != nil {
		return nil
	}
	w.scheduleMatch(m.ID, m.ResolutionTime)
	return nil
}

func (w *ResolutionWorker) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.enqueue(JobFunc(func(ctx context.Context) error {
				_, err := w.ProcessDue(ctx)
				return err
			}))
		case <-w.shutdown:
			return
		}
	}
}

func (w *ResolutionWorker) scheduleMatch(id uuid.UUID, at time.Time) {
	if w.isShuttingDown() {
		return
	}
	delay := at.Sub(w.now())
	logger.FromContext(context.Background()).Debug(LogMsgSchedulingResolution, "match_id", id, "delay", delay)

	if delay <= 0 {
		w.enqueueMatch(id)
		return
	}

	timer := time.AfterFunc(delay, func() {
		defer w.removeTimer(id)
		if w.isShuttingDown() {
			return
		}
		w.enqueueMatch(id)
	})
	w.registerTimer(id, timer)
}

func (w *ResolutionWorker) enqueueMatch(id uuid.UUID) {
	w.enqueue(JobFunc(func(ctx context.Context) error {
		if err := w.resolveMatch(ctx, id); err != nil && !errors.Is(err, errSkipped) {
			return err
		}
		return nil
	}))
}

func (w *ResolutionWorker) enqueue(job Job) {
	if !w.pool.Enqueue(job) {
		logger.FromContext(context.Background()).Debug(LogMsgResolutionEnqueueRejected)
	}
}

// ProcessDue resolves every started match whose resolution window is open and
// every proposal whose voting ended. It returns how many pools were resolved.
func (w *ResolutionWorker) ProcessDue(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	now := w.now()
	cutoff := now.Add(-w.cfg.ResolutionWindow)
	resolved := 0

	matches, err := w.pending.ListDueMatches(ctx, cutoff, now, w.cfg.BatchSize)
	if err != nil {
		log.Error(LogMsgFailedToListPending, "kind", domain.PoolKindMatch, "error", err)
		return 0, err
	}
	for i := range matches {
		if err := w.resolveMatch(ctx, matches[i].ID); err == nil {
			resolved++
		}
	}
	w.reportStale(ctx, cutoff)

	proposals, err := w.expired.ListExpiredProposals(ctx, now, w.cfg.BatchSize)
	if err != nil {
		log.Error(LogMsgFailedToListPending, "kind", domain.PoolKindProposal, "error", err)
		return resolved, err
	}
	for i := range proposals {
		if err := w.resolveProposal(ctx, proposals[i].ID); err == nil {
			resolved++
		}
	}
	return resolved, nil
}

// reportStale surfaces matches that missed their window. Only an admin void settles them.
func (w *ResolutionWorker) reportStale(ctx context.Context, cutoff time.Time) {
	log := logger.FromContext(ctx)
	stale, err := w.pending.ListStaleMatches(ctx, cutoff, w.cfg.BatchSize)
	if err != nil {
		log.Error(LogMsgFailedToListStale, "error", err)
		return
	}
	metrics.StaleMatches.Set(float64(len(stale)))
	if len(stale) == 0 {
		return
	}
	ids := make([]string, len(stale))
	for i := range stale {
		ids[i] = stale[i].ID.String()
	}
	log.Warn(LogMsgStaleMatches, "count", len(stale), "match_ids", ids)
}

// resolveMatch resolves one match under its named lock. A lock held elsewhere
// or a match that is already settled is not an error.
func (w *ResolutionWorker) resolveMatch(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	release, err := w.locker.Acquire(ctx, lockPrefixMatch+id.String(), w.cfg.LockTTL)
	if err != nil {
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindMatch, metrics.ResultSkipped).Inc()
		if errors.Is(err, domain.ErrLockHeld) {
			log.Debug(LogMsgResolutionLockHeld, "match_id", id)
			return errSkipped
		}
		return err
	}
	defer release()

	log.Info(LogMsgResolvingMatch, "match_id", id)
	_, err = w.matches.ResolveMatch(ctx, id)
	switch {
	case err == nil:
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindMatch, metrics.ResultSuccess).Inc()
		return nil
	case errors.Is(err, domain.ErrMatchAlreadyResolved),
		errors.Is(err, domain.ErrMatchNotStarted),
		errors.Is(err, domain.ErrInvalidMatchState):
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindMatch, metrics.ResultSkipped).Inc()
		return errSkipped
	case errors.Is(err, domain.ErrOracle):
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindMatch, metrics.ResultError).Inc()
		log.Warn(LogMsgMatchResolutionRetry, "match_id", id, "error", err)
		return err
	case errors.Is(err, domain.ErrResolutionWindowPassed):
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindMatch, metrics.ResultError).Inc()
		log.Warn(LogMsgMatchNeedsVoid, "match_id", id)
		return err
	default:
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindMatch, metrics.ResultError).Inc()
		log.Error(LogMsgMatchResolutionFailed, "match_id", id, "error", err)
		return err
	}
}

func (w *ResolutionWorker) resolveProposal(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	release, err := w.locker.Acquire(ctx, lockPrefixProposal+id.String(), w.cfg.LockTTL)
	if err != nil {
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindProposal, metrics.ResultSkipped).Inc()
		return errSkipped
	}
	defer release()

	log.Info(LogMsgResolvingProposal, "proposal_id", id)
	_, err = w.proposals.ResolveProposal(ctx, id)
	switch {
	case err == nil:
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindProposal, metrics.ResultSuccess).Inc()
		return nil
	case errors.Is(err, domain.ErrProposalNotActive), errors.Is(err, domain.ErrVotingPeriodNotEnded):
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindProposal, metrics.ResultSkipped).Inc()
		return errSkipped
	default:
		metrics.ResolutionAttempts.WithLabelValues(domain.PoolKindProposal, metrics.ResultError).Inc()
		log.Error(LogMsgProposalResolutionFailed, "proposal_id", id, "error", err)
		return err
	}
}

// Shutdown cancels pending timers, stops the scan loop and drains the pool
func (w *ResolutionWorker) Shutdown(ctx context.Context) error {
	err := w.shutdownInternal(ctx, workerNameResolution)
	w.pool.Stop()
	return err
}

var errSkipped = errors.New("resolution skipped")
