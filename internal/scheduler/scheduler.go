package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/worker"
)

// Scheduler feeds jobs into the worker pool at fixed intervals
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule runs job every interval until Stop. The first run happens one interval after the call.
func (s *Scheduler) Schedule(name string, interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				switch err := s.workerPool.Offer(job); {
				case errors.Is(err, worker.ErrPoolStopped):
					slog.Default().Warn(LogMsgPoolStopped, "job", name)
					return
				case err != nil:
					slog.Default().Warn(LogMsgTickSkipped, "job", name, "error", err)
				}
			case <-s.quit:
				return
			}
		}
	}()
	slog.Default().Info(LogMsgJobScheduled, "job", name, "interval", interval)
}

// Stop halts every scheduled job. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
}
