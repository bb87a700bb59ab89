package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/FateProtocol_Go/internal/testing/leaktest"
	"github.com/osse101/FateProtocol_Go/internal/worker"
)

type countingJob struct {
	runs atomic.Int32
	done chan struct{}
}

func (j *countingJob) Process(ctx context.Context) error {
	j.runs.Add(1)
	select {
	case j.done <- struct{}{}:
	default:
	}
	return nil
}

func TestScheduler(t *testing.T) {
	pool := worker.NewPool(1, 10, 0)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	defer sched.Stop()

	job := &countingJob{done: make(chan struct{}, 10)}
	sched.Schedule("count", 10*time.Millisecond, job)

	timeout := time.After(time.Second)
	for seen := 0; seen < 2; seen++ {
		select {
		case <-job.done:
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}

	assert.GreaterOrEqual(t, job.runs.Load(), int32(2))
}

func TestSchedulerStopReleasesGoroutines(t *testing.T) {
	leaktest.CheckNoGoroutineLeak(t, func() {
		pool := worker.NewPool(2, 1, 0)
		pool.Start()

		sched := New(pool)
		sched.Schedule("idle", time.Hour, worker.JobFunc(func(context.Context) error { return nil }))
		sched.Schedule("busy", time.Millisecond, worker.JobFunc(func(context.Context) error { return nil }))
		time.Sleep(10 * time.Millisecond)

		sched.Stop()
		sched.Stop()
		pool.Stop()
	})
}
