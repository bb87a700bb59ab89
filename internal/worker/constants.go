package worker

import "time"

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Lifecycle
// ============================================================================

const (
	LogMsgWorkerShuttingDown     = "Shutting down worker"
	LogMsgWorkerShutdownComplete = "Worker shutdown complete"
	LogMsgWorkerShutdownTimeout  = "Worker shutdown timeout, some executions may still be running"
	LogMsgTimerCancelled         = "Cancelled pending execution"
)

// ============================================================================
// Log Messages - Resolution Worker
// ============================================================================

const (
	LogMsgResolutionWorkerStarted   = "Resolution worker started"
	LogMsgFailedToListPending       = "Failed to list pending pools"
	LogMsgFailedToListStale         = "Failed to list stale matches"
	LogMsgSchedulingResolution      = "Scheduling match resolution"
	LogMsgResolvingMatch            = "Resolving match"
	LogMsgMatchResolutionRetry      = "Match resolution failed, will retry within window"
	LogMsgMatchResolutionFailed     = "Failed to resolve match"
	LogMsgMatchNeedsVoid            = "Match missed its resolution window and needs to be voided"
	LogMsgStaleMatches              = "Matches missed their resolution window and need to be voided"
	LogMsgResolvingProposal         = "Resolving expired proposal"
	LogMsgProposalResolutionFailed  = "Failed to resolve proposal"
	LogMsgResolutionLockHeld        = "Resolution lock held elsewhere, skipping"
	LogMsgResolutionEnqueueRejected = "Worker pool stopped, resolution not queued"
)

// ============================================================================
// Defaults
// ============================================================================

const (
	DefaultScanInterval = 5 * time.Second
	DefaultLockTTL      = 30 * time.Second
	DefaultBatchSize    = 100
	DefaultPoolWorkers  = 4
	DefaultQueueSize    = 256
	DefaultJobTimeout   = 20 * time.Second

	lockPrefixMatch    = "resolve:match:"
	lockPrefixProposal = "resolve:proposal:"

	workerNameResolution = "resolution worker"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount      = 2
	TestQueueSize        = 10
	TestExpectedJobCount = 2
)
