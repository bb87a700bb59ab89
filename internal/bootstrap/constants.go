package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files (read/write for owner, read for group/others)
	LogFilePermission = 0644
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older log files kept beside the new session
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingService     = "Starting Fate Protocol"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
	ErrMsgFailedCreateLogsDir = "failed to create logs directory"
	ErrMsgFailedOpenLogFile   = "failed to open log file"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	// EventDefaultMaxRetries is the default number of retry attempts for failed event publishing
	EventDefaultMaxRetries = 5

	// EventDefaultRetryDelay is the default base delay between retry attempts (exponential backoff)
	EventDefaultRetryDelay = 2 * time.Second

	// EventDefaultDeadLetterPath is the default file path for dead-letter event logging
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// =============================================================================
// Config Sync Messages
// =============================================================================

const (
	LogMsgGlobalConfigSeeded = "Global config ready"
	LogMsgMarketsLoaded      = "Market registry loaded"
	LogMsgListedMarketsAdded = "Markets listed by proposals registered"

	ErrMsgInvalidGlobalConfig = "invalid global config defaults"
	ErrMsgFailedInitConfig    = "failed to initialize global config"
	ErrMsgFailedLoadMarkets   = "failed to load market registry"
	ErrMsgInvalidMarketsFile  = "market registry does not match its schema"
	ErrMsgFailedSyncMarkets   = "failed to register listed markets"
)

// =============================================================================
// Oracle Messages
// =============================================================================

const (
	LogMsgOracleInitialized  = "Oracle initialized"
	LogMsgStaticFeedEmpty    = "Static oracle has no prices, every quote will be unavailable"
	ErrMsgFailedStaticPrices = "failed to load static prices"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgAnnouncerRegistered        = "Discord announcer registered"
	LogMsgAnnouncerDisabled          = "DISCORD_WEBHOOK_URL not set, announcements disabled"
	LogMsgJournalRegistered          = "Event journal registered"
	ErrMsgFailedRegisterMetrics      = "failed to register metrics collector"
	ErrMsgFailedRegisterJournal      = "failed to register event journal"
	ErrMsgFailedCreateWebhookSender  = "failed to create discord webhook sender"
)

// =============================================================================
// Periodic Jobs
// =============================================================================

const (
	JobNameEventLogCleanup  = "eventlog_cleanup"
	JobNameMarketSync       = "market_sync"
	LogMsgJournalCleanupOff = "Event journal retention disabled, cleanup not scheduled"
	LogMsgMarketSyncOff     = "Market registry sync not scheduled"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgResolutionWorkerFailed     = "Resolution worker shutdown failed"
	LogMsgCloseFailed                = "Failed to close resource"
)
