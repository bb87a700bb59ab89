package arena

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgCreateMatchCalled  = "CreateMatch called"
	LogMsgMatchCreated       = "Match created"
	LogMsgPlayerJoined       = "Player joined match"
	LogMsgPredictionLocked   = "Prediction locked in"
	LogMsgMatchStarted       = "Match started"
	LogMsgMatchResolved      = "Match resolved"
	LogMsgMatchRefunded      = "Match settled as refund"
	LogMsgWinningsClaimed    = "Winnings claimed"
	LogMsgFeeSwept           = "Platform fee swept to treasury"
	LogMsgFeeSweepDeferred   = "Escrow below fee, sweep deferred"
	LogMsgMatchCancelled     = "Match cancelled"
	LogMsgMatchVoided        = "Match voided"
	LogMsgResidualSwept      = "Residual swept to treasury"
	LogMsgCommitFailedReturn = "Commit failed"
)

// ============================================================================
// Error Contexts
// ============================================================================

const (
	ErrContextFailedToBeginTx       = "failed to begin transaction"
	ErrContextFailedToCommitTx      = "failed to commit transaction"
	ErrContextFailedToGetConfig     = "failed to get config"
	ErrContextFailedToGetMatch      = "failed to get match"
	ErrContextFailedToCreateMatch   = "failed to create match"
	ErrContextFailedToUpdateMatch   = "failed to update match"
	ErrContextFailedToGetEntry      = "failed to get entry"
	ErrContextFailedToAddEntry      = "failed to add entry"
	ErrContextFailedToDeposit       = "failed to deposit stake"
	ErrContextFailedToPay           = "failed to pay out"
	ErrContextFailedToSweep         = "failed to sweep escrow"
	ErrContextFailedToFetchQuote    = "failed to fetch oracle quote"
	ErrContextFailedToUpdateTotals  = "failed to update totals"
	ErrContextFailedToComputePayout = "failed to compute payout"
)
