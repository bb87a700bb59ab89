package admin

const (
	LogMsgConfigInitialized = "Global config initialized"
	LogMsgConfigExists      = "Global config already present, leaving it untouched"
	LogMsgConfigUpdated     = "Global config updated"
	LogMsgProtocolPaused    = "Protocol paused"
	LogMsgProtocolResumed   = "Protocol resumed"
)

const (
	ErrContextFailedToBeginTx    = "failed to begin transaction"
	ErrContextFailedToCommitTx   = "failed to commit transaction"
	ErrContextFailedToGetConfig  = "failed to get config"
	ErrContextFailedToSaveConfig = "failed to save config"
	ErrContextFailedToInitConfig = "failed to initialize config"
	ErrContextFailedToGetBalance = "failed to get escrow balance"
	ErrContextFailedToListLedger = "failed to list transfers"
)

// DefaultTransferLimit caps transfer log listings when no limit is given
const DefaultTransferLimit = 50

// MaxTransferLimit is the largest page of the transfer log served at once
const MaxTransferLimit = 500
