package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Listing limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToCreditAccount    = "failed to credit escrow account"
	ErrMsgFailedToDebitAccount     = "failed to debit escrow account"
	ErrMsgFailedToRecordTransfer   = "failed to record escrow transfer"
	ErrMsgFailedToGetEscrowBalance = "failed to get escrow balance"
	ErrMsgFailedToListTransfers    = "failed to list escrow transfers"
)

// Error Messages - Config Operations
const (
	ErrMsgFailedToGetConfig    = "failed to get global config"
	ErrMsgFailedToInitConfig   = "failed to initialize global config"
	ErrMsgFailedToSaveConfig   = "failed to save global config"
	ErrMsgFailedToUpdateTotals = "failed to update global totals"
)

// Error Messages - Match Operations
const (
	ErrMsgFailedToCreateMatch      = "failed to create match"
	ErrMsgFailedToGetMatch         = "failed to get match"
	ErrMsgFailedToListMatches      = "failed to list matches"
	ErrMsgFailedToUpdateMatch      = "failed to update match"
	ErrMsgFailedToAddEntry         = "failed to add match entry"
	ErrMsgFailedToGetEntry         = "failed to get match entry"
	ErrMsgFailedToUpdateEntry      = "failed to update match entry"
	ErrMsgFailedToGetSideCounts    = "failed to get side counts"
	ErrMsgFailedToUpdateSideCount  = "failed to update side count"
	ErrMsgFailedToDecodeMatchState = "failed to decode match outcome"
)

// Error Messages - Proposal Operations
const (
	ErrMsgFailedToCreateProposal = "failed to create proposal"
	ErrMsgFailedToGetProposal    = "failed to get proposal"
	ErrMsgFailedToListProposals  = "failed to list proposals"
	ErrMsgFailedToUpdateProposal = "failed to update proposal"
	ErrMsgFailedToGetVote        = "failed to get vote"
	ErrMsgFailedToUpsertVote     = "failed to upsert vote"
	ErrMsgFailedToUpdateVote     = "failed to update vote"
	ErrMsgFailedToListMarket     = "failed to list market"
	ErrMsgFailedToGetListings    = "failed to get listed markets"
)

// Error Messages - Event Journal Operations
const (
	ErrMsgFailedToEncodeEvent  = "failed to encode journal event"
	ErrMsgFailedToLogEvent     = "failed to insert journal event"
	ErrMsgFailedToQueryEvents  = "failed to query journal events"
	ErrMsgFailedToDecodeEvent  = "failed to decode journal event"
	ErrMsgFailedToPruneJournal = "failed to prune event journal"
)
