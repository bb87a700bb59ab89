package council

// Log messages
const (
	LogMsgCreateProposalCalled = "CreateProposal called"
	LogMsgProposalCreated      = "Proposal created"
	LogMsgOutcomeTraded        = "Outcome traded"
	LogMsgProposalResolved     = "Proposal resolved"
	LogMsgBondForfeited        = "Proposer bond forfeited to treasury"
	LogMsgProposalExecuted     = "Proposal executed"
	LogMsgMarketListed         = "Market listed"
	LogMsgMarketAlreadyListed  = "Market already listed, listing skipped"
	LogMsgMarketRegisterFailed = "Failed to register listed market"
	LogMsgProposalCancelled    = "Proposal cancelled"
	LogMsgVoteClaimed          = "Vote claimed"
	LogMsgResidualSwept        = "Residual swept to treasury"
)

// Error contexts
const (
	ErrContextFailedToBeginTx        = "failed to begin transaction"
	ErrContextFailedToCommitTx       = "failed to commit transaction"
	ErrContextFailedToGetConfig      = "failed to get config"
	ErrContextFailedToGetProposal    = "failed to get proposal"
	ErrContextFailedToCreateProposal = "failed to create proposal"
	ErrContextFailedToUpdateProposal = "failed to update proposal"
	ErrContextFailedToGetVote        = "failed to get vote"
	ErrContextFailedToSaveVote       = "failed to save vote"
	ErrContextFailedToDeposit        = "failed to deposit"
	ErrContextFailedToPay            = "failed to pay out"
	ErrContextFailedToSweep          = "failed to sweep escrow"
	ErrContextFailedToPrice          = "failed to price pool"
	ErrContextFailedToUpdateTotals   = "failed to update totals"
	ErrContextFailedToComputePayout  = "failed to compute payout"
	ErrContextFailedToListMarket     = "failed to list market"
)
