package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Error classes
	ErrMsgValidation = "validation error"
	ErrMsgState      = "invalid state"
	ErrMsgOracle     = "oracle error"
	ErrMsgArithmetic = "arithmetic error"

	// Validation errors
	ErrMsgInvalidBetAmount         = "invalid bet amount"
	ErrMsgInvalidPlayerCount       = "invalid player count"
	ErrMsgInvalidMatchDuration     = "invalid match duration"
	ErrMsgInvalidPredictionWindow  = "invalid prediction window"
	ErrMsgInvalidMarketType        = "invalid market type"
	ErrMsgInvalidPrediction        = "invalid prediction for market type"
	ErrMsgInvalidPriceThreshold    = "invalid price threshold"
	ErrMsgInvalidFeeConfiguration  = "invalid fee configuration"
	ErrMsgInvalidMarketName        = "invalid market name"
	ErrMsgInvalidMarketDescription = "invalid market description"
	ErrMsgInvalidFeedID            = "invalid oracle feed id"
	ErrMsgInvalidParticipant       = "invalid participant id"
	ErrMsgInvalidVotingPeriod      = "invalid voting period"
	ErrMsgInvalidOutcomeSide       = "invalid outcome side"
	ErrMsgTradeAmountTooSmall      = "trade amount too small"
	ErrMsgTradeAmountTooLarge      = "trade amount too large"
	ErrMsgPriceImpactTooHigh       = "trade exceeds maximum price impact"
	ErrMsgUnknownMarket            = "unknown market"
	ErrMsgInvalidTreasury          = "invalid treasury account"
	ErrMsgUnauthorized             = "unauthorized"
	ErrMsgMatchNotFound            = "match not found"
	ErrMsgProposalNotFound         = "proposal not found"
	ErrMsgPlayerNotInMatch         = "player not in match"
	ErrMsgNoPosition               = "no position in proposal"
	ErrMsgPlayerAlreadyJoined      = "player already joined"
	ErrMsgNoWinnings               = "no winnings to claim"
	ErrMsgInsufficientEscrow       = "insufficient escrow balance"
	ErrMsgInsufficientLiquidity    = "insufficient treasury liquidity"
	ErrMsgProtocolPaused           = "protocol is paused"
	ErrMsgConfigNotInitialized     = "global config not initialized"
	ErrMsgMatchFull                = "match is full"
	ErrMsgMatchNotOpen             = "match is not open"
	ErrMsgMatchNotStarted          = "match has not started"
	ErrMsgMatchAlreadyStarted      = "match already started"
	ErrMsgMatchAlreadyResolved     = "match already resolved"
	ErrMsgMatchNotResolved         = "match not resolved"
	ErrMsgInvalidMatchState        = "invalid match state"
	ErrMsgNotEnoughPlayers         = "not enough players"
	ErrMsgPredictionAlreadyLocked  = "prediction already locked"
	ErrMsgPredictionWindowClosed   = "prediction window closed"
	ErrMsgResolutionTimeNotReached = "resolution time not reached"
	ErrMsgResolutionWindowPassed   = "resolution window passed"
	ErrMsgResolutionWindowOpen     = "resolution window still open"
	ErrMsgCannotCancelStartedMatch = "cannot cancel a match holding stakes"
	ErrMsgAlreadyClaimed           = "already claimed"
	ErrMsgClaimsOutstanding        = "claims outstanding"
	ErrMsgResidualAlreadySwept     = "residual already swept"
	ErrMsgProposalNotActive        = "proposal not active"
	ErrMsgProposalNotResolved      = "proposal not resolved"
	ErrMsgProposalDidNotPass       = "proposal did not pass"
	ErrMsgProposalAlreadyExecuted  = "proposal already executed"
	ErrMsgMarketAlreadyListed      = "market already listed"
	ErrMsgVotingPeriodEnded        = "voting period ended"
	ErrMsgVotingPeriodNotEnded     = "voting period not ended"
	ErrMsgCannotCancelAfterVoting  = "cannot cancel after voting started"
	ErrMsgStaleQuote               = "stale oracle quote"
	ErrMsgFutureQuote              = "oracle quote published in the future"
	ErrMsgPriceUnavailable         = "oracle price unavailable"
	ErrMsgConfidenceTooWide        = "oracle confidence interval too wide"
	ErrMsgFeedMismatch             = "oracle feed mismatch"
	ErrMsgArithmeticOverflow       = "arithmetic overflow"
	ErrMsgNoWinners                = "no winners"
	ErrMsgLockHeld                 = "lock held by another owner"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Error classes. Every domain error below wraps exactly one of these, so callers
// can branch with errors.Is(err, domain.ErrOracle) and friends.
var (
	ErrValidation = errors.New(ErrMsgValidation)
	ErrState      = errors.New(ErrMsgState)
	ErrOracle     = errors.New(ErrMsgOracle)
	ErrArithmetic = errors.New(ErrMsgArithmetic)
)

type classifiedError struct {
	msg   string
	class error
}

func (e *classifiedError) Error() string { return e.msg }
func (e *classifiedError) Unwrap() error { return e.class }

func newError(class error, msg string) error {
	return &classifiedError{msg: msg, class: class}
}

// Validation errors - rejected before any state change
var (
	ErrInvalidBetAmount         = newError(ErrValidation, ErrMsgInvalidBetAmount)
	ErrInvalidPlayerCount       = newError(ErrValidation, ErrMsgInvalidPlayerCount)
	ErrInvalidMatchDuration     = newError(ErrValidation, ErrMsgInvalidMatchDuration)
	ErrInvalidPredictionWindow  = newError(ErrValidation, ErrMsgInvalidPredictionWindow)
	ErrInvalidMarketType        = newError(ErrValidation, ErrMsgInvalidMarketType)
	ErrInvalidPrediction        = newError(ErrValidation, ErrMsgInvalidPrediction)
	ErrInvalidPriceThreshold    = newError(ErrValidation, ErrMsgInvalidPriceThreshold)
	ErrInvalidFeeConfiguration  = newError(ErrValidation, ErrMsgInvalidFeeConfiguration)
	ErrInvalidMarketName        = newError(ErrValidation, ErrMsgInvalidMarketName)
	ErrInvalidMarketDescription = newError(ErrValidation, ErrMsgInvalidMarketDescription)
	ErrInvalidFeedID            = newError(ErrValidation, ErrMsgInvalidFeedID)
	ErrInvalidParticipant       = newError(ErrValidation, ErrMsgInvalidParticipant)
	ErrInvalidVotingPeriod      = newError(ErrValidation, ErrMsgInvalidVotingPeriod)
	ErrInvalidOutcomeSide       = newError(ErrValidation, ErrMsgInvalidOutcomeSide)
	ErrTradeAmountTooSmall      = newError(ErrValidation, ErrMsgTradeAmountTooSmall)
	ErrTradeAmountTooLarge      = newError(ErrValidation, ErrMsgTradeAmountTooLarge)
	ErrPriceImpactTooHigh       = newError(ErrValidation, ErrMsgPriceImpactTooHigh)
	ErrUnknownMarket            = newError(ErrValidation, ErrMsgUnknownMarket)
	ErrInvalidTreasury          = newError(ErrValidation, ErrMsgInvalidTreasury)
	ErrUnauthorized             = newError(ErrValidation, ErrMsgUnauthorized)
	ErrMatchNotFound            = newError(ErrValidation, ErrMsgMatchNotFound)
	ErrProposalNotFound         = newError(ErrValidation, ErrMsgProposalNotFound)
	ErrPlayerNotInMatch         = newError(ErrValidation, ErrMsgPlayerNotInMatch)
	ErrNoPosition               = newError(ErrValidation, ErrMsgNoPosition)
)

// State errors - wrong lifecycle phase, no partial effect
var (
	ErrProtocolPaused           = newError(ErrState, ErrMsgProtocolPaused)
	ErrConfigNotInitialized     = newError(ErrState, ErrMsgConfigNotInitialized)
	ErrPlayerAlreadyJoined      = newError(ErrState, ErrMsgPlayerAlreadyJoined)
	ErrMatchFull                = newError(ErrState, ErrMsgMatchFull)
	ErrMatchNotOpen             = newError(ErrState, ErrMsgMatchNotOpen)
	ErrMatchNotStarted          = newError(ErrState, ErrMsgMatchNotStarted)
	ErrMatchAlreadyStarted      = newError(ErrState, ErrMsgMatchAlreadyStarted)
	ErrMatchAlreadyResolved     = newError(ErrState, ErrMsgMatchAlreadyResolved)
	ErrMatchNotResolved         = newError(ErrState, ErrMsgMatchNotResolved)
	ErrInvalidMatchState        = newError(ErrState, ErrMsgInvalidMatchState)
	ErrNotEnoughPlayers         = newError(ErrState, ErrMsgNotEnoughPlayers)
	ErrPredictionAlreadyLocked  = newError(ErrState, ErrMsgPredictionAlreadyLocked)
	ErrPredictionWindowClosed   = newError(ErrState, ErrMsgPredictionWindowClosed)
	ErrResolutionTimeNotReached = newError(ErrState, ErrMsgResolutionTimeNotReached)
	ErrResolutionWindowPassed   = newError(ErrState, ErrMsgResolutionWindowPassed)
	ErrResolutionWindowOpen     = newError(ErrState, ErrMsgResolutionWindowOpen)
	ErrCannotCancelStartedMatch = newError(ErrState, ErrMsgCannotCancelStartedMatch)
	ErrAlreadyClaimed           = newError(ErrState, ErrMsgAlreadyClaimed)
	ErrNoWinnings               = newError(ErrState, ErrMsgNoWinnings)
	ErrClaimsOutstanding        = newError(ErrState, ErrMsgClaimsOutstanding)
	ErrResidualAlreadySwept     = newError(ErrState, ErrMsgResidualAlreadySwept)
	ErrInsufficientEscrow       = newError(ErrState, ErrMsgInsufficientEscrow)
	ErrInsufficientLiquidity    = newError(ErrState, ErrMsgInsufficientLiquidity)
	ErrProposalNotActive        = newError(ErrState, ErrMsgProposalNotActive)
	ErrProposalNotResolved      = newError(ErrState, ErrMsgProposalNotResolved)
	ErrProposalDidNotPass       = newError(ErrState, ErrMsgProposalDidNotPass)
	ErrProposalAlreadyExecuted  = newError(ErrState, ErrMsgProposalAlreadyExecuted)
	ErrMarketAlreadyListed      = newError(ErrState, ErrMsgMarketAlreadyListed)
	ErrVotingPeriodEnded        = newError(ErrState, ErrMsgVotingPeriodEnded)
	ErrVotingPeriodNotEnded     = newError(ErrState, ErrMsgVotingPeriodNotEnded)
	ErrCannotCancelAfterVoting  = newError(ErrState, ErrMsgCannotCancelAfterVoting)
	ErrLockHeld                 = newError(ErrState, ErrMsgLockHeld)
)

// Oracle errors - resolution is refused and must be retried later
var (
	ErrStaleQuote        = newError(ErrOracle, ErrMsgStaleQuote)
	ErrFutureQuote       = newError(ErrOracle, ErrMsgFutureQuote)
	ErrPriceUnavailable  = newError(ErrOracle, ErrMsgPriceUnavailable)
	ErrConfidenceTooWide = newError(ErrOracle, ErrMsgConfidenceTooWide)
	ErrFeedMismatch      = newError(ErrOracle, ErrMsgFeedMismatch)
)

// Arithmetic errors - fatal to the single operation, never saturated
var (
	ErrArithmeticOverflow = newError(ErrArithmetic, ErrMsgArithmeticOverflow)
	ErrNoWinners          = newError(ErrArithmetic, ErrMsgNoWinners)
)
