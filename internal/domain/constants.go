package domain

import "time"

// Arithmetic scales
const (
	BasisPoints            = 10_000
	PricePrecisionDecimals = 6
	PricePrecision         = 1_000_000
)

// Match limits
const (
	MinPlayers = 2
	MaxPlayers = 10

	MinEntryFee uint64 = 1_000_000
	MaxEntryFee uint64 = 10_000_000_000

	DefaultMatchDuration    = 300 * time.Second
	MinMatchDuration        = 60 * time.Second
	MaxMatchDuration        = 24 * time.Hour
	DefaultPredictionWindow = 60 * time.Second
	MinPredictionWindow     = 10 * time.Second
	MaxPredictionWindow     = time.Hour
	DefaultResolutionWindow = 60 * time.Second
)

// Fee limits
const (
	DefaultPlatformFeeBps uint16 = 250
	MaxPlatformFeeBps     uint16 = 1_000
	DefaultProposerBonus  uint16 = 100
)

// Council limits
const (
	MinTradeAmount uint64 = 1_000_000
	MaxTradeAmount uint64 = 100_000_000_000

	DefaultProposalStake uint64 = 100_000_000

	DefaultVotingPeriod = 7 * 24 * time.Hour
	MinVotingPeriod     = 60 * time.Second
	MaxVotingPeriod     = 30 * 24 * time.Hour
)

// String field limits
const (
	MaxMarketNameLength  = 64
	MaxDescriptionLength = 200
	MaxParticipantIDLen  = 64
	MaxMarketSymbolLen   = 32
)

// Ledger account naming
const (
	EscrowPrefixMatch    = "match:"
	EscrowPrefixProposal = "proposal:"
	DefaultTreasury      = "treasury"
)
