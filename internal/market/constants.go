package market

import "errors"

// DefaultPath is where the registry is read from when MARKETS_FILE is unset
const DefaultPath = "configs/markets.yaml"

const (
	LogMsgSyncAdded  = "Listed markets registered"
	LogMsgSyncFailed = "Market registry sync failed"
)

const (
	ErrContextReadFile   = "failed to read market registry"
	ErrContextParseFile  = "failed to parse market registry"
	ErrContextListListed = "failed to list listed markets"
)

var (
	ErrInvalidSymbol   = errors.New("invalid market symbol")
	ErrMissingFeedID   = errors.New("market has no feed id")
	ErrInvalidFeedID   = errors.New("invalid market feed id")
	ErrDuplicateSymbol = errors.New("duplicate market symbol")
)
