package domain

import (
	"time"

	"github.com/google/uuid"
)

// RawQuote is a price report exactly as the feed returned it
type RawQuote struct {
	FeedID      string    `json:"feed_id"`
	Price       int64     `json:"price"`
	Exponent    int32     `json:"exponent"`
	Confidence  uint64    `json:"confidence"`
	PublishTime time.Time `json:"publish_time"`
}

// OracleQuote is a validated quote normalized to PricePrecisionDecimals
type OracleQuote struct {
	RawQuote
	Normalized    uint64 `json:"normalized"`
	ConfidenceBps uint64 `json:"confidence_bps"`
}

// Market maps a tradable symbol to its oracle feed. Markets listed by an
// executed proposal carry the proposal id and listing time.
type Market struct {
	Symbol      string     `json:"symbol" yaml:"symbol"`
	FeedID      string     `json:"feed_id" yaml:"feed_id"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Active      bool       `json:"active" yaml:"active"`
	ProposalID  *uuid.UUID `json:"proposal_id,omitempty" yaml:"-"`
	ListedAt    *time.Time `json:"listed_at,omitempty" yaml:"-"`
}
