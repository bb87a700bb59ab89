package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the lifecycle phase of a prediction match
type MatchStatus string

const (
	MatchStatusOpen       MatchStatus = "Open"
	MatchStatusInProgress MatchStatus = "InProgress"
	MatchStatusCompleted  MatchStatus = "Completed"
	MatchStatusCancelled  MatchStatus = "Cancelled"
)

// IsTerminal reports whether no further transitions are allowed
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusCancelled
}

// MarketType selects how the exit price decides the winning side
type MarketType string

const (
	MarketTypePriceDirection MarketType = "PriceDirection"
	MarketTypePriceTarget    MarketType = "PriceTarget"
	MarketTypePriceRange     MarketType = "PriceRange"
)

// PredictionSide is the outcome a player locks in
type PredictionSide string

const (
	SideHigher       PredictionSide = "Higher"
	SideLower        PredictionSide = "Lower"
	SideTargetHit    PredictionSide = "TargetHit"
	SideTargetMissed PredictionSide = "TargetMissed"
	SideInRange      PredictionSide = "InRange"
	SideOutOfRange   PredictionSide = "OutOfRange"
)

// Sides returns the two predictions that are valid for the market type
func (t MarketType) Sides() []PredictionSide {
	switch t {
	case MarketTypePriceDirection:
		return []PredictionSide{SideHigher, SideLower}
	case MarketTypePriceTarget:
		return []PredictionSide{SideTargetHit, SideTargetMissed}
	case MarketTypePriceRange:
		return []PredictionSide{SideInRange, SideOutOfRange}
	default:
		return nil
	}
}

// IsValid reports whether the market type is known
func (t MarketType) IsValid() bool {
	return len(t.Sides()) > 0
}

// Accepts reports whether side is a legal prediction for this market type
func (t MarketType) Accepts(side PredictionSide) bool {
	for _, s := range t.Sides() {
		if s == side {
			return true
		}
	}
	return false
}

// Match is a pooled prediction wager settled against an oracle price.
// Prices are stored at PricePrecisionDecimals.
type Match struct {
	ID               uuid.UUID     `json:"id"`
	CreatorID        string        `json:"creator_id"`
	MarketSymbol     string        `json:"market_symbol"`
	FeedID           string        `json:"feed_id"`
	MarketType       MarketType    `json:"market_type"`
	EntryFee         uint64        `json:"entry_fee"`
	FeeBps           uint16        `json:"fee_bps"`
	MaxPlayers       int           `json:"max_players"`
	CurrentPlayers   int           `json:"current_players"`
	TotalPot         uint64        `json:"total_pot"`
	TargetPrice      uint64        `json:"target_price,omitempty"`
	RangeLow         uint64        `json:"range_low,omitempty"`
	RangeHigh        uint64        `json:"range_high,omitempty"`
	Status           MatchStatus   `json:"status"`
	StartPrice       *uint64       `json:"start_price,omitempty"`
	EndPrice         *uint64       `json:"end_price,omitempty"`
	Outcome          Outcome       `json:"outcome"`
	PredictionWindow time.Duration `json:"prediction_window"`
	Duration         time.Duration `json:"duration"`
	CreatedAt        time.Time     `json:"created_at"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	ResolvedAt       *time.Time    `json:"resolved_at,omitempty"`
	ResolutionTime   time.Time     `json:"resolution_time"`
	FeeSwept         bool          `json:"fee_swept"`
	ResidualSwept    bool          `json:"residual_swept"`
	ClaimedCount     int           `json:"claimed_count"`
}

// PredictionDeadline is the last instant a prediction can be locked in
func (m *Match) PredictionDeadline() time.Time {
	return m.CreatedAt.Add(m.PredictionWindow)
}

// ResolutionDeadline is the last instant the match can be resolved
func (m *Match) ResolutionDeadline(window time.Duration) time.Time {
	return m.ResolutionTime.Add(window)
}

// IsFull reports whether the match reached its player capacity
func (m *Match) IsFull() bool {
	return m.CurrentPlayers >= m.MaxPlayers
}

// EscrowAccount returns the ledger account that holds this match's stakes
func (m *Match) EscrowAccount() string {
	return MatchEscrowAccount(m.ID)
}

// MatchEscrowAccount builds the escrow account key for a match id
func MatchEscrowAccount(id uuid.UUID) string {
	return EscrowPrefixMatch + id.String()
}

// Entry is one player's position in a match
type Entry struct {
	MatchID     uuid.UUID       `json:"match_id"`
	PlayerID    string          `json:"player_id"`
	Stake       uint64          `json:"stake"`
	Prediction  *PredictionSide `json:"prediction,omitempty"`
	PredictedAt *time.Time      `json:"predicted_at,omitempty"`
	JoinedAt    time.Time       `json:"joined_at"`
	Claimed     bool            `json:"claimed"`
	Winnings    *uint64         `json:"winnings,omitempty"`
	ClaimedAt   *time.Time      `json:"claimed_at,omitempty"`
}

// SideCount is the incrementally maintained number of positions locked on a side
type SideCount struct {
	MatchID uuid.UUID      `json:"match_id"`
	Side    PredictionSide `json:"side"`
	Count   int            `json:"count"`
}

// MatchFilter narrows match listings
type MatchFilter struct {
	Status *MatchStatus
	Limit  int
}
