package domain

import (
	"encoding/json"
	"fmt"
)

// OutcomeKind tags the resolution state of a match
type OutcomeKind string

const (
	OutcomeKindPending OutcomeKind = "pending"
	OutcomeKindWinner  OutcomeKind = "winner"
	OutcomeKindRefund  OutcomeKind = "refund"
)

// RefundReason explains why a match settled as a refund
type RefundReason string

const (
	RefundReasonNone      RefundReason = ""
	RefundReasonTie       RefundReason = "tie"
	RefundReasonNoWinners RefundReason = "no_winning_positions"
	RefundReasonVoided    RefundReason = "voided"
)

// Outcome is the resolution of a match. The zero value is pending.
// A winner outcome always carries a side; construct through WinningOutcome or RefundOutcome.
type Outcome struct {
	kind   OutcomeKind
	side   PredictionSide
	reason RefundReason
}

// PendingOutcome is the outcome of an unresolved match
func PendingOutcome() Outcome {
	return Outcome{kind: OutcomeKindPending}
}

// WinningOutcome records side as the winner
func WinningOutcome(side PredictionSide) Outcome {
	return Outcome{kind: OutcomeKindWinner, side: side}
}

// RefundOutcome records that every position is refunded fee-free
func RefundOutcome(reason RefundReason) Outcome {
	return Outcome{kind: OutcomeKindRefund, reason: reason}
}

// Kind returns the outcome tag
func (o Outcome) Kind() OutcomeKind {
	if o.kind == "" {
		return OutcomeKindPending
	}
	return o.kind
}

// Winner returns the winning side when there is one
func (o Outcome) Winner() (PredictionSide, bool) {
	if o.kind != OutcomeKindWinner {
		return "", false
	}
	return o.side, true
}

// IsRefund reports whether the match settles as a full refund
func (o Outcome) IsRefund() bool {
	return o.kind == OutcomeKindRefund
}

// IsDecided reports whether the match has been resolved
func (o Outcome) IsDecided() bool {
	return o.kind == OutcomeKindWinner || o.kind == OutcomeKindRefund
}

// RefundReason returns why the outcome is a refund
func (o Outcome) RefundReason() RefundReason {
	return o.reason
}

func (o Outcome) String() string {
	switch o.Kind() {
	case OutcomeKindWinner:
		return string(o.side)
	case OutcomeKindRefund:
		return fmt.Sprintf("refund(%s)", o.reason)
	default:
		return string(OutcomeKindPending)
	}
}

// ParseOutcome rebuilds an outcome from its stored columns
func ParseOutcome(kind string, side *string, reason *string) (Outcome, error) {
	switch OutcomeKind(kind) {
	case "", OutcomeKindPending:
		return PendingOutcome(), nil
	case OutcomeKindWinner:
		if side == nil || *side == "" {
			return Outcome{}, fmt.Errorf("winner outcome without side")
		}
		return WinningOutcome(PredictionSide(*side)), nil
	case OutcomeKindRefund:
		r := RefundReasonNone
		if reason != nil {
			r = RefundReason(*reason)
		}
		return RefundOutcome(r), nil
	default:
		return Outcome{}, fmt.Errorf("unknown outcome kind %q", kind)
	}
}

type outcomeJSON struct {
	Kind   OutcomeKind    `json:"kind"`
	Side   PredictionSide `json:"side,omitempty"`
	Reason RefundReason   `json:"reason,omitempty"`
}

// MarshalJSON exposes the tagged fields
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{Kind: o.Kind(), Side: o.side, Reason: o.reason})
}

// UnmarshalJSON restores an outcome and rejects winner outcomes without a side
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw outcomeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	side := string(raw.Side)
	reason := string(raw.Reason)
	parsed, err := ParseOutcome(string(raw.Kind), &side, &reason)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
