package domain

import (
	"time"

	"github.com/google/uuid"
)

// GlobalConfig holds protocol-wide fee parameters and running totals.
// There is exactly one row; it is locked whenever totals change.
type GlobalConfig struct {
	FeeBps            uint16    `json:"fee_bps"`
	Treasury          string    `json:"treasury"`
	Paused            bool      `json:"paused"`
	ProposalStake     uint64    `json:"proposal_stake"`
	ProposerBonusBps  uint16    `json:"proposer_bonus_bps"`
	MaxPriceImpactBps uint16    `json:"max_price_impact_bps"`
	TotalVolume       uint64    `json:"total_volume"`
	TotalFees         uint64    `json:"total_fees"`
	TotalMatches      uint64    `json:"total_matches"`
	TotalProposals    uint64    `json:"total_proposals"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ConfigUpdate carries an administrative change; nil fields are left alone
type ConfigUpdate struct {
	FeeBps            *uint16
	Treasury          *string
	Paused            *bool
	ProposalStake     *uint64
	ProposerBonusBps  *uint16
	MaxPriceImpactBps *uint16
}

// TransferKind labels an escrow movement in the audit log
type TransferKind string

const (
	TransferDeposit    TransferKind = "deposit"
	TransferPayout     TransferKind = "payout"
	TransferRefund     TransferKind = "refund"
	TransferFeeSweep   TransferKind = "fee_sweep"
	TransferResidual   TransferKind = "residual_sweep"
	TransferBond       TransferKind = "bond"
	TransferBonus      TransferKind = "proposer_bonus"
	TransferForfeiture TransferKind = "bond_forfeit"
)

// EscrowTransfer is one row of the append-only transfer log.
// Source and Destination are ledger accounts or participant ids.
type EscrowTransfer struct {
	ID          uuid.UUID    `json:"id"`
	Source      string       `json:"source"`
	Destination string       `json:"destination"`
	Kind        TransferKind `json:"kind"`
	Amount      uint64       `json:"amount"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PayoutResult is returned by a successful claim
type PayoutResult struct {
	PoolID      uuid.UUID `json:"pool_id"`
	Participant string    `json:"participant"`
	Amount      uint64    `json:"amount"`
	Refund      bool      `json:"refund"`
	FeeSwept    uint64    `json:"fee_swept"`
	Destination string    `json:"destination"`
}

// ResidualResult is returned by a residual sweep
type ResidualResult struct {
	PoolID   uuid.UUID `json:"pool_id"`
	Amount   uint64    `json:"amount"`
	Treasury string    `json:"treasury"`
}

// TotalsDelta is added to the running totals on GlobalConfig
type TotalsDelta struct {
	Volume    uint64
	Fees      uint64
	Matches   uint64
	Proposals uint64
}
