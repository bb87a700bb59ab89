// Package amm prices the two sides of a futarchy proposal from their pooled liquidity.
package amm

import (
	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/payout"
)

// HalfPrice is the price of either side while the pool is empty
const HalfPrice = domain.BasisPoints / 2

// Pool is the liquidity on each side of a proposal
type Pool struct {
	Pass uint64
	Fail uint64
}

// FromProposal reads the pool state off a proposal
func FromProposal(p *domain.Proposal) Pool {
	return Pool{Pass: p.PassPool, Fail: p.FailPool}
}

// Total returns the combined liquidity
func (p Pool) Total() (uint64, error) {
	return payout.Add(p.Pass, p.Fail)
}

// Update returns the pool after amount is added to side
func (p Pool) Update(side domain.OutcomeSide, amount uint64) (Pool, error) {
	var err error
	switch side {
	case domain.OutcomePass:
		p.Pass, err = payout.Add(p.Pass, amount)
	case domain.OutcomeFail:
		p.Fail, err = payout.Add(p.Fail, amount)
	default:
		return p, domain.ErrInvalidOutcomeSide
	}
	return p, err
}

// Prices returns the implied pass and fail prices in basis points.
// A side's price is the opposite side's share of the pool, so the two always sum to 10000.
func (p Pool) Prices() (passBps, failBps uint64, err error) {
	total, err := p.Total()
	if err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return HalfPrice, HalfPrice, nil
	}
	passBps, err = payout.MulDiv(p.Fail, domain.BasisPoints, total)
	if err != nil {
		return 0, 0, err
	}
	return passBps, domain.BasisPoints - passBps, nil
}

// HasPassed reports whether pass is strictly cheaper than fail
func (p Pool) HasPassed() (bool, error) {
	pass, fail, err := p.Prices()
	if err != nil {
		return false, err
	}
	return pass < fail, nil
}

// PriceImpact returns how far, in basis points, a trade would move the prices
func (p Pool) PriceImpact(side domain.OutcomeSide, amount uint64) (uint64, error) {
	before, _, err := p.Prices()
	if err != nil {
		return 0, err
	}
	next, err := p.Update(side, amount)
	if err != nil {
		return 0, err
	}
	after, _, err := next.Prices()
	if err != nil {
		return 0, err
	}
	if after > before {
		return after - before, nil
	}
	return before - after, nil
}

// CheckImpact fails with ErrPriceImpactTooHigh when the trade moves prices past maxBps.
// A zero limit disables the check.
func (p Pool) CheckImpact(side domain.OutcomeSide, amount uint64, maxBps uint16) error {
	if maxBps == 0 {
		return nil
	}
	impact, err := p.PriceImpact(side, amount)
	if err != nil {
		return err
	}
	if impact > uint64(maxBps) {
		return domain.ErrPriceImpactTooHigh
	}
	return nil
}
