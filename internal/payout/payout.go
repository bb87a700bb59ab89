// Package payout holds the fee and prize arithmetic shared by matches and proposals.
// Every function works on base units and either returns an exact result or an error.
package payout

import (
	"math/bits"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// MulDiv computes floor(a*b/d) with a 128-bit intermediate
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, domain.ErrArithmeticOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

// Add returns a+b or ErrArithmeticOverflow
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrArithmeticOverflow when b > a
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return diff, nil
}

// Fee returns floor(amount*bps/10000)
func Fee(amount uint64, bps uint16) (uint64, error) {
	if bps > domain.BasisPoints {
		return 0, domain.ErrInvalidFeeConfiguration
	}
	return MulDiv(amount, uint64(bps), domain.BasisPoints)
}

// PrizePool returns total minus the platform fee
func PrizePool(total uint64, bps uint16) (uint64, error) {
	fee, err := Fee(total, bps)
	if err != nil {
		return 0, err
	}
	return Sub(total, fee)
}

// PerWinner splits the prize pool evenly, rounding down
func PerWinner(prize uint64, winners int) (uint64, error) {
	if winners <= 0 {
		return 0, domain.ErrNoWinners
	}
	return prize / uint64(winners), nil
}

// FutarchyPayout returns stake plus the stake's proportional share of the losing pool
func FutarchyPayout(stake, winningPool, losingPool uint64) (uint64, error) {
	if winningPool == 0 {
		return 0, domain.ErrNoWinners
	}
	if stake > winningPool {
		return 0, domain.ErrArithmeticOverflow
	}
	share, err := MulDiv(stake, losingPool, winningPool)
	if err != nil {
		return 0, err
	}
	return Add(stake, share)
}

// Residual is what stays in escrow after the fee and every winner share are paid
func Residual(total, fee, perWinner uint64, winners int) (uint64, error) {
	if winners < 0 {
		return 0, domain.ErrNoWinners
	}
	hi, paid := bits.Mul64(perWinner, uint64(winners))
	if hi != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	out, err := Add(paid, fee)
	if err != nil {
		return 0, err
	}
	return Sub(total, out)
}

// Split is the full breakdown of a winner-take-all pool
type Split struct {
	Total     uint64
	Fee       uint64
	Prize     uint64
	PerWinner uint64
	Winners   int
	Residual  uint64
}

// SplitPool computes fee, prize, per-winner share and dust in one pass
func SplitPool(total uint64, bps uint16, winners int) (Split, error) {
	fee, err := Fee(total, bps)
	if err != nil {
		return Split{}, err
	}
	prize := total - fee
	per, err := PerWinner(prize, winners)
	if err != nil {
		return Split{}, err
	}
	dust, err := Residual(total, fee, per, winners)
	if err != nil {
		return Split{}, err
	}
	return Split{
		Total:     total,
		Fee:       fee,
		Prize:     prize,
		PerWinner: per,
		Winners:   winners,
		Residual:  dust,
	}, nil
}
