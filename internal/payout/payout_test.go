package payout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

func TestFee(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		bps      uint16
		expected uint64
	}{
		{name: "standard platform fee", amount: 1_000_000, bps: 250, expected: 25_000},
		{name: "zero fee", amount: 1_000_000, bps: 0, expected: 0},
		{name: "rounds down", amount: 999, bps: 250, expected: 24},
		{name: "full amount", amount: 5_000, bps: 10_000, expected: 5_000},
		{name: "max uint64 does not overflow", amount: math.MaxUint64, bps: 250, expected: 461_168_601_842_738_790},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := Fee(tt.amount, tt.bps)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fee)
		})
	}
}

func TestFee_RejectsBpsAboveScale(t *testing.T) {
	_, err := Fee(100, 10_001)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeConfiguration)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPrizePool(t *testing.T) {
	prize, err := PrizePool(1_000_000, 250)
	require.NoError(t, err)
	assert.Equal(t, uint64(975_000), prize)
}

func TestPerWinner(t *testing.T) {
	share, err := PerWinner(975_000, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(325_000), share)

	share, err = PerWinner(100, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(33), share)

	_, err = PerWinner(975_000, 0)
	assert.ErrorIs(t, err, domain.ErrNoWinners)
	assert.ErrorIs(t, err, domain.ErrArithmetic)
}

func TestFutarchyPayout(t *testing.T) {
	tests := []struct {
		name     string
		stake    uint64
		winning  uint64
		losing   uint64
		expected uint64
	}{
		{name: "sole winner takes losing pool", stake: 3_000, winning: 3_000, losing: 7_000, expected: 10_000},
		{name: "proportional share", stake: 1_000, winning: 3_000, losing: 7_000, expected: 3_333},
		{name: "empty losing pool returns stake", stake: 5_000, winning: 5_000, losing: 0, expected: 5_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FutarchyPayout(tt.stake, tt.winning, tt.losing)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestFutarchyPayout_LargeValuesUse128Bit(t *testing.T) {
	stake := uint64(math.MaxUint64 / 4)
	out, err := FutarchyPayout(stake, stake*2, stake)
	require.NoError(t, err)
	assert.Equal(t, stake+stake/2, out)
}

func TestFutarchyPayout_EmptyWinningPool(t *testing.T) {
	_, err := FutarchyPayout(0, 0, 100)
	assert.ErrorIs(t, err, domain.ErrNoWinners)
}

func TestMulDiv_Overflow(t *testing.T) {
	_, err := MulDiv(math.MaxUint64, math.MaxUint64, 2)
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)

	_, err = MulDiv(1, 1, 0)
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)
}

func TestAddSub_Checked(t *testing.T) {
	_, err := Add(math.MaxUint64, 1)
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)

	_, err = Sub(1, 2)
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)

	v, err := Sub(10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), v)
}

func TestSplitPool_ConservesFunds(t *testing.T) {
	for _, total := range []uint64{1_000_000, 3_000_001, 7_777_777, 10_000_000_000} {
		for winners := 1; winners <= 10; winners++ {
			split, err := SplitPool(total, 250, winners)
			require.NoError(t, err)

			paid := split.PerWinner*uint64(winners) + split.Fee
			assert.LessOrEqual(t, paid, total)
			assert.Equal(t, total, paid+split.Residual)
			assert.Less(t, split.Residual, uint64(winners))
		}
	}
}

func TestSplitPool_ReferenceValues(t *testing.T) {
	split, err := SplitPool(1_000_000, 250, 3)
	require.NoError(t, err)

	assert.Equal(t, uint64(25_000), split.Fee)
	assert.Equal(t, uint64(975_000), split.Prize)
	assert.Equal(t, uint64(325_000), split.PerWinner)
	assert.Equal(t, uint64(0), split.Residual)
}
