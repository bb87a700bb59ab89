package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

func TestPrices(t *testing.T) {
	tests := []struct {
		name         string
		pool         Pool
		expectedPass uint64
		expectedFail uint64
	}{
		{name: "empty pool is even", pool: Pool{}, expectedPass: 5000, expectedFail: 5000},
		{name: "pass-heavy pool makes fail cheap", pool: Pool{Pass: 7000, Fail: 3000}, expectedPass: 3000, expectedFail: 7000},
		{name: "fail-heavy pool makes pass cheap", pool: Pool{Pass: 3000, Fail: 7000}, expectedPass: 7000, expectedFail: 3000},
		{name: "one-sided pool", pool: Pool{Pass: 1}, expectedPass: 0, expectedFail: 10000},
		{name: "rounding keeps the sum", pool: Pool{Pass: 1, Fail: 2}, expectedPass: 6666, expectedFail: 3334},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, fail, err := tt.pool.Prices()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPass, pass)
			assert.Equal(t, tt.expectedFail, fail)
			assert.Equal(t, uint64(domain.BasisPoints), pass+fail)
		})
	}
}

func TestHasPassed(t *testing.T) {
	passed, err := Pool{Pass: 7000, Fail: 3000}.HasPassed()
	require.NoError(t, err)
	assert.True(t, passed)

	passed, err = Pool{Pass: 3000, Fail: 7000}.HasPassed()
	require.NoError(t, err)
	assert.False(t, passed)

	passed, err = Pool{}.HasPassed()
	require.NoError(t, err)
	assert.False(t, passed, "equal prices must not pass")
}

func TestUpdate(t *testing.T) {
	p, err := Pool{}.Update(domain.OutcomePass, 500)
	require.NoError(t, err)
	p, err = p.Update(domain.OutcomeFail, 200)
	require.NoError(t, err)
	assert.Equal(t, Pool{Pass: 500, Fail: 200}, p)

	_, err = p.Update("Maybe", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidOutcomeSide)

	_, err = Pool{Pass: math.MaxUint64}.Update(domain.OutcomePass, 1)
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)
}

func TestPriceImpact(t *testing.T) {
	pool := Pool{Pass: 5000, Fail: 5000}

	impact, err := pool.PriceImpact(domain.OutcomePass, 10000)
	require.NoError(t, err)
	// pass price 5000 -> 5000*10000/20000 = 2500
	assert.Equal(t, uint64(2500), impact)

	impact, err = pool.PriceImpact(domain.OutcomeFail, 0)
	require.NoError(t, err)
	assert.Zero(t, impact)
}

func TestCheckImpact(t *testing.T) {
	pool := Pool{Pass: 5000, Fail: 5000}

	assert.NoError(t, pool.CheckImpact(domain.OutcomePass, 10000, 0), "zero limit disables the guard")
	assert.NoError(t, pool.CheckImpact(domain.OutcomePass, 10000, 2500))

	err := pool.CheckImpact(domain.OutcomePass, 10000, 2499)
	assert.ErrorIs(t, err, domain.ErrPriceImpactTooHigh)
}
