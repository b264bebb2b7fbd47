package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := New(1050, "inr")
		require.NoError(t, err)
		assert.Equal(t, Money{Amount: 1050, Currency: "INR"}, m)
	})

	t.Run("bad currency", func(t *testing.T) {
		_, err := New(1, "rupees")
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
}

func TestArithmetic(t *testing.T) {
	a := Rupees(30)
	b := Rupees(12)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(4200), sum.Amount)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), diff.Amount)

	_, err = a.Add(Must(100, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	assert.Equal(t, int64(9000), a.Multiply(3).Amount)
	assert.Equal(t, int64(-3000), a.Neg().Amount)
	assert.Equal(t, int64(0), a.Neg().ClampNonNegative().Amount)
}

func TestPercent(t *testing.T) {
	t.Run("slab rates come out exact", func(t *testing.T) {
		assert.Equal(t, int64(37500), Rupees(7500).Percent(5).Amount)    // 375.00
		assert.Equal(t, int64(135018), Must(750100, INR).Percent(18).Amount) // 1350.18
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		assert.Equal(t, int64(1), Must(10, INR).Percent(5).Amount) // 0.5 -> 1
	})
}

func TestDistribute(t *testing.T) {
	t.Run("proportional split is exact", func(t *testing.T) {
		parts, err := Distribute(Rupees(2700), []int64{1000, 2000})
		require.NoError(t, err)
		assert.Equal(t, int64(90000), parts[0].Amount)
		assert.Equal(t, int64(180000), parts[1].Amount)
	})

	t.Run("awkward remainders still sum to total", func(t *testing.T) {
		total := Must(1000, INR)
		parts, err := Distribute(total, []int64{333, 333, 334})
		require.NoError(t, err)
		var sum int64
		for _, p := range parts {
			sum += p.Amount
		}
		assert.Equal(t, total.Amount, sum)
	})

	t.Run("zero weights get nothing", func(t *testing.T) {
		parts, err := Distribute(Rupees(10), []int64{0, 5})
		require.NoError(t, err)
		assert.Equal(t, int64(0), parts[0].Amount)
		assert.Equal(t, int64(1000), parts[1].Amount)
	})

	t.Run("no positive weights", func(t *testing.T) {
		_, err := Distribute(Rupees(10), []int64{0, 0})
		assert.ErrorIs(t, err, ErrNothingToSplit)
	})

	t.Run("huge totals do not overflow", func(t *testing.T) {
		total := Must(math.MaxInt64, INR)
		parts, err := Distribute(total, []int64{2, 1})
		require.NoError(t, err)
		assert.Equal(t, int64(6148914691236517205), parts[0].Amount)
		assert.Equal(t, int64(3074457345618258602), parts[1].Amount)
		assert.Equal(t, total.Amount, parts[0].Amount+parts[1].Amount)
	})
}
