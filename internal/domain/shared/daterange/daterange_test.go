package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		dr, err := Parse("2025-03-10", "2025-03-13")
		require.NoError(t, err)
		assert.Equal(t, 3, dr.Nights())
		assert.Equal(t, time.UTC, dr.CheckIn.Location())
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := Parse("10/03/2025", "2025-03-13")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("checkout not after checkin", func(t *testing.T) {
		_, err := Parse("2025-03-13", "2025-03-13")
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestBlockDates(t *testing.T) {
	t.Run("checkout day excluded", func(t *testing.T) {
		dr, err := Parse("2025-03-10", "2025-03-13")
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, dr.BlockDates())
	})

	t.Run("independent of caller timezone", func(t *testing.T) {
		kolkata := time.FixedZone("IST", 5*3600+1800)
		honolulu := time.FixedZone("HST", -10*3600)
		in := time.Date(2025, 3, 10, 0, 0, 0, 0, kolkata)
		out := time.Date(2025, 3, 13, 0, 0, 0, 0, honolulu)
		dr, err := New(in, out)
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, dr.BlockDates())
	})
}

func TestStayDates(t *testing.T) {
	dr, err := Parse("2025-03-10", "2025-03-12")
	require.NoError(t, err)
	dates := dr.StayDates()
	require.Len(t, dates, 2)
	assert.True(t, dr.ContainsDate(dates[0]))
	assert.True(t, dr.ContainsDate(dates[1]))
	assert.False(t, dr.ContainsDate(dr.CheckOut))
}

func TestOverlaps(t *testing.T) {
	a, _ := Parse("2025-03-10", "2025-03-13")
	b, _ := Parse("2025-03-12", "2025-03-15")
	c, _ := Parse("2025-03-13", "2025-03-15")
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c)) // back-to-back stays share no night
}
