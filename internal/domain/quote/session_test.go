package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func sessionFixture(t *testing.T, agent *pricing.AgentRate) *Session {
	t.Helper()
	stay, err := daterange.Parse("2025-03-10", "2025-03-12")
	require.NoError(t, err)

	plans := map[rateplan.MealPlanID]rateplan.MealPlanPrice{
		"EP": {
			MealPlanID:      "EP",
			Name:            "Room Only",
			DoubleOccupancy: money.Rupees(3000),
			ExtraBedAdult:   money.Rupees(800),
			ExtraBedChild:   money.Rupees(500),
		},
	}
	var dates []rateplan.RatePlanDate
	for _, night := range stay.StayDates() {
		dates = append(dates, rateplan.RatePlanDate{Date: night, Plans: plans})
	}
	rt, err := rateplan.NewRoomType(rateplan.CreateParams{
		ID:             "rt-deluxe",
		PropertyID:     "prop-1",
		Name:           "Deluxe",
		Occupancy:      2,
		MinOccupancy:   1,
		MaxOccupancy:   3,
		AvailableRooms: 2,
		RatePlanDates:  dates,
	})
	require.NoError(t, err)

	s, err := NewSession(CreateParams{
		ID:         "qs-1",
		UserID:     "user-1",
		PropertyID: "prop-1",
		Stay:       stay,
		RoomTypes:  []*rateplan.RoomType{rt},
		AgentRate:  agent,
		Now:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return s
}

func TestNewSessionFiltersInventory(t *testing.T) {
	s := sessionFixture(t, nil)
	assert.Len(t, s.RoomTypes, 1)
	assert.Empty(t, s.Selections)
	assert.Equal(t, s.CreatedAt.Add(30*time.Minute), s.ExpiresAt)

	t.Run("no bookable inventory", func(t *testing.T) {
		stay, err := daterange.Parse("2025-06-01", "2025-06-03")
		require.NoError(t, err)
		// Snapshot holds a room type with no rates for this stay.
		rt, err := rateplan.NewRoomType(rateplan.CreateParams{
			ID: "rt-bare", PropertyID: "prop-1", Name: "Bare",
			Occupancy: 2, MinOccupancy: 1, MaxOccupancy: 2, AvailableRooms: 1,
		})
		require.NoError(t, err)
		_, err = NewSession(CreateParams{ID: "qs-2", Stay: stay, RoomTypes: []*rateplan.RoomType{rt}})
		assert.ErrorIs(t, err, ErrNoInventory)
	})
}

func TestSessionApply(t *testing.T) {
	s := sessionFixture(t, nil)
	now := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)

	require.NoError(t, s.Apply(booking.Action{Kind: booking.ActionSelect, RoomTypeID: "rt-deluxe", MealPlan: "EP"}, now))
	require.Contains(t, s.Selections, rateplan.RoomTypeID("rt-deluxe"))
	assert.Equal(t, now, s.UpdatedAt)

	t.Run("rejection leaves stored state untouched", func(t *testing.T) {
		before := s.Selections.Copy()
		err := s.Apply(booking.Action{Kind: booking.ActionSetRooms, RoomTypeID: "rt-deluxe", Rooms: 5}, now)
		var rej *booking.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, before, s.Selections)
	})
}

func TestSessionTotals(t *testing.T) {
	s := sessionFixture(t, &pricing.AgentRate{Type: pricing.AgentRatePercentage, Percent: 10})
	now := time.Time{}

	require.NoError(t, s.Apply(booking.Action{Kind: booking.ActionSelect, RoomTypeID: "rt-deluxe", MealPlan: "EP"}, now))
	require.NoError(t, s.Apply(booking.Action{Kind: booking.ActionAdjustGuests, RoomTypeID: "rt-deluxe", Delta: 1}, now))

	q, err := s.Totals()
	require.NoError(t, err)
	// 3000/night, 2 nights, 10% off base, 5% tax on the undiscounted base.
	assert.Equal(t, money.Rupees(6000), q.BaseTotal)
	assert.Equal(t, money.Rupees(600), q.Discount)
	assert.Equal(t, money.Rupees(300), q.TaxTotal)
	assert.Equal(t, money.Rupees(5700), q.GrandTotal)
}

func TestSessionExpired(t *testing.T) {
	s := sessionFixture(t, nil)
	assert.False(t, s.Expired(s.ExpiresAt.Add(-time.Second)))
	assert.True(t, s.Expired(s.ExpiresAt))
}
