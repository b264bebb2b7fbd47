package rateplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func planPrice(id MealPlanID, doubleRupees int64) MealPlanPrice {
	return MealPlanPrice{
		MealPlanID:      id,
		Name:            string(id),
		DoubleOccupancy: money.Rupees(doubleRupees),
		SingleOccupancy: money.Rupees(doubleRupees - 500),
		ExtraBedAdult:   money.Rupees(800),
		ExtraBedChild:   money.Rupees(500),
	}
}

func date(day int, plans ...MealPlanPrice) RatePlanDate {
	d := RatePlanDate{Date: time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)}
	if len(plans) > 0 {
		d.Plans = make(map[MealPlanID]MealPlanPrice, len(plans))
		for _, p := range plans {
			d.Plans[p.MealPlanID] = p
		}
	}
	return d
}

func newRoomType(t *testing.T, dates ...RatePlanDate) *RoomType {
	t.Helper()
	rt, err := NewRoomType(CreateParams{
		ID:               "rt-deluxe",
		PropertyID:       "prop-1",
		Name:             "Deluxe",
		Occupancy:        2,
		MinOccupancy:     1,
		MaxOccupancy:     3,
		AvailableRooms:   4,
		AvailableRoomIDs: []string{"101", "102", "103", "104"},
		RatePlanDates:    dates,
	})
	require.NoError(t, err)
	return rt
}

func TestCommonMealPlans(t *testing.T) {
	t.Run("intersection over all nights", func(t *testing.T) {
		rt := newRoomType(t,
			date(10, planPrice("MAP", 3000), planPrice("EP", 2500)),
			date(11, planPrice("MAP", 3000)),
			date(12, planPrice("MAP", 3200), planPrice("EP", 2500)),
		)
		assert.Equal(t, []MealPlanID{"MAP"}, rt.CommonMealPlans())
		assert.True(t, rt.HasCommonMealPlan("MAP"))
		assert.False(t, rt.HasCommonMealPlan("EP"))
	})

	t.Run("bare date entry empties the intersection", func(t *testing.T) {
		rt := newRoomType(t,
			date(10, planPrice("MAP", 3000)),
			date(11), // no meal plan data
		)
		assert.Empty(t, rt.CommonMealPlans())
		assert.False(t, rt.Sellable())
	})

	t.Run("no dates means nothing sellable", func(t *testing.T) {
		rt := newRoomType(t)
		assert.Empty(t, rt.CommonMealPlans())
	})
}

func TestSellable(t *testing.T) {
	rt := newRoomType(t, date(10, planPrice("EP", 2500)))
	assert.True(t, rt.Sellable())

	rt.AvailableRooms = 0
	assert.False(t, rt.Sellable())
}

func TestBookableForStay(t *testing.T) {
	stay, err := daterange.Parse("2025-03-10", "2025-03-12")
	require.NoError(t, err)

	covered := newRoomType(t,
		date(10, planPrice("EP", 2500)),
		date(11, planPrice("EP", 2500)),
	)
	short := newRoomType(t, date(10, planPrice("EP", 2500)))
	short.ID = "rt-short"

	out := BookableForStay([]*RoomType{covered, short}, stay)
	require.Len(t, out, 1)
	assert.Equal(t, RoomTypeID("rt-deluxe"), out[0].ID)
}

func TestReplaceRates(t *testing.T) {
	rt := newRoomType(t, date(10, planPrice("EP", 2500)))

	err := rt.ReplaceRates([]RatePlanDate{
		date(10, planPrice("MAP", 3000)),
		date(11), // bare entry dropped
	}, time.Time{})
	require.NoError(t, err)
	require.Len(t, rt.RatePlanDates, 1)
	assert.Equal(t, []MealPlanID{"MAP"}, rt.CommonMealPlans())
}

func TestRoomIDsForStay(t *testing.T) {
	rt := newRoomType(t)
	assert.Equal(t, []string{"101", "102"}, rt.RoomIDsForStay(2))
	assert.Nil(t, rt.RoomIDsForStay(0))
	assert.Len(t, rt.RoomIDsForStay(10), 4)
}

func TestNewRoomTypeValidation(t *testing.T) {
	_, err := NewRoomType(CreateParams{PropertyID: "p", Name: "n", Occupancy: 2, MinOccupancy: 1, MaxOccupancy: 2})
	assert.ErrorIs(t, err, ErrIDRequired)

	_, err = NewRoomType(CreateParams{ID: "x", PropertyID: "p", Name: "n", Occupancy: 2, MinOccupancy: 2, MaxOccupancy: 1})
	assert.ErrorIs(t, err, ErrInvalidOccupancy)

	bad := planPrice("EP", 2500)
	bad.ExtraBedChild = money.Money{Amount: -1, Currency: money.INR}
	_, err = NewRoomType(CreateParams{
		ID: "x", PropertyID: "p", Name: "n",
		Occupancy: 2, MinOccupancy: 1, MaxOccupancy: 2,
		RatePlanDates: []RatePlanDate{date(10, bad)},
	})
	assert.ErrorIs(t, err, ErrNegativePrice)
}
