package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/money"
)

func testRoomType(t *testing.T, availableRooms int) *rateplan.RoomType {
	t.Helper()
	plans := map[rateplan.MealPlanID]rateplan.MealPlanPrice{
		"EP": {
			MealPlanID:      "EP",
			Name:            "Room Only",
			DoubleOccupancy: money.Rupees(3000),
			ExtraBedAdult:   money.Rupees(800),
			ExtraBedChild:   money.Rupees(500),
		},
	}
	rt, err := rateplan.NewRoomType(rateplan.CreateParams{
		ID:             "rt-1",
		PropertyID:     "prop-1",
		Name:           "Deluxe",
		Occupancy:      2,
		MinOccupancy:   1,
		MaxOccupancy:   3,
		AvailableRooms: availableRooms,
		RatePlanDates: []rateplan.RatePlanDate{
			{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Plans: plans},
		},
	})
	require.NoError(t, err)
	return rt
}

func TestNewSelection(t *testing.T) {
	rt := testRoomType(t, 2)

	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Rooms)
	assert.Equal(t, rt.MinOccupancy, sel.Guests)
	assert.Empty(t, sel.ExtraGuests)

	_, err = NewSelection(rt, "MAP")
	assert.ErrorIs(t, err, ErrMealPlanNotOffered)
}

func TestAdjustGuestsAutoGrowsRooms(t *testing.T) {
	rt := testRoomType(t, 2)
	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)

	// 1 room holds up to 3; the 4th guest forces a second room.
	for i := 0; i < 3; i++ {
		sel, err = sel.AdjustGuests(rt, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, sel.Guests)
	assert.Equal(t, 2, sel.Rooms)
	// 4 guests across 2 rooms of base occupancy 2: no extra beds.
	assert.Empty(t, sel.ExtraGuests)
}

func TestCapacityRejectionLeavesStateUnchanged(t *testing.T) {
	rt := testRoomType(t, 1) // growth impossible
	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)
	sel, err = sel.AdjustGuests(rt, 2) // 3 guests fill the room
	require.NoError(t, err)
	before := sel.Copy()

	after, err := sel.AdjustGuests(rt, 1)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, RejectionAvailability, rej.Kind)
	assert.Equal(t, "only 1 room(s) available", rej.Message)
	assert.Equal(t, before, after)

	after, err = sel.AdjustChildren(rt, 1)
	require.Error(t, err)
	assert.Equal(t, before, after)
}

func TestValidateCapacityMessages(t *testing.T) {
	rt := testRoomType(t, 2)

	err := ValidateCapacity(rt, 4, 0, 1)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, RejectionCapacity, rej.Kind)
	assert.Equal(t, "maximum 3 guests allowed for 1 room(s)", rej.Message)

	err = ValidateCapacity(rt, 2, 0, 3)
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "only 2 room(s) available", rej.Message)

	assert.NoError(t, ValidateCapacity(rt, 3, 0, 1))
}

func TestSetRoomsToZeroResetsSelection(t *testing.T) {
	rt := testRoomType(t, 2)
	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)
	sel, err = sel.AdjustGuests(rt, 3)
	require.NoError(t, err)
	sel, err = sel.AdjustChildren(rt, 1)
	require.NoError(t, err)
	require.Equal(t, 2, sel.Rooms)

	sel, err = sel.SetRooms(rt, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Guests)
	assert.Equal(t, 0, sel.Children)
	assert.Empty(t, sel.ExtraGuests)
}

func TestRoomDecrementReclampsGuests(t *testing.T) {
	rt := testRoomType(t, 2)
	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)
	sel, err = sel.AdjustGuests(rt, 4) // 5 guests, 2 rooms
	require.NoError(t, err)

	sel, err = sel.AdjustRooms(rt, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Rooms)
	assert.Equal(t, 3, sel.Guests) // clamped to rooms * maxOccupancy
}

func TestExtraGuestAttribution(t *testing.T) {
	rt := testRoomType(t, 2)
	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)
	sel, err = sel.AdjustGuests(rt, 2) // 3 guests in 1 room, base 2
	require.NoError(t, err)

	require.Len(t, sel.ExtraGuests, 1)
	assert.Equal(t, ExtraAdult, sel.ExtraGuests[0].Type)

	adults, children := sel.ExtraBedCounts()
	assert.Equal(t, 1, adults)
	assert.Equal(t, 0, children)

	sel, err = sel.ToggleExtraGuest(0)
	require.NoError(t, err)
	adults, children = sel.ExtraBedCounts()
	assert.Equal(t, 0, adults)
	assert.Equal(t, 1, children)

	_, err = sel.ToggleExtraGuest(5)
	assert.Error(t, err)
}

func TestGuestsBelowMinimumRejected(t *testing.T) {
	rt := testRoomType(t, 2)
	sel, err := NewSelection(rt, "EP")
	require.NoError(t, err)

	after, err := sel.AdjustGuests(rt, -1)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, RejectionCapacity, rej.Kind)
	assert.Equal(t, sel, after)
}
