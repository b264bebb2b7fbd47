package order

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

func fixtureQuote(t *testing.T) (pricing.Quote, map[rateplan.RoomTypeID]*rateplan.RoomType, daterange.DateRange) {
	t.Helper()
	stay, err := daterange.Parse("2025-03-10", "2025-03-13")
	require.NoError(t, err)

	plans := map[rateplan.MealPlanID]rateplan.MealPlanPrice{
		"MAP": {
			MealPlanID:      "MAP",
			Name:            "Breakfast & Dinner",
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
		ID:               "rt-deluxe",
		PropertyID:       "prop-1",
		Name:             "Deluxe",
		Occupancy:        2,
		MinOccupancy:     1,
		MaxOccupancy:     3,
		AvailableRooms:   3,
		AvailableRoomIDs: []string{"101", "102", "103"},
		RatePlanDates:    dates,
	})
	require.NoError(t, err)

	quote, err := pricing.Aggregate([]pricing.Item{{
		RoomType:  rt,
		Selection: booking.Selection{RoomTypeID: rt.ID, MealPlan: "MAP", Guests: 2, Rooms: 2},
	}}, nil)
	require.NoError(t, err)
	return quote, map[rateplan.RoomTypeID]*rateplan.RoomType{rt.ID: rt}, stay
}

func TestNewPaymentOrder(t *testing.T) {
	quote, types, stay := fixtureQuote(t)

	o, err := NewPaymentOrder(CreateParams{
		ID:         "ord-1",
		UserID:     "user-1",
		PropertyID: "prop-1",
		Stay:       stay,
		Quote:      quote,
		RoomTypes:  types,
	})
	require.NoError(t, err)

	assert.Equal(t, StateCreated, o.State)
	require.Len(t, o.Lines, 1)
	line := o.Lines[0]
	assert.Equal(t, []string{"101", "102"}, line.RoomIDs)
	assert.Equal(t, "2025-03-10", line.CheckIn)
	assert.Equal(t, "2025-03-13", line.CheckOut)
	assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, line.BlockDates)

	// Order amount matches the quote and the line-item sum exactly.
	assert.Equal(t, quote.GrandTotal, o.Amount)
	var sum money.Money = money.Money{Currency: money.INR}
	for _, l := range o.Lines {
		sum, _ = sum.Add(l.TotalPrice)
	}
	assert.Equal(t, o.Amount, sum)

	events := o.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "order.created", events[0].EventName())
}

func TestNewPaymentOrderRejectsEmptyAndZero(t *testing.T) {
	_, types, stay := fixtureQuote(t)

	_, err := NewPaymentOrder(CreateParams{ID: "ord-1", Stay: stay, RoomTypes: types})
	assert.ErrorIs(t, err, ErrEmptySelection)

	zeroQuote := pricing.Quote{Lines: []pricing.Line{{RoomTypeID: "rt-deluxe"}}}
	_, err = NewPaymentOrder(CreateParams{ID: "ord-1", Stay: stay, Quote: zeroQuote, RoomTypes: types})
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestOrderStateTransitions(t *testing.T) {
	quote, types, stay := fixtureQuote(t)
	now := time.Now()

	t.Run("paid", func(t *testing.T) {
		o, err := NewPaymentOrder(CreateParams{ID: "ord-1", UserID: "u", PropertyID: "p", Stay: stay, Quote: quote, RoomTypes: types})
		require.NoError(t, err)
		require.NoError(t, o.MarkPaid("pay_123", now))
		assert.Equal(t, StatePaid, o.State)
		assert.ErrorIs(t, o.MarkPaid("pay_456", now), ErrInvalidState)
	})

	t.Run("failed", func(t *testing.T) {
		o, err := NewPaymentOrder(CreateParams{ID: "ord-2", UserID: "u", PropertyID: "p", Stay: stay, Quote: quote, RoomTypes: types})
		require.NoError(t, err)
		require.NoError(t, o.MarkFailed("signature mismatch", now))
		assert.Equal(t, StateFailed, o.State)
		assert.ErrorIs(t, o.MarkPaid("pay_123", now), ErrInvalidState)
	})
}
