package pricing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/money"
)

// twoRoomTypes builds room types with base prices 1000 and 2000 for one
// night so the aggregate base total is 3000.
func twoRoomTypes(t *testing.T) []Item {
	t.Helper()
	a := roomTypeWithNights(t, 1, nightlyPlan("EP", 1000))
	b := roomTypeWithNights(t, 1, nightlyPlan("EP", 2000))
	b.ID = "rt-suite"
	return []Item{
		{RoomType: a, Selection: booking.Selection{RoomTypeID: a.ID, MealPlan: "EP", Guests: 2, Rooms: 1}},
		{RoomType: b, Selection: booking.Selection{RoomTypeID: b.ID, MealPlan: "EP", Guests: 2, Rooms: 1}},
	}
}

func TestAggregateWithoutDiscount(t *testing.T) {
	q, err := Aggregate(twoRoomTypes(t), nil)
	require.NoError(t, err)

	assert.Equal(t, money.Rupees(3000), q.BaseTotal)
	assert.True(t, q.Discount.IsZero())
	// 5% of 1000 + 5% of 2000
	assert.Equal(t, money.Rupees(150), q.TaxTotal)
	assert.Equal(t, money.Rupees(3150), q.GrandTotal)

	var lineSum money.Money = money.Money{Currency: money.INR}
	for _, line := range q.Lines {
		lineSum, _ = lineSum.Add(line.Total)
	}
	assert.Equal(t, q.GrandTotal, lineSum)
}

func TestAggregatePercentageDiscount(t *testing.T) {
	rate := &AgentRate{Type: AgentRatePercentage, Percent: 10}
	q, err := Aggregate(twoRoomTypes(t), rate)
	require.NoError(t, err)

	assert.Equal(t, money.Rupees(300), q.Discount)
	assert.Equal(t, money.Rupees(900), q.Lines[0].DiscountedBase)
	assert.Equal(t, money.Rupees(1800), q.Lines[1].DiscountedBase)
	// discounted base 2700 + tax 150
	assert.Equal(t, money.Rupees(2850), q.GrandTotal)
}

func TestAggregateFlatDiscount(t *testing.T) {
	rate := &AgentRate{Type: AgentRateFlat, Flat: money.Rupees(300)}
	q, err := Aggregate(twoRoomTypes(t), rate)
	require.NoError(t, err)

	assert.Equal(t, money.Rupees(300), q.Discount)
	// 2700 split 1000:2000
	assert.Equal(t, money.Rupees(900), q.Lines[0].DiscountedBase)
	assert.Equal(t, money.Rupees(1800), q.Lines[1].DiscountedBase)
	assert.Equal(t, money.Rupees(2850), q.GrandTotal)
}

func TestAggregateLineSumsMatchDiscountedBase(t *testing.T) {
	// Awkward paise amounts that do not divide evenly.
	a := roomTypeWithNights(t, 1, rateplan.MealPlanPrice{
		MealPlanID: "EP", Name: "Room Only", DoubleOccupancy: money.Must(100033, money.INR),
	})
	b := roomTypeWithNights(t, 1, rateplan.MealPlanPrice{
		MealPlanID: "EP", Name: "Room Only", DoubleOccupancy: money.Must(100033, money.INR),
	})
	b.ID = "rt-suite"
	items := []Item{
		{RoomType: a, Selection: booking.Selection{RoomTypeID: a.ID, MealPlan: "EP", Guests: 2, Rooms: 1}},
		{RoomType: b, Selection: booking.Selection{RoomTypeID: b.ID, MealPlan: "EP", Guests: 2, Rooms: 1}},
	}

	for name, rate := range map[string]*AgentRate{
		"percentage": {Type: AgentRatePercentage, Percent: 12.5},
		"flat":       {Type: AgentRateFlat, Flat: money.Must(33333, money.INR)},
	} {
		t.Run(name, func(t *testing.T) {
			q, err := Aggregate(items, rate)
			require.NoError(t, err)
			discountedBase, err := q.BaseTotal.Sub(q.Discount)
			require.NoError(t, err)
			var lineSum money.Money = money.Money{Currency: money.INR}
			for _, line := range q.Lines {
				lineSum, _ = lineSum.Add(line.DiscountedBase)
			}
			assert.Equal(t, discountedBase, lineSum)
		})
	}
}

func TestAggregatePercentageNearFullDiscountKeepsLineSum(t *testing.T) {
	// Four tiny equal bases each round their kept share up, so the line
	// sum overshoots the subtotal by more than any single line holds.
	items := make([]Item, 0, 4)
	for i := 0; i < 4; i++ {
		rt := roomTypeWithNights(t, 1, rateplan.MealPlanPrice{
			MealPlanID: "EP", Name: "Room Only", DoubleOccupancy: money.Must(5000, money.INR),
		})
		rt.ID = rateplan.RoomTypeID(fmt.Sprintf("rt-%d", i))
		items = append(items, Item{
			RoomType:  rt,
			Selection: booking.Selection{RoomTypeID: rt.ID, MealPlan: "EP", Guests: 2, Rooms: 1},
		})
	}

	q, err := Aggregate(items, &AgentRate{Type: AgentRatePercentage, Percent: 99.99})
	require.NoError(t, err)

	discountedBase, err := q.BaseTotal.Sub(q.Discount)
	require.NoError(t, err)
	var lineSum money.Money = money.Money{Currency: money.INR}
	for _, line := range q.Lines {
		assert.GreaterOrEqual(t, line.DiscountedBase.Amount, int64(0))
		lineSum, _ = lineSum.Add(line.DiscountedBase)
	}
	assert.Equal(t, discountedBase, lineSum)
}

func TestAggregateFlatDiscountExceedingBaseClampsToZero(t *testing.T) {
	rate := &AgentRate{Type: AgentRateFlat, Flat: money.Rupees(10000)}
	q, err := Aggregate(twoRoomTypes(t), rate)
	require.NoError(t, err)

	assert.Equal(t, q.BaseTotal, q.Discount)
	for _, line := range q.Lines {
		assert.True(t, line.DiscountedBase.IsZero())
	}
	// Tax is never discounted.
	assert.Equal(t, q.TaxTotal, q.GrandTotal)
}

func TestAggregateSkipsZeroRoomSelections(t *testing.T) {
	items := twoRoomTypes(t)
	items[1].Selection.Rooms = 0

	q, err := Aggregate(items, nil)
	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, money.Rupees(1000), q.BaseTotal)
}

func TestAggregateEmptySelection(t *testing.T) {
	q, err := Aggregate(nil, &AgentRate{Type: AgentRateFlat, Flat: money.Rupees(100)})
	require.NoError(t, err)
	assert.True(t, q.BaseTotal.IsZero())
	assert.True(t, q.GrandTotal.IsZero())
	assert.True(t, q.Discount.IsZero())
}

func TestAgentRateValidate(t *testing.T) {
	assert.NoError(t, AgentRate{Type: AgentRatePercentage, Percent: 100}.Validate())
	assert.ErrorIs(t, AgentRate{Type: AgentRatePercentage, Percent: 101}.Validate(), ErrInvalidAgentRate)
	assert.ErrorIs(t, AgentRate{Type: AgentRateFlat, Flat: money.Money{Amount: -1, Currency: money.INR}}.Validate(), ErrInvalidAgentRate)
	assert.ErrorIs(t, AgentRate{Type: "coupon"}.Validate(), ErrInvalidAgentRate)
}
