package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/money"
)

func TestRoomTypeDocumentRoundTrip(t *testing.T) {
	night := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rt := &domainrateplan.RoomType{
		ID:               "rt-deluxe",
		PropertyID:       "prop-araku-valley",
		Name:             "Deluxe Valley View",
		Occupancy:        2,
		MinOccupancy:     1,
		MaxOccupancy:     3,
		AvailableRooms:   4,
		AvailableRoomIDs: []string{"101", "102"},
		Photos:           []string{"https://cdn.example/rt-deluxe/1.jpg"},
		UpdatedAt:        night,
		Version:          3,
		RatePlanDates: []domainrateplan.RatePlanDate{{
			Date: night,
			Plans: map[domainrateplan.MealPlanID]domainrateplan.MealPlanPrice{
				"MAP": {
					MealPlanID:      "MAP",
					Name:            "Breakfast and dinner",
					DoubleOccupancy: money.Rupees(4300),
					SingleOccupancy: money.Rupees(3800),
					ExtraBedAdult:   money.Rupees(900),
					ExtraBedChild:   money.Rupees(450),
				},
			},
		}},
	}

	got := newRoomTypeDocument(rt).toAggregate()

	assert.Equal(t, rt.ID, got.ID)
	assert.Equal(t, rt.PropertyID, got.PropertyID)
	assert.Equal(t, rt.AvailableRoomIDs, got.AvailableRoomIDs)
	assert.Equal(t, rt.Photos, got.Photos)
	assert.True(t, got.UpdatedAt.Equal(night))
	assert.Equal(t, rt.Version, got.Version)

	require.Len(t, got.RatePlanDates, 1)
	assert.True(t, got.RatePlanDates[0].Date.Equal(night))
	plan, ok := got.RatePlanDates[0].Plans["MAP"]
	require.True(t, ok)
	assert.Equal(t, money.Money{Amount: 430000, Currency: money.INR}, plan.DoubleOccupancy)
	assert.Equal(t, money.Money{Amount: 380000, Currency: money.INR}, plan.SingleOccupancy)
	assert.Equal(t, money.Money{Amount: 90000, Currency: money.INR}, plan.ExtraBedAdult)
	assert.Equal(t, money.Money{Amount: 45000, Currency: money.INR}, plan.ExtraBedChild)
}

func TestMoneyDocumentKeepsCurrency(t *testing.T) {
	doc := newMoneyDocument(money.Must(125000, "inr"))
	assert.Equal(t, "INR", doc.Currency)
	assert.Equal(t, money.Money{Amount: 125000, Currency: "INR"}, doc.toMoney())
}
