package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagentrate "staybook/internal/domain/agentrate"
	"staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainquote "staybook/internal/domain/quote"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type quoteFixture struct {
	service    *Service
	sessions   *memory.QuoteSessionRepository
	agentRates *memory.AgentRateRepository
}

func newQuoteFixture(t *testing.T) quoteFixture {
	t.Helper()
	roomTypes := memory.NewRoomTypeRepository()

	plans := map[rateplan.MealPlanID]rateplan.MealPlanPrice{
		"MAP": {
			MealPlanID:      "MAP",
			Name:            "Breakfast and Dinner",
			DoubleOccupancy: money.Rupees(4000),
			ExtraBedAdult:   money.Rupees(900),
			ExtraBedChild:   money.Rupees(600),
		},
	}
	stay, err := daterange.Parse("2025-03-10", "2025-03-12")
	require.NoError(t, err)
	var dates []rateplan.RatePlanDate
	for _, night := range stay.StayDates() {
		dates = append(dates, rateplan.RatePlanDate{Date: night, Plans: plans})
	}
	rt, err := rateplan.NewRoomType(rateplan.CreateParams{
		ID:             "rt-suite",
		PropertyID:     "prop-1",
		Name:           "Suite",
		Occupancy:      2,
		MinOccupancy:   1,
		MaxOccupancy:   3,
		AvailableRooms: 2,
		RatePlanDates:  dates,
	})
	require.NoError(t, err)
	require.NoError(t, roomTypes.Save(context.Background(), rt))

	sessions := memory.NewQuoteSessionRepository()
	agentRates := memory.NewAgentRateRepository()
	return quoteFixture{
		service: &Service{
			Sessions:   sessions,
			RoomTypes:  roomTypes,
			AgentRates: agentRates,
			SessionTTL: 30 * time.Minute,
		},
		sessions:   sessions,
		agentRates: agentRates,
	}
}

func TestStart(t *testing.T) {
	fx := newQuoteFixture(t)
	ctx := context.Background()

	session, err := fx.service.Start(ctx, StartParams{
		UserID:     "user-1",
		PropertyID: "prop-1",
		CheckIn:    "2025-03-10",
		CheckOut:   "2025-03-12",
	})
	require.NoError(t, err)
	assert.Len(t, session.RoomTypes, 1)
	assert.Nil(t, session.AgentRate)

	stored, err := fx.sessions.ByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)

	t.Run("invalid range", func(t *testing.T) {
		_, err := fx.service.Start(ctx, StartParams{
			UserID: "user-1", PropertyID: "prop-1",
			CheckIn: "2025-03-12", CheckOut: "2025-03-10",
		})
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
	})
	t.Run("no inventory for stay", func(t *testing.T) {
		_, err := fx.service.Start(ctx, StartParams{
			UserID: "user-1", PropertyID: "prop-1",
			CheckIn: "2025-07-01", CheckOut: "2025-07-03",
		})
		assert.ErrorIs(t, err, domainquote.ErrNoInventory)
	})
}

func TestStartAsAgent(t *testing.T) {
	fx := newQuoteFixture(t)
	ctx := context.Background()

	assignment, err := domainagentrate.NewAssignment("agent-1", "admin-1",
		domainpricing.AgentRate{Type: domainpricing.AgentRatePercentage, Percent: 10}, time.Now())
	require.NoError(t, err)
	require.NoError(t, fx.agentRates.Save(ctx, assignment))

	session, err := fx.service.Start(ctx, StartParams{
		UserID:     "agent-1",
		PropertyID: "prop-1",
		CheckIn:    "2025-03-10",
		CheckOut:   "2025-03-12",
		AsAgent:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, session.AgentRate)
	assert.Equal(t, float64(10), session.AgentRate.Percent)

	t.Run("no assignment attaches nothing", func(t *testing.T) {
		session, err := fx.service.Start(ctx, StartParams{
			UserID:     "agent-2",
			PropertyID: "prop-1",
			CheckIn:    "2025-03-10",
			CheckOut:   "2025-03-12",
			AsAgent:    true,
		})
		require.NoError(t, err)
		assert.Nil(t, session.AgentRate)
	})
}

func TestApplyPersistsState(t *testing.T) {
	fx := newQuoteFixture(t)
	ctx := context.Background()
	session, err := fx.service.Start(ctx, StartParams{
		UserID: "user-1", PropertyID: "prop-1",
		CheckIn: "2025-03-10", CheckOut: "2025-03-12",
	})
	require.NoError(t, err)

	updated, err := fx.service.Apply(ctx, "user-1", session.ID,
		booking.Action{Kind: booking.ActionSelect, RoomTypeID: "rt-suite", MealPlan: "MAP"})
	require.NoError(t, err)
	assert.Contains(t, updated.Selections, rateplan.RoomTypeID("rt-suite"))

	stored, err := fx.sessions.ByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Selections, rateplan.RoomTypeID("rt-suite"))

	t.Run("rejection is not persisted", func(t *testing.T) {
		_, err := fx.service.Apply(ctx, "user-1", session.ID,
			booking.Action{Kind: booking.ActionSetRooms, RoomTypeID: "rt-suite", Rooms: 9})
		var rej *booking.Rejection
		require.ErrorAs(t, err, &rej)

		stored, err := fx.sessions.ByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Selections["rt-suite"].Rooms)
	})
	t.Run("owner check", func(t *testing.T) {
		_, err := fx.service.Apply(ctx, "user-2", session.ID,
			booking.Action{Kind: booking.ActionSelect, RoomTypeID: "rt-suite", MealPlan: "MAP"})
		assert.ErrorIs(t, err, ErrNotSessionOwner)
	})
}

func TestTotals(t *testing.T) {
	fx := newQuoteFixture(t)
	ctx := context.Background()
	session, err := fx.service.Start(ctx, StartParams{
		UserID: "user-1", PropertyID: "prop-1",
		CheckIn: "2025-03-10", CheckOut: "2025-03-12",
	})
	require.NoError(t, err)
	_, err = fx.service.Apply(ctx, "user-1", session.ID,
		booking.Action{Kind: booking.ActionSelect, RoomTypeID: "rt-suite", MealPlan: "MAP"})
	require.NoError(t, err)

	_, totals, err := fx.service.Totals(ctx, "user-1", session.ID)
	require.NoError(t, err)
	// 4000/night for 2 nights, 5% tax.
	assert.Equal(t, money.Rupees(8000), totals.BaseTotal)
	assert.Equal(t, money.Rupees(400), totals.TaxTotal)
	assert.Equal(t, money.Rupees(8400), totals.GrandTotal)
}

func TestPruneExpired(t *testing.T) {
	fx := newQuoteFixture(t)
	fx.service.SessionTTL = time.Nanosecond
	ctx := context.Background()

	session, err := fx.service.Start(ctx, StartParams{
		UserID: "user-1", PropertyID: "prop-1",
		CheckIn: "2025-03-10", CheckOut: "2025-03-12",
	})
	require.NoError(t, err)

	n, err := fx.service.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = fx.sessions.ByID(ctx, session.ID)
	assert.ErrorIs(t, err, domainquote.ErrSessionNotFound)
}
