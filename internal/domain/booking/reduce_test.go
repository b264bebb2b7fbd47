package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	rt := testRoomType(t, 2)
	inv := MapInventory{rt.ID: rt}

	t.Run("select then adjust", func(t *testing.T) {
		state := Selections{}
		state, err := Reduce(state, inv, Action{Kind: ActionSelect, RoomTypeID: rt.ID, MealPlan: "EP"})
		require.NoError(t, err)
		require.Contains(t, state, rt.ID)

		state, err = Reduce(state, inv, Action{Kind: ActionAdjustGuests, RoomTypeID: rt.ID, Delta: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, state[rt.ID].Guests)
	})

	t.Run("rejection returns prior state", func(t *testing.T) {
		state := Selections{}
		state, err := Reduce(state, inv, Action{Kind: ActionSelect, RoomTypeID: rt.ID, MealPlan: "EP"})
		require.NoError(t, err)

		next, err := Reduce(state, inv, Action{Kind: ActionSetRooms, RoomTypeID: rt.ID, Rooms: 5})
		var rej *Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, state, next)
	})

	t.Run("input state is never mutated", func(t *testing.T) {
		state := Selections{}
		state, err := Reduce(state, inv, Action{Kind: ActionSelect, RoomTypeID: rt.ID, MealPlan: "EP"})
		require.NoError(t, err)

		next, err := Reduce(state, inv, Action{Kind: ActionAdjustGuests, RoomTypeID: rt.ID, Delta: 2})
		require.NoError(t, err)
		assert.Equal(t, 1, state[rt.ID].Guests)
		assert.Equal(t, 3, next[rt.ID].Guests)
	})

	t.Run("clear removes the selection", func(t *testing.T) {
		state := Selections{}
		state, err := Reduce(state, inv, Action{Kind: ActionSelect, RoomTypeID: rt.ID, MealPlan: "EP"})
		require.NoError(t, err)
		state, err = Reduce(state, inv, Action{Kind: ActionClear, RoomTypeID: rt.ID})
		require.NoError(t, err)
		assert.NotContains(t, state, rt.ID)
	})

	t.Run("unknown room type", func(t *testing.T) {
		_, err := Reduce(Selections{}, inv, Action{Kind: ActionSelect, RoomTypeID: "nope", MealPlan: "EP"})
		assert.ErrorIs(t, err, ErrUnknownRoomType)
	})

	t.Run("action without selection", func(t *testing.T) {
		_, err := Reduce(Selections{}, inv, Action{Kind: ActionAdjustGuests, RoomTypeID: rt.ID, Delta: 1})
		assert.ErrorIs(t, err, ErrNotSelected)
	})

	t.Run("unknown action", func(t *testing.T) {
		state := Selections{rt.ID: {RoomTypeID: rt.ID, MealPlan: "EP", Guests: 1, Rooms: 1}}
		_, err := Reduce(state, inv, Action{Kind: "teleport", RoomTypeID: rt.ID})
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
}
