package booking

import (
	"errors"

	"staybook/internal/domain/rateplan"
)

var (
	ErrUnknownAction   = errors.New("booking: unknown action")
	ErrNotSelected     = errors.New("booking: room type has no active selection")
	ErrUnknownRoomType = errors.New("booking: room type is not part of this search")
)

// ActionKind enumerates the selection mutations a booking screen can issue.
type ActionKind string

const (
	ActionSelect          ActionKind = "select"
	ActionSwitchMealPlan  ActionKind = "switch_meal_plan"
	ActionAdjustGuests    ActionKind = "adjust_guests"
	ActionAdjustChildren  ActionKind = "adjust_children"
	ActionAdjustRooms     ActionKind = "adjust_rooms"
	ActionSetRooms        ActionKind = "set_rooms"
	ActionToggleExtra     ActionKind = "toggle_extra_guest"
	ActionClear           ActionKind = "clear"
)

// Action is one user intent against the selection map.
type Action struct {
	Kind       ActionKind
	RoomTypeID rateplan.RoomTypeID
	MealPlan   rateplan.MealPlanID
	Delta      int
	Rooms      int
	SlotIndex  int
}

// Selections maps room types to their in-progress configuration.
type Selections map[rateplan.RoomTypeID]Selection

func (s Selections) Copy() Selections {
	out := make(Selections, len(s))
	for id, sel := range s {
		out[id] = sel.Copy()
	}
	return out
}

// Inventory resolves room types for the search the selections belong to.
type Inventory interface {
	RoomType(id rateplan.RoomTypeID) (*rateplan.RoomType, bool)
}

// Reduce applies one action and returns the next selection state. The input
// map is never mutated; on any error the caller keeps the prior state
// untouched (try mutation, validate, commit-or-reject).
func Reduce(state Selections, inv Inventory, action Action) (Selections, error) {
	rt, ok := inv.RoomType(action.RoomTypeID)
	if !ok {
		return state, ErrUnknownRoomType
	}

	if action.Kind == ActionSelect {
		sel, err := NewSelection(rt, action.MealPlan)
		if err != nil {
			return state, err
		}
		next := state.Copy()
		next[rt.ID] = sel
		return next, nil
	}
	if action.Kind == ActionClear {
		next := state.Copy()
		delete(next, rt.ID)
		return next, nil
	}

	current, ok := state[action.RoomTypeID]
	if !ok {
		return state, ErrNotSelected
	}

	var (
		updated Selection
		err     error
	)
	switch action.Kind {
	case ActionSwitchMealPlan:
		updated, err = current.SwitchMealPlan(rt, action.MealPlan)
	case ActionAdjustGuests:
		updated, err = current.AdjustGuests(rt, action.Delta)
	case ActionAdjustChildren:
		updated, err = current.AdjustChildren(rt, action.Delta)
	case ActionAdjustRooms:
		updated, err = current.AdjustRooms(rt, action.Delta)
	case ActionSetRooms:
		updated, err = current.SetRooms(rt, action.Rooms)
	case ActionToggleExtra:
		updated, err = current.ToggleExtraGuest(action.SlotIndex)
	default:
		return state, ErrUnknownAction
	}
	if err != nil {
		return state, err
	}

	next := state.Copy()
	next[action.RoomTypeID] = updated
	return next, nil
}

// MapInventory adapts a plain map to the Inventory interface.
type MapInventory map[rateplan.RoomTypeID]*rateplan.RoomType

func (m MapInventory) RoomType(id rateplan.RoomTypeID) (*rateplan.RoomType, bool) {
	rt, ok := m[id]
	return rt, ok
}
