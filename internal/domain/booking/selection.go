package booking

import (
	"errors"
	"fmt"

	"staybook/internal/domain/rateplan"
)

var (
	ErrRoomTypeRequired = errors.New("booking: room type is required")
	ErrMealPlanNotOffered = errors.New("booking: meal plan is not offered on every night of the stay")
)

// RejectionKind classifies why a selection mutation was refused.
type RejectionKind string

const (
	RejectionCapacity     RejectionKind = "capacity"
	RejectionAvailability RejectionKind = "availability"
)

// Rejection is a structured refusal surfaced to the user as a dismissible
// notification. The triggering mutation is never applied.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func capacityRejection(format string, args ...any) *Rejection {
	return &Rejection{Kind: RejectionCapacity, Message: fmt.Sprintf(format, args...)}
}

func availabilityRejection(format string, args ...any) *Rejection {
	return &Rejection{Kind: RejectionAvailability, Message: fmt.Sprintf(format, args...)}
}

// ExtraGuestType tags an occupant beyond base capacity.
type ExtraGuestType string

const (
	ExtraAdult ExtraGuestType = "adult"
	ExtraChild ExtraGuestType = "child"
)

// ExtraGuest is a display/toggling slot for one occupant above base
// occupancy. Tags feed back into which extra-bed rate applies.
type ExtraGuest struct {
	Type ExtraGuestType
}

// Selection is a user's in-progress configuration for one room type.
type Selection struct {
	RoomTypeID  rateplan.RoomTypeID
	MealPlan    rateplan.MealPlanID
	Guests      int
	Children    int
	Rooms       int
	ExtraGuests []ExtraGuest
}

// NewSelection opens a selection for one room of the type with the minimum
// viable party and the given meal plan.
func NewSelection(rt *rateplan.RoomType, plan rateplan.MealPlanID) (Selection, error) {
	if rt == nil {
		return Selection{}, ErrRoomTypeRequired
	}
	if !rt.HasCommonMealPlan(plan) {
		return Selection{}, ErrMealPlanNotOffered
	}
	if rt.AvailableRooms < 1 {
		return Selection{}, availabilityRejection("only %d room(s) available", rt.AvailableRooms)
	}
	sel := Selection{
		RoomTypeID: rt.ID,
		MealPlan:   plan,
		Guests:     rt.MinOccupancy,
		Rooms:      1,
	}
	sel.recomputeExtraGuests(rt)
	return sel, nil
}

// ValidateCapacity checks a prospective (guests, children, rooms) combination
// against the room type without mutating anything.
func ValidateCapacity(rt *rateplan.RoomType, guests, children, rooms int) error {
	if rt == nil {
		return ErrRoomTypeRequired
	}
	if guests+children > rooms*rt.MaxOccupancy {
		return capacityRejection("maximum %d guests allowed for %d room(s)", rooms*rt.MaxOccupancy, rooms)
	}
	if rooms > rt.AvailableRooms {
		return availabilityRejection("only %d room(s) available", rt.AvailableRooms)
	}
	return nil
}

// AdjustGuests applies a guest delta, growing the room count when the larger
// party no longer fits and enough rooms are available. On rejection the
// receiver is returned unchanged.
func (s Selection) AdjustGuests(rt *rateplan.RoomType, delta int) (Selection, error) {
	if rt == nil {
		return s, ErrRoomTypeRequired
	}
	guests := s.Guests + delta
	if guests < rt.MinOccupancy {
		return s, capacityRejection("minimum %d guest(s) required", rt.MinOccupancy)
	}
	rooms, err := s.roomsFor(rt, guests+s.Children)
	if err != nil {
		return s, err
	}
	next := s
	next.Guests = guests
	next.Rooms = rooms
	if err := ValidateCapacity(rt, next.Guests, next.Children, next.Rooms); err != nil {
		return s, err
	}
	next.recomputeExtraGuests(rt)
	return next, nil
}

// AdjustChildren applies a child-count delta under the same rules as
// AdjustGuests.
func (s Selection) AdjustChildren(rt *rateplan.RoomType, delta int) (Selection, error) {
	if rt == nil {
		return s, ErrRoomTypeRequired
	}
	children := s.Children + delta
	if children < 0 {
		return s, capacityRejection("children count cannot be negative")
	}
	rooms, err := s.roomsFor(rt, s.Guests+children)
	if err != nil {
		return s, err
	}
	next := s
	next.Children = children
	next.Rooms = rooms
	if err := ValidateCapacity(rt, next.Guests, next.Children, next.Rooms); err != nil {
		return s, err
	}
	next.recomputeExtraGuests(rt)
	return next, nil
}

// AdjustRooms applies a room-count delta. Decrements re-clamp the party to
// what the remaining rooms hold; dropping to zero resets the selection.
func (s Selection) AdjustRooms(rt *rateplan.RoomType, delta int) (Selection, error) {
	return s.SetRooms(rt, s.Rooms+delta)
}

// SetRooms sets the room count directly under AdjustRooms rules.
func (s Selection) SetRooms(rt *rateplan.RoomType, rooms int) (Selection, error) {
	if rt == nil {
		return s, ErrRoomTypeRequired
	}
	if rooms < 0 {
		return s, capacityRejection("room count cannot be negative")
	}
	if rooms > rt.AvailableRooms {
		return s, availabilityRejection("only %d room(s) available", rt.AvailableRooms)
	}
	next := s
	next.Rooms = rooms
	if rooms == 0 {
		next.Guests = 0
		next.Children = 0
		next.ExtraGuests = nil
		return next, nil
	}
	capGuests := rooms * rt.MaxOccupancy
	if next.Guests > capGuests {
		next.Guests = capGuests
	}
	if next.Guests < rt.MinOccupancy {
		next.Guests = rt.MinOccupancy
	}
	if next.Guests+next.Children > capGuests {
		next.Children = capGuests - next.Guests
	}
	next.recomputeExtraGuests(rt)
	return next, nil
}

// SwitchMealPlan moves the selection to another of the room type's common
// meal plans. Prices change; capacity does not.
func (s Selection) SwitchMealPlan(rt *rateplan.RoomType, plan rateplan.MealPlanID) (Selection, error) {
	if rt == nil {
		return s, ErrRoomTypeRequired
	}
	if !rt.HasCommonMealPlan(plan) {
		return s, ErrMealPlanNotOffered
	}
	next := s
	next.MealPlan = plan
	return next, nil
}

// ToggleExtraGuest flips an extra-occupant slot between adult and child,
// which changes the extra-bed rate the pricing engine applies to it.
func (s Selection) ToggleExtraGuest(index int) (Selection, error) {
	if index < 0 || index >= len(s.ExtraGuests) {
		return s, capacityRejection("no extra guest slot %d", index)
	}
	next := s
	next.ExtraGuests = append([]ExtraGuest(nil), s.ExtraGuests...)
	if next.ExtraGuests[index].Type == ExtraAdult {
		next.ExtraGuests[index].Type = ExtraChild
	} else {
		next.ExtraGuests[index].Type = ExtraAdult
	}
	return next, nil
}

// roomsFor returns the room count needed for the given party size, growing
// the current count when the party no longer fits.
func (s Selection) roomsFor(rt *rateplan.RoomType, total int) (int, error) {
	rooms := s.Rooms
	if rooms < 1 {
		rooms = 1
	}
	if total <= rooms*rt.MaxOccupancy {
		return rooms, nil
	}
	needed := (total + rt.MaxOccupancy - 1) / rt.MaxOccupancy
	if needed > rt.AvailableRooms {
		return 0, availabilityRejection("only %d room(s) available", rt.AvailableRooms)
	}
	return needed, nil
}

// recomputeExtraGuests rebuilds the slot list after a successful mutation:
// max(0, guests+children - occupancy*rooms) slots, adults attributed first.
func (s *Selection) recomputeExtraGuests(rt *rateplan.RoomType) {
	baseCapacity := rt.Occupancy * s.Rooms
	slots := s.Guests + s.Children - baseCapacity
	if slots <= 0 {
		s.ExtraGuests = nil
		return
	}
	extraAdults := s.Guests - baseCapacity
	if extraAdults < 0 {
		extraAdults = 0
	}
	if extraAdults > slots {
		extraAdults = slots
	}
	out := make([]ExtraGuest, 0, slots)
	for i := 0; i < extraAdults; i++ {
		out = append(out, ExtraGuest{Type: ExtraAdult})
	}
	for i := extraAdults; i < slots; i++ {
		out = append(out, ExtraGuest{Type: ExtraChild})
	}
	s.ExtraGuests = out
}

// ExtraBedCounts reports how many extra-bed slots bill at the adult rate and
// how many at the child rate. Freshly recomputed selections follow the
// adults-first attribution; slots the user re-tagged bill at the flipped rate.
func (s Selection) ExtraBedCounts() (adults, children int) {
	for _, g := range s.ExtraGuests {
		if g.Type == ExtraChild {
			children++
		} else {
			adults++
		}
	}
	return adults, children
}

func (s Selection) Copy() Selection {
	clone := s
	clone.ExtraGuests = append([]ExtraGuest(nil), s.ExtraGuests...)
	return clone
}
