package rateplan

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var (
	ErrIDRequired        = errors.New("rateplan: room type id is required")
	ErrPropertyRequired  = errors.New("rateplan: property id is required")
	ErrNameRequired      = errors.New("rateplan: room type name is required")
	ErrInvalidOccupancy  = errors.New("rateplan: occupancy bounds are inconsistent")
	ErrNegativePrice     = errors.New("rateplan: prices cannot be negative")
	ErrRoomTypeNotFound  = errors.New("rateplan: room type not found")
	ErrMealPlanRequired  = errors.New("rateplan: meal plan id is required")
	ErrNoRatesForStay    = errors.New("rateplan: no rate plan dates cover the stay")
)

type RoomTypeID string

type MealPlanID string

// MealPlanPrice is one meal plan's pricing for a single night.
//
// SingleOccupancy is carried because the rate-plan configuration supplies it,
// but the booking computation reads DoubleOccupancy only; base price covers up
// to Occupancy persons per room regardless of how many actually stay.
type MealPlanPrice struct {
	MealPlanID      MealPlanID
	Name            string
	Description     string
	DoubleOccupancy money.Money
	SingleOccupancy money.Money
	ExtraBedAdult   money.Money
	ExtraBedChild   money.Money
}

func (p MealPlanPrice) Validate() error {
	if strings.TrimSpace(string(p.MealPlanID)) == "" {
		return ErrMealPlanRequired
	}
	for _, m := range []money.Money{p.DoubleOccupancy, p.SingleOccupancy, p.ExtraBedAdult, p.ExtraBedChild} {
		if m.Amount < 0 {
			return ErrNegativePrice
		}
	}
	return nil
}

// RatePlanDate is one night's pricing for a room type, keyed by meal plan.
type RatePlanDate struct {
	Date  time.Time
	Plans map[MealPlanID]MealPlanPrice
}

// Usable reports whether the date entry carries any meal-plan pricing. Backend
// feeds occasionally emit bare date entries; those are never sellable.
func (d RatePlanDate) Usable() bool {
	return len(d.Plans) > 0
}

func (d RatePlanDate) Plan(id MealPlanID) (MealPlanPrice, bool) {
	p, ok := d.Plans[id]
	return p, ok
}

// RoomType is the selectable inventory unit for a stay.
type RoomType struct {
	ID               RoomTypeID
	PropertyID       string
	Name             string
	Description      string
	Occupancy        int
	MinOccupancy     int
	MaxOccupancy     int
	AvailableRooms   int
	AvailableRoomIDs []string
	RatePlanDates    []RatePlanDate
	Photos           []string
	UpdatedAt        time.Time
	Version          int64
}

type CreateParams struct {
	ID               RoomTypeID
	PropertyID       string
	Name             string
	Description      string
	Occupancy        int
	MinOccupancy     int
	MaxOccupancy     int
	AvailableRooms   int
	AvailableRoomIDs []string
	RatePlanDates    []RatePlanDate
	Photos           []string
	Now              time.Time
}

func NewRoomType(params CreateParams) (*RoomType, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.PropertyID) == "" {
		return nil, ErrPropertyRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if params.Occupancy <= 0 || params.MinOccupancy <= 0 ||
		params.MaxOccupancy < params.MinOccupancy || params.AvailableRooms < 0 {
		return nil, ErrInvalidOccupancy
	}
	for _, d := range params.RatePlanDates {
		for _, p := range d.Plans {
			if err := p.Validate(); err != nil {
				return nil, err
			}
		}
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	rt := &RoomType{
		ID:               params.ID,
		PropertyID:       strings.TrimSpace(params.PropertyID),
		Name:             strings.TrimSpace(params.Name),
		Description:      params.Description,
		Occupancy:        params.Occupancy,
		MinOccupancy:     params.MinOccupancy,
		MaxOccupancy:     params.MaxOccupancy,
		AvailableRooms:   params.AvailableRooms,
		AvailableRoomIDs: append([]string(nil), params.AvailableRoomIDs...),
		RatePlanDates:    cloneDates(params.RatePlanDates),
		Photos:           append([]string(nil), params.Photos...),
		UpdatedAt:        now.UTC(),
	}
	return rt, nil
}

// CommonMealPlans returns the meal plans priced on every night, sorted by id.
// A room type with an empty result is excluded from sellable inventory.
func (rt *RoomType) CommonMealPlans() []MealPlanID {
	if len(rt.RatePlanDates) == 0 {
		return nil
	}
	counts := make(map[MealPlanID]int)
	for _, d := range rt.RatePlanDates {
		for id := range d.Plans {
			counts[id]++
		}
	}
	var common []MealPlanID
	for id, n := range counts {
		if n == len(rt.RatePlanDates) {
			common = append(common, id)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	return common
}

// HasCommonMealPlan reports whether id is priced on every night.
func (rt *RoomType) HasCommonMealPlan(id MealPlanID) bool {
	for _, candidate := range rt.CommonMealPlans() {
		if candidate == id {
			return true
		}
	}
	return false
}

// Sellable reports whether the room type can be offered for the stay at all.
func (rt *RoomType) Sellable() bool {
	return rt.AvailableRooms > 0 && len(rt.CommonMealPlans()) > 0
}

// ReplaceRates swaps the per-night pricing, dropping bare date entries.
func (rt *RoomType) ReplaceRates(dates []RatePlanDate, now time.Time) error {
	usable := make([]RatePlanDate, 0, len(dates))
	for _, d := range dates {
		if !d.Usable() {
			continue
		}
		for _, p := range d.Plans {
			if err := p.Validate(); err != nil {
				return err
			}
		}
		usable = append(usable, d)
	}
	rt.RatePlanDates = cloneDates(usable)
	rt.touch(now)
	return nil
}

func (rt *RoomType) AttachPhoto(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	rt.Photos = append(rt.Photos, url)
	rt.touch(now)
}

// RoomIDsForStay picks the concrete room identifiers a finalized selection
// occupies. Consumed from AvailableRoomIDs in order, never produced here.
func (rt *RoomType) RoomIDsForStay(rooms int) []string {
	if rooms <= 0 {
		return nil
	}
	if rooms > len(rt.AvailableRoomIDs) {
		rooms = len(rt.AvailableRoomIDs)
	}
	return append([]string(nil), rt.AvailableRoomIDs[:rooms]...)
}

func (rt *RoomType) Copy() *RoomType {
	clone := *rt
	clone.AvailableRoomIDs = append([]string(nil), rt.AvailableRoomIDs...)
	clone.Photos = append([]string(nil), rt.Photos...)
	clone.RatePlanDates = cloneDates(rt.RatePlanDates)
	return &clone
}

func (rt *RoomType) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	rt.UpdatedAt = now.UTC()
}

func cloneDates(dates []RatePlanDate) []RatePlanDate {
	out := make([]RatePlanDate, len(dates))
	for i, d := range dates {
		clone := RatePlanDate{Date: daterange.Midnight(d.Date)}
		if d.Plans != nil {
			clone.Plans = make(map[MealPlanID]MealPlanPrice, len(d.Plans))
			for id, p := range d.Plans {
				clone.Plans[id] = p
			}
		}
		out[i] = clone
	}
	return out
}

// Repository loads and stores room-type inventory.
type Repository interface {
	ByID(ctx context.Context, id RoomTypeID) (*RoomType, error)
	ByProperty(ctx context.Context, propertyID string) ([]*RoomType, error)
	Save(ctx context.Context, rt *RoomType) error
}

// BookableForStay filters room types down to the ones a traveler can book for
// the given range: sellable, and priced for every night of the stay.
func BookableForStay(roomTypes []*RoomType, stay daterange.DateRange) []*RoomType {
	nights := stay.Nights()
	var out []*RoomType
	for _, rt := range roomTypes {
		if !rt.Sellable() {
			continue
		}
		if len(rt.RatePlanDates) < nights {
			continue
		}
		covered := true
		for _, night := range stay.StayDates() {
			if !rt.hasDate(night) {
				covered = false
				break
			}
		}
		if covered {
			out = append(out, rt)
		}
	}
	return out
}

func (rt *RoomType) hasDate(night time.Time) bool {
	for _, d := range rt.RatePlanDates {
		if d.Date.Equal(night) && d.Usable() {
			return true
		}
	}
	return false
}
