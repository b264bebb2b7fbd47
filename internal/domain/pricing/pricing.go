package pricing

import (
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/money"
)

var (
	ErrRoomTypeRequired = errors.New("pricing: room type is required")
	ErrCurrencyMismatch = errors.New("pricing: room types priced in different currencies")
	ErrInvalidAgentRate = errors.New("pricing: invalid agent rate")
)

// Tax slabs for room rates: 5% up to and including the threshold, 18% above.
// The basis is the per-room double-occupancy rate for the night; extra-bed
// charges are not taxed. singleOccupancyPrice never enters this computation.
const (
	taxSlabThreshold = 7500 * 100 // paise
	taxRateLowPct    = 5.0
	taxRateHighPct   = 18.0
)

// DateCharge is one stay-night's portion of a room-type price breakdown.
type DateCharge struct {
	Date          time.Time
	MealPlan      rateplan.MealPlanID
	Rooms         int
	Base          money.Money
	ExtraAdults   int
	ExtraAdultFee money.Money
	ExtraChildren int
	ExtraChildFee money.Money
	LineItems     []string
	Total         money.Money
}

// Breakdown is the per-date price detail for a single room-type selection.
type Breakdown struct {
	RoomTypeID rateplan.RoomTypeID
	Dates      []DateCharge
	Base       money.Money
}

// ComputeBreakdown prices a selection against its room type, one record per
// stay-night. Base price covers up to Occupancy persons per room; occupants
// above that bill at flat extra-bed rates, uniformly across all booked rooms.
// A zero-room selection prices to an empty breakdown.
func ComputeBreakdown(rt *rateplan.RoomType, sel booking.Selection) (Breakdown, error) {
	if rt == nil {
		return Breakdown{}, ErrRoomTypeRequired
	}
	bd := Breakdown{RoomTypeID: rt.ID, Base: money.Money{Currency: money.INR}}
	if sel.Rooms <= 0 {
		return bd, nil
	}

	extraAdults, extraChildren := extraBedCounts(rt, sel)
	for _, date := range rt.RatePlanDates {
		plan, ok := date.Plan(sel.MealPlan)
		if !ok {
			// Unreachable for sellable inventory; guard against ragged feeds.
			continue
		}
		charge := DateCharge{
			Date:          date.Date,
			MealPlan:      sel.MealPlan,
			Rooms:         sel.Rooms,
			Base:          plan.DoubleOccupancy.Multiply(int64(sel.Rooms)),
			ExtraAdults:   extraAdults,
			ExtraAdultFee: plan.ExtraBedAdult.Multiply(int64(extraAdults)),
			ExtraChildren: extraChildren,
			ExtraChildFee: plan.ExtraBedChild.Multiply(int64(extraChildren)),
		}
		charge.LineItems = append(charge.LineItems,
			fmt.Sprintf("%s x %d room(s): %s", plan.Name, sel.Rooms, charge.Base))
		if extraAdults > 0 {
			charge.LineItems = append(charge.LineItems,
				fmt.Sprintf("extra bed (adult) x %d: %s", extraAdults, charge.ExtraAdultFee))
		}
		if extraChildren > 0 {
			charge.LineItems = append(charge.LineItems,
				fmt.Sprintf("extra bed (child) x %d: %s", extraChildren, charge.ExtraChildFee))
		}
		total := charge.Base
		total, _ = total.Add(charge.ExtraAdultFee)
		total, _ = total.Add(charge.ExtraChildFee)
		charge.Total = total

		bd.Dates = append(bd.Dates, charge)
		sum, err := bd.Base.Add(charge.Total)
		if err != nil {
			return Breakdown{}, ErrCurrencyMismatch
		}
		bd.Base = sum
	}
	return bd, nil
}

// DateTax is one stay-night's tax detail.
type DateTax struct {
	Date        time.Time
	Basis       money.Money
	RatePct     float64
	PerRoom     money.Money
	ForAllRooms money.Money
}

// TaxDetail is the slab tax for a room-type selection across the stay.
type TaxDetail struct {
	RoomTypeID rateplan.RoomTypeID
	Dates      []DateTax
	Amount     money.Money
}

// ComputeTax applies the two-tier slab per night: the basis is the selected
// meal plan's double-occupancy rate, taxed once per room and multiplied by
// the room count.
func ComputeTax(rt *rateplan.RoomType, sel booking.Selection) (TaxDetail, error) {
	if rt == nil {
		return TaxDetail{}, ErrRoomTypeRequired
	}
	detail := TaxDetail{RoomTypeID: rt.ID, Amount: money.Money{Currency: money.INR}}
	if sel.Rooms <= 0 {
		return detail, nil
	}
	for _, date := range rt.RatePlanDates {
		plan, ok := date.Plan(sel.MealPlan)
		if !ok {
			continue
		}
		basis := plan.DoubleOccupancy
		rate := taxRateLowPct
		if basis.Amount > taxSlabThreshold {
			rate = taxRateHighPct
		}
		perRoom := basis.Percent(rate)
		dt := DateTax{
			Date:        date.Date,
			Basis:       basis,
			RatePct:     rate,
			PerRoom:     perRoom,
			ForAllRooms: perRoom.Multiply(int64(sel.Rooms)),
		}
		detail.Dates = append(detail.Dates, dt)
		sum, err := detail.Amount.Add(dt.ForAllRooms)
		if err != nil {
			return TaxDetail{}, ErrCurrencyMismatch
		}
		detail.Amount = sum
	}
	return detail, nil
}

func extraBedCounts(rt *rateplan.RoomType, sel booking.Selection) (adults, children int) {
	if len(sel.ExtraGuests) > 0 {
		// User re-tagged slots decide which extra-bed rate applies.
		return sel.ExtraBedCounts()
	}
	baseCapacity := rt.Occupancy * sel.Rooms
	adults = sel.Guests - baseCapacity
	if adults < 0 {
		adults = 0
	}
	spareForChildren := baseCapacity - sel.Guests
	if spareForChildren < 0 {
		spareForChildren = 0
	}
	children = sel.Children - spareForChildren
	if children < 0 {
		children = 0
	}
	return adults, children
}
