package dto

import (
	"time"

	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type Amount struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func MapAmount(m money.Money) Amount {
	return Amount{Minor: m.Amount, Currency: m.Currency, Display: m.String()}
}

type MealPlanPrice struct {
	MealPlanID      string `json:"meal_plan_id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DoubleOccupancy Amount `json:"double_occupancy"`
	SingleOccupancy Amount `json:"single_occupancy"`
	ExtraBedAdult   Amount `json:"extra_bed_adult"`
	ExtraBedChild   Amount `json:"extra_bed_child"`
}

type RatePlanDate struct {
	Date  string          `json:"date"`
	Plans []MealPlanPrice `json:"plans"`
}

type RoomType struct {
	ID             string         `json:"id"`
	PropertyID     string         `json:"property_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Occupancy      int            `json:"occupancy"`
	MinOccupancy   int            `json:"min_occupancy"`
	MaxOccupancy   int            `json:"max_occupancy"`
	AvailableRooms int            `json:"available_rooms"`
	MealPlans      []string       `json:"meal_plans"`
	RatePlanDates  []RatePlanDate `json:"rate_plan_dates,omitempty"`
	Photos         []string       `json:"photos,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func MapMealPlanPrice(p domainrateplan.MealPlanPrice) MealPlanPrice {
	return MealPlanPrice{
		MealPlanID:      string(p.MealPlanID),
		Name:            p.Name,
		Description:     p.Description,
		DoubleOccupancy: MapAmount(p.DoubleOccupancy),
		SingleOccupancy: MapAmount(p.SingleOccupancy),
		ExtraBedAdult:   MapAmount(p.ExtraBedAdult),
		ExtraBedChild:   MapAmount(p.ExtraBedChild),
	}
}

func MapRoomType(rt *domainrateplan.RoomType, includeRates bool) RoomType {
	if rt == nil {
		return RoomType{}
	}
	plans := make([]string, 0)
	for _, id := range rt.CommonMealPlans() {
		plans = append(plans, string(id))
	}
	out := RoomType{
		ID:             string(rt.ID),
		PropertyID:     rt.PropertyID,
		Name:           rt.Name,
		Description:    rt.Description,
		Occupancy:      rt.Occupancy,
		MinOccupancy:   rt.MinOccupancy,
		MaxOccupancy:   rt.MaxOccupancy,
		AvailableRooms: rt.AvailableRooms,
		MealPlans:      plans,
		Photos:         append([]string(nil), rt.Photos...),
		UpdatedAt:      rt.UpdatedAt,
	}
	if includeRates {
		for _, d := range rt.RatePlanDates {
			entry := RatePlanDate{Date: daterange.FormatDate(d.Date)}
			for _, p := range d.Plans {
				entry.Plans = append(entry.Plans, MapMealPlanPrice(p))
			}
			out.RatePlanDates = append(out.RatePlanDates, entry)
		}
	}
	return out
}
