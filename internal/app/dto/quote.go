package dto

import (
	"time"

	"staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainquote "staybook/internal/domain/quote"
	"staybook/internal/domain/shared/daterange"
)

type ExtraGuest struct {
	Type string `json:"type"`
}

type Selection struct {
	RoomTypeID  string       `json:"room_type_id"`
	MealPlan    string       `json:"meal_plan"`
	Guests      int          `json:"guests"`
	Children    int          `json:"children"`
	Rooms       int          `json:"rooms"`
	ExtraGuests []ExtraGuest `json:"extra_guests"`
}

type DateCharge struct {
	Date          string   `json:"date"`
	Rooms         int      `json:"rooms"`
	Base          Amount   `json:"base"`
	ExtraAdults   int      `json:"extra_adults"`
	ExtraAdultFee Amount   `json:"extra_adult_fee"`
	ExtraChildren int      `json:"extra_children"`
	ExtraChildFee Amount   `json:"extra_child_fee"`
	LineItems     []string `json:"line_items"`
	Total         Amount   `json:"total"`
}

type DateTax struct {
	Date        string  `json:"date"`
	Basis       Amount  `json:"basis"`
	RatePct     float64 `json:"rate_pct"`
	PerRoom     Amount  `json:"per_room"`
	ForAllRooms Amount  `json:"for_all_rooms"`
}

type QuoteLine struct {
	RoomTypeID     string       `json:"room_type_id"`
	MealPlan       string       `json:"meal_plan"`
	Rooms          int          `json:"rooms"`
	Guests         int          `json:"guests"`
	Children       int          `json:"children"`
	Dates          []DateCharge `json:"dates"`
	Base           Amount       `json:"base"`
	TaxDates       []DateTax    `json:"tax_dates"`
	Tax            Amount       `json:"tax"`
	DiscountedBase Amount       `json:"discounted_base"`
	Total          Amount       `json:"total"`
}

type QuoteTotals struct {
	Lines      []QuoteLine `json:"lines"`
	BaseTotal  Amount      `json:"base_total"`
	Discount   Amount      `json:"discount"`
	TaxTotal   Amount      `json:"tax_total"`
	GrandTotal Amount      `json:"grand_total"`
}

type QuoteSession struct {
	ID         string               `json:"id"`
	PropertyID string               `json:"property_id"`
	CheckIn    string               `json:"check_in"`
	CheckOut   string               `json:"check_out"`
	RoomTypes  []RoomType           `json:"room_types"`
	Selections map[string]Selection `json:"selections"`
	AgentRate  bool                 `json:"agent_rate_applied"`
	ExpiresAt  time.Time            `json:"expires_at"`
}

func MapSelection(sel booking.Selection) Selection {
	extras := make([]ExtraGuest, 0, len(sel.ExtraGuests))
	for _, eg := range sel.ExtraGuests {
		extras = append(extras, ExtraGuest{Type: string(eg.Type)})
	}
	return Selection{
		RoomTypeID:  string(sel.RoomTypeID),
		MealPlan:    string(sel.MealPlan),
		Guests:      sel.Guests,
		Children:    sel.Children,
		Rooms:       sel.Rooms,
		ExtraGuests: extras,
	}
}

func MapQuoteSession(s *domainquote.Session) QuoteSession {
	if s == nil {
		return QuoteSession{}
	}
	out := QuoteSession{
		ID:         string(s.ID),
		PropertyID: s.PropertyID,
		CheckIn:    daterange.FormatDate(s.Stay.CheckIn),
		CheckOut:   daterange.FormatDate(s.Stay.CheckOut),
		Selections: make(map[string]Selection, len(s.Selections)),
		AgentRate:  s.AgentRate != nil,
		ExpiresAt:  s.ExpiresAt,
	}
	for _, rt := range s.RoomTypes {
		out.RoomTypes = append(out.RoomTypes, MapRoomType(rt, true))
	}
	for id, sel := range s.Selections {
		out.Selections[string(id)] = MapSelection(sel)
	}
	return out
}

func MapQuoteTotals(q domainpricing.Quote) QuoteTotals {
	out := QuoteTotals{
		BaseTotal:  MapAmount(q.BaseTotal),
		Discount:   MapAmount(q.Discount),
		TaxTotal:   MapAmount(q.TaxTotal),
		GrandTotal: MapAmount(q.GrandTotal),
	}
	for _, line := range q.Lines {
		ql := QuoteLine{
			RoomTypeID:     string(line.RoomTypeID),
			MealPlan:       string(line.MealPlan),
			Rooms:          line.Rooms,
			Guests:         line.Guests,
			Children:       line.Children,
			Base:           MapAmount(line.Breakdown.Base),
			Tax:            MapAmount(line.Tax.Amount),
			DiscountedBase: MapAmount(line.DiscountedBase),
			Total:          MapAmount(line.Total),
		}
		for _, charge := range line.Breakdown.Dates {
			ql.Dates = append(ql.Dates, DateCharge{
				Date:          daterange.FormatDate(charge.Date),
				Rooms:         charge.Rooms,
				Base:          MapAmount(charge.Base),
				ExtraAdults:   charge.ExtraAdults,
				ExtraAdultFee: MapAmount(charge.ExtraAdultFee),
				ExtraChildren: charge.ExtraChildren,
				ExtraChildFee: MapAmount(charge.ExtraChildFee),
				LineItems:     append([]string(nil), charge.LineItems...),
				Total:         MapAmount(charge.Total),
			})
		}
		for _, dt := range line.Tax.Dates {
			ql.TaxDates = append(ql.TaxDates, DateTax{
				Date:        daterange.FormatDate(dt.Date),
				Basis:       MapAmount(dt.Basis),
				RatePct:     dt.RatePct,
				PerRoom:     MapAmount(dt.PerRoom),
				ForAllRooms: MapAmount(dt.ForAllRooms),
			})
		}
		out.Lines = append(out.Lines, ql)
	}
	return out
}
