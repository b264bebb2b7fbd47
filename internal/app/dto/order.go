package dto

import (
	"time"

	domainorder "staybook/internal/domain/order"
)

type OrderLine struct {
	RoomTypeID string   `json:"room_type_id"`
	RoomIDs    []string `json:"room_ids"`
	Rooms      int      `json:"rooms"`
	Guests     int      `json:"guests"`
	Children   int      `json:"children"`
	MealPlanID string   `json:"meal_plan_id"`
	Price      Amount   `json:"price"`
	Tax        Amount   `json:"tax"`
	TotalPrice Amount   `json:"total_price"`
	CheckIn    string   `json:"check_in"`
	CheckOut   string   `json:"check_out"`
	BlockDates []string `json:"block_dates"`
}

type Order struct {
	ID             string      `json:"id"`
	PropertyID     string      `json:"property_id"`
	State          string      `json:"state"`
	Lines          []OrderLine `json:"lines"`
	Amount         Amount      `json:"amount"`
	BaseTotal      Amount      `json:"base_total"`
	Discount       Amount      `json:"discount"`
	TaxTotal       Amount      `json:"tax_total"`
	GatewayOrderID string      `json:"gateway_order_id,omitempty"`
	PaymentID      string      `json:"payment_id,omitempty"`
	FailureReason  string      `json:"failure_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func MapOrder(o *domainorder.PaymentOrder) Order {
	if o == nil {
		return Order{}
	}
	out := Order{
		ID:             string(o.ID),
		PropertyID:     o.PropertyID,
		State:          string(o.State),
		Amount:         MapAmount(o.Amount),
		BaseTotal:      MapAmount(o.BaseTotal),
		Discount:       MapAmount(o.Discount),
		TaxTotal:       MapAmount(o.TaxTotal),
		GatewayOrderID: o.GatewayOrderID,
		PaymentID:      o.PaymentID,
		FailureReason:  o.FailureReason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, line := range o.Lines {
		out.Lines = append(out.Lines, OrderLine{
			RoomTypeID: string(line.RoomTypeID),
			RoomIDs:    append([]string(nil), line.RoomIDs...),
			Rooms:      line.Rooms,
			Guests:     line.Guests,
			Children:   line.Children,
			MealPlanID: string(line.MealPlanID),
			Price:      MapAmount(line.Price),
			Tax:        MapAmount(line.Tax),
			TotalPrice: MapAmount(line.TotalPrice),
			CheckIn:    line.CheckIn,
			CheckOut:   line.CheckOut,
			BlockDates: append([]string(nil), line.BlockDates...),
		})
	}
	return out
}
