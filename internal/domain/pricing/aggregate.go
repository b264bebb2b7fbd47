package pricing

import (
	"staybook/internal/domain/booking"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/money"
)

// AgentRateType distinguishes the two discount shapes a travel agent can hold.
type AgentRateType string

const (
	AgentRatePercentage AgentRateType = "percentage"
	AgentRateFlat       AgentRateType = "flat"
)

// AgentRate is a channel discount applied to the pre-tax base subtotal across
// all selected room types. Tax is never discounted.
type AgentRate struct {
	Type    AgentRateType
	Percent float64     // 0-100, percentage type only
	Flat    money.Money // flat type only
}

func (r AgentRate) Validate() error {
	switch r.Type {
	case AgentRatePercentage:
		if r.Percent < 0 || r.Percent > 100 {
			return ErrInvalidAgentRate
		}
	case AgentRateFlat:
		if r.Flat.Amount < 0 {
			return ErrInvalidAgentRate
		}
	default:
		return ErrInvalidAgentRate
	}
	return nil
}

// Item pairs a room type with its selection for aggregation.
type Item struct {
	RoomType  *rateplan.RoomType
	Selection booking.Selection
}

// Line is one room type's share of the aggregate quote. DiscountedBase values
// across all lines sum to the quote's discounted base exactly, so downstream
// order lines never drift from the charged amount.
type Line struct {
	RoomTypeID     rateplan.RoomTypeID
	MealPlan       rateplan.MealPlanID
	Rooms          int
	Guests         int
	Children       int
	Breakdown      Breakdown
	Tax            TaxDetail
	DiscountedBase money.Money
	Total          money.Money
}

// Quote is the checkout aggregate over every room type with rooms > 0.
type Quote struct {
	Lines      []Line
	BaseTotal  money.Money
	Discount   money.Money
	TaxTotal   money.Money
	GrandTotal money.Money
}

// Aggregate prices the whole selection set and applies the optional agent
// discount to the base subtotal. grandTotal = discountedBase + taxTotal.
func Aggregate(items []Item, agent *AgentRate) (Quote, error) {
	q := Quote{
		BaseTotal:  money.Money{Currency: money.INR},
		Discount:   money.Money{Currency: money.INR},
		TaxTotal:   money.Money{Currency: money.INR},
		GrandTotal: money.Money{Currency: money.INR},
	}
	if agent != nil {
		if err := agent.Validate(); err != nil {
			return Quote{}, err
		}
	}

	for _, item := range items {
		if item.Selection.Rooms <= 0 {
			continue
		}
		bd, err := ComputeBreakdown(item.RoomType, item.Selection)
		if err != nil {
			return Quote{}, err
		}
		tax, err := ComputeTax(item.RoomType, item.Selection)
		if err != nil {
			return Quote{}, err
		}
		line := Line{
			RoomTypeID: item.RoomType.ID,
			MealPlan:   item.Selection.MealPlan,
			Rooms:      item.Selection.Rooms,
			Guests:     item.Selection.Guests,
			Children:   item.Selection.Children,
			Breakdown:  bd,
			Tax:        tax,
		}
		q.Lines = append(q.Lines, line)
		if q.BaseTotal, err = q.BaseTotal.Add(bd.Base); err != nil {
			return Quote{}, err
		}
		if q.TaxTotal, err = q.TaxTotal.Add(tax.Amount); err != nil {
			return Quote{}, err
		}
	}

	discountedBase, err := q.applyDiscount(agent)
	if err != nil {
		return Quote{}, err
	}
	q.Discount, _ = q.BaseTotal.Sub(discountedBase)
	q.GrandTotal, _ = discountedBase.Add(q.TaxTotal)
	for i := range q.Lines {
		q.Lines[i].Total, _ = q.Lines[i].DiscountedBase.Add(q.Lines[i].Tax.Amount)
	}
	return q, nil
}

// applyDiscount fills each line's DiscountedBase and returns the discounted
// base subtotal. Percentage rates apply per line, settling rounding residue
// against the largest lines; flat rates distribute proportionally by largest
// remainder. Both keep the line sum equal to the returned subtotal.
func (q *Quote) applyDiscount(agent *AgentRate) (money.Money, error) {
	if q.BaseTotal.IsZero() || agent == nil {
		for i := range q.Lines {
			q.Lines[i].DiscountedBase = q.Lines[i].Breakdown.Base
		}
		return q.BaseTotal, nil
	}

	switch agent.Type {
	case AgentRatePercentage:
		keep := 100 - agent.Percent
		discounted := q.BaseTotal.Percent(keep).ClampNonNegative()
		var sum money.Money = money.Money{Currency: discounted.Currency}
		largest := -1
		for i := range q.Lines {
			q.Lines[i].DiscountedBase = q.Lines[i].Breakdown.Base.Percent(keep).ClampNonNegative()
			sum, _ = sum.Add(q.Lines[i].DiscountedBase)
			if largest < 0 || q.Lines[i].Breakdown.Base.Amount > q.Lines[largest].Breakdown.Base.Amount {
				largest = i
			}
		}
		residual := discounted.Amount - sum.Amount
		if residual > 0 && largest >= 0 {
			q.Lines[largest].DiscountedBase.Amount += residual
		}
		// Per-line rounding can overshoot the subtotal; drain the excess
		// from the largest lines without driving any line negative. The
		// positive line sum always covers the overshoot, so the loop ends
		// with the lines summing to discounted exactly.
		for owed := -residual; owed > 0; {
			idx := -1
			for i := range q.Lines {
				if q.Lines[i].DiscountedBase.Amount > 0 && (idx < 0 || q.Lines[i].DiscountedBase.Amount > q.Lines[idx].DiscountedBase.Amount) {
					idx = i
				}
			}
			if idx < 0 {
				break
			}
			take := owed
			if take > q.Lines[idx].DiscountedBase.Amount {
				take = q.Lines[idx].DiscountedBase.Amount
			}
			q.Lines[idx].DiscountedBase.Amount -= take
			owed -= take
		}
		return discounted, nil

	case AgentRateFlat:
		discounted, err := q.BaseTotal.Sub(agent.Flat)
		if err != nil {
			return money.Money{}, err
		}
		discounted = discounted.ClampNonNegative()
		weights := make([]int64, len(q.Lines))
		for i := range q.Lines {
			weights[i] = q.Lines[i].Breakdown.Base.Amount
		}
		parts, err := money.Distribute(discounted, weights)
		if err != nil {
			return money.Money{}, err
		}
		for i := range q.Lines {
			q.Lines[i].DiscountedBase = parts[i].ClampNonNegative()
		}
		return discounted, nil
	}
	return money.Money{}, ErrInvalidAgentRate
}
