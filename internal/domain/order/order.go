package order

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

var (
	ErrEmptySelection = errors.New("order: no rooms selected")
	ErrZeroAmount     = errors.New("order: grand total must be positive")
	ErrInvalidState   = errors.New("order: invalid state transition")
	ErrNotFound       = errors.New("order: not found")
)

type OrderID string

type State string

const (
	StateCreated State = "CREATED"
	StatePaid    State = "PAID"
	StateFailed  State = "FAILED"
)

// LineItem is one room type's share of the payment order, the shape forwarded
// to the create-payment-order backend contract. Price is the discounted base;
// TotalPrice = Price + Tax. The sum of TotalPrice across lines equals the
// order Amount exactly.
type LineItem struct {
	RoomTypeID rateplan.RoomTypeID
	RoomIDs    []string
	Rooms      int
	Guests     int
	Children   int
	MealPlanID rateplan.MealPlanID
	Price      money.Money
	Tax        money.Money
	TotalPrice money.Money
	CheckIn    string
	CheckOut   string
	BlockDates []string
}

// PaymentOrder is the checkout aggregate handed to the payment gateway.
type PaymentOrder struct {
	ID             OrderID
	UserID         user.ID
	PropertyID     string
	Stay           daterange.DateRange
	Lines          []LineItem
	Amount         money.Money
	BaseTotal      money.Money
	Discount       money.Money
	TaxTotal       money.Money
	State          State
	GatewayOrderID string
	PaymentID      string
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.Recorder
}

type CreateParams struct {
	ID         OrderID
	UserID     user.ID
	PropertyID string
	Stay       daterange.DateRange
	Quote      pricing.Quote
	RoomTypes  map[rateplan.RoomTypeID]*rateplan.RoomType
	CreatedAt  time.Time
}

// NewPaymentOrder builds the order from an aggregated quote. The zero-total
// guard runs here, before any gateway call is attempted.
func NewPaymentOrder(params CreateParams) (*PaymentOrder, error) {
	if len(params.Quote.Lines) == 0 {
		return nil, ErrEmptySelection
	}
	if params.Quote.GrandTotal.Amount <= 0 {
		return nil, ErrZeroAmount
	}
	if err := params.Stay.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	checkIn := daterange.FormatDate(params.Stay.CheckIn)
	checkOut := daterange.FormatDate(params.Stay.CheckOut)
	blockDates := params.Stay.BlockDates()

	o := &PaymentOrder{
		ID:         params.ID,
		UserID:     params.UserID,
		PropertyID: params.PropertyID,
		Stay:       params.Stay,
		Amount:     params.Quote.GrandTotal,
		BaseTotal:  params.Quote.BaseTotal,
		Discount:   params.Quote.Discount,
		TaxTotal:   params.Quote.TaxTotal,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, line := range params.Quote.Lines {
		item := LineItem{
			RoomTypeID: line.RoomTypeID,
			Rooms:      line.Rooms,
			Guests:     line.Guests,
			Children:   line.Children,
			MealPlanID: line.MealPlan,
			Price:      line.DiscountedBase,
			Tax:        line.Tax.Amount,
			TotalPrice: line.Total,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			BlockDates: append([]string(nil), blockDates...),
		}
		if rt, ok := params.RoomTypes[line.RoomTypeID]; ok {
			item.RoomIDs = rt.RoomIDsForStay(line.Rooms)
		}
		o.Lines = append(o.Lines, item)
	}
	o.Record(OrderCreated{OrderID: o.ID, UserID: o.UserID, PropertyID: o.PropertyID, Amount: o.Amount, At: now})
	return o, nil
}

// AttachGatewayOrder records the gateway's order id once it is created.
func (o *PaymentOrder) AttachGatewayOrder(gatewayOrderID string, now time.Time) {
	o.GatewayOrderID = gatewayOrderID
	o.touch(now)
}

// MarkPaid transitions the order after a verified payment capture.
func (o *PaymentOrder) MarkPaid(paymentID string, now time.Time) error {
	if o.State != StateCreated {
		return ErrInvalidState
	}
	o.State = StatePaid
	o.PaymentID = paymentID
	o.touch(now)
	o.Record(OrderPaid{OrderID: o.ID, PaymentID: paymentID, Amount: o.Amount, At: o.UpdatedAt})
	return nil
}

// MarkFailed transitions the order after a gateway failure or a signature
// mismatch.
func (o *PaymentOrder) MarkFailed(reason string, now time.Time) error {
	if o.State != StateCreated {
		return ErrInvalidState
	}
	o.State = StateFailed
	o.FailureReason = reason
	o.touch(now)
	o.Record(OrderFailed{OrderID: o.ID, Reason: reason, At: o.UpdatedAt})
	return nil
}

func (o *PaymentOrder) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	o.UpdatedAt = now.UTC()
}

type Repository interface {
	ByID(ctx context.Context, id OrderID) (*PaymentOrder, error)
	ListByUser(ctx context.Context, userID user.ID) ([]*PaymentOrder, error)
	Save(ctx context.Context, o *PaymentOrder) error
}
