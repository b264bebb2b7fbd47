package order

import (
	"time"

	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

type OrderCreated struct {
	OrderID    OrderID     `json:"order_id"`
	UserID     user.ID     `json:"user_id"`
	PropertyID string      `json:"property_id"`
	Amount     money.Money `json:"amount"`
	At         time.Time   `json:"at"`
}

func (e OrderCreated) EventName() string     { return "order.created" }
func (e OrderCreated) AggregateID() string   { return string(e.OrderID) }
func (e OrderCreated) OccurredAt() time.Time { return e.At }

type OrderPaid struct {
	OrderID   OrderID     `json:"order_id"`
	PaymentID string      `json:"payment_id"`
	Amount    money.Money `json:"amount"`
	At        time.Time   `json:"at"`
}

func (e OrderPaid) EventName() string     { return "order.paid" }
func (e OrderPaid) AggregateID() string   { return string(e.OrderID) }
func (e OrderPaid) OccurredAt() time.Time { return e.At }

type OrderFailed struct {
	OrderID OrderID   `json:"order_id"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

func (e OrderFailed) EventName() string     { return "order.failed" }
func (e OrderFailed) AggregateID() string   { return string(e.OrderID) }
func (e OrderFailed) OccurredAt() time.Time { return e.At }
