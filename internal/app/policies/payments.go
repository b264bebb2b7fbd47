package policies

import (
	"context"

	"staybook/internal/domain/shared/money"
)

// GatewayOrder is the payment provider's handle for a pending collection.
type GatewayOrder struct {
	ID      string
	Amount  money.Money
	Receipt string
	Status  string
}

// PaymentGatewayPort creates provider-side orders and verifies capture
// callbacks. Amounts cross the port in minor units.
type PaymentGatewayPort interface {
	CreateOrder(ctx context.Context, receipt string, amount money.Money) (GatewayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) error
}
