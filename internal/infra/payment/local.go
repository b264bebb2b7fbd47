package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	"staybook/internal/app/policies"
	"staybook/internal/domain/shared/money"
)

// LocalGateway stands in for Razorpay when no credentials are configured.
// Orders get synthetic IDs and signatures are verified against the same
// HMAC scheme, so the confirm flow can be exercised end to end locally.
type LocalGateway struct {
	Secret string
}

func (g LocalGateway) CreateOrder(_ context.Context, receipt string, amount money.Money) (policies.GatewayOrder, error) {
	return policies.GatewayOrder{
		ID:      "order_local_" + uuid.NewString(),
		Amount:  amount,
		Receipt: receipt,
		Status:  "created",
	}, nil
}

func (g LocalGateway) VerifySignature(gatewayOrderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.secret()))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func (g LocalGateway) secret() string {
	if g.Secret != "" {
		return g.Secret
	}
	return "local-dev-secret"
}

var _ policies.PaymentGatewayPort = LocalGateway{}
