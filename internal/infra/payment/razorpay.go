package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"staybook/internal/app/policies"
	"staybook/internal/domain/shared/money"
)

var (
	ErrNotConfigured      = errors.New("payment: razorpay credentials not configured")
	ErrInvalidSignature   = errors.New("payment: invalid signature")
	ErrGatewayUnavailable = errors.New("payment: gateway request failed")
)

// RazorpayGateway creates collection orders against the Razorpay Orders API
// and verifies capture callbacks with the HMAC scheme Razorpay documents:
// hex(hmac-sha256(order_id + "|" + payment_id, key_secret)).
type RazorpayGateway struct {
	Client    *http.Client
	BaseURL   string
	KeyID     string
	KeySecret string
	Logger    *slog.Logger
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, receipt string, amount money.Money) (policies.GatewayOrder, error) {
	var zero policies.GatewayOrder
	if g == nil || g.KeyID == "" || g.KeySecret == "" {
		return zero, ErrNotConfigured
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount.Amount,
		Currency: amount.Currency,
		Receipt:  receipt,
	})
	if err != nil {
		return zero, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/orders"), bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.SetBasicAuth(g.KeyID, g.KeySecret)

	resp, err := g.client().Do(request)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("razorpay order request failed", "receipt", receipt, "error", err)
		}
		return zero, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if g.Logger != nil {
			g.Logger.Error("razorpay order rejected", "receipt", receipt, "status", resp.StatusCode, "body", string(snippet))
		}
		return zero, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var decoded createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return zero, err
	}
	if decoded.ID == "" {
		return zero, fmt.Errorf("%w: empty order id", ErrGatewayUnavailable)
	}
	return policies.GatewayOrder{
		ID:      decoded.ID,
		Amount:  money.Money{Amount: decoded.Amount, Currency: decoded.Currency},
		Receipt: decoded.Receipt,
		Status:  decoded.Status,
	}, nil
}

func (g *RazorpayGateway) VerifySignature(gatewayOrderID, paymentID, signature string) error {
	if g == nil || g.KeySecret == "" {
		return ErrNotConfigured
	}
	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

func (g *RazorpayGateway) endpoint(path string) string {
	base := strings.TrimRight(g.BaseURL, "/")
	if base == "" {
		base = "https://api.razorpay.com/v1"
	}
	return base + path
}

func (g *RazorpayGateway) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

var _ policies.PaymentGatewayPort = (*RazorpayGateway)(nil)
