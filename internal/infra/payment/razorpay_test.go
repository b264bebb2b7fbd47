package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/money"
)

func TestCreateOrder(t *testing.T) {
	var gotBody createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key-id", user)
		assert.Equal(t, "key-secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(createOrderResponse{
			ID:       "order_test123",
			Amount:   gotBody.Amount,
			Currency: gotBody.Currency,
			Receipt:  gotBody.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	gw := &RazorpayGateway{
		Client:    server.Client(),
		BaseURL:   server.URL,
		KeyID:     "key-id",
		KeySecret: "key-secret",
	}

	order, err := gw.CreateOrder(context.Background(), "rcpt-1", money.Rupees(6300))
	require.NoError(t, err)

	assert.Equal(t, "order_test123", order.ID)
	assert.Equal(t, money.Money{Amount: 630000, Currency: money.INR}, order.Amount)
	assert.Equal(t, "rcpt-1", order.Receipt)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(630000), gotBody.Amount)
	assert.Equal(t, money.INR, gotBody.Currency)
}

func TestCreateOrderGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"bad amount"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	gw := &RazorpayGateway{
		Client:    server.Client(),
		BaseURL:   server.URL,
		KeyID:     "key-id",
		KeySecret: "key-secret",
	}

	_, err := gw.CreateOrder(context.Background(), "rcpt-1", money.Rupees(100))
	assert.True(t, errors.Is(err, ErrGatewayUnavailable))
}

func TestCreateOrderNotConfigured(t *testing.T) {
	gw := &RazorpayGateway{}
	_, err := gw.CreateOrder(context.Background(), "rcpt-1", money.Rupees(100))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifySignature(t *testing.T) {
	gw := &RazorpayGateway{KeyID: "key-id", KeySecret: "key-secret"}

	mac := hmac.New(sha256.New, []byte("key-secret"))
	mac.Write([]byte("order_test123|pay_456"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, gw.VerifySignature("order_test123", "pay_456", valid))
	assert.NoError(t, gw.VerifySignature("order_test123", "pay_456", valid+"\n"))
	assert.ErrorIs(t, gw.VerifySignature("order_test123", "pay_789", valid), ErrInvalidSignature)
	assert.ErrorIs(t, gw.VerifySignature("order_test123", "pay_456", "deadbeef"), ErrInvalidSignature)
}
