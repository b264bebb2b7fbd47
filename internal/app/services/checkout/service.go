package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/idempotency"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	domainorder "staybook/internal/domain/order"
	domainquote "staybook/internal/domain/quote"
	domainuser "staybook/internal/domain/user"
)

var (
	ErrGatewayUnavailable = errors.New("checkout: payment gateway not configured")
	ErrSignatureMismatch  = errors.New("checkout: payment signature mismatch")
)

type Service struct {
	Orders   domainorder.Repository
	Quotes   domainquote.Repository
	Gateway  policies.PaymentGatewayPort
	Outbox   appoutbox.Outbox
	Encoder  appoutbox.EventEncoder
	IdemKeys idempotency.Store
	Codec    idempotency.ResultCodec
	Logger   *slog.Logger
}

type CreateOrderParams struct {
	UserID         domainuser.ID
	SessionID      domainquote.SessionID
	IdempotencyKey string
}

// CreateOrderResult is the payload the booking screen needs to open the
// gateway's payment widget.
type CreateOrderResult struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// CreateOrder turns a quote session into a payment order and registers it with
// the gateway. Retries carrying the same Idempotency-Key replay the stored
// result without touching the gateway again.
func (s *Service) CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error) {
	if s.Gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	key := strings.TrimSpace(params.IdempotencyKey)
	if key != "" && s.IdemKeys != nil {
		rec, ok, err := s.IdemKeys.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return s.replay(rec)
		}
	}

	result, err := s.createOrder(ctx, params)
	if key != "" && s.IdemKeys != nil {
		if saveErr := s.remember(ctx, key, result, err); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
	}
	return result, err
}

func (s *Service) createOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error) {
	session, err := s.Quotes.ByID(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != params.UserID {
		return nil, domainquote.ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		return nil, domainquote.ErrSessionExpired
	}
	totals, err := session.Totals()
	if err != nil {
		return nil, err
	}

	order, err := domainorder.NewPaymentOrder(domainorder.CreateParams{
		ID:         domainorder.OrderID(uuid.NewString()),
		UserID:     session.UserID,
		PropertyID: session.PropertyID,
		Stay:       session.Stay,
		Quote:      totals,
		RoomTypes:  session.RoomTypes,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	gatewayOrder, err := s.Gateway.CreateOrder(ctx, string(order.ID), order.Amount)
	if err != nil {
		return nil, err
	}
	order.AttachGatewayOrder(gatewayOrder.ID, time.Now())

	if err := s.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, order.PendingEvents()); err != nil {
		return nil, err
	}
	order.ClearEvents()

	// The session has served its purpose; payment confirmation works off
	// the order from here on.
	_ = s.Quotes.Delete(ctx, session.ID)

	if s.Logger != nil {
		s.Logger.Info("payment order created",
			"order_id", order.ID, "user_id", order.UserID,
			"amount", order.Amount.Amount, "gateway_order_id", order.GatewayOrderID)
	}
	return &CreateOrderResult{
		OrderID:        string(order.ID),
		GatewayOrderID: order.GatewayOrderID,
		Amount:         order.Amount.Amount,
		Currency:       order.Amount.Currency,
	}, nil
}

type ConfirmPaymentParams struct {
	UserID    domainuser.ID
	OrderID   domainorder.OrderID
	PaymentID string
	Signature string
}

// ConfirmPayment verifies the gateway callback signature and settles the
// order. A bad signature fails the order rather than leaving it pending.
func (s *Service) ConfirmPayment(ctx context.Context, params ConfirmPaymentParams) (*domainorder.PaymentOrder, error) {
	if s.Gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	order, err := s.Orders.ByID(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != params.UserID {
		return nil, domainorder.ErrNotFound
	}

	now := time.Now()
	if err := s.Gateway.VerifySignature(order.GatewayOrderID, params.PaymentID, params.Signature); err != nil {
		if markErr := order.MarkFailed("signature mismatch", now); markErr != nil {
			return nil, markErr
		}
		if saveErr := s.Orders.Save(ctx, order); saveErr != nil {
			return nil, saveErr
		}
		if recErr := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, order.PendingEvents()); recErr != nil {
			return nil, recErr
		}
		order.ClearEvents()
		if s.Logger != nil {
			s.Logger.Warn("payment verification failed", "order_id", order.ID)
		}
		return nil, ErrSignatureMismatch
	}

	if err := order.MarkPaid(params.PaymentID, now); err != nil {
		return nil, err
	}
	if err := s.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, order.PendingEvents()); err != nil {
		return nil, err
	}
	order.ClearEvents()

	if s.Logger != nil {
		s.Logger.Info("payment confirmed", "order_id", order.ID, "payment_id", params.PaymentID)
	}
	return order, nil
}

func (s *Service) Order(ctx context.Context, userID domainuser.ID, id domainorder.OrderID) (*domainorder.PaymentOrder, error) {
	order, err := s.Orders.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainorder.ErrNotFound
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID domainuser.ID) ([]*domainorder.PaymentOrder, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *Service) replay(rec idempotency.Record) (*CreateOrderResult, error) {
	if rec.Error != "" {
		return nil, errors.New(rec.Error)
	}
	var result CreateOrderResult
	if err := s.codec().Decode(rec.Payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) remember(ctx context.Context, key string, result *CreateOrderResult, err error) error {
	rec := idempotency.Record{Key: key, OccurredAt: time.Now().UTC()}
	if err != nil {
		rec.Error = err.Error()
	} else if result != nil {
		payload, encErr := s.codec().Encode(result)
		if encErr != nil {
			return encErr
		}
		rec.Payload = payload
	}
	return s.IdemKeys.Save(ctx, rec)
}

func (s *Service) codec() idempotency.ResultCodec {
	if s.Codec != nil {
		return s.Codec
	}
	return idempotency.JSONResultCodec{}
}
