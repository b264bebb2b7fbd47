package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type cloudEvent struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// OrderEventHandler consumes the order lifecycle topic and logs payment
// outcomes. Downstream consumers (invoicing, notifications) hang off the same
// topic with their own group IDs.
type OrderEventHandler struct {
	Logger *slog.Logger
}

func (h OrderEventHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("dropping malformed order event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		// malformed payloads are not retryable
		return nil
	}
	var data struct {
		OrderID string `json:"order_id"`
		UserID  string `json:"user_id"`
		Amount  struct {
			Amount   int64  `json:"Amount"`
			Currency string `json:"Currency"`
		} `json:"amount"`
		Reason string `json:"reason"`
	}
	if len(evt.Data) > 0 {
		if err := json.Unmarshal(evt.Data, &data); err != nil && h.Logger != nil {
			h.Logger.Warn("order event data unreadable", "type", evt.Type, "error", err)
		}
	}
	if h.Logger != nil {
		h.Logger.Info("order event received",
			"type", evt.Type,
			"event_id", evt.ID,
			"order_id", data.OrderID,
			"user_id", data.UserID,
			"amount", data.Amount.Amount,
			"occurred_at", evt.Time,
		)
	}
	return nil
}

var _ MessageHandler = OrderEventHandler{}
