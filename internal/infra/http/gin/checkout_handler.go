package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	checkoutsvc "staybook/internal/app/services/checkout"
	domainorder "staybook/internal/domain/order"
	domainquote "staybook/internal/domain/quote"
	domainuser "staybook/internal/domain/user"
)

type CheckoutHTTP interface {
	CreateOrder(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	GetOrder(c *gin.Context)
	ListOrders(c *gin.Context)
}

type CheckoutHandler struct {
	Service *checkoutsvc.Service
	Logger  *slog.Logger
}

type createOrderRequest struct {
	SessionID string `json:"session_id"`
}

func (h CheckoutHandler) CreateOrder(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := h.Service.CreateOrder(c.Request.Context(), checkoutsvc.CreateOrderParams{
		UserID:         domainuser.ID(p.ID),
		SessionID:      domainquote.SessionID(req.SessionID),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type confirmPaymentRequest struct {
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

func (h CheckoutHandler) ConfirmPayment(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	order, err := h.Service.ConfirmPayment(c.Request.Context(), checkoutsvc.ConfirmPaymentParams{
		UserID:    domainuser.ID(p.ID),
		OrderID:   domainorder.OrderID(c.Param("id")),
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(order))
}

func (h CheckoutHandler) GetOrder(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	order, err := h.Service.Order(c.Request.Context(), domainuser.ID(p.ID), domainorder.OrderID(c.Param("id")))
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(order))
}

func (h CheckoutHandler) ListOrders(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	orders, err := h.Service.ListOrders(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	out := make([]dto.Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, dto.MapOrder(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h CheckoutHandler) respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainquote.ErrSessionNotFound), errors.Is(err, domainorder.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainquote.ErrSessionExpired):
		c.JSON(http.StatusGone, gin.H{"error": "session expired"})
	case errors.Is(err, domainorder.ErrEmptySelection), errors.Is(err, domainorder.ErrZeroAmount):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, checkoutsvc.ErrSignatureMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment verification failed"})
	case errors.Is(err, domainorder.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("checkout operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ CheckoutHTTP = (*CheckoutHandler)(nil)
