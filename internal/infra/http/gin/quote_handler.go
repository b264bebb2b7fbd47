package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	quotesvc "staybook/internal/app/services/quote"
	"staybook/internal/domain/booking"
	domainquote "staybook/internal/domain/quote"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

type QuoteHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	Apply(c *gin.Context)
	Totals(c *gin.Context)
}

// QuoteHandler drives the booking screen: open a session over bookable
// inventory, mutate the selection, read the running totals.
type QuoteHandler struct {
	Service *quotesvc.Service
	Logger  *slog.Logger
}

type startQuoteRequest struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	AsAgent    bool   `json:"as_agent"`
}

func (h QuoteHandler) Start(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req startQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	asAgent := req.AsAgent && p.HasRole(string(domainuser.RoleAgent))
	session, err := h.Service.Start(c.Request.Context(), quotesvc.StartParams{
		UserID:     domainuser.ID(p.ID),
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		AsAgent:    asAgent,
	})
	if err != nil {
		h.respondQuoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapQuoteSession(session))
}

func (h QuoteHandler) Get(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	session, err := h.Service.Get(c.Request.Context(), domainuser.ID(p.ID), domainquote.SessionID(c.Param("id")))
	if err != nil {
		h.respondQuoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapQuoteSession(session))
}

type quoteActionRequest struct {
	Action     string `json:"action"`
	RoomTypeID string `json:"room_type_id"`
	MealPlan   string `json:"meal_plan,omitempty"`
	Delta      int    `json:"delta,omitempty"`
	Rooms      int    `json:"rooms,omitempty"`
	Index      int    `json:"index,omitempty"`
}

func (h QuoteHandler) Apply(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req quoteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	action := booking.Action{
		Kind:       booking.ActionKind(req.Action),
		RoomTypeID: domainrateplan.RoomTypeID(req.RoomTypeID),
		MealPlan:   domainrateplan.MealPlanID(req.MealPlan),
		Delta:      req.Delta,
		Rooms:      req.Rooms,
		SlotIndex:  req.Index,
	}
	session, err := h.Service.Apply(c.Request.Context(), domainuser.ID(p.ID), domainquote.SessionID(c.Param("id")), action)
	if err != nil {
		h.respondQuoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapQuoteSession(session))
}

func (h QuoteHandler) Totals(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	_, totals, err := h.Service.Totals(c.Request.Context(), domainuser.ID(p.ID), domainquote.SessionID(c.Param("id")))
	if err != nil {
		h.respondQuoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapQuoteTotals(totals))
}

func (h QuoteHandler) respondQuoteError(c *gin.Context, err error) {
	var rejection *booking.Rejection
	switch {
	case errors.As(err, &rejection):
		// Capacity rejections are part of the screen's contract, not
		// server faults.
		c.JSON(http.StatusConflict, gin.H{
			"error": rejection.Message,
			"kind":  string(rejection.Kind),
		})
	case errors.Is(err, domainquote.ErrSessionNotFound),
		errors.Is(err, quotesvc.ErrNotSessionOwner):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, domainquote.ErrSessionExpired):
		c.JSON(http.StatusGone, gin.H{"error": "session expired"})
	case errors.Is(err, domainquote.ErrNoInventory):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, daterange.ErrInvalidRange), errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, booking.ErrUnknownRoomType), errors.Is(err, booking.ErrNotSelected),
		errors.Is(err, booking.ErrUnknownAction), errors.Is(err, booking.ErrMealPlanNotOffered):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("quote operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ QuoteHTTP = (*QuoteHandler)(nil)
