package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	inventorysvc "staybook/internal/app/services/inventory"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type HostInventoryHTTP interface {
	List(c *gin.Context)
	Upsert(c *gin.Context)
	ReplaceRates(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

// HostInventoryHandler manages room types and rate calendars for hosts.
type HostInventoryHandler struct {
	Service *inventorysvc.Service
	Logger  *slog.Logger
}

type mealPlanPriceRequest struct {
	MealPlanID      string `json:"meal_plan_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DoubleOccupancy int64  `json:"double_occupancy"`
	SingleOccupancy int64  `json:"single_occupancy"`
	ExtraBedAdult   int64  `json:"extra_bed_adult"`
	ExtraBedChild   int64  `json:"extra_bed_child"`
}

type ratePlanDateRequest struct {
	Date  string                 `json:"date"`
	Plans []mealPlanPriceRequest `json:"plans"`
}

type upsertRoomTypeRequest struct {
	ID               string                `json:"id"`
	PropertyID       string                `json:"property_id"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	Occupancy        int                   `json:"occupancy"`
	MinOccupancy     int                   `json:"min_occupancy"`
	MaxOccupancy     int                   `json:"max_occupancy"`
	AvailableRooms   int                   `json:"available_rooms"`
	AvailableRoomIDs []string              `json:"available_room_ids"`
	RatePlanDates    []ratePlanDateRequest `json:"rate_plan_dates"`
}

func (h HostInventoryHandler) List(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	propertyID := c.Query("property_id")
	roomTypes, err := h.Service.ByProperty(c.Request.Context(), propertyID)
	if err != nil {
		h.respondInventoryError(c, err)
		return
	}
	out := make([]dto.RoomType, 0, len(roomTypes))
	for _, rt := range roomTypes {
		out = append(out, dto.MapRoomType(rt, true))
	}
	c.JSON(http.StatusOK, gin.H{"room_types": out})
}

func (h HostInventoryHandler) Upsert(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	var req upsertRoomTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	dates, err := mapRatePlanDates(req.RatePlanDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := h.Service.UpsertRoomType(c.Request.Context(), inventorysvc.UpsertRoomTypeParams{
		ID:               domainrateplan.RoomTypeID(req.ID),
		PropertyID:       req.PropertyID,
		Name:             req.Name,
		Description:      req.Description,
		Occupancy:        req.Occupancy,
		MinOccupancy:     req.MinOccupancy,
		MaxOccupancy:     req.MaxOccupancy,
		AvailableRooms:   req.AvailableRooms,
		AvailableRoomIDs: req.AvailableRoomIDs,
		RatePlanDates:    dates,
	})
	if err != nil {
		h.respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRoomType(rt, true))
}

type replaceRatesRequest struct {
	RatePlanDates []ratePlanDateRequest `json:"rate_plan_dates"`
}

func (h HostInventoryHandler) ReplaceRates(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	var req replaceRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	dates, err := mapRatePlanDates(req.RatePlanDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := h.Service.ReplaceRates(c.Request.Context(), domainrateplan.RoomTypeID(c.Param("id")), dates)
	if err != nil {
		h.respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRoomType(rt, true))
}

func (h HostInventoryHandler) UploadPhoto(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	rt, err := h.Service.AttachPhoto(c.Request.Context(), domainrateplan.RoomTypeID(c.Param("id")), header.Filename, contentType, file)
	if err != nil {
		h.respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRoomType(rt, false))
}

func mapRatePlanDates(entries []ratePlanDateRequest) ([]domainrateplan.RatePlanDate, error) {
	out := make([]domainrateplan.RatePlanDate, 0, len(entries))
	for _, entry := range entries {
		date, err := daterange.ParseDate(entry.Date)
		if err != nil {
			return nil, err
		}
		mapped := domainrateplan.RatePlanDate{
			Date:  date,
			Plans: make(map[domainrateplan.MealPlanID]domainrateplan.MealPlanPrice, len(entry.Plans)),
		}
		for _, plan := range entry.Plans {
			id := domainrateplan.MealPlanID(plan.MealPlanID)
			mapped.Plans[id] = domainrateplan.MealPlanPrice{
				MealPlanID:      id,
				Name:            plan.Name,
				Description:     plan.Description,
				DoubleOccupancy: money.Money{Amount: plan.DoubleOccupancy, Currency: money.INR},
				SingleOccupancy: money.Money{Amount: plan.SingleOccupancy, Currency: money.INR},
				ExtraBedAdult:   money.Money{Amount: plan.ExtraBedAdult, Currency: money.INR},
				ExtraBedChild:   money.Money{Amount: plan.ExtraBedChild, Currency: money.INR},
			}
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (h HostInventoryHandler) respondInventoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainrateplan.ErrRoomTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainrateplan.ErrIDRequired),
		errors.Is(err, domainrateplan.ErrPropertyRequired),
		errors.Is(err, domainrateplan.ErrNameRequired),
		errors.Is(err, domainrateplan.ErrInvalidOccupancy),
		errors.Is(err, domainrateplan.ErrNegativePrice),
		errors.Is(err, domainrateplan.ErrMealPlanRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, inventorysvc.ErrUploaderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("inventory operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ HostInventoryHTTP = (*HostInventoryHandler)(nil)
