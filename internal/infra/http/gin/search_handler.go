package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	inventorysvc "staybook/internal/app/services/inventory"
	"staybook/internal/domain/shared/daterange"
)

type SearchHTTP interface {
	RoomTypes(c *gin.Context)
}

// SearchHandler serves the traveler-facing room listing for a stay.
type SearchHandler struct {
	Service *inventorysvc.Service
	Logger  *slog.Logger
}

type searchResponse struct {
	PropertyID string         `json:"property_id"`
	CheckIn    string         `json:"check_in"`
	CheckOut   string         `json:"check_out"`
	RoomTypes  []dto.RoomType `json:"room_types"`
}

func (h SearchHandler) RoomTypes(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inventory service unavailable"})
		return
	}
	propertyID := c.Param("id")
	checkIn := c.Query("check_in")
	checkOut := c.Query("check_out")

	stay, err := daterange.Parse(checkIn, checkOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := h.Service.Search(c.Request.Context(), propertyID, stay)
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("room search failed", "property_id", propertyID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := searchResponse{
		PropertyID: propertyID,
		CheckIn:    daterange.FormatDate(stay.CheckIn),
		CheckOut:   daterange.FormatDate(stay.CheckOut),
		RoomTypes:  make([]dto.RoomType, 0, len(results)),
	}
	for _, result := range results {
		resp.RoomTypes = append(resp.RoomTypes, dto.MapRoomType(result.RoomType, true))
	}
	c.JSON(http.StatusOK, resp)
}

var _ SearchHTTP = (*SearchHandler)(nil)
