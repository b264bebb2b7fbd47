package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	adminsvc "staybook/internal/app/services/admin"
	domainagentrate "staybook/internal/domain/agentrate"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

type AdminHTTP interface {
	ListUsers(c *gin.Context)
	SetBlocked(c *gin.Context)
	AssignAgentRate(c *gin.Context)
	RevokeAgentRate(c *gin.Context)
	GetAgentRate(c *gin.Context)
}

// AdminHandler exposes moderation and agent-rate management to admins.
type AdminHandler struct {
	Service *adminsvc.Service
	Logger  *slog.Logger
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	users, err := h.Service.ListUsers(c.Request.Context())
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	out := make([]dto.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, dto.MapUserProfile(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (h AdminHandler) SetBlocked(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.Service.SetBlocked(c.Request.Context(), domainuser.ID(c.Param("id")), req.Blocked)
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

type assignAgentRateRequest struct {
	Type    string  `json:"type"`
	Percent float64 `json:"percent,omitempty"`
	Flat    int64   `json:"flat,omitempty"`
}

type agentRateResponse struct {
	AgentID   string     `json:"agent_id"`
	Type      string     `json:"type"`
	Percent   float64    `json:"percent,omitempty"`
	Flat      dto.Amount `json:"flat"`
	GrantedBy string     `json:"granted_by"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func mapAgentRate(a *domainagentrate.Assignment) agentRateResponse {
	return agentRateResponse{
		AgentID:   string(a.AgentID),
		Type:      string(a.Rate.Type),
		Percent:   a.Rate.Percent,
		Flat:      dto.MapAmount(a.Rate.Flat),
		GrantedBy: string(a.GrantedBy),
		UpdatedAt: a.UpdatedAt,
	}
}

func (h AdminHandler) AssignAgentRate(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	var req assignAgentRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	rate := domainpricing.AgentRate{
		Type:    domainpricing.AgentRateType(req.Type),
		Percent: req.Percent,
		Flat:    money.Money{Amount: req.Flat, Currency: money.INR},
	}
	assignment, err := h.Service.AssignAgentRate(c.Request.Context(), domainuser.ID(c.Param("id")), domainuser.ID(p.ID), rate)
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAgentRate(assignment))
}

func (h AdminHandler) RevokeAgentRate(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if err := h.Service.RevokeAgentRate(c.Request.Context(), domainuser.ID(c.Param("id"))); err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AdminHandler) GetAgentRate(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	assignment, err := h.Service.AgentRate(c.Request.Context(), domainuser.ID(c.Param("id")))
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAgentRate(assignment))
}

func (h AdminHandler) respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound), errors.Is(err, domainagentrate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, adminsvc.ErrNotAnAgent),
		errors.Is(err, domainpricing.ErrInvalidAgentRate),
		errors.Is(err, domainagentrate.ErrAgentRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("admin operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ AdminHTTP = (*AdminHandler)(nil)
