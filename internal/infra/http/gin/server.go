package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Search         SearchHTTP
	Quote          QuoteHTTP
	Checkout       CheckoutHTTP
	HostInventory  HostInventoryHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Search != nil {
		api.GET("/properties/:id/room-types", h.Search.RoomTypes)
	}
	if h.Quote != nil {
		api.POST("/quote-sessions", h.Quote.Start)
		api.GET("/quote-sessions/:id", h.Quote.Get)
		api.POST("/quote-sessions/:id/actions", h.Quote.Apply)
		api.GET("/quote-sessions/:id/totals", h.Quote.Totals)
	}
	if h.Checkout != nil {
		api.POST("/checkout/orders", h.Checkout.CreateOrder)
		api.POST("/checkout/orders/:id/confirm", h.Checkout.ConfirmPayment)
		api.GET("/orders", h.Checkout.ListOrders)
		api.GET("/orders/:id", h.Checkout.GetOrder)
	}
	if h.HostInventory != nil {
		hostGroup := api.Group("/host/room-types")
		hostGroup.GET("", h.HostInventory.List)
		hostGroup.POST("", h.HostInventory.Upsert)
		hostGroup.PUT("/:id/rates", h.HostInventory.ReplaceRates)
		hostGroup.POST("/:id/photos", h.HostInventory.UploadPhoto)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.PUT("/users/:id/blocked", h.Admin.SetBlocked)
		adminGroup.GET("/users/:id/agent-rate", h.Admin.GetAgentRate)
		adminGroup.PUT("/users/:id/agent-rate", h.Admin.AssignAgentRate)
		adminGroup.DELETE("/users/:id/agent-rate", h.Admin.RevokeAgentRate)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
