package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"staybook/internal/app/idempotency"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	adminsvc "staybook/internal/app/services/admin"
	authsvc "staybook/internal/app/services/auth"
	checkoutsvc "staybook/internal/app/services/checkout"
	inventorysvc "staybook/internal/app/services/inventory"
	quotesvc "staybook/internal/app/services/quote"
	domainagentrate "staybook/internal/domain/agentrate"
	domainauth "staybook/internal/domain/auth"
	domainorder "staybook/internal/domain/order"
	domainquote "staybook/internal/domain/quote"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/payment"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := os.Getenv("ROOM_TYPE_FIXTURES")
	if fixturesPath == "" {
		fixturesPath = defaultFixturesPath()
	}
	if err := app.loadRoomTypeFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("room type fixtures load failed", "error", err, "path", fixturesPath)
	}

	go app.runBackground(ctx, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store_mode", cfg.StoreMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	app.close(logger)
	logger.Info("HTTP server stopped")
}

type stores struct {
	users      domainuser.Repository
	sessions   domainauth.SessionStore
	roomTypes  domainrateplan.Repository
	quotes     domainquote.Repository
	orders     domainorder.Repository
	agentRates domainagentrate.Repository
	outbox     appoutbox.Outbox
	idemKeys   idempotency.Store
}

type application struct {
	cfg       config.Config
	handlers  ginserver.Handlers
	quotes    *quotesvc.Service
	inventory *inventorysvc.Service
	mongo     *mongostore.Client
	producer  *kafka.Producer
	consumer  *kafka.Consumer
	worker    *infraoutbox.Worker
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg}

	var st stores
	switch cfg.StoreMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.mongo = client
		st = stores{
			users:      mongostore.NewUserRepository(client.DB),
			sessions:   mongostore.NewSessionStore(client.DB),
			roomTypes:  mongostore.NewRoomTypeRepository(client.DB),
			quotes:     mongostore.NewQuoteSessionRepository(client.DB),
			orders:     mongostore.NewOrderRepository(client.DB),
			agentRates: mongostore.NewAgentRateRepository(client.DB),
			idemKeys:   mongostore.NewIdempotencyStore(client.DB, 0),
		}
		outboxStore := infraoutbox.NewStore(client.DB)
		st.outbox = outboxStore

		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		app.worker = &infraoutbox.Worker{
			Store:       outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			MaxAttempts: 10,
			Logger:      logger,
		}

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "staybook-order-events", nil, kafka.OrderEventHandler{Logger: logger})
		if err != nil {
			return nil, err
		}
		app.consumer = consumer.WithLogger(logger)
	default:
		st = stores{
			users:      memory.NewUserRepository(),
			sessions:   memory.NewSessionStore(),
			roomTypes:  memory.NewRoomTypeRepository(),
			quotes:     memory.NewQuoteSessionRepository(),
			orders:     memory.NewOrderRepository(),
			agentRates: memory.NewAgentRateRepository(),
			outbox:     memory.NewOutbox(),
			idemKeys:   memory.NewIdempotencyStore(),
		}
	}

	var gateway policies.PaymentGatewayPort
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = &payment.RazorpayGateway{
			Client:    &http.Client{Timeout: 10 * time.Second},
			BaseURL:   cfg.RazorpayBaseURL,
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			Logger:    logger,
		}
	} else {
		logger.Warn("razorpay credentials missing, using local payment gateway")
		gateway = payment.LocalGateway{}
	}

	var uploader policies.UploaderPort
	if s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("s3 uploader unavailable", "error", err)
	} else {
		uploader = s3Client
	}

	authService := &authsvc.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	adminService := &adminsvc.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		AgentRates: st.agentRates,
		Logger:     logger,
	}
	inventoryService := &inventorysvc.Service{
		RoomTypes: st.roomTypes,
		Uploader:  uploader,
		Logger:    logger,
	}
	app.inventory = inventoryService
	quoteService := &quotesvc.Service{
		Sessions:   st.quotes,
		RoomTypes:  st.roomTypes,
		AgentRates: st.agentRates,
		SessionTTL: cfg.QuoteTTL,
		Logger:     logger,
	}
	app.quotes = quoteService
	checkoutService := &checkoutsvc.Service{
		Orders:   st.orders,
		Quotes:   st.quotes,
		Gateway:  gateway,
		Outbox:   st.outbox,
		Encoder:  appoutbox.JSONEventEncoder{},
		IdemKeys: st.idemKeys,
		Codec:    idempotency.JSONResultCodec{},
		Logger:   logger,
	}

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Search:         ginserver.SearchHandler{Service: inventoryService, Logger: logger},
		Quote:          ginserver.QuoteHandler{Service: quoteService, Logger: logger},
		Checkout:       ginserver.CheckoutHandler{Service: checkoutService, Logger: logger},
		HostInventory:  ginserver.HostInventoryHandler{Service: inventoryService, Logger: logger},
		Admin:          ginserver.AdminHandler{Service: adminService, Logger: logger},
		AuthMiddleware: authMW.Handle,
	}
	return app, nil
}

func (a *application) ready() error {
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return a.mongo.Ping(ctx)
	}
	return nil
}

// runBackground drives the periodic jobs: quote-session pruning always, the
// outbox relay and order-event consumer only in mongo mode.
func (a *application) runBackground(ctx context.Context, logger *slog.Logger) {
	if a.worker != nil {
		go func() {
			if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if a.consumer != nil {
		go func() {
			topic := a.cfg.KafkaTopicPrefix + "order.events.v1"
			if err := a.consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("order event consumer stopped", "error", err)
			}
		}()
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := a.quotes.PruneExpired(pruneCtx); err != nil {
				logger.Warn("quote session prune failed", "error", err)
			}
			cancel()
		}
	}
}

type mealPlanFixture struct {
	MealPlanID      string `json:"meal_plan_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DoubleOccupancy int64  `json:"double_occupancy"`
	SingleOccupancy int64  `json:"single_occupancy"`
	ExtraBedAdult   int64  `json:"extra_bed_adult"`
	ExtraBedChild   int64  `json:"extra_bed_child"`
}

type rateDateFixture struct {
	Date  string            `json:"date"`
	Plans []mealPlanFixture `json:"plans"`
}

type roomTypeFixture struct {
	ID               string            `json:"id"`
	PropertyID       string            `json:"property_id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Occupancy        int               `json:"occupancy"`
	MinOccupancy     int               `json:"min_occupancy"`
	MaxOccupancy     int               `json:"max_occupancy"`
	AvailableRooms   int               `json:"available_rooms"`
	AvailableRoomIDs []string          `json:"available_room_ids"`
	RatePlanDates    []rateDateFixture `json:"rate_plan_dates"`
}

// loadRoomTypeFixtures seeds inventory from a JSON file so a fresh memory-mode
// instance has something to sell.
func (a *application) loadRoomTypeFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room type fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("room type fixtures file empty", "path", path)
		return nil
	}

	var fixtures []roomTypeFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		dates, err := fixtureRateDates(fx.RatePlanDates)
		if err != nil {
			logger.Error("fixture rate dates invalid", "room_type_id", fx.ID, "error", err)
			continue
		}
		rt, err := a.inventory.UpsertRoomType(ctx, inventorysvc.UpsertRoomTypeParams{
			ID:               domainrateplan.RoomTypeID(fx.ID),
			PropertyID:       fx.PropertyID,
			Name:             fx.Name,
			Description:      fx.Description,
			Occupancy:        fx.Occupancy,
			MinOccupancy:     fx.MinOccupancy,
			MaxOccupancy:     fx.MaxOccupancy,
			AvailableRooms:   fx.AvailableRooms,
			AvailableRoomIDs: fx.AvailableRoomIDs,
			RatePlanDates:    dates,
		})
		if err != nil {
			logger.Error("fixture invalid", "room_type_id", fx.ID, "error", err)
			continue
		}
		logger.Info("room type fixture imported", "room_type_id", rt.ID, "property_id", rt.PropertyID)
	}
	return nil
}

func fixtureRateDates(entries []rateDateFixture) ([]domainrateplan.RatePlanDate, error) {
	var out []domainrateplan.RatePlanDate
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

func defaultFixturesPath() string {
	return filepath.Join("data", "room_types.json")
}

func (a *application) close(logger *slog.Logger) {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			logger.Warn("consumer close failed", "error", err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("producer close failed", "error", err)
		}
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Close(ctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}
