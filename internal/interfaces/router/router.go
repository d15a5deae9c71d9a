package router

import (
	"time"

	holdsvc "indexry-backend/internal/application/holdings"
	indexsvc "indexry-backend/internal/application/indexes"
	rebalsvc "indexry-backend/internal/application/rebalance"
	tradesvc "indexry-backend/internal/application/trades"
	"indexry-backend/internal/broker"
	"indexry-backend/internal/config"
	"indexry-backend/internal/database"
	brokerapi "indexry-backend/internal/interfaces/handlers/broker"
	healthapi "indexry-backend/internal/interfaces/handlers/health"
	holdingsapi "indexry-backend/internal/interfaces/handlers/holdings"
	indexapi "indexry-backend/internal/interfaces/handlers/indexes"
	marketapi "indexry-backend/internal/interfaces/handlers/market"
	rebalapi "indexry-backend/internal/interfaces/handlers/rebalance"
	tradesapi "indexry-backend/internal/interfaces/handlers/trades"
	"indexry-backend/internal/marketdata"
	"indexry-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all middleware and route registration,
// and opens the backing stores. The venue handle is created here and injected
// into both the broker handlers and the executor, so connection state is
// shared without a package-level singleton.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	prices := &marketdata.Service{
		Quoter: marketdata.MockQuoter{},
		Rdb:    rdb,
		TTL:    cfg.PriceCacheTTL,
	}
	venue := &broker.GatewayClient{
		BaseURL:   cfg.BrokerGatewayURL,
		AccountID: cfg.BrokerAccountID,
	}

	indexService := &indexsvc.Service{DB: db}
	holdingsService := &holdsvc.Service{DB: db}
	tradesService := &tradesvc.Service{DB: db}
	planner := &rebalsvc.Planner{DB: db, Prices: prices, CashFloor: cfg.RebalanceCashFloor}
	executor := &rebalsvc.Executor{
		DB:       db,
		Prices:   prices,
		Venue:    venue,
		Holdings: holdingsService,
		Trades:   tradesService,
	}

	healthHandlers := &healthapi.Handlers{DB: db, Rdb: rdb, Start: time.Now()}
	app.Get("/health/json", healthHandlers.JSON)

	api := app.Group("/api/v1")

	indexHandlers := &indexapi.Handlers{Service: indexService}
	indices := api.Group("/indices")
	indices.Post("/", indexHandlers.Create)
	indices.Get("/", indexHandlers.List)
	indices.Get("/:id", indexHandlers.Get)
	indices.Put("/:id", indexHandlers.Update)
	indices.Delete("/:id", indexHandlers.Delete)

	holdingsHandlers := &holdingsapi.Handlers{Service: holdingsService}
	indices.Get("/:id/holdings", holdingsHandlers.ByIndex)

	tradesHandlers := &tradesapi.Handlers{Service: tradesService}
	indices.Get("/:id/trades", tradesHandlers.ByIndex)

	rebalanceHandlers := &rebalapi.Handlers{
		DB:       db,
		Indexes:  indexService,
		Holdings: holdingsService,
		Planner:  planner,
		Executor: executor,
	}
	indices.Post("/:id/rebalance", rebalanceHandlers.Rebalance)
	indices.Get("/:id/rebalancings", rebalanceHandlers.Plans)

	brokerHandlers := &brokerapi.Handlers{Venue: venue}
	brokerGroup := api.Group("/broker")
	brokerGroup.Post("/connect", brokerHandlers.Connect)
	brokerGroup.Get("/connect", brokerHandlers.Status)
	brokerGroup.Delete("/connect", brokerHandlers.Disconnect)
	brokerGroup.Get("/positions", brokerHandlers.Positions)
	brokerGroup.Get("/portfolio", brokerHandlers.Portfolio)

	marketHandlers := &marketapi.Handlers{Prices: prices}
	api.Get("/market/prices", marketHandlers.GetPrices)

	return app, db, rdb, nil
}
