package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/passbi/transport_catalogue/internal/api"
	"github.com/passbi/transport_catalogue/internal/cache"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/config"
	"github.com/passbi/transport_catalogue/internal/db"
	"github.com/passbi/transport_catalogue/internal/input"
	"github.com/passbi/transport_catalogue/internal/middleware"
	"github.com/passbi/transport_catalogue/internal/routing"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	flag.Parse()

	log.Println("Starting transport catalogue API server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	checks := map[string]api.HealthCheck{}

	// Load the network
	var c *catalogue.Catalogue
	switch cfg.Server.Source {
	case config.SourcePostgres:
		pool, err := db.GetDB()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✓ Database connection established")

		c, err = db.LoadNetwork(context.Background(), pool)
		if err != nil {
			log.Fatalf("Failed to load network: %v", err)
		}
		checks["database"] = func(ctx context.Context) error { return db.HealthCheck(ctx, pool) }
	default:
		c, err = loadNetworkFile(cfg.Server.NetworkFile)
		if err != nil {
			log.Fatalf("Failed to load network: %v", err)
		}
	}
	log.Println("✓ Network loaded")

	// Build the routing graph
	router, err := routing.NewTransitRouter(cfg.RoutingSettings(), c)
	if err != nil {
		log.Fatalf("Failed to build routing graph: %v", err)
	}
	log.Println("✓ Routing graph loaded into memory")

	// Route cache and rate limiting share Redis
	var store *cache.Store
	var rdb middleware.Counter
	if cfg.Cache.Enabled {
		client, err := cache.GetClient()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
		log.Println("✓ Redis connection established")

		redisConfig := cache.LoadConfigFromEnv()
		redisConfig.TTL = cfg.Cache.TTL
		store = cache.NewStore(client, redisConfig)
		rdb = client
		checks["redis"] = store.HealthCheck
	}
	routes := cache.NewRoutes(cache.NewLocal(cfg.Cache.LocalSize, cfg.Cache.TTL), store)

	handler := api.NewHandler(c, router, routes)
	for name, check := range checks {
		handler.AddHealthCheck(name, check)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Transport Catalogue API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	if rdb != nil && cfg.RateLimit.PerSecond > 0 {
		app.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimit.PerSecond))
		log.Printf("✓ Rate limit: %d requests/second per client", cfg.RateLimit.PerSecond)
	}

	handler.Register(app)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Route: http://localhost%s/v2/route?from=STOP&to=STOP", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadNetworkFile reads the base requests of a JSON document into a catalogue
func loadNetworkFile(path string) (*catalogue.Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open network file: %w", err)
	}
	defer f.Close()

	doc, err := input.Parse(f)
	if err != nil {
		return nil, err
	}

	c := catalogue.New()
	if err := input.FillCatalogue(doc, c); err != nil {
		return nil, err
	}
	return c, nil
}

// customErrorHandler handles errors returned from handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
