package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vibush01/BeFit/internal/analytics"
	"github.com/Vibush01/BeFit/internal/config"
	"github.com/Vibush01/BeFit/internal/database"
	"github.com/Vibush01/BeFit/internal/routes"
	chatws "github.com/Vibush01/BeFit/internal/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	pool, err := database.Connect(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// 3. Background workers
	hub := chatws.NewHub()
	go hub.Run(ctx)

	var dispatcher *analytics.Dispatcher
	if cfg.AnalyticsEnabled() {
		producer := analytics.NewKafkaProducer(cfg.KafkaBrokers)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Printf("Failed to close kafka producer: %v", err)
			}
		}()
		dispatcher = analytics.NewDispatcher(pool, producer, cfg.AnalyticsTopic, cfg.AnalyticsPollInterval, cfg.AnalyticsBatchSize)
		go dispatcher.Start(ctx)
		log.Printf("Analytics dispatcher publishing to %s", cfg.AnalyticsTopic)
	} else {
		log.Println("KAFKA_BROKERS not set, analytics entries stay in the database only")
	}

	// 4. Setup Fiber
	app := fiber.New()

	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if cfg.EnableMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	routes.RegisterRoutes(ctx, app, cfg, pool, hub)

	// 5. Start Server
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
	log.Println("Server stopped")
}
