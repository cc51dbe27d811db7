package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/mkoehler/allergy-diary/internal/api/http"
	"github.com/mkoehler/allergy-diary/internal/config"
	"github.com/mkoehler/allergy-diary/internal/diary"
	"github.com/mkoehler/allergy-diary/internal/observations"
	"github.com/mkoehler/allergy-diary/internal/pollen"
	"github.com/mkoehler/allergy-diary/internal/pollen/providers"
	"github.com/mkoehler/allergy-diary/internal/scheduler"
	"github.com/mkoehler/allergy-diary/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Station resolver for daily weather aggregates.
	resolver := weather.NewMeteostatClient(httpClient, cfg.MeteostatBaseURL, cfg.MeteostatAPIKey)

	// The two pollen sources the user can choose between.
	pollenProviders := map[string]pollen.Provider{
		config.SourcePollenstiftung: providers.NewPollenstiftungProvider(httpClient, cfg.PollenstiftungBaseURL),
		config.SourceDWD:            providers.NewDWDOpenDataProvider(httpClient, cfg.DWDPollenBaseURL, cfg.DWDPollenStationID),
	}

	// Observation cache with configured retention.
	cache := observations.NewCache(cfg.CacheMaxEntries, cfg.CacheMaxAge)

	// Core services: observation assembly and diary persistence.
	obsService := observations.NewService(resolver, pollenProviders, cache)
	diaryService := diary.NewService(diary.NewCSVStore(cfg.StorePath))

	// Scheduler that keeps the home location's observation warm.
	sched := scheduler.New(cfg.Home, cfg.DefaultSource, cfg.PrefetchInterval, obsService)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "allergy-diary",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "ok",
			"service":       "allergy-diary",
			"pollenSources": obsService.Sources(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, obsService, diaryService, httpapi.Defaults{
		Home:   cfg.Home,
		Source: cfg.DefaultSource,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
