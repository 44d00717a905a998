package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketplace/core/config"
	"marketplace/core/loader"
	"marketplace/core/logger"
	"marketplace/core/middleware/auth"
	"marketplace/core/middleware/rayid"

	"marketplace/feature/catalog"
	"marketplace/feature/integrity"
	"marketplace/feature/market"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "marketplace/docs/swagger"
)

// @title Marketplace API
// @version 1.0
// @description Listing lifecycle and order matching for the trading marketplace.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the marketplace server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if !cfg.Server.IsValidEnvironment() {
			logg.Warn("Unknown environment", zap.String("environment", cfg.Server.Environment))
		}
		logg = logg.With(zap.String("environment", cfg.Server.Environment))

		// 3. Connect backends and build services
		svcs, err := buildServices(context.Background(), cfg, logg)
		if err != nil {
			logg.Fatal("Failed to initialize services", zap.Error(err))
		}
		defer svcs.Close()

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Server.ReadTimeout(),
			BodyLimit:             cfg.Server.BodyLimitBytes,
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(catalog.NewFeature(svcs.catalog, logg))
		mgr.Register(market.NewFeature(svcs.market))
		mgr.Register(integrity.NewFeature(newIntegrityService(cfg, svcs.objects, svcs.db, logg)))

		// Middleware Registration
		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		skip := []string{"/swagger"}
		if svcs.metrics != nil {
			app.Use(svcs.metrics.Middleware())
			app.Get(cfg.Metrics.Path, svcs.metrics.Handler())
			skip = append(skip, cfg.Metrics.Path)
		}

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: skip}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
