package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/EventDesk/app/controllers"
	"github.com/ManuelReschke/EventDesk/internal/pkg/bootstrap"
	"github.com/ManuelReschke/EventDesk/internal/pkg/cache"
	"github.com/ManuelReschke/EventDesk/internal/pkg/database"
	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
	"github.com/ManuelReschke/EventDesk/internal/pkg/health"
	"github.com/ManuelReschke/EventDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/EventDesk/internal/pkg/middleware"
	"github.com/ManuelReschke/EventDesk/internal/pkg/ratelimit"
	"github.com/ManuelReschke/EventDesk/internal/pkg/router"
)

func main() {
	app, wired, checker := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("[Server] Shutting down")
		checker.StopMonitor()
		wired.Jobs.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[Server] Shutdown failed: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	wired.Close()
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, *bootstrap.App, *health.Checker) {
	env.SetupEnvFile()
	cache.SetupCache()
	metrics.Register()

	wired, err := bootstrap.Setup(context.Background())
	if err != nil {
		log.Fatalf("[Server] Failed to wire services: %v", err)
	}
	wired.Jobs.Start()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/eventdesk to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:     html.New(basePath+"views", ".html"),
		BodyLimit: 1 * 1024 * 1024,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics and prometheus exposition
	app.Get("/metrics", middleware.RequireMonitorAuth(), monitor.New())
	app.Get("/metrics/prometheus", middleware.RequireMonitorAuth(), adaptor.HTTPHandler(promhttp.Handler()))

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
		Title:    "EventDesk Payments API",
	}
	app.Use(swagger.New(openAPICfg))

	// HEALTH
	checker := health.NewChecker(database.GetDB(), cache.GetClient(), env.GetEnv("HEALTH_GATEWAY_URL", ""))
	checker.StartMonitor(env.GetEnvDuration("HEALTH_CHECK_INTERVAL", time.Minute))

	// ROUTER
	router.InstallRouter(app, &router.Handlers{
		Payment:          controllers.NewPaymentController(wired.Payments),
		Receipt:          controllers.NewReceiptController(wired.Receipts),
		Admin:            controllers.NewAdminPaymentController(wired.Repos, wired.Payments, wired.Jobs.GetQueue(), wired.Stats),
		Health:           checker,
		AdminCredentials: middleware.AdminCredentialsFromEnv(),
		RateLimit:        ratelimit.LoadConfig(),
		LimiterStorage:   ratelimit.NewRedisStorage(),
	})

	return app, wired, checker
}
