package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/melih/beacon-paas/internal/adapters/builder"
	"github.com/melih/beacon-paas/internal/adapters/docker"
	httpadapter "github.com/melih/beacon-paas/internal/adapters/http"
	"github.com/melih/beacon-paas/internal/config"
)

func main() {
	// 1. Load configuration, fail fast on anything invalid
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Adapters (Infrastructure)
	dockerAdapter, err := docker.NewAdapter(cfg.StopGrace)
	if err != nil {
		log.Fatalf("Failed to initialize Docker adapter: %v", err)
	}
	builderAdapter, err := builder.NewBuilderAdapter()
	if err != nil {
		log.Fatalf("Failed to initialize builder adapter: %v", err)
	}

	// 3. Initialize HTTP Handlers (Interface Adapters)
	containerHandler := httpadapter.NewContainerHandler(dockerAdapter, builderAdapter)
	proxyHandler := httpadapter.NewProxyHandler(dockerAdapter)

	// 4. Setup Framework (Fiber)
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	// Subdomain proxy runs before the API routes so app traffic never hits them
	app.Use(proxyHandler.ProxyRequest)

	// 5. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	builds := v1.Group("/builds")
	builds.Post("/", containerHandler.BuildImage)

	containers := v1.Group("/containers")
	containers.Get("/", containerHandler.ListContainers)
	containers.Post("/", containerHandler.StartContainer)
	containers.Delete("/:id", containerHandler.StopContainer)
	containers.Get("/:id/logs", containerHandler.GetContainerLogs)
	containers.Get("/:id/wait", containerHandler.WaitContainer)

	// 6. Start Server
	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 7. Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
}
