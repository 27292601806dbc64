package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agv-simulator/config"
	"agv-simulator/fleet"
	"agv-simulator/handlers"
	"agv-simulator/logging"
	"agv-simulator/redis"
	"agv-simulator/robot"
	"agv-simulator/transport"

	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger := logging.NewLogger(cfg.LogLevel)

	// The snapshot cache is best effort: without Redis the simulator still
	// runs, the API just serves live snapshots only.
	cache, err := redis.NewClient(cfg)
	if err != nil {
		logger.Warn("state snapshot cache unavailable, continuing without it", slog.Any("error", err))
	} else {
		defer cache.Close()
	}

	var snapshots robot.StateCache
	if cache != nil {
		snapshots = cache
	}

	factory := func(robotID string) transport.Transport {
		return transport.NewMQTTTransport(cfg.MQTTBrokerHost, cfg.MQTTBrokerPort, robotID, logger)
	}

	supervisor := fleet.NewSupervisor(cfg, factory, snapshots, logger)
	if err := supervisor.Start(); err != nil {
		logger.Error("failed to start fleet", slog.Any("error", err))
		os.Exit(1)
	}

	// HTTP control API
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	handlers.RegisterRoutes(e, handlers.NewAPIHandler(supervisor, cache))

	go func() {
		logger.Info("starting HTTP control API", "port", cfg.APIPort)
		if err := e.Start(":" + cfg.APIPort); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	supervisor.Stop()
	logger.Info("simulator stopped")
}
