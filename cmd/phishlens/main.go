package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/config"
	"github.com/keyurpatil06/phishlens/internal/core"
	"github.com/keyurpatil06/phishlens/internal/di"
	"github.com/keyurpatil06/phishlens/internal/ports"
	"github.com/keyurpatil06/phishlens/internal/queue"
	"github.com/keyurpatil06/phishlens/internal/server"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	httpServer *server.Server,
	smtpFilter ports.IngestFilter,
	deliveryQueue *queue.DeliveryQueue,
	verdictCache core.VerdictCache,
) error {
	defer logger.Sync()

	if err := httpServer.Start(); err != nil {
		logger.Fatal("Failed to start HTTP server", zap.Error(err))
		return err
	}

	if cfg.GetBool("smtp.enabled") {
		if err := smtpFilter.Start(); err != nil {
			logger.Fatal("Failed to start SMTP filter", zap.Error(err))
			return err
		}
	}

	if cfg.GetString("collector.url") != "" {
		deliveryQueue.Start()
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if cfg.GetBool("smtp.enabled") {
		if err := smtpFilter.Stop(); err != nil {
			logger.Error("Failed to stop SMTP filter", zap.Error(err))
		}
	}

	if cfg.GetString("collector.url") != "" {
		deliveryQueue.Stop()
	}

	// Stop the cache if needed
	if stopper, ok := verdictCache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
