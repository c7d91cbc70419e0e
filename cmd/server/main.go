package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chapel-lang/github-email-notifications/internal/config"
	"github.com/chapel-lang/github-email-notifications/internal/crashreport"
	"github.com/chapel-lang/github-email-notifications/internal/handlers"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
	"github.com/chapel-lang/github-email-notifications/internal/mailer"
	"github.com/chapel-lang/github-email-notifications/internal/message"
	"github.com/chapel-lang/github-email-notifications/internal/middleware"
	"github.com/chapel-lang/github-email-notifications/internal/pullrequest"
	"github.com/chapel-lang/github-email-notifications/internal/server"
)

// Global variables for configuration and services
var (
	cfg      *config.Config
	log      *logger.Logger
	reporter *crashreport.Reporter
	errChan  = make(chan error, 1)
)

func main() {
	// Create a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a wait group for graceful shutdown
	var wg sync.WaitGroup

	// Initialize configuration and services
	if err := initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Initialization error: %v\n", err)
		os.Exit(1)
	}

	// Start the web server
	startWebServer(ctx, &wg)

	// Handle shutdown signals
	waitForShutdown(cancel, &wg)
}

func initialize() error {
	var err error

	// Load configuration
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Starting GitHub commit email notifier")

	// Crash reporting is configured up front rather than on first
	// request, so a broken token shows up at deploy time.
	reporter = crashreport.Init(cfg.Rollbar, log)

	return nil
}

func startWebServer(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting HTTP server...")

		resolver, err := pullrequest.New(cfg.GitHub, log)
		if err != nil {
			errChan <- fmt.Errorf("failed to create pull request resolver: %w", err)
			return
		}

		composer := message.NewComposer(cfg.Mail.Project)
		dispatcher := mailer.New(cfg.Mail, composer, log)

		// Initialize HTTP handlers
		httpHandler := handlers.New(cfg, log, resolver, dispatcher, composer)
		mw := middleware.New(log, reporter)

		// Initialize and start HTTP server
		httpServer := server.New(httpHandler, mw, log)
		if err := httpServer.Start(cfg); err != nil {
			errChan <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}

		// Keep the server running until shutdown
		<-ctx.Done()
		log.Info("HTTP server shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during HTTP server shutdown", err)
		}
	}()
}

func waitForShutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	// Wait for the server to fail or for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("Service failed", err)
	case <-sigChan:
		log.Info("Received shutdown signal")
	}

	// Cancel context to signal goroutines to shutdown
	cancel()

	// Wait for all goroutines to finish
	wg.Wait()

	// Flush pending crash reports before exit
	reporter.Close()

	log.Info("Application stopped")
}
