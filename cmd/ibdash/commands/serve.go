package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhenders/ibdash/internal/api"
	"github.com/mhenders/ibdash/internal/api/handlers"
	"github.com/mhenders/ibdash/internal/api/ws"
	"github.com/mhenders/ibdash/internal/gateway"
	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/internal/reconcile"
	"github.com/mhenders/ibdash/internal/scheduler"
	"github.com/mhenders/ibdash/internal/scheduler/jobs"
	"github.com/mhenders/ibdash/pkg/config"
	"github.com/mhenders/ibdash/pkg/httputil"
	"github.com/mhenders/ibdash/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Starts the dashboard backend.

This command:
- Serves the REST API the browser calls
- Runs the order status poller while orders are in flight
- Runs the scheduled order refresh and log cleanup jobs
- Pushes change notifications over the websocket feed

Endpoints:
  GET   /health                       - Health check
  GET   /api/orders                   - Working order set
  GET   /api/orders/filled            - Filled order collection
  POST  /api/orders/refresh           - Reload from gateway
  POST  /api/orders/{id}/execute      - Submit order for execution
  POST  /api/orders/{id}/cancel       - Request cancellation
  PATCH /api/orders/{id}/quantity     - Edit pending quantity
  GET   /api/earnings/weekly          - Weekly realized premium
  GET   /api/portfolio                - Portfolio snapshot
  GET   /ws                           - Change notification feed

Example:
  go run ./cmd/ibdash serve
  go run ./cmd/ibdash serve --port 8089`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"gateway": cfg.Gateway.BaseURL,
	}).Info("Initializing dashboard server")

	// 3. Create HTTP client for the gateway
	httpClient := httputil.New(cfg.Gateway.Timeout, log).
		WithRateLimit(cfg.Gateway.RateLimit)

	// 4. Create gateway client, store and engine
	gw := gateway.NewClient(cfg.Gateway, httpClient, log)
	store := orders.NewStore(log)
	engine := reconcile.NewEngine(gw, store, cfg.Poll.Interval, log)

	// 5. Wire the websocket feed to engine change events
	hub := ws.NewHub(log)
	engine.OnChange(hub.NotifyOrdersChanged)

	// 6. Initial load. A gateway outage at startup is not fatal; the
	// refresh job and manual refresh can recover later.
	startupCtx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout)
	if err := engine.Refresh(startupCtx); err != nil {
		log.WithError(err).Warn("Initial order load failed; starting with empty collections")
	}
	cancel()

	// 7. Scheduled jobs
	cronRunner := scheduler.NewCron(log)
	if err := cronRunner.AddJob(jobs.NewRefreshJob(engine, cfg.Poll.RefreshSchedule, log)); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}
	if err := cronRunner.AddJob(jobs.NewCleanupJob(cfg.LogDir, cfg.Poll.LogMaxAge, cfg.Poll.CleanupSchedule, log)); err != nil {
		return fmt.Errorf("add cleanup job: %w", err)
	}
	cronRunner.Start()

	// 8. HTTP surface
	router := api.NewRouter(
		handlers.NewOrdersHandler(engine, store, log),
		handlers.NewEarningsHandler(store, log),
		handlers.NewPortfolioHandler(gw, log),
		hub,
		log,
	)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("Dashboard server started")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	engine.Stop()
	cronRunner.Stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
