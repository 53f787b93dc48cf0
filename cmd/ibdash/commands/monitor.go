package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhenders/ibdash/internal/gateway"
	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/internal/reconcile"
	"github.com/mhenders/ibdash/pkg/config"
	"github.com/mhenders/ibdash/pkg/httputil"
	"github.com/mhenders/ibdash/pkg/logger"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll order status until nothing is in flight",
	Long: `Loads the order collection and polls the gateway at the configured
interval until no order remains in a transient state.

Example:
  go run ./cmd/ibdash monitor`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	httpClient := httputil.New(cfg.Gateway.Timeout, log).
		WithRateLimit(cfg.Gateway.RateLimit)
	gw := gateway.NewClient(cfg.Gateway, httpClient, log)
	store := orders.NewStore(log)
	engine := reconcile.NewEngine(gw, store, cfg.Poll.Interval, log)
	defer engine.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Refresh(ctx); err != nil {
		return fmt.Errorf("initial order load: %w", err)
	}

	if !store.HasTransient() {
		fmt.Println("No orders in flight")
		return nil
	}

	fmt.Printf("Polling every %s until no order remains in flight (Ctrl+C to stop)\n",
		cfg.Poll.Interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Poll.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			fmt.Println("Interrupted")
			return nil
		case <-ticker.C:
			engine.PollStatus(ctx)
			if !store.HasTransient() {
				fmt.Println("All orders settled")
				return nil
			}
		}
	}
}
