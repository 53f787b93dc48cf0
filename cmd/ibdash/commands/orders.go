package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhenders/ibdash/internal/gateway"
	"github.com/mhenders/ibdash/pkg/config"
	"github.com/mhenders/ibdash/pkg/httputil"
	"github.com/mhenders/ibdash/pkg/logger"
)

// ordersCmd represents the orders command
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders from the gateway",
	Long: `Fetches the order collection from the gateway and prints it.

Example:
  go run ./cmd/ibdash orders
  go run ./cmd/ibdash orders --executed`,
	RunE: runOrders,
}

var ordersExecuted bool

func init() {
	rootCmd.AddCommand(ordersCmd)

	ordersCmd.Flags().BoolVar(&ordersExecuted, "executed", false, "list executed orders instead of pending")
}

func runOrders(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewNop()
	if verbose {
		log = logger.New(cfg)
	}

	httpClient := httputil.New(cfg.Gateway.Timeout, log).
		WithRateLimit(cfg.Gateway.RateLimit)
	gw := gateway.NewClient(cfg.Gateway, httpClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout)
	defer cancel()

	frags, err := gw.FetchOrders(ctx, ordersExecuted)
	if err != nil {
		return fmt.Errorf("fetch orders: %w", err)
	}

	if len(frags) == 0 {
		fmt.Println("No orders")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTICKER\tTYPE\tSTRIKE\tEXP\tQTY\tSTATUS\tFILL")
	for i := range frags {
		o := frags[i].ToOrder()
		fill := "-"
		if o.AvgFillPrice != nil {
			fill = fmt.Sprintf("%.2f", *o.AvgFillPrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%d\t%s\t%s\n",
			o.ID, o.Ticker, o.OptionType, o.Strike, o.Expiration,
			o.Quantity, o.Status, fill)
	}
	return w.Flush()
}
