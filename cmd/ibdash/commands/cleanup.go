package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhenders/ibdash/internal/scheduler/jobs"
	"github.com/mhenders/ibdash/pkg/config"
	"github.com/mhenders/ibdash/pkg/logger"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired log files",
	Long: `Runs the log cleanup job once, outside its schedule.

Example:
  go run ./cmd/ibdash cleanup`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	job := jobs.NewCleanupJob(cfg.LogDir, cfg.Poll.LogMaxAge, cfg.Poll.CleanupSchedule, log)
	if err := job.Run(context.Background()); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	fmt.Println("Log cleanup completed")
	return nil
}
