package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhenders/ibdash/pkg/logger"
)

// CleanupJob removes log files older than the retention window.
type CleanupJob struct {
	dir      string
	maxAge   time.Duration
	schedule string
	logger   *logger.Logger
}

// NewCleanupJob creates a new log cleanup job.
func NewCleanupJob(dir string, maxAge time.Duration, schedule string, log *logger.Logger) *CleanupJob {
	return &CleanupJob{
		dir:      dir,
		maxAge:   maxAge,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *CleanupJob) Name() string {
	return "cleanup_logs"
}

// Schedule returns the cron schedule
func (j *CleanupJob) Schedule() string {
	return j.schedule
}

// Run removes expired log files
func (j *CleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to clean
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			path := filepath.Join(j.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				j.logger.WithError(err).WithField("file", path).Warn("Failed to remove log file")
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"max_age": j.maxAge,
		}).Info("Log cleanup completed")
	}

	return nil
}
