// Package jobs contains the scheduled maintenance jobs.
package jobs

import (
	"context"

	"github.com/mhenders/ibdash/pkg/logger"
)

// Refresher reloads the order view from the gateway.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshJob reloads the full order collection on a calendar schedule,
// picking up orders created outside the dashboard and letting backend-side
// retention drop stale ones.
type RefreshJob struct {
	engine   Refresher
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new order refresh job.
func NewRefreshJob(engine Refresher, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		engine:   engine,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh_orders"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled order refresh")
	return j.engine.Refresh(ctx)
}
