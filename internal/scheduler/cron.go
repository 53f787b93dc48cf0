package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mhenders/ibdash/pkg/logger"
)

// Cron manages the recurring maintenance jobs (full order refresh, log
// cleanup). It is separate from the Poller: these run on fixed calendar
// schedules regardless of whether any order is in flight.
type Cron struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*JobHistory
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
}

// NewCron creates a new cron job runner.
func NewCron(log *logger.Logger) *Cron {
	return &Cron{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log,
		jobs:       make(map[string]Job),
		history:    make(map[string]*JobHistory),
		maxRetries: 3,
		retryDelay: 1 * time.Minute,
	}
}

// AddJob registers a job with the runner.
func (c *Cron) AddJob(job Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobName := job.Name()

	if _, exists := c.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	_, err := c.cron.AddFunc(job.Schedule(), func() {
		c.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	c.jobs[jobName] = job
	c.history[jobName] = &JobHistory{}

	c.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// Start starts the cron runner.
func (c *Cron) Start() {
	c.logger.Info("Starting cron scheduler")
	c.cron.Start()
}

// Stop stops the cron runner and waits for running jobs.
func (c *Cron) Stop() {
	c.logger.Info("Stopping cron scheduler")
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.logger.Info("Cron scheduler stopped")
}

// RunJob runs a specific job immediately, outside of its schedule.
func (c *Cron) RunJob(jobName string) error {
	c.mu.RLock()
	job, exists := c.jobs[jobName]
	c.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	go c.runJob(job)
	return nil
}

// runJob executes a job with retry logic
func (c *Cron) runJob(job Job) {
	jobName := job.Name()
	startTime := time.Now()

	c.logger.WithField("job", jobName).Info("Job started")

	var lastErr error
	var success bool

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := job.Run(context.Background())
		if err == nil {
			success = true
			break
		}

		lastErr = err
		c.logger.WithFields(map[string]interface{}{
			"job":     jobName,
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("Job execution failed, retrying")

		if attempt < c.maxRetries {
			time.Sleep(c.retryDelay)
		}
	}

	endTime := time.Now()
	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  endTime.Sub(startTime),
		Success:   success,
	}

	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	c.mu.Lock()
	if history, exists := c.history[jobName]; exists {
		history.AddResult(result)
	}
	c.mu.Unlock()

	if success {
		c.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": result.Duration,
		}).Info("Job completed successfully")
	} else {
		c.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": result.Duration,
			"error":    lastErr.Error(),
		}).Error("Job failed after all retries")
	}
}

// GetJobHistory returns the history for a specific job
func (c *Cron) GetJobHistory(jobName string) (*JobHistory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history, exists := c.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return history, nil
}
