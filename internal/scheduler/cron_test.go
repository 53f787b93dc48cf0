package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhenders/ibdash/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	err      error
	runs     int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestCronAddJob(t *testing.T) {
	c := NewCron(logger.NewNop())

	job := &stubJob{name: "refresh_orders", schedule: "0 30 6 * * *"}
	require.NoError(t, c.AddJob(job))

	err := c.AddJob(&stubJob{name: "refresh_orders", schedule: "0 0 0 * * *"})
	assert.Error(t, err, "duplicate job names are rejected")

	err = c.AddJob(&stubJob{name: "broken", schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestCronRunJobNotFound(t *testing.T) {
	c := NewCron(logger.NewNop())

	assert.Error(t, c.RunJob("missing"))
}

func TestCronRunJobRecordsHistory(t *testing.T) {
	c := NewCron(logger.NewNop())
	c.maxRetries = 0

	job := &stubJob{name: "cleanup_logs", schedule: "0 0 0 * * 0"}
	require.NoError(t, c.AddJob(job))

	c.runJob(job)

	history, err := c.GetJobHistory("cleanup_logs")
	require.NoError(t, err)

	last, ok := history.Last()
	require.True(t, ok)
	assert.True(t, last.Success)
	assert.Equal(t, 1, job.runs)
}

func TestCronRunJobFailureAfterRetries(t *testing.T) {
	c := NewCron(logger.NewNop())
	c.maxRetries = 2
	c.retryDelay = 0

	job := &stubJob{name: "refresh_orders", schedule: "0 30 6 * * *", err: errors.New("gateway down")}
	require.NoError(t, c.AddJob(job))

	c.runJob(job)

	history, err := c.GetJobHistory("refresh_orders")
	require.NoError(t, err)

	last, ok := history.Last()
	require.True(t, ok)
	assert.False(t, last.Success)
	assert.Contains(t, last.Error, "gateway down")
	assert.Equal(t, 3, job.runs, "initial attempt plus two retries")
}

func TestJobHistoryCapsResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 60; i++ {
		h.AddResult(JobResult{JobName: "refresh_orders", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 50)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.05)
}
