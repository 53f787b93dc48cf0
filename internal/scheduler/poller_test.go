package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mhenders/ibdash/pkg/logger"
)

func TestPollerStartIsIdempotent(t *testing.T) {
	var calls int64
	p := NewPoller(20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&calls, 1)
	}, logger.NewNop())

	p.Start()
	p.Start()
	p.Start()

	time.Sleep(50 * time.Millisecond)
	p.Stop()

	got := atomic.LoadInt64(&calls)
	assert.GreaterOrEqual(t, got, int64(1))
	// A single timer cannot fire more often than the interval allows.
	assert.LessOrEqual(t, got, int64(3))
}

func TestPollerStopWhenIdle(t *testing.T) {
	p := NewPoller(time.Second, func(ctx context.Context) {}, logger.NewNop())

	assert.NotPanics(t, func() {
		p.Stop()
		p.Stop()
	})
	assert.False(t, p.Active())
}

func TestPollerActive(t *testing.T) {
	p := NewPoller(time.Hour, func(ctx context.Context) {}, logger.NewNop())

	assert.False(t, p.Active())
	p.Start()
	assert.True(t, p.Active())
	p.Stop()
	assert.False(t, p.Active())
}

func TestPollerStopFromWithinCallback(t *testing.T) {
	var p *Poller
	done := make(chan struct{})

	p = NewPoller(10*time.Millisecond, func(ctx context.Context) {
		p.Stop()
		select {
		case <-done:
		default:
			close(done)
		}
	}, logger.NewNop())

	p.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	time.Sleep(30 * time.Millisecond)
	assert.False(t, p.Active())
}

func TestPollerRestartAfterStop(t *testing.T) {
	var calls int64
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&calls, 1)
	}, logger.NewNop())

	p.Start()
	time.Sleep(25 * time.Millisecond)
	p.Stop()

	first := atomic.LoadInt64(&calls)
	assert.GreaterOrEqual(t, first, int64(1))

	p.Start()
	time.Sleep(25 * time.Millisecond)
	p.Stop()

	assert.Greater(t, atomic.LoadInt64(&calls), first)
}
