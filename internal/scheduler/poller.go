// Package scheduler owns recurring background work: the adaptive order
// status poller and the cron-driven maintenance jobs.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mhenders/ibdash/pkg/logger"
)

// Poller drives a function at a fixed interval while orders are in flight.
// There is at most one timer: Start while running is a no-op and Stop is
// safe to call when idle. The reconciliation engine is the only caller;
// it starts the poller after execute/cancel actions and stops it once no
// order remains transient.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPoller creates a poller invoking fn every interval.
func NewPoller(interval time.Duration, fn func(context.Context), log *logger.Logger) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
		logger:   log,
	}
}

// Start launches the poll loop. Idempotent: a second call while a timer is
// active does nothing, so duplicate timers cannot exist.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.logger.Debug("Poller already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	go p.loop(ctx)

	p.logger.WithField("interval", p.interval).Info("Status poller started")
}

// Stop cancels the poll loop and clears the timer handle. Safe to call
// when no timer is active, and from within the polled function itself:
// it signals the loop rather than waiting for it.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}

	p.cancel()
	p.cancel = nil

	p.logger.Info("Status poller stopped")
}

// Active reports whether a timer is currently running.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fn(ctx)

			// The function may have stopped the poller; bail out before
			// the next tick instead of firing once more.
			if ctx.Err() != nil {
				return
			}
		}
	}
}
