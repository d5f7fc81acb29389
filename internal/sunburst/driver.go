package sunburst

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultFrameInterval paces the driver at roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// Driver advances a controller's transitions once per frame tick.
type Driver struct {
	controller *Controller
	clock      clockwork.Clock
	interval   time.Duration
}

// NewDriver creates a frame driver on the given clock.
func NewDriver(c *Controller, clock clockwork.Clock, interval time.Duration) *Driver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Driver{controller: c, clock: clock, interval: interval}
}

// Run ticks until the controller is idle or ctx ends, calling onFrame after
// every advance. A controller that is already idle returns immediately.
func (d *Driver) Run(ctx context.Context, onFrame func()) error {
	if d.controller.Idle() {
		return nil
	}
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			idle := d.controller.Advance()
			if onFrame != nil {
				onFrame()
			}
			if idle {
				return nil
			}
		}
	}
}
