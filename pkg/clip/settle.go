package clip

import (
	"context"
	"time"

	"github.com/menta2k/easyclip/pkg/geom"
)

// Settle is a linear translation from From to From+Delta over Duration.
type Settle struct {
	From     geom.Transform
	Delta    geom.Point
	Start    time.Time
	Duration time.Duration
}

// Progress returns the fraction of the animation elapsed at now, in [0, 1].
func (s Settle) Progress(now time.Time) float64 {
	if s.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(s.Start)) / float64(s.Duration)
	return clamp(p, 0, 1)
}

// At returns the transform at progress p.
func (s Settle) At(p float64) geom.Transform {
	return s.From.Translate(s.Delta.Mul(clamp(p, 0, 1)))
}

// End returns the instant the animation completes.
func (s Settle) End() time.Time {
	return s.Start.Add(s.Duration)
}

// Tick advances a running settle animation to now. It returns the live
// transform and whether the animation is still running afterwards.
func (c *Controller) Tick(now time.Time) (geom.Transform, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settle == nil {
		return c.live, false
	}
	p := c.settle.Progress(now)
	target := c.settle.At(p)
	// Move relative to the live value so it stays the single source of truth.
	c.live = c.live.Translate(target.Translation().Sub(c.live.Translation()))
	if p >= 1 {
		c.committed = c.live
		c.settle = nil
		return c.live, false
	}
	return c.live, true
}

// Settling reports whether a correction animation is running.
func (c *Controller) Settling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settle != nil
}

// FinishSettle jumps a running animation to its end state.
func (c *Controller) FinishSettle() geom.Transform {
	c.mu.Lock()
	s := c.settle
	c.mu.Unlock()
	if s == nil {
		return c.Transform()
	}
	t, _ := c.Tick(s.End())
	return t
}

// Animate drives settle animations from a ticker until ctx is cancelled.
// onFrame, if set, receives the live transform after every tick that moved it.
func (c *Controller) Animate(ctx context.Context, interval time.Duration, onFrame func(geom.Transform)) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !c.Settling() {
				continue
			}
			t, _ := c.Tick(c.now())
			if onFrame != nil {
				onFrame(t)
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
