package easyclip

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/menta2k/easyclip/pkg/geom"
	"github.com/menta2k/easyclip/pkg/gesture"
	"github.com/menta2k/easyclip/pkg/types"
)

// VirtualClock is a manually advanced clock for driving settle animations
// deterministically, e.g. while replaying a recorded script.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock creates a clock reading start
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Now returns the clock's current reading
func (v *VirtualClock) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Advance moves the clock forward by d and returns the new reading
func (v *VirtualClock) Advance(d time.Duration) time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
	return v.now
}

// EventFromStep converts a recorded step into a touch event
func EventFromStep(step types.GestureStep) (gesture.Event, error) {
	action, err := gesture.ParseAction(step.Action)
	if err != nil {
		return gesture.Event{}, err
	}
	pointers := make([]geom.Point, len(step.Pointers))
	for i, p := range step.Pointers {
		pointers[i] = geom.Pt(p[0], p[1])
	}
	return gesture.Event{Action: action, Pointers: pointers}, nil
}

// Replay feeds a recorded script through the clipper. Each step's wait
// advances clock and ticks the settle animation to the new reading; the
// clipper must have been created with clip.WithClock(clock.Now) for the
// animation to follow it. Any animation still running at the end is
// finished.
func (c *Clipper) Replay(ctx context.Context, script types.GestureScript, clock *VirtualClock) error {
	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if step.WaitMS > 0 {
			c.Tick(clock.Advance(time.Duration(step.WaitMS) * time.Millisecond))
		}
		if step.Action == "" {
			continue
		}
		ev, err := EventFromStep(step)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		c.HandleEvent(ev)
	}
	c.FinishSettle()
	return nil
}
