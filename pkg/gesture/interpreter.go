package gesture

import (
	"log/slog"

	"github.com/menta2k/easyclip/internal/logging"
	"github.com/menta2k/easyclip/pkg/geom"
)

// unset marks snapshot fields that carry no value between gestures.
var unset = geom.Pt(-1, -1)

// Interpreter is the touch state machine. It is not safe for concurrent use;
// events are expected to arrive from a single UI loop.
type Interpreter struct {
	sink          Sink
	minSeparation float64

	mode Mode

	// anchor is the last seen position of the first contact.
	anchor geom.Point
	// second is the position of the second contact when the pinch started.
	second geom.Point
	// refDistance is the contact separation when the pinch started.
	refDistance float64
	// mid is the pinch midpoint in view space, localMid the same point in
	// unscaled image-local space.
	mid      geom.Point
	localMid geom.Point
}

// NewInterpreter creates an interpreter that forwards requests to sink.
// A non-positive minSeparation selects DefaultMinSeparation.
func NewInterpreter(sink Sink, minSeparation float64) *Interpreter {
	if minSeparation <= 0 {
		minSeparation = DefaultMinSeparation
	}
	in := &Interpreter{sink: sink, minSeparation: minSeparation}
	in.reset()
	return in
}

// Mode returns the current state.
func (in *Interpreter) Mode() Mode {
	return in.mode
}

// Pivot returns the image-local pinch pivot and whether a pinch is active.
func (in *Interpreter) Pivot() (geom.Point, bool) {
	if in.mode != Scaling {
		return geom.Point{}, false
	}
	return in.localMid, true
}

// Handle consumes one event.
func (in *Interpreter) Handle(ev Event) {
	switch ev.Action {
	case Down:
		in.onDown(ev)
	case PointerDown:
		in.onPointerDown(ev)
	case Move:
		in.onMove(ev)
	case PointerUp:
		if in.mode != Idle {
			in.mode = Suppressed
		}
	case Up, Cancel:
		in.onUp()
	}
}

func (in *Interpreter) onDown(ev Event) {
	if len(ev.Pointers) == 0 {
		return
	}
	in.sink.BeginGesture()
	in.anchor = ev.Pointers[0]
	in.mode = Dragging
}

func (in *Interpreter) onPointerDown(ev Event) {
	// Three or more contacts are acknowledged and ignored.
	if len(ev.Pointers) != 2 || in.mode != Dragging {
		return
	}
	first, second := ev.Pointers[0], ev.Pointers[1]
	dist := geom.Distance(first, second)
	if dist < in.minSeparation {
		logging.Logger().Debug("ignoring second contact",
			slog.Float64("separation", dist),
			slog.Float64("min", in.minSeparation),
			slog.Any("err", ErrDegenerateGesture))
		in.second = unset
		in.refDistance = -1
		return
	}

	in.sink.BeginScale()
	in.anchor = first
	in.second = second
	in.refDistance = dist
	in.mid = geom.Midpoint(first, second)
	in.localMid = in.sink.Transform().Invert(in.mid)
	in.mode = Scaling
}

func (in *Interpreter) onMove(ev Event) {
	switch in.mode {
	case Dragging:
		if len(ev.Pointers) == 0 {
			return
		}
		cur := ev.Pointers[0]
		delta := cur.Sub(in.anchor)
		in.anchor = cur
		if !delta.IsZero() {
			in.sink.ApplyPan(delta)
		}
	case Scaling:
		if len(ev.Pointers) < 2 {
			return
		}
		dist := geom.Distance(ev.Pointers[0], ev.Pointers[1])
		in.sink.ApplyScale(dist/in.refDistance, in.localMid)
	case Idle, Suppressed:
	}
}

func (in *Interpreter) onUp() {
	if in.mode != Idle {
		in.sink.EndGesture()
	}
	in.reset()
}

func (in *Interpreter) reset() {
	in.mode = Idle
	in.anchor = unset
	in.second = unset
	in.mid = unset
	in.localMid = unset
	in.refDistance = -1
}
