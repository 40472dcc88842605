// Package gesture turns raw touch events into pan and pinch requests.
//
// The Interpreter never touches the image transform itself. It reads the
// current transform from its Sink to place the pinch pivot in image-local
// space, and forwards incremental pan vectors and scale ratios back to the
// Sink, which owns boundary handling.
package gesture

import (
	"errors"
	"fmt"

	"github.com/menta2k/easyclip/pkg/geom"
)

// DefaultMinSeparation is the smallest two-contact distance, in pixels, that
// starts a pinch.
const DefaultMinSeparation = 40.0

// ErrDegenerateGesture marks a second contact that landed too close to the
// first one. It is logged and the contact is ignored.
var ErrDegenerateGesture = errors.New("gesture: contacts too close to start scaling")

// Mode is the interpreter state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Scaling
	// Suppressed ignores the remaining contact after a pinch until every
	// contact has lifted.
	Suppressed
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Scaling:
		return "scaling"
	case Suppressed:
		return "suppressed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Action identifies what happened to the contacts in an Event.
type Action int

const (
	// Down is the first contact touching.
	Down Action = iota
	// PointerDown is an additional contact touching.
	PointerDown
	Move
	// PointerUp is one contact lifting while others remain.
	PointerUp
	// Up is the last contact lifting.
	Up
	Cancel
)

func (a Action) String() string {
	switch a {
	case Down:
		return "down"
	case PointerDown:
		return "pointer_down"
	case Move:
		return "move"
	case PointerUp:
		return "pointer_up"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction maps the names produced by Action.String back to actions.
func ParseAction(s string) (Action, error) {
	for a := Down; a <= Cancel; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown gesture action %q", s)
}

// Event is one touch event. Pointers holds the view-space position of every
// contact that is down while the event is dispatched, including a contact
// that is lifting; the first contact is at index 0.
type Event struct {
	Action   Action
	Pointers []geom.Point
}

// Sink receives the requests produced by the Interpreter.
type Sink interface {
	// BeginGesture is called on the first contact. Any running settle
	// animation must stop and the committed transform becomes the baseline.
	BeginGesture()
	// BeginScale re-snapshots the baseline before a pinch starts.
	BeginScale()
	// Transform returns the live transform.
	Transform() geom.Transform
	// ApplyPan moves the image by an incremental view-space delta.
	ApplyPan(delta geom.Point)
	// ApplyScale scales the pinch baseline by ratio around an image-local pivot.
	ApplyScale(ratio float64, pivot geom.Point)
	// EndGesture runs boundary correction once all contacts have lifted.
	EndGesture()
}
