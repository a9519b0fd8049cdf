package display

import (
	"math"

	"github.com/junsooki/kyccapture/internal/input"
)

// pointerSnapshot is the raw input state sampled once per tick, in logical
// viewport coordinates.
type pointerSnapshot struct {
	X, Y     float64
	Inside   bool
	Pressed  bool
	Released bool

	Touches      []input.Touch
	TouchStarted bool
	TouchEnded   bool
}

// pointerState turns successive snapshots into input events.
type pointerState struct {
	x, y    float64
	inside  bool
	touches []input.Touch
}

func (p *pointerState) events(s pointerSnapshot) []input.Event {
	var out []input.Event

	if s.TouchStarted {
		out = append(out, input.Event{Type: input.EventTouchStart, Touches: s.Touches})
	} else if len(s.Touches) > 0 && touchesMoved(p.touches, s.Touches) {
		out = append(out, input.Event{Type: input.EventTouchMove, Touches: s.Touches})
	}
	if s.TouchEnded {
		out = append(out, input.Event{Type: input.EventTouchEnd, Touches: s.Touches})
	}
	p.touches = append(p.touches[:0], s.Touches...)
	if len(s.Touches) > 0 || s.TouchStarted || s.TouchEnded {
		return out
	}

	switch {
	case s.Inside:
		if s.X != p.x || s.Y != p.y || !p.inside {
			out = append(out, input.Event{Type: input.EventMouseMove, X: s.X, Y: s.Y})
		}
		if s.Pressed {
			out = append(out, input.Event{Type: input.EventMouseDown, X: s.X, Y: s.Y, Button: input.MouseButtonLeft})
		}
		if s.Released {
			out = append(out, input.Event{Type: input.EventMouseUp, X: s.X, Y: s.Y, Button: input.MouseButtonLeft})
		}
	case p.inside:
		out = append(out, input.Event{Type: input.EventMouseLeave, X: s.X, Y: s.Y})
	}
	p.x, p.y, p.inside = s.X, s.Y, s.Inside
	return out
}

func touchesMoved(prev, cur []input.Touch) bool {
	if len(prev) != len(cur) {
		return true
	}
	for i := range cur {
		if prev[i] != cur[i] {
			return true
		}
	}
	return false
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
