package input

// StrokeHandler receives unified pointer gestures in viewport coordinates.
type StrokeHandler interface {
	Begin(x, y float64)
	Extend(x, y float64)
	End()
}

// Handler consumes wire events.
type Handler interface {
	Handle(ev *Event) error
}

// Tracker maps mouse and touch events onto a StrokeHandler. Only the
// primary mouse button draws, and only the first active touch is followed;
// any further simultaneous contact is ignored until that touch lifts.
type Tracker struct {
	h        StrokeHandler
	touching bool
	touchID  int
}

var _ Handler = (*Tracker)(nil)

// NewTracker wraps h.
func NewTracker(h StrokeHandler) *Tracker {
	return &Tracker{h: h}
}

func (t *Tracker) Handle(ev *Event) error {
	if ev == nil {
		return nil
	}
	switch ev.Type {
	case EventMouseDown:
		if ev.Button == MouseButtonLeft {
			t.h.Begin(ev.X, ev.Y)
		}
	case EventMouseMove:
		t.h.Extend(ev.X, ev.Y)
	case EventMouseUp, EventMouseLeave:
		t.h.End()
	case EventTouchStart:
		if t.touching || len(ev.Touches) == 0 {
			return nil
		}
		first := ev.Touches[0]
		t.touching, t.touchID = true, first.ID
		t.h.Begin(first.X, first.Y)
	case EventTouchMove:
		if tc, ok := t.tracked(ev.Touches); ok {
			t.h.Extend(tc.X, tc.Y)
		}
	case EventTouchEnd, EventTouchCancel:
		if !t.touching {
			return nil
		}
		if _, still := t.tracked(ev.Touches); still {
			return nil
		}
		t.touching = false
		t.h.End()
	}
	return nil
}

func (t *Tracker) tracked(touches []Touch) (Touch, bool) {
	if !t.touching {
		return Touch{}, false
	}
	for _, tc := range touches {
		if tc.ID == t.touchID {
			return tc, true
		}
	}
	return Touch{}, false
}
