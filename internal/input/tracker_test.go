package input

import (
	"fmt"
	"reflect"
	"testing"
)

type recorder struct {
	calls []string
}

func (r *recorder) Begin(x, y float64)  { r.calls = append(r.calls, fmt.Sprintf("begin %g,%g", x, y)) }
func (r *recorder) Extend(x, y float64) { r.calls = append(r.calls, fmt.Sprintf("extend %g,%g", x, y)) }
func (r *recorder) End()                { r.calls = append(r.calls, "end") }

func feed(t *testing.T, tr *Tracker, events ...Event) {
	t.Helper()
	for i := range events {
		if err := tr.Handle(&events[i]); err != nil {
			t.Fatalf("Handle(%v) error = %v", events[i].Type, err)
		}
	}
}

func TestTracker_Mouse(t *testing.T) {
	r := &recorder{}
	feed(t, NewTracker(r),
		Event{Type: EventMouseDown, X: 10, Y: 10},
		Event{Type: EventMouseMove, X: 50, Y: 10},
		Event{Type: EventMouseUp, X: 50, Y: 10},
		Event{Type: EventMouseDown, X: 1, Y: 1, Button: MouseButtonRight},
		Event{Type: EventMouseLeave},
	)
	want := []string{"begin 10,10", "extend 50,10", "end", "end"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestTracker_FirstTouchOnly(t *testing.T) {
	r := &recorder{}
	feed(t, NewTracker(r),
		Event{Type: EventTouchStart, Touches: []Touch{{ID: 7, X: 5, Y: 5}}},
		Event{Type: EventTouchStart, Touches: []Touch{{ID: 7, X: 5, Y: 5}, {ID: 9, X: 90, Y: 90}}},
		Event{Type: EventTouchMove, Touches: []Touch{{ID: 9, X: 80, Y: 80}, {ID: 7, X: 6, Y: 7}}},
		Event{Type: EventTouchEnd, Touches: []Touch{{ID: 7, X: 6, Y: 7}}},
		Event{Type: EventTouchMove, Touches: []Touch{{ID: 7, X: 8, Y: 8}}},
		Event{Type: EventTouchEnd},
		Event{Type: EventTouchMove, Touches: []Touch{{ID: 7, X: 9, Y: 9}}},
	)
	want := []string{"begin 5,5", "extend 6,7", "extend 8,8", "end"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestTracker_TouchCancelEnds(t *testing.T) {
	r := &recorder{}
	feed(t, NewTracker(r),
		Event{Type: EventTouchStart, Touches: []Touch{{ID: 1, X: 2, Y: 3}}},
		Event{Type: EventTouchCancel},
		Event{Type: EventTouchStart, Touches: []Touch{{ID: 2, X: 4, Y: 4}}},
	)
	want := []string{"begin 2,3", "end", "begin 4,4"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"touch_move","touches":[{"id":3,"x":1.5,"y":2}]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ev.Type != EventTouchMove || len(ev.Touches) != 1 || ev.Touches[0].X != 1.5 {
		t.Errorf("Decode() = %+v", ev)
	}
	if _, err := Decode([]byte(`{"x":1}`)); err == nil {
		t.Error("Decode() without type should fail")
	}
}
