package display

import (
	"testing"

	"github.com/junsooki/kyccapture/internal/input"
)

func TestAspectFitTransform(t *testing.T) {
	tests := []struct {
		name                         string
		viewW, viewH, frameW, frameH float64
		scale, offX, offY            float64
	}{
		{"same size", 1280, 720, 1280, 720, 1, 0, 0},
		{"pillarbox", 1000, 500, 500, 500, 1, 250, 0},
		{"letterbox", 800, 800, 1600, 900, 0.5, 0, 175},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, x, y := aspectFitTransform(tt.viewW, tt.viewH, tt.frameW, tt.frameH)
			if scale != tt.scale || x != tt.offX || y != tt.offY {
				t.Errorf("got (%g, %g, %g), want (%g, %g, %g)", scale, x, y, tt.scale, tt.offX, tt.offY)
			}
		})
	}
}

func types(evs []input.Event) []input.EventType {
	out := make([]input.EventType, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []input.EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPointerState_Mouse(t *testing.T) {
	var p pointerState
	steps := []struct {
		snap pointerSnapshot
		want []input.EventType
	}{
		{pointerSnapshot{X: 10, Y: 10, Inside: true}, []input.EventType{input.EventMouseMove}},
		{pointerSnapshot{X: 10, Y: 10, Inside: true, Pressed: true}, []input.EventType{input.EventMouseDown}},
		{pointerSnapshot{X: 10, Y: 10, Inside: true}, nil},
		{pointerSnapshot{X: 40, Y: 12, Inside: true}, []input.EventType{input.EventMouseMove}},
		{pointerSnapshot{X: 40, Y: 12, Inside: true, Released: true}, []input.EventType{input.EventMouseUp}},
		{pointerSnapshot{X: -5, Y: 12, Inside: false}, []input.EventType{input.EventMouseLeave}},
		{pointerSnapshot{X: -6, Y: 12, Inside: false}, nil},
	}
	for i, s := range steps {
		if got := types(p.events(s.snap)); !equalTypes(got, s.want) {
			t.Errorf("step %d: events = %v, want %v", i, got, s.want)
		}
	}
}

func TestPointerState_Touch(t *testing.T) {
	var p pointerState
	one := []input.Touch{{ID: 1, X: 5, Y: 5}}
	moved := []input.Touch{{ID: 1, X: 9, Y: 5}}

	steps := []struct {
		snap pointerSnapshot
		want []input.EventType
	}{
		{pointerSnapshot{Touches: one, TouchStarted: true}, []input.EventType{input.EventTouchStart}},
		{pointerSnapshot{Touches: one}, nil},
		{pointerSnapshot{Touches: moved}, []input.EventType{input.EventTouchMove}},
		{pointerSnapshot{TouchEnded: true}, []input.EventType{input.EventTouchEnd}},
	}
	for i, s := range steps {
		if got := types(p.events(s.snap)); !equalTypes(got, s.want) {
			t.Errorf("step %d: events = %v, want %v", i, got, s.want)
		}
	}
}

func TestPointerState_TouchDrivesTracker(t *testing.T) {
	var p pointerState
	var calls []string
	tr := input.NewTracker(strokeFunc(func(kind string) { calls = append(calls, kind) }))

	for _, snap := range []pointerSnapshot{
		{Touches: []input.Touch{{ID: 3, X: 1, Y: 1}}, TouchStarted: true},
		{Touches: []input.Touch{{ID: 3, X: 4, Y: 1}}},
		{TouchEnded: true},
	} {
		for _, ev := range p.events(snap) {
			tr.Handle(&ev)
		}
	}
	if len(calls) != 3 || calls[0] != "begin" || calls[1] != "extend" || calls[2] != "end" {
		t.Errorf("calls = %v", calls)
	}
}

type strokeFunc func(kind string)

func (f strokeFunc) Begin(x, y float64)  { f("begin") }
func (f strokeFunc) Extend(x, y float64) { f("extend") }
func (f strokeFunc) End()                { f("end") }
