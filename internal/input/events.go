package input

import (
	"encoding/json"
	"fmt"
)

// EventType identifies the kind of pointer event.
type EventType string

const (
	EventMouseDown   EventType = "mouse_down"
	EventMouseMove   EventType = "mouse_move"
	EventMouseUp     EventType = "mouse_up"
	EventMouseLeave  EventType = "mouse_leave"
	EventTouchStart  EventType = "touch_start"
	EventTouchMove   EventType = "touch_move"
	EventTouchEnd    EventType = "touch_end"
	EventTouchCancel EventType = "touch_cancel"
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// Touch is one contact point, in viewport coordinates.
type Touch struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Event is the wire format for pointer events. X and Y are viewport
// (client) coordinates for mouse events; touch events carry every
// currently active contact in Touches, the way a browser TouchEvent does.
type Event struct {
	Type    EventType   `json:"type"`
	X       float64     `json:"x,omitempty"`
	Y       float64     `json:"y,omitempty"`
	Button  MouseButton `json:"button,omitempty"`
	Touches []Touch     `json:"touches,omitempty"`
}

// Decode parses a JSON event.
func Decode(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode input event: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("decode input event: missing type")
	}
	return &ev, nil
}
