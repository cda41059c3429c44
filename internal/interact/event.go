package interact

import (
	"fmt"
	"strings"
)

// EventType is a normalized pointer transition.
type EventType string

const (
	PointerDown  EventType = "down"
	PointerMove  EventType = "move"
	PointerUp    EventType = "up"
	PointerLeave EventType = "leave"
)

// Source is the device an event came from.
type Source string

const (
	SourceMouse Source = "mouse"
	SourceTouch Source = "touch"
)

// Event is a pointer sample in client coordinates.
type Event struct {
	Type    EventType `json:"type" yaml:"type"`
	Source  Source    `json:"source,omitempty" yaml:"source,omitempty"`
	ClientX float64   `json:"clientX" yaml:"clientX"`
	ClientY float64   `json:"clientY" yaml:"clientY"`
}

// ParseEventType normalizes DOM mouse and touch event names to the pointer
// transitions the controller understands.
func ParseEventType(raw string) (EventType, Source, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "down", "pointerdown", "mousedown":
		return PointerDown, SourceMouse, nil
	case "touchstart":
		return PointerDown, SourceTouch, nil
	case "move", "pointermove", "mousemove":
		return PointerMove, SourceMouse, nil
	case "touchmove":
		return PointerMove, SourceTouch, nil
	case "up", "pointerup", "mouseup":
		return PointerUp, SourceMouse, nil
	case "touchend", "touchcancel":
		return PointerUp, SourceTouch, nil
	case "leave", "pointerleave", "mouseleave", "mouseout":
		return PointerLeave, SourceMouse, nil
	}
	return "", "", fmt.Errorf("unknown pointer event %q", raw)
}

// Normalize fills in the source and maps DOM event names in Type.
func (e Event) Normalize() (Event, error) {
	t, src, err := ParseEventType(string(e.Type))
	if err != nil {
		return e, err
	}
	e.Type = t
	if e.Source == "" {
		e.Source = src
	}
	return e, nil
}
