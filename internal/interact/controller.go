// Package interact turns pointer and touch input into selection changes and
// layer drags.
package interact

import (
	"fmt"

	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/hittest"
)

// Mode is the controller state.
type Mode string

const (
	Idle     Mode = "idle"
	Dragging Mode = "dragging"
)

// State is a copy of the controller state.
type State struct {
	Mode  Mode    `json:"mode"`
	Layer int     `json:"layer"`
	GrabX float64 `json:"grabX"`
	GrabY float64 `json:"grabY"`
}

// HitTester finds the topmost layer under a composition-space point.
type HitTester interface {
	HitTest(c *composition.Composition, x, y float64) (int, bool)
}

var _ HitTester = (*hittest.Tester)(nil)

// Controller is the Idle/Dragging state machine over one composition. It
// is not safe for concurrent use.
type Controller struct {
	comp     *composition.Composition
	tester   HitTester
	viewport Viewport
	state    State

	// OnChange is called after every transition that changed the model.
	OnChange func(reason string)
}

func NewController(comp *composition.Composition, tester HitTester) *Controller {
	return &Controller{
		comp:     comp,
		tester:   tester,
		viewport: Identity,
		state:    State{Mode: Idle, Layer: composition.NoSelection},
	}
}

func (c *Controller) Viewport() Viewport { return c.viewport }

// SetViewport replaces the coordinate mapping. An invalid viewport is
// rejected and the previous one kept.
func (c *Controller) SetViewport(v Viewport) error {
	if err := v.Validate(); err != nil {
		return err
	}
	c.viewport = v
	return nil
}

func (c *Controller) ToComposition(clientX, clientY float64) (float64, float64) {
	return c.viewport.ToComposition(clientX, clientY)
}

func (c *Controller) State() State { return c.state }

// Reset ends any drag without touching the model.
func (c *Controller) Reset() {
	c.state = State{Mode: Idle, Layer: composition.NoSelection}
}

// PointerDown selects the topmost layer under the pointer and starts
// dragging it, or clears the selection over empty space.
func (c *Controller) PointerDown(clientX, clientY float64) {
	x, y := c.ToComposition(clientX, clientY)
	i, ok := c.tester.HitTest(c.comp, x, y)
	if !ok {
		c.Reset()
		if _, had := c.comp.Selected(); had {
			c.comp.ClearSelection()
			c.changed("deselect")
		}
		return
	}
	layer, _ := c.comp.Layer(i)
	lx, ly := layer.Origin()
	c.comp.Select(i)
	c.state = State{Mode: Dragging, Layer: i, GrabX: x - lx, GrabY: y - ly}
	c.changed("select")
}

// PointerMove drags the grabbed layer so the grab point stays under the
// pointer. Positions are not clamped to the canvas.
func (c *Controller) PointerMove(clientX, clientY float64) {
	if c.state.Mode != Dragging {
		return
	}
	x, y := c.ToComposition(clientX, clientY)
	if !c.comp.MoveLayer(c.state.Layer, x-c.state.GrabX, y-c.state.GrabY) {
		// Layer vanished under the drag.
		c.Reset()
		return
	}
	c.changed("move")
}

// PointerUp ends a drag. The last position stays committed.
func (c *Controller) PointerUp() { c.Reset() }

// PointerLeave ends a drag when the pointer leaves the surface.
func (c *Controller) PointerLeave() { c.Reset() }

// Handle dispatches a normalized event.
func (c *Controller) Handle(ev Event) error {
	ev, err := ev.Normalize()
	if err != nil {
		return err
	}
	switch ev.Type {
	case PointerDown:
		c.PointerDown(ev.ClientX, ev.ClientY)
	case PointerMove:
		c.PointerMove(ev.ClientX, ev.ClientY)
	case PointerUp:
		c.PointerUp()
	case PointerLeave:
		c.PointerLeave()
	default:
		return fmt.Errorf("unhandled pointer event %q", ev.Type)
	}
	return nil
}

// EditSelected applies a property edit to the selected layer. It reports
// false and does nothing when there is no valid selection.
func (c *Controller) EditSelected(p composition.Patch) bool {
	i, ok := c.comp.Selected()
	if !ok {
		return false
	}
	if !c.comp.UpdateLayer(i, p) {
		return false
	}
	c.changed("edit")
	return true
}

func (c *Controller) changed(reason string) {
	if c.OnChange != nil {
		c.OnChange(reason)
	}
}
