package interact

import (
	"image"
	"testing"

	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/hittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*composition.Composition, *Controller) {
	t.Helper()
	c, err := composition.New(1000, 1000)
	require.NoError(t, err)
	return c, NewController(c, hittest.New(nil))
}

func addBox(t *testing.T, c *composition.Composition, x, y, w, h float64) int {
	t.Helper()
	i, err := c.AddImageLayer(image.NewNRGBA(image.Rect(0, 0, 2, 2)), composition.ImageOptions{X: x, Y: y, Width: w, Height: h})
	require.NoError(t, err)
	return i
}

func TestDragCommitsPointerMinusGrabOffset(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 10, 10, 100, 100)
	c.ClearSelection()

	ctl.PointerDown(15, 15)
	st := ctl.State()
	assert.Equal(t, Dragging, st.Mode)
	assert.Equal(t, i, st.Layer)
	assert.Equal(t, 5.0, st.GrabX)
	assert.Equal(t, 5.0, st.GrabY)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, i, sel)

	ctl.PointerMove(115, 115)
	layer, _ := c.Layer(i)
	x, y := layer.Origin()
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 110.0, y)

	ctl.PointerUp()
	assert.Equal(t, Idle, ctl.State().Mode)

	ctl.PointerMove(500, 500)
	x, y = layer.Origin()
	assert.Equal(t, 110.0, x, "moves while idle are ignored")
	assert.Equal(t, 110.0, y)
}

func TestDragUsesViewportScale(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 10, 10, 100, 100)

	// 1000px wide composition shown at 500px: legacy scale 0.5.
	require.NoError(t, ctl.SetViewport(Viewport{Left: 20, Top: 40, Scale: 0.5}))
	ctl.PointerDown(20+15*0.5, 40+15*0.5)
	ctl.PointerMove(20+115*0.5, 40+115*0.5)
	layer, _ := c.Layer(i)
	x, y := layer.Origin()
	assert.InDelta(t, 110.0, x, 1e-9)
	assert.InDelta(t, 110.0, y, 1e-9)
}

func TestDragOffCanvasIsNotClamped(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 0, 0, 50, 50)
	ctl.PointerDown(25, 25)
	ctl.PointerMove(-500, 2000)
	layer, _ := c.Layer(i)
	x, y := layer.Origin()
	assert.Equal(t, -525.0, x)
	assert.Equal(t, 1975.0, y)
}

func TestPointerDownOnEmptySpaceDeselects(t *testing.T) {
	c, ctl := setup(t)
	addBox(t, c, 0, 0, 50, 50)
	_, ok := c.Selected()
	require.True(t, ok)

	var reasons []string
	ctl.OnChange = func(r string) { reasons = append(reasons, r) }
	ctl.PointerDown(900, 900)
	_, ok = c.Selected()
	assert.False(t, ok)
	assert.Equal(t, Idle, ctl.State().Mode)
	assert.Equal(t, []string{"deselect"}, reasons)
}

func TestLeaveEndsDrag(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 0, 0, 50, 50)
	ctl.PointerDown(10, 10)
	ctl.PointerMove(20, 20)
	ctl.PointerLeave()
	assert.Equal(t, Idle, ctl.State().Mode)
	layer, _ := c.Layer(i)
	x, y := layer.Origin()
	assert.Equal(t, 10.0, x, "move before leaving stays committed")
	assert.Equal(t, 10.0, y)
}

func TestRemovedLayerDuringDrag(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 0, 0, 50, 50)
	ctl.PointerDown(10, 10)
	require.True(t, c.RemoveLayer(i))
	assert.NotPanics(t, func() { ctl.PointerMove(30, 30) })
	assert.Equal(t, Idle, ctl.State().Mode)
}

func TestEditSelectedWithoutSelectionIsNoop(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 0, 0, 50, 50)
	require.True(t, c.RemoveLayer(i))

	w := 300.0
	assert.False(t, ctl.EditSelected(composition.Patch{Width: &w}))

	j := addBox(t, c, 0, 0, 50, 50)
	assert.True(t, ctl.EditSelected(composition.Patch{Width: &w}))
	layer, _ := c.Layer(j)
	assert.Equal(t, 300.0, layer.(*composition.ImageLayer).Width)
}

func TestHandleNormalizesTouch(t *testing.T) {
	c, ctl := setup(t)
	i := addBox(t, c, 10, 10, 100, 100)
	require.NoError(t, ctl.Handle(Event{Type: "touchstart", ClientX: 15, ClientY: 15}))
	require.NoError(t, ctl.Handle(Event{Type: "touchmove", ClientX: 115, ClientY: 115}))
	require.NoError(t, ctl.Handle(Event{Type: "touchend"}))
	layer, _ := c.Layer(i)
	x, y := layer.Origin()
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 110.0, y)
	assert.Equal(t, Idle, ctl.State().Mode)

	assert.Error(t, ctl.Handle(Event{Type: "wheel"}))
}

func TestSetViewportRejectsNonPositiveScale(t *testing.T) {
	_, ctl := setup(t)
	require.NoError(t, ctl.SetViewport(Viewport{Scale: 0.25}))
	assert.Error(t, ctl.SetViewport(Viewport{Scale: 0}))
	assert.Error(t, ctl.SetViewport(Viewport{Scale: -1}))
	assert.Equal(t, 0.25, ctl.Viewport().Scale)
}

func TestLegacyViewport(t *testing.T) {
	// 2400 wide, cap 500: min(500, 1200)/2400.
	assert.InDelta(t, 500.0/2400.0, LegacyViewport(500, 2400).Scale, 1e-12)
	// 800 wide, cap 500: min(500, 400)/800 = 0.5.
	assert.InDelta(t, 0.5, LegacyViewport(500, 800).Scale, 1e-12)
	assert.Equal(t, Identity, LegacyViewport(500, 0))

	assert.Equal(t, NarrowDisplayCap, DisplayCapFor(375))
	assert.Equal(t, WideDisplayCap, DisplayCapFor(768))
}

func TestViewportForDisplay(t *testing.T) {
	v := ViewportForDisplay(8, 16, 540, 1080)
	assert.Equal(t, 0.5, v.Scale)
	x, y := v.ToComposition(8+270, 16+50)
	assert.Equal(t, 540.0, x)
	assert.Equal(t, 100.0, y)
}
