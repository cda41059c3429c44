package composition

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 0xff, 0xff
	}
	return img
}

func ptr[T any](v T) *T { return &v }

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New(0, 100)
	assert.Error(t, err)
	_, err = New(100, -1)
	assert.Error(t, err)

	c, err := New(1280, 720)
	require.NoError(t, err)
	assert.Equal(t, 1280, c.Width())
	assert.Equal(t, 720, c.Height())
	assert.Equal(t, DefaultBackground, c.Background().Color)
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestPresetCatalog(t *testing.T) {
	all := Presets()
	require.Len(t, all, 8)

	p, err := PresetByName("Square")
	require.NoError(t, err)
	assert.Equal(t, 2400, p.Width)

	p, err = PresetByName("1080x1350")
	require.NoError(t, err)
	assert.Equal(t, "portrait", p.Name)

	_, err = PresetByName("billboard")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	c, err := NewFromPreset("landscape")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1280, 720), c.Bounds())
}

func TestAddTextLayerAppliesDefaultsAndSelects(t *testing.T) {
	c, _ := New(500, 500)
	i := c.AddTextLayer(TextDefaults{})
	assert.Equal(t, 0, i)

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, 0, sel)

	layer, _ := c.Layer(0)
	text := layer.(*TextLayer)
	assert.Equal(t, "Your Text", text.Text)
	assert.Equal(t, 40.0, text.FontSizePx)
	assert.Equal(t, "Arial", text.FontFamily)
	assert.Equal(t, "#000000", text.Color)
	assert.Equal(t, "40px Arial", text.Font())

	text.Bold, text.Italic = true, true
	assert.Equal(t, "italic bold 40px Arial", text.Font())
}

func TestAddImageLayerKeepsIndependentSize(t *testing.T) {
	c, _ := New(500, 500)
	i, err := c.AddImageLayer(solid(10, 10), ImageOptions{Width: 200, Height: 80, Shape: ShapeCircle})
	require.NoError(t, err)

	layer, _ := c.Layer(i)
	img := layer.(*ImageLayer)
	assert.Equal(t, 200.0, img.Width)
	assert.Equal(t, 80.0, img.Height)
	assert.Equal(t, ShapeCircle, img.Shape)

	j, err := c.AddImageLayer(solid(10, 10), ImageOptions{})
	require.NoError(t, err)
	layer, _ = c.Layer(j)
	assert.Equal(t, DefaultImageSize, layer.(*ImageLayer).Width)
	assert.Equal(t, DefaultImageSize, layer.(*ImageLayer).Height)

	_, err = c.AddImageLayer(nil, ImageOptions{})
	assert.Error(t, err)
	_, err = c.AddImageLayer(solid(1, 1), ImageOptions{Shape: "hexagon"})
	assert.Error(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestUpdateLayerShallowMerge(t *testing.T) {
	c, _ := New(500, 500)
	i := c.AddTextLayer(TextDefaults{Text: "hello"})
	v := c.Version()

	ok := c.UpdateLayer(i, Patch{Color: ptr("#ff0000"), Width: ptr(10.0)})
	require.True(t, ok)
	assert.Greater(t, c.Version(), v)

	layer, _ := c.Layer(i)
	text := layer.(*TextLayer)
	assert.Equal(t, "#ff0000", text.Color)
	assert.Equal(t, "hello", text.Text)

	assert.False(t, c.UpdateLayer(7, Patch{Text: ptr("nope")}))
	assert.False(t, c.UpdateLayer(-1, Patch{Text: ptr("nope")}))
}

func TestUpdateLayerClampsDimensions(t *testing.T) {
	c, _ := New(500, 500)
	i, _ := c.AddImageLayer(solid(4, 4), ImageOptions{Width: 100, Height: 100})
	c.UpdateLayer(i, Patch{Width: ptr(-20.0), Height: ptr(0.0), Shape: ptr(Shape("star"))})

	layer, _ := c.Layer(i)
	img := layer.(*ImageLayer)
	assert.Equal(t, MinDimension, img.Width)
	assert.Equal(t, MinDimension, img.Height)
	assert.Equal(t, ShapeRectangle, img.Shape)
}

func TestUpdateLayerCapsOversizedValues(t *testing.T) {
	c, _ := New(1080, 1080)
	img, _ := c.AddImageLayer(solid(4, 4), ImageOptions{Width: 1e9, Height: 1e9})
	txt := c.AddTextLayer(TextDefaults{FontSizePx: 1e12})

	layer, _ := c.Layer(img)
	assert.Equal(t, MaxDimension, layer.(*ImageLayer).Width)
	assert.Equal(t, MaxDimension, layer.(*ImageLayer).Height)
	layer, _ = c.Layer(txt)
	assert.Equal(t, MaxFontSizePx, layer.(*TextLayer).FontSizePx)

	c.UpdateLayer(img, Patch{Width: ptr(1e7), Height: ptr(math.Inf(1))})
	c.UpdateLayer(txt, Patch{FontSizePx: ptr(math.NaN())})
	layer, _ = c.Layer(img)
	assert.Equal(t, MaxDimension, layer.(*ImageLayer).Width)
	assert.Equal(t, MaxDimension, layer.(*ImageLayer).Height)
	layer, _ = c.Layer(txt)
	assert.Equal(t, MinDimension, layer.(*TextLayer).FontSizePx)

	c.UpdateLayer(img, Patch{X: ptr(-1e300), Y: ptr(math.NaN())})
	c.MoveLayer(txt, 1e300, -1e300)
	layer, _ = c.Layer(img)
	x, y := layer.Origin()
	assert.Equal(t, -MaxOffset, x)
	assert.Equal(t, 0.0, y)
	layer, _ = c.Layer(txt)
	x, y = layer.Origin()
	assert.Equal(t, MaxOffset, x)
	assert.Equal(t, -MaxOffset, y)
}

func TestRemoveSelectedLayerClearsSelection(t *testing.T) {
	c, _ := New(500, 500)
	c.AddTextLayer(TextDefaults{})
	i := c.AddTextLayer(TextDefaults{Text: "top"})

	require.True(t, c.RemoveLayer(i))
	_, ok := c.Selected()
	assert.False(t, ok)
	assert.False(t, c.RemoveLayer(i))
}

func TestRemoveBelowSelectionShiftsIt(t *testing.T) {
	c, _ := New(500, 500)
	c.AddTextLayer(TextDefaults{Text: "a"})
	c.AddTextLayer(TextDefaults{Text: "b"})
	c.AddTextLayer(TextDefaults{Text: "c"})
	require.True(t, c.Select(2))

	require.True(t, c.RemoveLayer(0))
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, sel)
	layer, _ := c.Layer(sel)
	assert.Equal(t, "c", layer.(*TextLayer).Text)
}

func TestBackground(t *testing.T) {
	c, _ := New(100, 100)
	require.NoError(t, c.SetBackgroundColor("#123"))
	assert.Equal(t, "#123", c.Background().Color)

	assert.Error(t, c.SetBackgroundColor("not-a-color"))
	assert.Equal(t, "#123", c.Background().Color)

	assert.Error(t, c.SetBackgroundImage(nil))
	require.NoError(t, c.SetBackgroundImage(solid(8, 4)))
	snap := c.Snapshot()
	assert.True(t, snap.HasBackgroundImage)
	assert.Equal(t, [2]int{8, 4}, snap.BackgroundSize)

	c.ClearBackgroundImage()
	assert.Nil(t, c.Background().Image)
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#ff0000":   {0xff, 0, 0, 0xff},
		"#0f0":      {0, 0xff, 0, 0xff},
		"#00000080": {0, 0, 0, 0x80},
		"White":     {0xff, 0xff, 0xff, 0xff},
	}
	for raw, want := range cases {
		got, err := ParseColor(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, bad := range []string{"", "#12", "#gggggg", "rgb(1,2,3)"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, ColorOr("nope", color.NRGBA{1, 2, 3, 4}))
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape("Rounded")
	require.NoError(t, err)
	assert.Equal(t, ShapeRoundedRectangle, s)
	_, err = ParseShape("hexagon")
	assert.Error(t, err)
}

func TestSnapshotSelection(t *testing.T) {
	c, _ := New(100, 100)
	snap := c.Snapshot()
	assert.Nil(t, snap.Selected)
	assert.Empty(t, snap.Layers)

	c.AddTextLayer(TextDefaults{Text: "x"})
	snap = c.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, 0, *snap.Selected)
	assert.Equal(t, KindText, snap.Layers[0].Kind)
}
