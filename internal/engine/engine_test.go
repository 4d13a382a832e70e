package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
)

const squareDoc = `{
  "name": "square",
  "width": 30,
  "height": 20,
  "background": "#000000",
  "color": "#00ff00",
  "animation": {"frames": 4, "fps": 8},
  "root": "main",
  "modules": {
    "main": [{"op": "polygon", "points": [[0, 0], [10, 0], [10, 10], [0, 10]]}]
  }
}`

var green = raster.RGB(0, 1, 0)

func TestRenderRequiresDocument(t *testing.T) {
	e := NewEngine()
	_, err := e.Render(context.Background())
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = e.RenderFrame(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestLoadAndRender(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadDocument([]byte(squareDoc), document.FormatJSON))

	w, h := e.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, PlaybackState{Frame: 0, Playing: false, FPS: 8, TotalFrames: 4}, e.GetPlaybackState())

	img, err := e.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, img.Count(green))
	assert.Equal(t, raster.Black, img.Color(15, 25))

	again, err := e.Render(context.Background())
	require.NoError(t, err)
	assert.Same(t, img, again, "clean engine reuses the last frame")
}

func TestPlaybackWraps(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadDocument([]byte(squareDoc), document.FormatJSON))

	_, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, e.GetFrame(), "paused engine does not advance")

	e.Play()
	for i := 0; i < 5; i++ {
		_, err := e.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.GetFrame())

	e.TogglePlay()
	assert.False(t, e.IsPlaying())

	e.SetPlayhead(99)
	assert.Equal(t, 3, e.GetFrame())
	e.SetPlayhead(-2)
	assert.Equal(t, 0, e.GetFrame())
}

func TestUpdateDocumentKeepsPlayback(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadDocument([]byte(squareDoc), document.FormatJSON))
	e.SetPlayhead(3)
	e.Play()

	short := []byte("root: main\nanimation: {frames: 2}\nmodules:\n  main: []\n")
	require.NoError(t, e.UpdateDocument(short, document.FormatYAML))
	assert.Equal(t, 1, e.GetFrame())
	assert.True(t, e.IsPlaying())

	w, h := e.Size()
	assert.Equal(t, document.DefaultWidth, w)
	assert.Equal(t, document.DefaultHeight, h)
}

func TestDefaultSize(t *testing.T) {
	e := NewEngine()
	e.SetDefaultSize(64, 48)
	require.NoError(t, e.SetDocument(&document.Document{Root: "a", Modules: map[string][]document.Op{"a": nil}}))
	w, h := e.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
	assert.Zero(t, e.Document().Width, "caller's document is left alone")
}

func TestMaxSize(t *testing.T) {
	e := NewEngine()
	e.SetMaxSize(32, 32)
	require.NoError(t, e.LoadDocument([]byte(squareDoc), document.FormatJSON))

	err := e.LoadSampleDocument("cube")
	assert.ErrorIs(t, err, document.ErrInvalidDocument)
	w, h := e.Size()
	assert.Equal(t, 30, w, "failed load keeps the previous document")
	assert.Equal(t, 20, h)

	e.SetDefaultSize(64, 64)
	err = e.SetDocument(&document.Document{Root: "a", Modules: map[string][]document.Op{"a": nil}})
	assert.ErrorIs(t, err, document.ErrInvalidDocument, "default size is bounded too")
}

func TestRenderFrameOrbits(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadSampleDocument("cube"))

	first, err := e.RenderFrame(context.Background(), 0)
	require.NoError(t, err)
	later, err := e.RenderFrame(context.Background(), 5)
	require.NoError(t, err)
	assert.NotEqual(t, first.RGBA().Pix, later.RGBA().Pix)
	assert.Equal(t, 0, e.GetFrame())

	_, err = e.RenderFrame(context.Background(), 36)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
	assert.Error(t, e.LoadSampleDocument("teapot"))
}

func TestOrbitTransform(t *testing.T) {
	assert.True(t, OrbitTransform(0, 3, 10).IsIdentity())
	assert.True(t, OrbitTransform(360, 0, 10).Equal(geom.Identity(), 1e-12))

	quarter := OrbitTransform(360, 1, 4)
	p := quarter.XformPoint(geom.Pt3(1, 0, 0))
	assert.InDelta(t, 0, p.X(), 1e-9)
	assert.InDelta(t, 1, math.Abs(p.Z()), 1e-9)
}
