package document

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/scene"
)

const squareYAML = `
name: squares
width: 40
height: 20
background: "#000000"
root: main
modules:
  square:
    - {op: polygon, points: [[0, 0], [10, 0], [10, 10], [0, 10]]}
  main:
    - {op: color, color: "#ff0000"}
    - {op: module, ref: square}
    - {op: translate, args: [20, 0, 0]}
    - {op: color, color: "#0000ff"}
    - {op: module, ref: square}
`

func draw(t *testing.T, sc *Scene) *raster.Image {
	t.Helper()
	img := raster.New(sc.Height, sc.Width)
	img.Fill(sc.Background)
	gtm := geom.Identity()
	ds := sc.DrawState
	require.NoError(t, scene.Draw(context.Background(), sc.Root, &sc.View, &gtm, &ds, img))
	return img
}

func TestParseAndBuildYAML(t *testing.T) {
	doc, err := Parse([]byte(squareYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "squares", doc.Name)
	assert.Equal(t, 1, doc.Frames())
	assert.Equal(t, 24, doc.FPS())

	sc, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, 40, sc.Width)
	assert.Len(t, sc.Modules, 2)
	assert.Len(t, sc.Modules["square"].Parents(), 1)

	img := draw(t, sc)
	assert.Equal(t, raster.RGB(1, 0, 0), img.Color(5, 5))
	assert.Equal(t, raster.RGB(0, 0, 1), img.Color(5, 25))
	assert.Equal(t, raster.Black, img.Color(5, 15))
}

func TestJSONRoundTripsThroughEncode(t *testing.T) {
	doc := NewCubeDocument()
	data, err := Encode(doc, FormatJSON)
	require.NoError(t, err)

	back, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	yml, err := Encode(doc, FormatYAML)
	require.NoError(t, err)
	fromYAML, err := Parse(yml, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, doc, fromYAML)
}

func TestBuildErrors(t *testing.T) {
	base := func() *Document {
		return &Document{
			Root: "main",
			Modules: map[string][]Op{
				"main": {{Op: OpModule, Ref: "leaf"}},
				"leaf": {{Op: OpPoint, Points: [][]float64{{1, 1}}}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"missing root", func(d *Document) { d.Root = "nope" }},
		{"unknown ref", func(d *Document) { d.Modules["main"] = []Op{{Op: OpModule, Ref: "ghost"}} }},
		{"cycle", func(d *Document) { d.Modules["leaf"] = append(d.Modules["leaf"], Op{Op: OpModule, Ref: "main"}) }},
		{"self reference", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpModule, Ref: "leaf"}} }},
		{"unknown op", func(d *Document) { d.Modules["leaf"] = []Op{{Op: "teapot"}} }},
		{"bad arity", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpTranslate, Args: []float64{1, 2}}} }},
		{"short polygon", func(d *Document) {
			d.Modules["leaf"] = []Op{{Op: OpPolygon, Points: [][]float64{{0, 0}, {1, 1}}}}
		}},
		{"bad point", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpPoint, Points: [][]float64{{1}}}} }},
		{"bad colour", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpColor, Color: "red"}} }},
		{"bad shade", func(d *Document) { d.Shade = "toon" }},
		{"both views", func(d *Document) { d.Camera = &Camera{}; d.View2D = &View2D{} }},
		{"too wide", func(d *Document) { d.Width = MaxDimension + 1 }},
		{"too tall", func(d *Document) { d.Height = 200000 }},
		{"fps too high", func(d *Document) { d.Animation = &Animation{Frames: 2, FPS: 2000000000} }},
		{"negative fps", func(d *Document) { d.Animation = &Animation{Frames: 2, FPS: -1} }},
		{"too many frames", func(d *Document) { d.Animation = &Animation{Frames: MaxFrames + 1} }},
		{"huge cylinder", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpCylinder, Args: []float64{1e9}}} }},
		{"huge sphere stacks", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpSphere, Args: []float64{20, 1e9, 1}}} }},
		{"nan cone", func(d *Document) { d.Modules["leaf"] = []Op{{Op: OpCone, Args: []float64{math.NaN()}}} }},
		{"degenerate camera", func(d *Document) {
			d.Camera = &Camera{VRP: []float64{0, 0, 0}, VPN: []float64{0, 0, 1}, VUP: []float64{0, 0, 1}, D: 1, DU: 1, DV: 1, B: 1}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base()
			tc.mutate(d)
			_, err := Build(d)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}

	_, err := Build(base())
	assert.NoError(t, err)
}

func TestParseRejectsOversizedDocuments(t *testing.T) {
	_, err := Parse([]byte("root: a\nwidth: 200000\nheight: 200000\nmodules: {a: []}\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Parse([]byte(`{"root": "a", "modules": {"a": []}, "animation": {"frames": 2, "fps": 2000000000}}`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	doc, err := Parse([]byte("root: a\nwidth: 8192\nanimation: {frames: 2, fps: 240}\nmodules: {a: []}\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, MaxFPS, doc.FPS())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"root": "a", "modules": {"a": []}, "colour": "#fff"}`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Parse([]byte("root: a\nmodules: {a: []}\nwdith: 3\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestFormatDetection(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("scenes/cube.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("scenes/cube.yml"))
	assert.Equal(t, FormatJSON, FormatForContentType("application/json; charset=utf-8"))
	assert.Equal(t, FormatYAML, FormatForContentType("application/yaml"))
	assert.Equal(t, FormatYAML, FormatForContentType(""))
}

func TestSamplesBuildAndDraw(t *testing.T) {
	for name, sample := range Samples {
		t.Run(name, func(t *testing.T) {
			sc, err := Build(sample())
			require.NoError(t, err)
			img := draw(t, sc)
			assert.Less(t, img.Count(sc.Background), sc.Width*sc.Height, "sample draws something")
		})
	}
}

func TestSpaceshipSharesShipModule(t *testing.T) {
	sc, err := Build(NewSpaceshipDocument())
	require.NoError(t, err)
	assert.Len(t, sc.Modules["ship"].Parents(), 10)
	assert.Equal(t, scene.ShadeFrame, sc.DrawState.Shade)
}
