package raster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softrender/softrender/internal/geom"
)

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   geom.Point
		pixels [][2]int // row, col
	}{
		{"horizontal", geom.Pt2(1, 2), geom.Pt2(4, 2), [][2]int{{2, 1}, {2, 2}, {2, 3}, {2, 4}}},
		{"vertical", geom.Pt2(3, 0), geom.Pt2(3, 2), [][2]int{{0, 3}, {1, 3}, {2, 3}}},
		{"diagonal", geom.Pt2(0, 0), geom.Pt2(3, 3), [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"single pixel", geom.Pt2(5, 5), geom.Pt2(5, 5), [][2]int{{5, 5}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := New(10, 10)
			DrawLine(img, tc.a, tc.b, red)
			assert.Equal(t, len(tc.pixels), img.Count(red))
			for _, p := range tc.pixels {
				assert.Equal(t, red, img.Color(p[0], p[1]), "pixel %v", p)
			}
		})
	}
}

func TestDrawLineClips(t *testing.T) {
	img := New(10, 10)
	DrawLine(img, geom.Pt2(-1e12, 5), geom.Pt2(1e12, 5), red)
	assert.Equal(t, 10, img.Count(red))

	img.Reset()
	DrawLine(img, geom.Pt2(-50, -50), geom.Pt2(-10, -20), red)
	assert.Zero(t, img.Count(red))
}

func TestDrawPolylineAndOutline(t *testing.T) {
	img := New(10, 10)
	DrawPolyline(img, geom.NewPolyline(geom.Pt2(0, 0)), red)
	assert.Zero(t, img.Count(red), "single vertex polyline draws nothing")

	DrawPolyline(img, geom.NewPolyline(geom.Pt2(0, 0), geom.Pt2(4, 0), geom.Pt2(4, 4)), red)
	assert.Equal(t, 9, img.Count(red))

	img.Reset()
	DrawPolygon(img, geom.NewPolygon(geom.Pt2(1, 1), geom.Pt2(5, 1), geom.Pt2(5, 5), geom.Pt2(1, 5)), red)
	assert.Equal(t, 16, img.Count(red))
	assert.Equal(t, Black, img.Color(3, 3), "outline leaves the interior empty")
}

func TestDrawPoint(t *testing.T) {
	img := New(4, 4)
	DrawPoint(img, geom.Pt2(2.4, 1.6), red)
	assert.Equal(t, red, img.Color(2, 2))
	DrawPoint(img, geom.Pt2(-3, 8), red)
	assert.Equal(t, 1, img.Count(red))
}

func TestImageSetColorClips(t *testing.T) {
	img := New(3, 4)
	img.SetColor(-1, 0, red)
	img.SetColor(0, 4, red)
	img.SetColor(3, 0, red)
	assert.Zero(t, img.Count(red))

	img.Fill(White)
	assert.Equal(t, 12, img.Count(White))
	img.Reset()
	assert.Zero(t, img.Count(White))
	assert.Equal(t, 0.0, img.Alpha(1, 1))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff0000", RGB(1, 0, 0), false},
		{"00ff00", RGB(0, 1, 0), false},
		{"#00f", RGB(0, 0, 1), false},
		{"#12345", Color{}, true},
		{"#gg0000", Color{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseHex(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, "#ff8000", RGB(1, 128.0/255, 0).Hex())
}

func TestEncodeDecode(t *testing.T) {
	src := New(6, 8)
	src.Fill(RGB(0, 0, 1))
	require.NoError(t, FillPolygon(src, geom.NewPolygon(geom.Pt2(0, 0), geom.Pt2(4, 0), geom.Pt2(4, 3), geom.Pt2(0, 3)), red))

	for _, f := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, src.Encode(&buf, f))

			got, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, src.Rows(), got.Rows())
			assert.Equal(t, src.Cols(), got.Cols())
			assert.Equal(t, red, got.Color(1, 1))
			assert.Equal(t, RGB(0, 0, 1), got.Color(5, 7))
		})
	}

	_, err := ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	f, err := FormatForPath("out/frame.TIF")
	require.NoError(t, err)
	assert.Equal(t, FormatTIFF, f)
}
