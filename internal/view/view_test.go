package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softrender/softrender/internal/geom"
)

const eps = 1e-9

func TestView2D(t *testing.T) {
	v := View2D{VRP: geom.Pt2(0, 0), X: geom.Vec3(1, 0, 0), DX: 2, ScreenX: 100, ScreenY: 100}
	vtm, err := v.Matrix()
	require.NoError(t, err)

	tests := []struct {
		name   string
		in     geom.Point
		wx, wy float64
	}{
		{"origin at centre", geom.Pt2(0, 0), 50, 50},
		{"right edge", geom.Pt2(1, 0), 100, 50},
		{"up is towards row 0", geom.Pt2(0, 1), 50, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := vtm.XformPoint(tc.in).Normalize()
			assert.InDelta(t, tc.wx, p.X(), eps)
			assert.InDelta(t, tc.wy, p.Y(), eps)
		})
	}
}

func TestView2DRotatedAxis(t *testing.T) {
	v := View2D{VRP: geom.Pt2(1, 1), X: geom.Vec3(0, 1, 0), DX: 4, ScreenX: 40, ScreenY: 40}
	vtm, err := v.Matrix()
	require.NoError(t, err)

	// One unit along the window's x axis (world +y) lands 10 pixels right.
	p := vtm.XformPoint(geom.Pt2(1, 2)).Normalize()
	assert.InDelta(t, 30.0, p.X(), eps)
	assert.InDelta(t, 20.0, p.Y(), eps)
}

func TestView3D(t *testing.T) {
	cam := View3D{
		VRP:     geom.Pt3(0, 0, -5),
		VPN:     geom.Vec3(0, 0, 1),
		VUP:     geom.Vec3(0, 1, 0),
		D:       1,
		DU:      2,
		DV:      2,
		B:       10,
		ScreenX: 100,
		ScreenY: 100,
	}
	before := cam
	vtm, err := cam.Matrix()
	require.NoError(t, err)
	assert.Equal(t, before, cam)

	centre := vtm.XformPoint(geom.Pt3(0, 0, 0)).Normalize()
	assert.InDelta(t, 50.0, centre.X(), eps)
	assert.InDelta(t, 50.0, centre.Y(), eps)

	up := vtm.XformPoint(geom.Pt3(0, 1, 0)).Normalize()
	assert.InDelta(t, 50.0, up.X(), eps)
	assert.Less(t, up.Y(), 50.0, "world up maps to smaller row numbers")

	// Farther points converge towards the centre.
	near := vtm.XformPoint(geom.Pt3(0, 1, 0)).Normalize()
	far := vtm.XformPoint(geom.Pt3(0, 1, 5)).Normalize()
	assert.Greater(t, far.Y(), near.Y())
}

func TestView3DDegenerate(t *testing.T) {
	base := View3D{
		VRP: geom.Pt3(0, 0, -5), VPN: geom.Vec3(0, 0, 1), VUP: geom.Vec3(0, 1, 0),
		D: 1, DU: 2, DV: 2, B: 10, ScreenX: 10, ScreenY: 10,
	}

	tests := []struct {
		name   string
		mutate func(v *View3D)
	}{
		{"parallel up", func(v *View3D) { v.VUP = geom.Vec3(0, 0, 2) }},
		{"zero normal", func(v *View3D) { v.VPN = geom.Vector{} }},
		{"zero distance", func(v *View3D) { v.D = 0 }},
		{"empty screen", func(v *View3D) { v.ScreenX = 0 }},
		{"negative depth", func(v *View3D) { v.B = -2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := base
			tc.mutate(&v)
			_, err := v.Matrix()
			assert.ErrorIs(t, err, ErrDegenerateView)
		})
	}
}
