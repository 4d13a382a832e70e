package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	for _, p := range []Point{
		Pt4(4, 8, 12, 4),
		Pt4(-3, 1.5, 9, -0.5),
		Pt3(1, 2, 3),
	} {
		once := p.Normalize()
		assert.Equal(t, once, once.Normalize(), "point %v", p)
	}
}

func TestNormalizeZeroW(t *testing.T) {
	p := Pt4(1, 2, 3, 0)
	assert.Equal(t, p, p.Normalize())
}

func TestVectorOps(t *testing.T) {
	x := Vec3(1, 0, 0)
	y := Vec3(0, 1, 0)

	assert.Equal(t, Vec3(0, 0, 1), x.Cross(y))
	assert.Equal(t, 0.0, x.Dot(y))
	assert.InDelta(t, 5.0, Vec3(3, 4, 0).Length(), eps)

	n := Vec3(3, 4, 0).Normalize()
	assert.InDelta(t, 1.0, n.Length(), eps)
	assert.Equal(t, 0.0, n[3])

	assert.Equal(t, Vector{}, Vector{}.Normalize())
}

func TestShapeCopiesAreDeep(t *testing.T) {
	pts := []Point{Pt2(0, 0), Pt2(1, 0), Pt2(1, 1)}
	poly := NewPolygon(pts...)
	pts[0] = Pt2(9, 9)
	assert.Equal(t, Pt2(0, 0), poly.Vertices[0])

	cp := poly.Copy()
	cp.Vertices[1] = Pt2(7, 7)
	assert.Equal(t, Pt2(1, 0), poly.Vertices[1])

	pl := NewPolyline(Pt2(0, 0), Pt2(2, 2))
	assert.True(t, pl.Drawable())
	assert.False(t, NewPolyline(Pt2(0, 0)).Drawable())
}

func TestPolygonArea(t *testing.T) {
	sq := NewPolygon(Pt2(0, 0), Pt2(2, 0), Pt2(2, 2), Pt2(0, 2))
	assert.InDelta(t, 4.0, sq.Area2D(), eps)

	flat := NewPolygon(Pt2(0, 0), Pt2(1, 1), Pt2(2, 2))
	assert.Equal(t, 0.0, flat.Area2D())
	assert.False(t, NewPolygon(Pt2(0, 0), Pt2(1, 1)).Rasterizable())
}
