package geom

import (
	"fmt"
	"strings"
)

// Line is a segment between two points.
type Line struct {
	A, B    Point
	ZBuffer bool
}

// NewLine returns a line from a to b with the z-buffer flag set.
func NewLine(a, b Point) Line {
	return Line{A: a, B: b, ZBuffer: true}
}

// Normalize divides both endpoints by their homogeneous coordinate.
func (l Line) Normalize() Line {
	l.A = l.A.Normalize()
	l.B = l.B.Normalize()
	return l
}

// Polyline is an open sequence of connected vertices.
type Polyline struct {
	Vertices []Point
	ZBuffer  bool
}

// NewPolyline returns a polyline holding a copy of pts.
func NewPolyline(pts ...Point) Polyline {
	return Polyline{Vertices: clonePoints(pts), ZBuffer: true}
}

// Copy returns a deep copy of the polyline.
func (p Polyline) Copy() Polyline {
	p.Vertices = clonePoints(p.Vertices)
	return p
}

// Normalize returns a copy with every vertex normalized.
func (p Polyline) Normalize() Polyline {
	out := p.Copy()
	for i, v := range out.Vertices {
		out.Vertices[i] = v.Normalize()
	}
	return out
}

// Drawable reports whether the polyline has at least one segment.
func (p Polyline) Drawable() bool {
	return len(p.Vertices) >= 2
}

func (p Polyline) String() string {
	return formatVertices("Polyline", p.Vertices)
}

// Polygon is a closed sequence of vertices; the last vertex connects back
// to the first.
type Polygon struct {
	Vertices []Point
	OneSided bool
}

// NewPolygon returns a polygon holding a copy of pts.
func NewPolygon(pts ...Point) Polygon {
	return Polygon{Vertices: clonePoints(pts)}
}

// Copy returns a deep copy of the polygon.
func (p Polygon) Copy() Polygon {
	p.Vertices = clonePoints(p.Vertices)
	return p
}

// Normalize returns a copy with every vertex normalized.
func (p Polygon) Normalize() Polygon {
	out := p.Copy()
	for i, v := range out.Vertices {
		out.Vertices[i] = v.Normalize()
	}
	return out
}

// Rasterizable reports whether the polygon has enough vertices to enclose
// an area.
func (p Polygon) Rasterizable() bool {
	return len(p.Vertices) >= 3
}

// Area2D returns the signed area of the polygon's projection onto the
// x-y plane (shoelace formula).
func (p Polygon) Area2D() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	var sum float64
	prev := p.Vertices[n-1]
	for _, v := range p.Vertices {
		sum += prev[0]*v[1] - v[0]*prev[1]
		prev = v
	}
	return sum / 2
}

func (p Polygon) String() string {
	sided := "No"
	if p.OneSided {
		sided = "Yes"
	}
	return formatVertices(fmt.Sprintf("Polygon - One Sided: %s", sided), p.Vertices)
}

func clonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}

func formatVertices(header string, pts []Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, Vertices: %d\n", header, len(pts))
	for _, v := range pts {
		b.WriteString(v.String())
		b.WriteByte('\n')
	}
	return b.String()
}
