package raster

import (
	"math"

	"github.com/softrender/softrender/internal/geom"
)

// DrawPoint paints the pixel nearest to p.
func DrawPoint(dst Target, p geom.Point, c Color) {
	dst.SetColor(pixelRow(p.Y()), pixelRow(p.X()), c)
}

// DrawLine paints the segment from a to b with Bresenham's algorithm. Both
// endpoints are painted. The segment is clipped to the target first.
func DrawLine(dst Target, a, b geom.Point, c Color) {
	ax, ay, bx, by, ok := clipSegment(a.X(), a.Y(), b.X(), b.Y(),
		-1, -1, float64(dst.Cols())+1, float64(dst.Rows())+1)
	if !ok {
		return
	}
	x0, y0 := pixelRow(ax), pixelRow(ay)
	x1, y1 := pixelRow(bx), pixelRow(by)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		dst.SetColor(y0, x0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolyline paints each consecutive segment of p. Polylines with fewer
// than two vertices draw nothing.
func DrawPolyline(dst Target, p geom.Polyline, c Color) {
	if !p.Drawable() {
		return
	}
	for i := 1; i < len(p.Vertices); i++ {
		DrawLine(dst, p.Vertices[i-1], p.Vertices[i], c)
	}
}

// DrawPolygon paints the outline of p, including the closing segment.
func DrawPolygon(dst Target, p geom.Polygon, c Color) {
	n := len(p.Vertices)
	if n < 2 {
		return
	}
	prev := p.Vertices[n-1]
	for _, v := range p.Vertices {
		DrawLine(dst, prev, v, c)
		prev = v
	}
}

// clipSegment clips (x0,y0)-(x1,y1) to the box [xmin,xmax] x [ymin,ymax]
// with the Liang-Barsky algorithm.
func clipSegment(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (float64, float64, float64, float64, bool) {
	for _, v := range [...]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	if !clip(-dx, x0-xmin) || !clip(dx, xmax-x0) || !clip(-dy, y0-ymin) || !clip(dy, ymax-y0) {
		return 0, 0, 0, 0, false
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
