package raster

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/softrender/softrender/internal/geom"
)

var (
	// ErrDegeneratePolygon is returned for polygons with fewer than three
	// vertices, collinear vertices or non-finite coordinates. Nothing is
	// drawn.
	ErrDegeneratePolygon = errors.New("raster: degenerate polygon")

	// ErrUnpairedEdges is returned when a scanline crosses an odd number of
	// edges. The complete pairs on that row are still filled.
	ErrUnpairedEdges = errors.New("raster: odd number of active edges")
)

// slopeTolerance absorbs rounding when an edge's first intersection is
// advanced past rows clipped off the top of the image.
const slopeTolerance = 1e-6

// edge is one non-horizontal polygon boundary in screen space, ordered top
// to bottom.
type edge struct {
	x0, y0, x1, y1 float64
	yStart, yEnd   int // inclusive scanline range
	xIntersect     float64
	dxPerScan      float64
}

func pixelRow(y float64) int {
	return int(math.Floor(y + 0.5))
}

// clampedRow is pixelRow for coordinates that may lie far outside [0, limit].
func clampedRow(y float64, limit int) int {
	return pixelRow(max(-1, min(float64(limit+1), y)))
}

// newEdge builds the edge from a to b clipped to rows. ok is false for
// horizontal edges and edges that never touch the image.
func newEdge(a, b geom.Point, rows int) (e edge, ok bool) {
	if a.Y() > b.Y() {
		a, b = b, a
	}
	start, end := clampedRow(a.Y(), rows), clampedRow(b.Y(), rows)
	if start == end {
		return edge{}, false
	}

	e = edge{
		x0: a.X(), y0: a.Y(),
		x1: b.X(), y1: b.Y(),
		yStart: start,
		yEnd:   end - 1,
	}
	if e.yStart > rows-1 || e.yEnd < 0 {
		return edge{}, false
	}
	if e.yEnd > rows-1 {
		e.yEnd = rows - 1
	}

	e.dxPerScan = (e.x1 - e.x0) / (e.y1 - e.y0)
	e.xIntersect = e.x0 + (float64(e.yStart)+0.5-e.y0)*e.dxPerScan
	if e.yStart < 0 {
		e.xIntersect += float64(-e.yStart) * e.dxPerScan
		e.yStart = 0
	}

	lo, hi := math.Min(e.x0, e.x1), math.Max(e.x0, e.x1)
	if e.xIntersect < lo-slopeTolerance || e.xIntersect > hi+slopeTolerance {
		return edge{}, false
	}
	e.xIntersect = math.Max(lo, math.Min(hi, e.xIntersect))
	return e, true
}

// advance moves the intersection down one scanline without overshooting the
// lower endpoint.
func (e *edge) advance() {
	e.xIntersect += e.dxPerScan
	if e.dxPerScan > 0 && e.xIntersect > e.x1 {
		e.xIntersect = e.x1
	}
	if e.dxPerScan < 0 && e.xIntersect < e.x1 {
		e.xIntersect = e.x1
	}
}

func buildEdgeList(p geom.Polygon, rows int) []*edge {
	n := len(p.Vertices)
	edges := make([]*edge, 0, n)
	prev := p.Vertices[n-1]
	for _, v := range p.Vertices {
		if e, ok := newEdge(prev, v, rows); ok {
			edges = append(edges, &e)
		}
		prev = v
	}
	slices.SortStableFunc(edges, func(a, b *edge) int {
		return cmp.Compare(a.yStart, b.yStart)
	})
	return edges
}

func byIntersect(a, b *edge) int {
	return cmp.Compare(a.xIntersect, b.xIntersect)
}

// fillSpan paints columns [round(xa), round(xb)) on row.
func fillSpan(dst Target, row int, xa, xb float64, c Color) {
	cols := float64(dst.Cols())
	start := pixelRow(max(0, min(cols, xa)))
	end := pixelRow(max(0, min(cols, xb)))
	for col := start; col < end; col++ {
		dst.SetColor(row, col, c)
	}
}

// FillPolygon scan-converts the screen-space polygon p into dst using colour
// c. Vertex x is the column and y the row. Pixels whose centres lie inside
// the polygon are painted; anything outside dst is clipped.
//
// A row crossing an odd number of edges has its complete pairs filled and
// the sweep continues; the returned error wraps ErrUnpairedEdges and lists
// the affected rows.
func FillPolygon(dst Target, p geom.Polygon, c Color) error {
	if !p.Rasterizable() {
		return fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(p.Vertices))
	}
	for i, v := range p.Vertices {
		if !finite(v.X()) || !finite(v.Y()) {
			return fmt.Errorf("%w: vertex %d is %v", ErrDegeneratePolygon, i, v)
		}
	}
	if collinear(p) {
		return fmt.Errorf("%w: collinear vertices", ErrDegeneratePolygon)
	}
	rows := dst.Rows()
	if rows <= 0 || dst.Cols() <= 0 {
		return nil
	}

	return sweep(dst, buildEdgeList(p, rows), c)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// collinear reports whether every vertex of p lies on one line in x and y.
// Self-intersecting polygons with zero net area are not collinear.
func collinear(p geom.Polygon) bool {
	o := p.Vertices[0]
	var dx, dy float64
	for _, v := range p.Vertices[1:] {
		ux, uy := v.X()-o.X(), v.Y()-o.Y()
		if dx == 0 && dy == 0 {
			dx, dy = ux, uy
			continue
		}
		cross := dx*uy - dy*ux
		scale := (math.Abs(dx) + math.Abs(dy)) * (math.Abs(ux) + math.Abs(uy))
		if math.Abs(cross) > 1e-12*scale {
			return false
		}
	}
	return true
}

// sweep walks the scanlines covered by pending, which must be sorted by
// yStart.
func sweep(dst Target, pending []*edge, c Color) error {
	if len(pending) == 0 {
		return nil
	}
	rows := dst.Rows()

	var (
		active   []*edge
		unpaired []int
	)
	for scan := pending[0].yStart; scan < rows; scan++ {
		added := false
		for len(pending) > 0 && pending[0].yStart == scan {
			active = append(active, pending[0])
			pending = pending[1:]
			added = true
		}
		if added {
			slices.SortStableFunc(active, byIntersect)
		}
		if len(active) == 0 {
			break
		}

		if len(active)%2 != 0 {
			unpaired = append(unpaired, scan)
		}
		for i := 0; i+1 < len(active); i += 2 {
			xa, xb := active[i].xIntersect, active[i+1].xIntersect
			if xa == xb {
				continue
			}
			fillSpan(dst, scan, xa, xb, c)
		}

		live := active[:0]
		for _, e := range active {
			if e.yEnd <= scan {
				continue
			}
			e.advance()
			live = append(live, e)
		}
		active = live
		slices.SortStableFunc(active, byIntersect)
	}

	if len(unpaired) > 0 {
		return fmt.Errorf("%w: rows %v", ErrUnpairedEdges, unpaired)
	}
	return nil
}
