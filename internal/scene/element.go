package scene

import (
	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
)

// Element is one entry of a Module. The set of implementations is closed:
// only the types in this file satisfy it.
type Element interface {
	element()
}

// Point draws a single pixel.
type Point struct {
	P geom.Point
}

// Line draws a segment.
type Line struct {
	Line geom.Line
}

// Polyline draws an open chain of segments.
type Polyline struct {
	Polyline geom.Polyline
}

// Polygon draws a filled polygon, or its outline under ShadeFrame.
type Polygon struct {
	Polygon geom.Polygon
}

// Transform premultiplies Matrix into the local transform.
type Transform struct {
	Matrix geom.Matrix
}

// Identity resets the local transform.
type Identity struct{}

// Color sets the foreground colour.
type Color struct {
	Color raster.Color
}

// BodyColor sets the body colour.
type BodyColor struct {
	Color raster.Color
}

// SurfaceColor sets the surface colour.
type SurfaceColor struct {
	Color raster.Color
}

// SurfaceCoeff sets the specular coefficient.
type SurfaceCoeff struct {
	Coeff float64
}

// ModuleRef draws another Module as a sub-graph. The referenced Module is
// not owned by the element.
type ModuleRef struct {
	Module *Module
}

func (Point) element()        {}
func (Line) element()         {}
func (Polyline) element()     {}
func (Polygon) element()      {}
func (Transform) element()    {}
func (Identity) element()     {}
func (Color) element()        {}
func (BodyColor) element()    {}
func (SurfaceColor) element() {}
func (SurfaceCoeff) element() {}
func (ModuleRef) element()    {}

// cloneElement returns a copy of e that shares no vertex storage with it.
// ok is false when e is not one of the value types above.
func cloneElement(e Element) (Element, bool) {
	switch e := e.(type) {
	case Polyline:
		return Polyline{Polyline: e.Polyline.Copy()}, true
	case Polygon:
		return Polygon{Polygon: e.Polygon.Copy()}, true
	case Point, Line, Transform, Identity, Color, BodyColor, SurfaceColor, SurfaceCoeff, ModuleRef:
		return e, true
	default:
		return nil, false
	}
}
