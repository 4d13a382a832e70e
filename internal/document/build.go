package document

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/scene"
	"github.com/softrender/softrender/internal/view"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// Scene is a document turned into drawable modules.
type Scene struct {
	Name       string
	Width      int
	Height     int
	Background raster.Color
	View       geom.Matrix
	DrawState  scene.DrawState
	Root       *scene.Module
	Modules    map[string]*scene.Module
	Frames     int
	FPS        int
	Orbit      float64
}

// Build resolves every module of doc. Module references are wired after
// all modules exist, so definition order does not matter; a reference that
// closes a cycle is an error.
func Build(doc *Document) (*Scene, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	sc := &Scene{
		Name:    doc.Name,
		Width:   doc.Width,
		Height:  doc.Height,
		Modules: make(map[string]*scene.Module, len(doc.Modules)),
		Frames:  doc.Frames(),
		FPS:     doc.FPS(),
	}
	if sc.Width == 0 {
		sc.Width = DefaultWidth
	}
	if sc.Height == 0 {
		sc.Height = DefaultHeight
	}
	if doc.Animation != nil {
		sc.Orbit = doc.Animation.Orbit
	}

	var err error
	if sc.Background, err = parseColor(doc.Background, raster.Black); err != nil {
		return nil, err
	}

	ds := scene.NewDrawState()
	if ds.Color, err = parseColor(doc.Color, ds.Color); err != nil {
		return nil, err
	}
	if ds.Shade, err = scene.ParseShade(doc.Shade); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	sc.DrawState = *ds

	if sc.View, err = doc.viewMatrix(sc.Width, sc.Height); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Modules))
	for name := range doc.Modules {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		sc.Modules[name] = scene.NewModule(name)
	}
	for _, name := range names {
		md := sc.Modules[name]
		for i, op := range doc.Modules[name] {
			if err := applyOp(md, op, sc.Modules); err != nil {
				return nil, fmt.Errorf("%w: module %q op %d (%s): %w", ErrInvalidDocument, name, i, op.Op, err)
			}
		}
	}
	sc.Root = sc.Modules[doc.Root]
	return sc, nil
}

func (d *Document) viewMatrix(width, height int) (geom.Matrix, error) {
	switch {
	case d.Camera != nil:
		c := d.Camera
		vrp, err := point(c.VRP)
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: camera vrp: %w", ErrInvalidDocument, err)
		}
		vpn, err := vector(c.VPN)
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: camera vpn: %w", ErrInvalidDocument, err)
		}
		vup, err := vector(c.VUP)
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: camera vup: %w", ErrInvalidDocument, err)
		}
		v := view.View3D{
			VRP: vrp, VPN: vpn, VUP: vup,
			D: c.D, DU: c.DU, DV: c.DV, F: c.F, B: c.B,
			ScreenX: width, ScreenY: height,
		}
		m, err := v.Matrix()
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return m, nil

	case d.View2D != nil:
		vrp, err := point(d.View2D.VRP)
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: view2d vrp: %w", ErrInvalidDocument, err)
		}
		x, err := vector(d.View2D.X)
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: view2d x: %w", ErrInvalidDocument, err)
		}
		v := view.View2D{VRP: vrp, X: x, DX: d.View2D.DX, ScreenX: width, ScreenY: height}
		m, err := v.Matrix()
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return m, nil

	default:
		// World coordinates are pixel coordinates.
		return geom.Identity(), nil
	}
}

func applyOp(md *scene.Module, op Op, modules map[string]*scene.Module) error {
	name := strings.ToLower(string(op.Op))
	switch name {
	case "point":
		pts, err := points(op.Points, 1, 1)
		if err != nil {
			return err
		}
		md.AddPoint(pts[0])
	case "line":
		pts, err := points(op.Points, 2, 2)
		if err != nil {
			return err
		}
		md.AddLine(geom.NewLine(pts[0], pts[1]))
	case "polyline":
		pts, err := points(op.Points, 2, -1)
		if err != nil {
			return err
		}
		md.AddPolyline(geom.NewPolyline(pts...))
	case "polygon":
		pts, err := points(op.Points, 3, -1)
		if err != nil {
			return err
		}
		md.AddPolygon(geom.NewPolygon(pts...))

	case "identity":
		md.AddIdentity()
	case "matrix":
		if len(op.Args) != 16 {
			return fmt.Errorf("need 16 args, got %d", len(op.Args))
		}
		var m geom.Matrix
		for i, v := range op.Args {
			m[i/4][i%4] = v
		}
		md.AddMatrix(m)
	case "translate":
		a, err := args(op.Args, 3)
		if err != nil {
			return err
		}
		md.Translate(a[0], a[1], a[2])
	case "scale":
		a, err := args(op.Args, 3)
		if err != nil {
			return err
		}
		md.Scale(a[0], a[1], a[2])
	case "rotatex", "rotatey", "rotatez":
		a, err := args(op.Args, 1)
		if err != nil {
			return err
		}
		rad := a[0] * math.Pi / 180
		c, s := math.Cos(rad), math.Sin(rad)
		switch name {
		case "rotatex":
			md.RotateX(c, s)
		case "rotatey":
			md.RotateY(c, s)
		default:
			md.RotateZ(c, s)
		}
	case "translate2d":
		a, err := args(op.Args, 2)
		if err != nil {
			return err
		}
		md.Translate2D(a[0], a[1])
	case "scale2d":
		a, err := args(op.Args, 2)
		if err != nil {
			return err
		}
		md.Scale2D(a[0], a[1])
	case "shear2d":
		a, err := args(op.Args, 2)
		if err != nil {
			return err
		}
		md.Shear2D(a[0], a[1])
	case "shearz":
		a, err := args(op.Args, 2)
		if err != nil {
			return err
		}
		md.ShearZ(a[0], a[1])

	case "color", "bodycolor", "surfacecolor":
		c, err := raster.ParseHex(op.Color)
		if err != nil {
			return err
		}
		switch name {
		case "color":
			md.AddColor(c)
		case "bodycolor":
			md.AddBodyColor(c)
		default:
			md.AddSurfaceColor(c)
		}
	case "surfacecoeff":
		a, err := args(op.Args, 1)
		if err != nil {
			return err
		}
		md.AddSurfaceCoeff(a[0])

	case "module":
		sub, ok := modules[op.Ref]
		if !ok {
			return fmt.Errorf("unknown module %q", op.Ref)
		}
		return md.AddModule(sub)

	case "cube":
		scene.Cube(md, op.Solid)
	case "cylinder":
		a := optArgs(op.Args, 20)
		if err := segments(a[:1]); err != nil {
			return err
		}
		scene.Cylinder(md, int(a[0]))
	case "cone":
		a := optArgs(op.Args, 20, 1, 1)
		if err := segments(a[:1]); err != nil {
			return err
		}
		scene.Cone(md, int(a[0]), a[1], a[2])
	case "sphere":
		a := optArgs(op.Args, 20, 20, 1)
		if err := segments(a[:2]); err != nil {
			return err
		}
		scene.Sphere(md, int(a[0]), int(a[1]), a[2])

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
	return nil
}

func args(a []float64, n int) ([]float64, error) {
	if len(a) != n {
		return nil, fmt.Errorf("need %d args, got %d", n, len(a))
	}
	return a, nil
}

// segments checks tessellation counts against MaxSegments.
func segments(counts []float64) error {
	for _, n := range counts {
		if !(n <= MaxSegments) {
			return fmt.Errorf("segment count %g above %d", n, MaxSegments)
		}
	}
	return nil
}

// optArgs fills missing trailing args from defaults.
func optArgs(a []float64, defaults ...float64) []float64 {
	out := slices.Clone(defaults)
	copy(out, a)
	return out
}

// points converts vertex lists; hi < 0 means unbounded.
func points(raw [][]float64, lo, hi int) ([]geom.Point, error) {
	if len(raw) < lo || (hi >= 0 && len(raw) > hi) {
		return nil, fmt.Errorf("wrong number of points: %d", len(raw))
	}
	out := make([]geom.Point, len(raw))
	for i, r := range raw {
		p, err := point(r)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

func point(v []float64) (geom.Point, error) {
	switch len(v) {
	case 2:
		return geom.Pt2(v[0], v[1]), nil
	case 3:
		return geom.Pt3(v[0], v[1], v[2]), nil
	case 4:
		return geom.Pt4(v[0], v[1], v[2], v[3]), nil
	default:
		return geom.Point{}, fmt.Errorf("need 2 to 4 coordinates, got %d", len(v))
	}
}

func vector(v []float64) (geom.Vector, error) {
	switch len(v) {
	case 2:
		return geom.Vec3(v[0], v[1], 0), nil
	case 3:
		return geom.Vec3(v[0], v[1], v[2]), nil
	default:
		return geom.Vector{}, fmt.Errorf("need 2 or 3 components, got %d", len(v))
	}
}

func parseColor(s string, fallback raster.Color) (raster.Color, error) {
	if s == "" {
		return fallback, nil
	}
	c, err := raster.ParseHex(s)
	if err != nil {
		return raster.Color{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return c, nil
}
