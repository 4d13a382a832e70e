// Package scene holds the hierarchical scene graph: Modules are ordered
// lists of drawing and state elements that may reference other Modules as
// shared sub-graphs, and Draw walks them into a raster target.
package scene

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/typeid"
)

var (
	ErrNilArgument        = errors.New("scene: nil argument")
	ErrCycle              = errors.New("scene: module reference would create a cycle")
	ErrInUse              = errors.New("scene: module is still referenced")
	ErrReleased           = errors.New("scene: module has been deleted")
	ErrUnsupportedElement = errors.New("scene: unsupported element")
)

// Module is an ordered list of elements. A Module may be referenced by any
// number of parent Modules but never, directly or transitively, by itself.
//
// Modules are not safe for concurrent mutation. Concurrent Draw calls are
// fine as long as nothing modifies the graph meanwhile.
type Module struct {
	id       string
	name     string
	elements []Element

	// parents counts the ModuleRef elements pointing here, per parent.
	parents  map[*Module]int
	released bool
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{
		id:      typeid.NewModuleID(),
		name:    name,
		parents: make(map[*Module]int),
	}
}

func (md *Module) ID() string   { return md.id }
func (md *Module) Name() string { return md.name }
func (md *Module) Len() int     { return len(md.elements) }

// Elements returns the module's elements in order. The slice is a copy; the
// elements themselves must not be modified.
func (md *Module) Elements() []Element {
	return slices.Clone(md.elements)
}

// Parents returns the modules that reference md, ordered by id.
func (md *Module) Parents() []*Module {
	out := make([]*Module, 0, len(md.parents))
	for p := range md.parents {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Module) int { return cmp.Compare(a.id, b.id) })
	return out
}

func (md *Module) String() string {
	if md.name != "" {
		return md.name
	}
	return md.id
}

// Insert appends e to the module. Payloads are copied, so later changes to
// the caller's vertex slices do not affect the module. ModuleRef elements
// go through the same checks as AddModule.
func (md *Module) Insert(e Element) error {
	if e == nil {
		return fmt.Errorf("insert element: %w", ErrNilArgument)
	}
	if md.released {
		return fmt.Errorf("insert into %s: %w", md, ErrReleased)
	}
	if ref, ok := e.(ModuleRef); ok {
		return md.AddModule(ref.Module)
	}
	clone, ok := cloneElement(e)
	if !ok {
		return fmt.Errorf("insert %T: %w", e, ErrUnsupportedElement)
	}
	md.elements = append(md.elements, clone)
	return nil
}

// AddModule appends a reference to sub. The reference does not own sub.
func (md *Module) AddModule(sub *Module) error {
	if sub == nil {
		return fmt.Errorf("add module: %w", ErrNilArgument)
	}
	if md.released {
		return fmt.Errorf("add module to %s: %w", md, ErrReleased)
	}
	if sub.released {
		return fmt.Errorf("add module %s: %w", sub, ErrReleased)
	}
	if sub == md || sub.reaches(md) {
		return fmt.Errorf("add module %s to %s: %w", sub, md, ErrCycle)
	}
	md.elements = append(md.elements, ModuleRef{Module: sub})
	sub.parents[md]++
	return nil
}

// reaches reports whether target is md or one of its descendants.
func (md *Module) reaches(target *Module) bool {
	seen := make(map[*Module]bool)
	stack := []*Module{md}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m == target {
			return true
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		for _, e := range m.elements {
			if ref, ok := e.(ModuleRef); ok {
				stack = append(stack, ref.Module)
			}
		}
	}
	return false
}

// add appends an element built by the module's own helpers. Failures can
// only come from a deleted module and are logged.
func (md *Module) add(e Element) {
	if err := md.Insert(e); err != nil {
		slog.Error("module insert", "module", md.String(), "error", err)
	}
}

func (md *Module) AddPoint(p geom.Point)       { md.add(Point{P: p}) }
func (md *Module) AddLine(l geom.Line)         { md.add(Line{Line: l}) }
func (md *Module) AddPolyline(p geom.Polyline) { md.add(Polyline{Polyline: p}) }
func (md *Module) AddPolygon(p geom.Polygon)   { md.add(Polygon{Polygon: p}) }
func (md *Module) AddMatrix(m geom.Matrix)     { md.add(Transform{Matrix: m}) }
func (md *Module) AddIdentity()                { md.add(Identity{}) }

func (md *Module) AddColor(c raster.Color)        { md.add(Color{Color: c}) }
func (md *Module) AddBodyColor(c raster.Color)    { md.add(BodyColor{Color: c}) }
func (md *Module) AddSurfaceColor(c raster.Color) { md.add(SurfaceColor{Color: c}) }
func (md *Module) AddSurfaceCoeff(k float64)      { md.add(SurfaceCoeff{Coeff: k}) }

// addTransform appends the matrix produced by applying build to identity.
func (md *Module) addTransform(build func(m *geom.Matrix)) {
	m := geom.Identity()
	build(&m)
	md.AddMatrix(m)
}

// --- transform operand helpers ---

func (md *Module) Translate2D(tx, ty float64) {
	md.addTransform(func(m *geom.Matrix) { m.Translate2D(tx, ty) })
}

func (md *Module) Scale2D(sx, sy float64) {
	md.addTransform(func(m *geom.Matrix) { m.Scale2D(sx, sy) })
}

func (md *Module) RotateZ(cth, sth float64) {
	md.addTransform(func(m *geom.Matrix) { m.RotateZ(cth, sth) })
}

func (md *Module) Shear2D(shx, shy float64) {
	md.addTransform(func(m *geom.Matrix) { m.Shear2D(shx, shy) })
}

func (md *Module) Translate(tx, ty, tz float64) {
	md.addTransform(func(m *geom.Matrix) { m.Translate(tx, ty, tz) })
}

func (md *Module) Scale(sx, sy, sz float64) {
	md.addTransform(func(m *geom.Matrix) { m.Scale(sx, sy, sz) })
}

func (md *Module) RotateX(cth, sth float64) {
	md.addTransform(func(m *geom.Matrix) { m.RotateX(cth, sth) })
}

func (md *Module) RotateY(cth, sth float64) {
	md.addTransform(func(m *geom.Matrix) { m.RotateY(cth, sth) })
}

func (md *Module) RotateXYZ(u, v, w geom.Vector) {
	md.addTransform(func(m *geom.Matrix) { m.RotateXYZ(u, v, w) })
}

func (md *Module) ShearZ(shx, shy float64) {
	md.addTransform(func(m *geom.Matrix) { m.ShearZ(shx, shy) })
}

// Clear removes every element. Referenced sub-modules are left intact; md
// is only removed from their parent sets.
func (md *Module) Clear() {
	for _, e := range md.elements {
		ref, ok := e.(ModuleRef)
		if !ok {
			continue
		}
		sub := ref.Module
		if sub.parents[md]--; sub.parents[md] <= 0 {
			delete(sub.parents, md)
		}
	}
	md.elements = nil
}

// Delete clears md and marks it unusable. A module that is still
// referenced by a parent cannot be deleted.
func (md *Module) Delete() error {
	if md.released {
		return nil
	}
	if len(md.parents) > 0 {
		return fmt.Errorf("delete %s (%d parents): %w", md, len(md.parents), ErrInUse)
	}
	md.Clear()
	md.released = true
	return nil
}
