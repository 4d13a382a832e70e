package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
)

// frame is one module being walked: its position, the global transform it
// was entered with, the local transform built so far and its own DrawState.
type frame struct {
	md  *Module
	idx int
	gtm geom.Matrix
	ltm geom.Matrix
	ds  DrawState
}

// Draw renders md into dst. Every primitive is mapped to the screen by
// vtm * gtm * ltm, where ltm is the running local transform of the module
// containing it. Sub-graphs are entered with gtm * ltm as their global
// transform and a copy of the current DrawState.
//
// None of the arguments are modified. Rasterizer problems on individual
// polygons are logged and skipped; Draw only fails on nil arguments or
// when ctx is done.
func Draw(ctx context.Context, md *Module, vtm, gtm *geom.Matrix, ds *DrawState, dst raster.Target) error {
	if md == nil || vtm == nil || gtm == nil || ds == nil || dst == nil {
		err := fmt.Errorf("draw: %w", ErrNilArgument)
		slog.Error("draw scene", "error", err)
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	stack := []frame{{md: md, gtm: *gtm, ltm: geom.Identity(), ds: *ds}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(top.md.elements) {
			stack = stack[:len(stack)-1]
			continue
		}
		e := top.md.elements[top.idx]
		top.idx++

		ref, ok := e.(ModuleRef)
		if !ok {
			top.apply(e, *vtm, dst)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stack = append(stack, frame{
			md:  ref.Module,
			gtm: top.gtm.Mul(top.ltm),
			ltm: geom.Identity(),
			ds:  top.ds,
		})
	}
	return nil
}

// apply handles every element other than a module reference.
func (f *frame) apply(e Element, vtm geom.Matrix, dst raster.Target) {
	switch e := e.(type) {
	case Transform:
		f.ltm = e.Matrix.Mul(f.ltm)
	case Identity:
		f.ltm = geom.Identity()

	case Color:
		f.ds.Color = e.Color
	case BodyColor:
		f.ds.Body = e.Color
	case SurfaceColor:
		f.ds.Surface = e.Color
	case SurfaceCoeff:
		f.ds.SurfaceCoeff = e.Coeff

	case Point:
		p := f.screen(vtm).XformPoint(e.P).Normalize()
		raster.DrawPoint(dst, p, f.ds.Color)
	case Line:
		l := e.Line
		f.screen(vtm).XformLine(&l)
		raster.DrawLine(dst, l.A, l.B, f.ds.Color)
	case Polyline:
		pl := e.Polyline.Copy()
		f.screen(vtm).XformPolyline(&pl)
		raster.DrawPolyline(dst, pl, f.ds.Color)
	case Polygon:
		pg := e.Polygon.Copy()
		f.screen(vtm).XformPolygon(&pg)
		if f.ds.Shade == ShadeFrame {
			raster.DrawPolygon(dst, pg, f.ds.Color)
			return
		}
		f.report(raster.FillPolygon(dst, pg, f.ds.Color))

	default:
		panic(fmt.Sprintf("scene: unknown element %T in module %s", e, f.md))
	}
}

func (f *frame) screen(vtm geom.Matrix) geom.Matrix {
	return vtm.Mul(f.gtm).Mul(f.ltm)
}

func (f *frame) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, raster.ErrDegeneratePolygon):
		slog.Debug("skip polygon", "module", f.md.String(), "error", err)
	default:
		slog.Warn("fill polygon", "module", f.md.String(), "error", err)
	}
}
