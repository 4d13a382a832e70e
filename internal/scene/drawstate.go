package scene

import (
	"fmt"
	"strings"

	"github.com/softrender/softrender/internal/geom"
	"github.com/softrender/softrender/internal/raster"
)

// ShadeMethod selects how polygons are drawn.
type ShadeMethod int

const (
	ShadeFrame ShadeMethod = iota // outlines only
	ShadeConstant
	ShadeDepth
	ShadeFlat
	ShadeGouraud
	ShadePhong
)

var shadeNames = [...]string{
	ShadeFrame:    "frame",
	ShadeConstant: "constant",
	ShadeDepth:    "depth",
	ShadeFlat:     "flat",
	ShadeGouraud:  "gouraud",
	ShadePhong:    "phong",
}

func (s ShadeMethod) String() string {
	if s < 0 || int(s) >= len(shadeNames) {
		return fmt.Sprintf("ShadeMethod(%d)", int(s))
	}
	return shadeNames[s]
}

// ParseShade maps a name such as "frame" to its ShadeMethod. The empty
// string is ShadeConstant.
func ParseShade(name string) (ShadeMethod, error) {
	if name == "" {
		return ShadeConstant, nil
	}
	for i, n := range shadeNames {
		if strings.EqualFold(n, name) {
			return ShadeMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shade method %q", name)
}

// DrawState is the appearance state carried through a traversal. Every
// sub-graph draws with its own copy, so changes made inside it do not
// reach the parent's later elements.
type DrawState struct {
	Color        raster.Color
	FlatColor    raster.Color
	Body         raster.Color
	Surface      raster.Color
	Shade        ShadeMethod
	SurfaceCoeff float64
	ZBuffer      bool
	Viewer       geom.Point
}

// NewDrawState returns the default state: white foreground, constant
// shading and depth testing on.
func NewDrawState() *DrawState {
	return &DrawState{
		Color:   raster.White,
		Shade:   ShadeConstant,
		ZBuffer: true,
		Viewer:  geom.Pt3(0, 0, -1),
	}
}
