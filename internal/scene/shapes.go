package scene

import (
	"math"

	"github.com/softrender/softrender/internal/geom"
)

// cubeFaces lists the six faces of the cube spanning [-1, 1].
var cubeFaces = [6][4]geom.Point{
	{geom.Pt3(-1, -1, -1), geom.Pt3(-1, -1, 1), geom.Pt3(-1, 1, 1), geom.Pt3(-1, 1, -1)},
	{geom.Pt3(1, -1, -1), geom.Pt3(1, -1, 1), geom.Pt3(1, 1, 1), geom.Pt3(1, 1, -1)},
	{geom.Pt3(-1, -1, -1), geom.Pt3(-1, -1, 1), geom.Pt3(1, -1, 1), geom.Pt3(1, -1, -1)},
	{geom.Pt3(-1, 1, -1), geom.Pt3(-1, 1, 1), geom.Pt3(1, 1, 1), geom.Pt3(1, 1, -1)},
	{geom.Pt3(-1, -1, -1), geom.Pt3(-1, 1, -1), geom.Pt3(1, 1, -1), geom.Pt3(1, -1, -1)},
	{geom.Pt3(-1, -1, 1), geom.Pt3(-1, 1, 1), geom.Pt3(1, 1, 1), geom.Pt3(1, -1, 1)},
}

// Cube adds a cube spanning [-1, 1] on every axis: six polygons when solid,
// otherwise its twelve edges as lines.
func Cube(md *Module, solid bool) {
	if solid {
		for _, f := range cubeFaces {
			md.AddPolygon(geom.NewPolygon(f[:]...))
		}
		return
	}

	corner := func(i int) geom.Point {
		return geom.Pt3(float64(i&1)*2-1, float64(i>>1&1)*2-1, float64(i>>2&1)*2-1)
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				md.AddLine(geom.NewLine(corner(i), corner(i|bit)))
			}
		}
	}
}

// Cylinder adds a unit-radius cylinder from y = 0 to y = 1 around the y
// axis: a top and bottom fan and one quad per side.
func Cylinder(md *Module, sides int) {
	sides = max(sides, 3)
	top := geom.Pt3(0, 1, 0)
	bottom := geom.Pt3(0, 0, 0)

	for i := 0; i < sides; i++ {
		x1, z1 := ringPoint(i, sides, 1)
		x2, z2 := ringPoint(i+1, sides, 1)

		md.AddPolygon(geom.NewPolygon(top, geom.Pt3(x1, 1, z1), geom.Pt3(x2, 1, z2)))
		md.AddPolygon(geom.NewPolygon(bottom, geom.Pt3(x1, 0, z1), geom.Pt3(x2, 0, z2)))
		md.AddPolygon(geom.NewPolygon(
			geom.Pt3(x1, 0, z1), geom.Pt3(x2, 0, z2),
			geom.Pt3(x2, 1, z2), geom.Pt3(x1, 1, z1),
		))
	}
}

// Cone adds the sides of a cone standing on the x-z plane with its apex at
// (0, height, 0).
func Cone(md *Module, sides int, height, radius float64) {
	sides = max(sides, 3)
	apex := geom.Pt3(0, height, 0)
	for i := 0; i < sides; i++ {
		x1, z1 := ringPoint(i, sides, radius)
		x2, z2 := ringPoint(i+1, sides, radius)
		md.AddPolygon(geom.NewPolygon(geom.Pt3(x1, 0, z1), geom.Pt3(x2, 0, z2), apex))
	}
}

// Sphere adds a sphere centred on the origin as slices x stacks quads.
func Sphere(md *Module, slices, stacks int, radius float64) {
	slices = max(slices, 3)
	stacks = max(stacks, 2)
	dPhi := math.Pi / float64(stacks)
	dTheta := 2 * math.Pi / float64(slices)

	at := func(phi, theta float64) geom.Point {
		return geom.Pt3(
			radius*math.Sin(phi)*math.Cos(theta),
			radius*math.Cos(phi),
			radius*math.Sin(phi)*math.Sin(theta),
		)
	}
	for i := 0; i < stacks; i++ {
		phi1 := float64(i) * dPhi
		phi2 := phi1 + dPhi
		for j := 0; j < slices; j++ {
			theta := float64(j) * dTheta
			md.AddPolygon(geom.NewPolygon(
				at(phi1, theta), at(phi2, theta),
				at(phi2, theta+dTheta), at(phi1, theta+dTheta),
			))
		}
	}
}

// ringPoint returns the x and z of the i-th of n points on a circle.
func ringPoint(i, n int, radius float64) (x, z float64) {
	a := float64(i%n) * 2 * math.Pi / float64(n)
	return radius * math.Cos(a), radius * math.Sin(a)
}
