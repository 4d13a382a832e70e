package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a homogeneous coordinate (x, y, z, w).
type Point [4]float64

// Pt2 returns the 2D point (x, y, 0, 1).
func Pt2(x, y float64) Point {
	return Point{x, y, 0, 1}
}

// Pt3 returns the 3D point (x, y, z, 1).
func Pt3(x, y, z float64) Point {
	return Point{x, y, z, 1}
}

// Pt4 returns the point (x, y, z, w).
func Pt4(x, y, z, w float64) Point {
	return Point{x, y, z, w}
}

// X returns the x coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the y coordinate.
func (p Point) Y() float64 { return p[1] }

// Z returns the z coordinate.
func (p Point) Z() float64 { return p[2] }

// W returns the homogeneous coordinate.
func (p Point) W() float64 { return p[3] }

// Normalize divides x, y and z by the homogeneous coordinate and returns
// the point with w = 1. A point with w == 0 is returned unchanged.
func (p Point) Normalize() Point {
	w := p[3]
	if w == 0 {
		return p
	}
	return Point{p[0] / w, p[1] / w, p[2] / w, 1}
}

// Sub returns the direction from q to p.
func (p Point) Sub(q Point) Vector {
	return Vector{p[0] - q[0], p[1] - q[1], p[2] - q[2], 0}
}

func (p Point) String() string {
	return fmt.Sprintf("( %.3f, %.3f, %.3f, %.3f )", p[0], p[1], p[2], p[3])
}

// Vector is a direction (x, y, z, 0); translation does not affect it.
type Vector [4]float64

// Vec3 returns the vector (x, y, z, 0).
func Vec3(x, y, z float64) Vector {
	return Vector{x, y, z, 0}
}

func (v Vector) vec3() mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func fromVec3(v mgl64.Vec3, w float64) Vector {
	return Vector{v[0], v[1], v[2], w}
}

// Length returns the Euclidean length of the x, y, z components.
func (v Vector) Length() float64 {
	return v.vec3().Len()
}

// Normalize scales the vector to unit length, leaving the homogeneous
// coordinate untouched. A zero-length vector is returned unchanged.
func (v Vector) Normalize() Vector {
	if v.Length() == 0 {
		return v
	}
	return fromVec3(v.vec3().Normalize(), v[3])
}

// Dot returns the scalar product of the x, y, z components.
func (v Vector) Dot(o Vector) float64 {
	return v.vec3().Dot(o.vec3())
}

// Cross returns v x o with w = 0.
func (v Vector) Cross(o Vector) Vector {
	return fromVec3(v.vec3().Cross(o.vec3()), 0)
}

func (v Vector) String() string {
	return fmt.Sprintf("Vector: (%.3f, %.3f, %.3f, %.3f)", v[0], v[1], v[2], v[3])
}
