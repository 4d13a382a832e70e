// Package view builds view transformation matrices from camera
// descriptions.
package view

import (
	"errors"
	"fmt"

	"github.com/softrender/softrender/internal/geom"
)

// ErrDegenerateView is returned when a camera description cannot produce
// an invertible view transform.
var ErrDegenerateView = errors.New("view: degenerate camera")

// View2D describes an orthographic 2D window onto the plane.
type View2D struct {
	VRP     geom.Point  // centre of the window
	X       geom.Vector // direction of the window's x axis
	DX      float64     // window width in world units
	ScreenX int
	ScreenY int
}

// Matrix returns the view transformation for v:
// translate VRP to the origin, rotate X onto the x axis, scale the window
// width onto the screen (flipping y) and move the origin to the screen
// centre.
func (v View2D) Matrix() (geom.Matrix, error) {
	if v.ScreenX <= 0 || v.ScreenY <= 0 {
		return geom.Matrix{}, fmt.Errorf("%w: screen %dx%d", ErrDegenerateView, v.ScreenX, v.ScreenY)
	}
	if v.DX <= 0 {
		return geom.Matrix{}, fmt.Errorf("%w: window width %g", ErrDegenerateView, v.DX)
	}
	x := geom.Vec3(v.X[0], v.X[1], 0)
	length := x.Length()
	if length == 0 {
		return geom.Matrix{}, fmt.Errorf("%w: zero x axis", ErrDegenerateView)
	}

	vtm := geom.Identity()
	vtm.Translate2D(-v.VRP[0], -v.VRP[1])
	vtm.RotateZ(x[0]/length, -x[1]/length)

	s := float64(v.ScreenX) / v.DX
	vtm.Scale2D(s, -s)
	vtm.Translate2D(float64(v.ScreenX)/2, float64(v.ScreenY)/2)
	return vtm, nil
}

// View3D describes a perspective camera.
type View3D struct {
	VRP geom.Point  // view reference point
	VPN geom.Vector // view plane normal, the viewing direction
	VUP geom.Vector // up direction
	D   float64     // projection distance behind the VRP
	DU  float64     // view window width
	DV  float64     // view window height
	F   float64     // front clip distance
	B   float64     // back clip distance

	ScreenX int
	ScreenY int
}

// Matrix returns the perspective view transformation for v. v is passed by
// value, so the caller's camera is never modified.
func (v View3D) Matrix() (geom.Matrix, error) {
	if v.ScreenX <= 0 || v.ScreenY <= 0 {
		return geom.Matrix{}, fmt.Errorf("%w: screen %dx%d", ErrDegenerateView, v.ScreenX, v.ScreenY)
	}
	if v.D <= 0 || v.DU <= 0 || v.DV <= 0 {
		return geom.Matrix{}, fmt.Errorf("%w: d=%g du=%g dv=%g", ErrDegenerateView, v.D, v.DU, v.DV)
	}
	bPrime := v.B + v.D
	if bPrime <= 0 {
		return geom.Matrix{}, fmt.Errorf("%w: back clip %g", ErrDegenerateView, v.B)
	}

	u := v.VUP.Cross(v.VPN)
	vup := v.VPN.Cross(u)
	if u.Length() == 0 || vup.Length() == 0 {
		return geom.Matrix{}, fmt.Errorf("%w: vpn and vup are parallel or zero", ErrDegenerateView)
	}

	vtm := geom.Identity()
	vtm.Translate(-v.VRP[0], -v.VRP[1], -v.VRP[2])
	vtm.RotateXYZ(u.Normalize(), vup.Normalize(), v.VPN.Normalize())
	vtm.Translate(0, 0, v.D)
	vtm.Scale(2*v.D/(bPrime*v.DU), 2*v.D/(bPrime*v.DV), 1/bPrime)

	dPrime := v.D / bPrime
	vtm.Perspective(dPrime)
	vtm.Scale2D(-float64(v.ScreenX)/(2*dPrime), -float64(v.ScreenY)/(2*dPrime))
	vtm.Translate(float64(v.ScreenX)/2, float64(v.ScreenY)/2, 0)
	return vtm, nil
}
