package geom

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is a 4x4 homogeneous transform stored row-major: m[row][col].
//
// The builder methods (Translate, Scale, RotateX, ...) PREMULTIPLY the
// receiver by the elementary transform: M = E * M. Calling Translate then
// Scale on an identity matrix therefore yields Scale * Translate, so a
// point is translated first and scaled second, in the order the calls
// were written.
type Matrix [4][4]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// SetIdentity resets the matrix to the identity.
func (m *Matrix) SetIdentity() *Matrix {
	*m = Identity()
	return m
}

// Clear sets every entry to zero.
func (m *Matrix) Clear() *Matrix {
	*m = Matrix{}
	return m
}

// Get returns the entry at row r, column c. Out-of-range indices return 0.
func (m Matrix) Get(r, c int) float64 {
	if r < 0 || r > 3 || c < 0 || c > 3 {
		return 0
	}
	return m[r][c]
}

// Set stores v at row r, column c. Out-of-range indices are ignored.
func (m *Matrix) Set(r, c int, v float64) {
	if r < 0 || r > 3 || c < 0 || c > 3 {
		return
	}
	m[r][c] = v
}

// Transpose transposes the matrix in place.
func (m *Matrix) Transpose() *Matrix {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			m[i][j], m[j][i] = m[j][i], m[i][j]
		}
	}
	return m
}

// Multiply returns left * right. Both operands are taken by value, so the
// result may be stored back into either of them.
func Multiply(left, right Matrix) Matrix {
	var out Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += left[i][k] * right[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Mul returns m * other.
func (m Matrix) Mul(other Matrix) Matrix {
	return Multiply(m, other)
}

// Premultiply replaces m with e * m.
func (m *Matrix) Premultiply(e Matrix) *Matrix {
	*m = Multiply(e, *m)
	return m
}

// XformPoint returns m * p.
func (m Matrix) XformPoint(p Point) Point {
	var q Point
	for i := 0; i < 4; i++ {
		q[i] = m[i][0]*p[0] + m[i][1]*p[1] + m[i][2]*p[2] + m[i][3]*p[3]
	}
	return q
}

// XformVector returns m * v with the homogeneous coordinate forced to 0,
// so the translation column has no effect.
func (m Matrix) XformVector(v Vector) Vector {
	var q Vector
	for i := 0; i < 3; i++ {
		q[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return q
}

// XformPolygon transforms and normalizes every vertex of p in place.
func (m Matrix) XformPolygon(p *Polygon) {
	for i, v := range p.Vertices {
		p.Vertices[i] = m.XformPoint(v).Normalize()
	}
}

// XformPolyline transforms and normalizes every vertex of p in place.
func (m Matrix) XformPolyline(p *Polyline) {
	for i, v := range p.Vertices {
		p.Vertices[i] = m.XformPoint(v).Normalize()
	}
}

// XformLine transforms and normalizes both endpoints of l in place.
func (m Matrix) XformLine(l *Line) {
	l.A = m.XformPoint(l.A).Normalize()
	l.B = m.XformPoint(l.B).Normalize()
}

// --- 2D builders ---

// Translate2D premultiplies by a translation in x and y.
func (m *Matrix) Translate2D(tx, ty float64) *Matrix {
	t := Identity()
	t[0][3] = tx
	t[1][3] = ty
	return m.Premultiply(t)
}

// Scale2D premultiplies by a scale in x and y.
func (m *Matrix) Scale2D(sx, sy float64) *Matrix {
	s := Identity()
	s[0][0] = sx
	s[1][1] = sy
	return m.Premultiply(s)
}

// RotateZ premultiplies by a rotation about the Z axis given cos and sin of
// the angle.
func (m *Matrix) RotateZ(cth, sth float64) *Matrix {
	r := Identity()
	r[0][0] = cth
	r[0][1] = -sth
	r[1][0] = sth
	r[1][1] = cth
	return m.Premultiply(r)
}

// Shear2D premultiplies by a 2D shear: x += shx*y, y += shy*x.
func (m *Matrix) Shear2D(shx, shy float64) *Matrix {
	s := Identity()
	s[0][1] = shx
	s[1][0] = shy
	return m.Premultiply(s)
}

// --- 3D builders ---

// Translate premultiplies by a 3D translation.
func (m *Matrix) Translate(tx, ty, tz float64) *Matrix {
	t := Identity()
	t[0][3] = tx
	t[1][3] = ty
	t[2][3] = tz
	return m.Premultiply(t)
}

// Scale premultiplies by a 3D scale.
func (m *Matrix) Scale(sx, sy, sz float64) *Matrix {
	s := Identity()
	s[0][0] = sx
	s[1][1] = sy
	s[2][2] = sz
	return m.Premultiply(s)
}

// RotateX premultiplies by a rotation about the X axis.
func (m *Matrix) RotateX(cth, sth float64) *Matrix {
	r := Identity()
	r[1][1] = cth
	r[1][2] = -sth
	r[2][1] = sth
	r[2][2] = cth
	return m.Premultiply(r)
}

// RotateY premultiplies by a rotation about the Y axis.
func (m *Matrix) RotateY(cth, sth float64) *Matrix {
	r := Identity()
	r[0][0] = cth
	r[0][2] = sth
	r[2][0] = -sth
	r[2][2] = cth
	return m.Premultiply(r)
}

// RotateXYZ premultiplies by the rotation that maps the orthonormal basis
// u, v, w onto the x, y and z axes. The vectors become the matrix rows.
func (m *Matrix) RotateXYZ(u, v, w Vector) *Matrix {
	r := Identity()
	for i := 0; i < 3; i++ {
		r[0][i] = u[i]
		r[1][i] = v[i]
		r[2][i] = w[i]
	}
	return m.Premultiply(r)
}

// ShearZ premultiplies by a shear along Z: x += shx*z, y += shy*z.
func (m *Matrix) ShearZ(shx, shy float64) *Matrix {
	s := Identity()
	s[0][2] = shx
	s[1][2] = shy
	return m.Premultiply(s)
}

// Perspective premultiplies by a perspective projection onto the plane at
// distance d: w becomes z/d. A zero d leaves the matrix unchanged.
func (m *Matrix) Perspective(d float64) *Matrix {
	if d == 0 {
		return m
	}
	p := Identity()
	p[3][2] = 1 / d
	p[3][3] = 0
	return m.Premultiply(p)
}

// Equal reports whether every entry of m and other differs by at most eps.
func (m Matrix) Equal(other Matrix, eps float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-other[i][j]) > eps {
				return false
			}
		}
	}
	return true
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix) IsIdentity() bool {
	return m.Equal(Identity(), 1e-10)
}

// String formats the matrix as four bracketed rows.
func (m Matrix) String() string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, "| %.3f %.3f %.3f %.3f |\n", m[i][0], m[i][1], m[i][2], m[i][3])
	}
	return b.String()
}
