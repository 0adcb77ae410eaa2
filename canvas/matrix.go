package canvas

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transform:
//
//	| A B C |
//	| D E F |
//	| 0 0 1 |
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{A: 1, E: 1} }

// Translation returns a translating transform.
func Translation(x, y float64) Matrix { return Matrix{A: 1, C: x, E: 1, F: y} }

// Scaling returns a scaling transform.
func Scaling(x, y float64) Matrix { return Matrix{A: x, E: y} }

// Mul returns m·o, which applies o first.
func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// Invert returns the inverse, or the identity for a singular matrix.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Identity()
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}
}

// LineScale is the factor a transform applies to stroke widths.
func (m Matrix) LineScale() float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}

func (m Matrix) aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}
