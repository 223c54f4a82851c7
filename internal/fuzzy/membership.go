package fuzzy

import (
	"fmt"
	"math"
)

// MembershipFunc maps a crisp value to a degree of membership in [0, 1]
type MembershipFunc interface {
	Degree(x float64) float64
	Support() (lo, hi float64)
}

// Triangular is a triangular membership function with feet at A and C and peak at B
type Triangular struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

// NewTriangular creates a triangular membership function, requiring a <= b <= c
func NewTriangular(a, b, c float64) (Triangular, error) {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(c) {
		return Triangular{}, fmt.Errorf("%w: triangle (%v, %v, %v) has NaN breakpoint", ErrConfiguration, a, b, c)
	}
	if a > b || b > c {
		return Triangular{}, fmt.Errorf("%w: triangle (%v, %v, %v) must satisfy a <= b <= c", ErrConfiguration, a, b, c)
	}
	return Triangular{A: a, B: b, C: c}, nil
}

// Degree returns the membership of x. The peak wins over the feet, so
// shoulder shapes such as (0.7, 1, 1) reach 1 at their edge.
func (t Triangular) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x == t.B:
		return 1
	case x <= t.A || x >= t.C:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

// Support returns the interval outside of which the degree is 0
func (t Triangular) Support() (float64, float64) {
	return t.A, t.C
}

// String renders the breakpoints
func (t Triangular) String() string {
	return fmt.Sprintf("trimf(%g, %g, %g)", t.A, t.B, t.C)
}
