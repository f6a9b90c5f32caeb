// Package vecf32 provides float32 3D vector arithmetic for the level-set
// core, in a free-function style, operating on a local Vec instead of
// gonum's float64 r3.Vec.
package vecf32

import "github.com/chewxy/math32"

// Vec is a 3D single-precision vector.
type Vec struct {
	X, Y, Z float32
}

func Add(a, b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func Sub(a, b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func Scale(k float32, a Vec) Vec { return Vec{k * a.X, k * a.Y, k * a.Z} }
func Dot(a, b Vec) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func Cross(a, b Vec) Vec {
	return Vec{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func Norm2(a Vec) float32 { return Dot(a, a) }
func Norm(a Vec) float32  { return math32.Sqrt(Norm2(a)) }

// MinElem returns a vector with the minimum components of two vectors.
func MinElem(a, b Vec) Vec {
	return Vec{min32(a.X, b.X), min32(a.Y, b.Y), min32(a.Z, b.Z)}
}

// MaxElem returns a vector with the maximum components of two vectors.
func MaxElem(a, b Vec) Vec {
	return Vec{max32(a.X, b.X), max32(a.Y, b.Y), max32(a.Z, b.Z)}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// EqualWithin reports whether a and b are equal within tol in every
// component.
func EqualWithin(a, b Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol &&
		math32.Abs(a.Y-b.Y) <= tol &&
		math32.Abs(a.Z-b.Z) <= tol
}
