package curves

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Vec3 is a 3D position or direction stored as three float32 components.
// It shares its layout with f32.Vec3, so buffers convert without copying
// element by element.
type Vec3 f32.Vec3

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// F32 returns v as an f32.Vec3.
func (v Vec3) F32() f32.Vec3 {
	return f32.Vec3(v)
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Div returns the vector divided by a scalar.
func (v Vec3) Div(s float32) Vec3 {
	return Vec3{v[0] / s, v[1] / s, v[2] / s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Length returns the length (magnitude) of the vector.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSq())
}

// LengthSq returns the squared length of the vector.
func (v Vec3) LengthSq() float32 {
	return v.Dot(v)
}

// Distance returns the distance between two points.
func (v Vec3) Distance(w Vec3) float32 {
	return v.Sub(w).Length()
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if v has zero length.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return v.Mul(1 / length)
}

// Lerp performs linear interpolation between two vectors.
// t=0 returns v, t=1 returns w.
func (v Vec3) Lerp(w Vec3, t float32) Vec3 {
	return Vec3{
		lerpScalar(v[0], w[0], t),
		lerpScalar(v[1], w[1], t),
		lerpScalar(v[2], w[2], t),
	}
}

// Min returns the component-wise minimum.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{min(v[0], w[0]), min(v[1], w[1]), min(v[2], w[2])}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{max(v[0], w[0]), max(v[1], w[1]), max(v[2], w[2])}
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Approx reports whether every component of v is within epsilon of w.
func (v Vec3) Approx(w Vec3, epsilon float32) bool {
	return math32.Abs(v[0]-w[0]) <= epsilon &&
		math32.Abs(v[1]-w[1]) <= epsilon &&
		math32.Abs(v[2]-w[2]) <= epsilon
}

// almostEqualRelative compares components with a tolerance relative to the
// larger magnitude of the pair.
func (v Vec3) almostEqualRelative(w Vec3, factor float32) bool {
	for i := range 3 {
		diff := math32.Abs(v[i] - w[i])
		largest := max(math32.Abs(v[i]), math32.Abs(w[i]))
		if diff > largest*factor {
			return false
		}
	}
	return true
}

// RotateAround rotates direction v around the unit axis by angle radians
// (Rodrigues' rotation formula).
func (v Vec3) RotateAround(axis Vec3, angle float32) Vec3 {
	sin, cos := math32.Sincos(angle)
	return v.Mul(cos).
		Add(axis.Cross(v).Mul(sin)).
		Add(axis.Mul(axis.Dot(v) * (1 - cos)))
}

// angleNormalized returns the angle between two unit vectors, accurate for
// nearly parallel and nearly opposite inputs.
func angleNormalized(a, b Vec3) float32 {
	if a.Dot(b) >= 0 {
		return 2 * math32.Asin(min(b.Sub(a).Length()/2, 1))
	}
	return math32.Pi - 2*math32.Asin(min(b.Neg().Sub(a).Length()/2, 1))
}

// angleSignedOnAxis returns the angle in [0, 2π) from a to b around axis,
// measured after projecting both onto the plane orthogonal to axis.
func angleSignedOnAxis(a, b, axis Vec3) float32 {
	pa := a.Sub(axis.Mul(a.Dot(axis))).Normalize()
	pb := b.Sub(axis.Mul(b.Dot(axis))).Normalize()
	if pa.IsZero() || pb.IsZero() {
		return 0
	}
	angle := angleNormalized(pa, pb)
	if pa.Cross(pb).Dot(axis) < 0 {
		angle = 2*math32.Pi - angle
	}
	return angle
}

// Vec2 is a 2D value stored as two float32 components, used for
// two-component attributes such as UV coordinates.
type Vec2 f32.Vec2

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{v[0] + w[0], v[1] + w[1]}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}
