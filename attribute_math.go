package curves

import "golang.org/x/exp/constraints"

// Mixable is the set of attribute element types that can be interpolated.
// Attributes of other element types are stepped: interpolated positions take
// the value of the nearest preceding control point.
type Mixable interface {
	float32 | Vec2 | Vec3
}

// arith is the arithmetic needed to blend attribute values.
type arith[T any] interface {
	add(a, b T) T
	scale(a T, s float32) T
	lerp(a, b T, t float32) T
}

type floatArith struct{}

func (floatArith) add(a, b float32) float32          { return a + b }
func (floatArith) scale(a float32, s float32) float32 { return a * s }
func (floatArith) lerp(a, b, t float32) float32       { return lerpScalar(a, b, t) }

type vec2Arith struct{}

func (vec2Arith) add(a, b Vec2) Vec2          { return a.Add(b) }
func (vec2Arith) scale(a Vec2, s float32) Vec2 { return a.Mul(s) }
func (vec2Arith) lerp(a, b Vec2, t float32) Vec2 {
	return Vec2{lerpScalar(a[0], b[0], t), lerpScalar(a[1], b[1], t)}
}

type vec3Arith struct{}

func (vec3Arith) add(a, b Vec3) Vec3             { return a.Add(b) }
func (vec3Arith) scale(a Vec3, s float32) Vec3   { return a.Mul(s) }
func (vec3Arith) lerp(a, b Vec3, t float32) Vec3 { return a.Lerp(b, t) }

// arithFor returns the arithmetic for T, or nil if T is not mixable.
func arithFor[T any]() arith[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(floatArith{}).(arith[T])
	case Vec2:
		return any(vec2Arith{}).(arith[T])
	case Vec3:
		return any(vec3Arith{}).(arith[T])
	}
	return nil
}

// mix2 blends a and b with factor t; t=0 returns a.
func mix2[T any](ops arith[T], t float32, a, b T) T {
	return ops.lerp(a, b, t)
}

// mix4 returns the weighted sum of four values.
func mix4[T any](ops arith[T], a, b, c, d T, wa, wb, wc, wd float32) T {
	return ops.add(ops.add(ops.scale(a, wa), ops.scale(b, wb)), ops.add(ops.scale(c, wc), ops.scale(d, wd)))
}

// lerpScalar is the per-component lerp behind every mix2. It is generic so
// knot parameters and weights share it with float32 attributes.
func lerpScalar[F constraints.Float](a, b, t F) F {
	return a + (b-a)*t
}

// linearInterpolation fills dst with len(dst) evenly spaced samples starting
// at a and approaching, but not including, b.
func linearInterpolation[T any](ops arith[T], a, b T, dst []T) {
	dst[0] = a
	step := 1 / float32(len(dst))
	for i := 1; i < len(dst); i++ {
		dst[i] = mix2(ops, float32(i)*step, a, b)
	}
}

// linearOrStep interpolates mixable values and repeats a for the others.
func linearOrStep[T any](ops arith[T], a, b T, dst []T) {
	if ops == nil {
		for i := range dst {
			dst[i] = a
		}
		return
	}
	linearInterpolation(ops, a, b, dst)
}
