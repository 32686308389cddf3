package curves

// effectiveCyclic reports whether a Catmull-Rom or NURBS curve with points
// control points is evaluated as closed. Two points cannot form a closed
// spline of these types, so the flag is ignored for them.
func effectiveCyclic(points int, cyclic bool) bool {
	return cyclic && points > 2
}

// segmentsNum returns the number of segments between control points.
func segmentsNum(points int, cyclic bool) int {
	if cyclic {
		return points
	}
	return points - 1
}

// CatmullRomEvaluatedNum returns the number of evaluated points of a
// Catmull-Rom curve.
func CatmullRomEvaluatedNum(points int, cyclic bool, resolution int) int {
	if points <= 1 {
		return points
	}
	resolution = max(resolution, 1)
	cyclic = effectiveCyclic(points, cyclic)
	n := segmentsNum(points, cyclic) * resolution
	if !cyclic {
		n++
	}
	return n
}

// catmullRomWeights returns the uniform Catmull-Rom basis at parameter t for
// the control points before, at the start of, at the end of and after the
// segment.
func catmullRomWeights(t float32) (w1, w2, w3, w4 float32) {
	t2 := t * t
	t3 := t2 * t
	w1 = -0.5*t3 + t2 - 0.5*t
	w2 = 1.5*t3 - 2.5*t2 + 1
	w3 = -1.5*t3 + 2*t2 + 0.5*t
	w4 = 0.5*t3 - 0.5*t2
	return w1, w2, w3, w4
}

// CatmullRomInterpolate evaluates the segment between b and c at parameter t.
func CatmullRomInterpolate(a, b, c, d Vec3, t float32) Vec3 {
	w1, w2, w3, w4 := catmullRomWeights(t)
	return mix4[Vec3](vec3Arith{}, a, b, c, d, w1, w2, w3, w4)
}

// catmullRomEvaluateSegment fills dst with samples of the segment from b to
// c. The first sample is b exactly. Values that cannot be mixed repeat b.
func catmullRomEvaluateSegment[T any](ops arith[T], a, b, c, d T, dst []T) {
	if len(dst) == 0 {
		return
	}
	dst[0] = b
	if ops == nil {
		for i := 1; i < len(dst); i++ {
			dst[i] = b
		}
		return
	}
	step := 1 / float32(len(dst))
	for i := 1; i < len(dst); i++ {
		w1, w2, w3, w4 := catmullRomWeights(float32(i) * step)
		dst[i] = mix4(ops, a, b, c, d, w1, w2, w3, w4)
	}
}

// catmullRomInterpolate samples every segment of a curve into dst.
// segment(i) returns the destination range of the segment starting at
// control point i; for an open curve segment(len(src)-1) is the single final
// point.
func catmullRomInterpolate[T any](ops arith[T], src []T, cyclic bool, segment func(i int) IndexRange, dst []T) {
	n := len(src)
	switch n {
	case 0:
		return
	case 1:
		if r := segment(0); r.Size > 0 {
			dst[r.Start] = src[0]
		}
		return
	case 2:
		// The closing segment of a cyclic two point curve retraces the first
		// one; for an open curve its range is the single final point.
		catmullRomEvaluateSegment(ops, src[0], src[0], src[1], src[1], sliceRange(dst, segment(0)))
		catmullRomEvaluateSegment(ops, src[1], src[1], src[0], src[0], sliceRange(dst, segment(1)))
		return
	}

	// The end segments wrap around (cyclic) or repeat the end point (open).
	if cyclic {
		catmullRomEvaluateSegment(ops, src[n-1], src[0], src[1], src[2], sliceRange(dst, segment(0)))
		catmullRomEvaluateSegment(ops, src[n-3], src[n-2], src[n-1], src[0], sliceRange(dst, segment(n-2)))
		catmullRomEvaluateSegment(ops, src[n-2], src[n-1], src[0], src[1], sliceRange(dst, segment(n-1)))
	} else {
		catmullRomEvaluateSegment(ops, src[0], src[0], src[1], src[2], sliceRange(dst, segment(0)))
		catmullRomEvaluateSegment(ops, src[n-3], src[n-2], src[n-1], src[n-1], sliceRange(dst, segment(n-2)))
		if r := segment(n - 1); r.Size > 0 {
			dst[r.Start] = src[n-1]
		}
	}
	for i := 1; i < n-2; i++ {
		catmullRomEvaluateSegment(ops, src[i-1], src[i], src[i+1], src[i+2], sliceRange(dst, segment(i)))
	}
}

// catmullRomInterpolateToEvaluated samples a curve at a uniform resolution.
// dst must have CatmullRomEvaluatedNum elements.
func catmullRomInterpolateToEvaluated[T any](ops arith[T], src []T, cyclic bool, resolution int, dst []T) {
	resolution = max(resolution, 1)
	catmullRomInterpolate(ops, src, cyclic, func(i int) IndexRange {
		// The final point of an open curve gets a range of size one.
		start := i * resolution
		return Range(start, min(resolution, len(dst)-start))
	}, dst)
}

// catmullRomInterpolateWithOffsets samples a curve where segment i covers
// dst[offsets[i]:offsets[i+1]]. offsets has len(src)+1 elements starting at 0.
func catmullRomInterpolateWithOffsets[T any](ops arith[T], src []T, cyclic bool, offsets []int, dst []T) {
	catmullRomInterpolate(ops, src, cyclic, func(i int) IndexRange {
		return Range(offsets[i], offsets[i+1]-offsets[i])
	}, dst)
}
