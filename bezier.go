package curves

// segmentIsVector reports whether the segment starting at control point i is
// bounded by two vector handles. The segment after the last point is the
// closing segment of a cyclic curve.
func segmentIsVector(left, right []HandleType, i int) bool {
	next := i + 1
	if next == len(left) {
		next = 0
	}
	return right[i] == HandleVector && left[next] == HandleVector
}

// BezierEvaluatedNum returns the number of evaluated points of a Bezier
// curve with the given handle types.
func BezierEvaluatedNum(left, right []HandleType, cyclic bool, resolution int) int {
	offsets := make([]int, len(left)+1)
	bezierEvaluatedOffsets(left, right, cyclic, resolution, offsets)
	return offsets[len(left)]
}

// bezierEvaluatedOffsets writes, for every control point of one curve, the
// index of its first evaluated point, starting at 0. offsets has one more
// element than there are points; the last element is the evaluated size.
//
// A segment contributes resolution points, or one point when it is a vector
// segment. An open curve ends with one extra point for its last control point.
func bezierEvaluatedOffsets(left, right []HandleType, cyclic bool, resolution int, offsets []int) {
	n := len(left)
	offsets[0] = 0
	if n == 0 {
		return
	}
	if n == 1 {
		offsets[1] = 1
		return
	}
	resolution = max(resolution, 1)
	offset := 0
	for i := range n - 1 {
		offsets[i] = offset
		if segmentIsVector(left, right, i) {
			offset++
		} else {
			offset += resolution
		}
	}
	offsets[n-1] = offset
	switch {
	case !cyclic:
		offset++
	case segmentIsVector(left, right, n-1):
		offset++
	default:
		offset += resolution
	}
	offsets[n] = offset
}

// BezierEvaluateSegment fills dst with len(dst) evenly t-spaced samples of the
// cubic segment from p0 to p3, starting at p0 and excluding p3. It uses
// forward differencing, so each sample costs three vector additions.
func BezierEvaluateSegment(p0, p1, p2, p3 Vec3, dst []Vec3) {
	if len(dst) == 0 {
		return
	}
	invLen := 1 / float32(len(dst))
	invLen2 := invLen * invLen
	invLen3 := invLen2 * invLen

	rt1 := p1.Sub(p0).Mul(3 * invLen)
	rt2 := p0.Sub(p1.Mul(2)).Add(p2).Mul(3 * invLen2)
	rt3 := p3.Sub(p0).Add(p1.Sub(p2).Mul(3)).Mul(invLen3)

	q0 := p0
	q1 := rt1.Add(rt2).Add(rt3)
	q2 := rt2.Mul(2).Add(rt3.Mul(6))
	q3 := rt3.Mul(6)
	for i := range dst {
		dst[i] = q0
		q0 = q0.Add(q1)
		q1 = q1.Add(q2)
		q2 = q2.Add(q3)
	}
}

// bezierEvaluatePositions evaluates one curve. offsets comes from
// bezierEvaluatedOffsets. Segments with a single evaluated point (vector
// segments and the end of an open curve) produce their start point.
func bezierEvaluatePositions(positions, left, right []Vec3, offsets []int, dst []Vec3) {
	n := len(positions)
	for i := range n {
		seg := dst[offsets[i]:offsets[i+1]]
		switch len(seg) {
		case 0:
		case 1:
			seg[0] = positions[i]
		default:
			next := (i + 1) % n
			BezierEvaluateSegment(positions[i], right[i], left[next], positions[next], seg)
		}
	}
}

// interpolateLinearSegments linearly interpolates the values of one curve
// across segments, where segment i covers dst[offsets[i]:offsets[i+1]] and
// the segment after the last point wraps to the first. Values that cannot be
// mixed are stepped.
func interpolateLinearSegments[T any](ops arith[T], src []T, offsets []int, dst []T) {
	n := len(src)
	for i := range n {
		seg := dst[offsets[i]:offsets[i+1]]
		if len(seg) == 0 {
			continue
		}
		linearOrStep(ops, src[i], src[(i+1)%n], seg)
	}
}

// BezierInsertion is the result of splitting a cubic segment.
type BezierInsertion struct {
	// HandlePrev replaces the right handle of the segment start.
	HandlePrev Vec3
	// Left, Position and Right describe the new control point.
	Left     Vec3
	Position Vec3
	Right    Vec3
	// HandleNext replaces the left handle of the segment end.
	HandleNext Vec3
}

// BezierInsert splits the segment (p0, h0, h1, p1) at parameter t with de
// Casteljau's algorithm. The two halves trace the original curve exactly.
func BezierInsert(p0, h0, h1, p1 Vec3, t float32) BezierInsertion {
	center := h0.Lerp(h1, t)
	handlePrev := p0.Lerp(h0, t)
	handleNext := h1.Lerp(p1, t)
	left := handlePrev.Lerp(center, t)
	right := center.Lerp(handleNext, t)
	return BezierInsertion{
		HandlePrev: handlePrev,
		Left:       left,
		Position:   left.Lerp(right, t),
		Right:      right,
		HandleNext: handleNext,
	}
}

// autoHandleLengthFactor converts the bisector length into a handle length
// so that auto handles approximate a circle for evenly spaced points.
const autoHandleLengthFactor = 2.5614

// autoHandleClamp limits how much longer than the opposite segment an auto
// handle may become.
const autoHandleClamp = 5

// calculatePointHandles updates the handles of one control point from its
// neighbors. Free handles are left untouched.
func calculatePointHandles(typeLeft, typeRight HandleType, position, prev, next Vec3, left, right *Vec3) {
	if typeLeft == HandleAuto || typeRight == HandleAuto {
		prevDiff := position.Sub(prev)
		nextDiff := next.Sub(position)
		prevLen := prevDiff.Length()
		nextLen := nextDiff.Length()
		if prevLen == 0 {
			prevLen = 1
		}
		if nextLen == 0 {
			nextLen = 1
		}
		dir := nextDiff.Div(nextLen).Add(prevDiff.Div(prevLen))
		length := dir.Length() * autoHandleLengthFactor
		if length != 0 {
			if typeLeft == HandleAuto {
				clamped := min(prevLen, nextLen*autoHandleClamp)
				*left = position.Add(dir.Mul(-clamped / length))
			}
			if typeRight == HandleAuto {
				clamped := min(nextLen, prevLen*autoHandleClamp)
				*right = position.Add(dir.Mul(clamped / length))
			}
		}
	}

	if typeLeft == HandleVector {
		*left = position
	}
	if typeRight == HandleVector {
		*right = position
	}

	// Aligned handles mirror the opposite handle. With two aligned handles
	// the left one leads.
	switch {
	case typeLeft == HandleAlign && typeRight != HandleAlign:
		*left = alignedHandle(position, *right, *left)
	case typeRight == HandleAlign:
		*right = alignedHandle(position, *left, *right)
	}
}

// alignedHandle returns the reflection of other through position. If other
// coincides with position there is no direction to follow and current is kept.
func alignedHandle(position, other, current Vec3) Vec3 {
	if other.almostEqualRelative(position, 1e-5) {
		return current
	}
	return position.Mul(2).Sub(other)
}

// calculateAutoHandles recomputes auto, vector and align handles of one curve.
// The virtual neighbors of the ends of an open curve are mirrored across the
// end points.
func calculateAutoHandles(cyclic bool, typesLeft, typesRight []HandleType, positions, left, right []Vec3) {
	n := len(positions)
	switch n {
	case 0:
		return
	case 1:
		p := positions[0]
		calculatePointHandles(typesLeft[0], typesRight[0], p, p, p, &left[0], &right[0])
		return
	}

	var firstPrev, lastNext Vec3
	if cyclic {
		firstPrev = positions[n-1]
		lastNext = positions[0]
	} else {
		firstPrev = positions[0].Mul(2).Sub(positions[1])
		lastNext = positions[n-1].Mul(2).Sub(positions[n-2])
	}

	calculatePointHandles(typesLeft[0], typesRight[0], positions[0], firstPrev, positions[1], &left[0], &right[0])
	for i := 1; i < n-1; i++ {
		calculatePointHandles(typesLeft[i], typesRight[i], positions[i], positions[i-1], positions[i+1], &left[i], &right[i])
	}
	calculatePointHandles(typesLeft[n-1], typesRight[n-1], positions[n-1], positions[n-2], lastNext, &left[n-1], &right[n-1])
}

// hasAutoHandles reports whether any handle needs recomputation.
func hasAutoHandles(types []HandleType) bool {
	for _, t := range types {
		if t != HandleFree {
			return true
		}
	}
	return false
}

// CalculateBezierAutoHandles recomputes auto, vector and align handles of
// every Bezier curve and tags positions changed if any handle was updated.
// Missing handle buffers are created from the positions. Evaluation does this
// on its own after TagPositionsChanged; call it to read up to date handles
// before evaluating. Changing handle types also needs TagTopologyChanged,
// since vector segments evaluate to fewer points.
func (c *Curves) CalculateBezierAutoHandles() {
	if c.HasCurveWithType(Bezier) {
		c.ensureHandlePositions()
	}
	if c.updateAutoHandles() {
		c.TagPositionsChanged()
	}
}

// ensureAutoHandles brings generated handles up to date once per change of
// positions.
func (c *Curves) ensureAutoHandles() {
	c.runtime.autoHandles.Ensure(c.updateAutoHandles)
}

// updateAutoHandles writes the generated handles of all Bezier curves and
// reports whether any curve has them. Handle buffers are never created here,
// since it also runs during evaluation.
func (c *Curves) updateAutoHandles() bool {
	if !c.HasCurveWithType(Bezier) {
		return false
	}
	typesLeft := c.HandleTypesLeft()
	typesRight := c.HandleTypesRight()
	if tl, ok := typesLeft.Single(); ok && tl == HandleFree {
		if tr, ok := typesRight.Single(); ok && tr == HandleFree {
			return false
		}
	}
	tl := typesLeft.Materialize()
	tr := typesRight.Materialize()
	if !hasAutoHandles(tl) && !hasAutoHandles(tr) {
		return false
	}
	left := c.HandlePositionsLeft()
	right := c.HandlePositionsRight()
	if left == nil || right == nil {
		return false
	}

	positions := c.Positions()
	cyclic := c.Cyclic().Materialize()
	points := c.PointsByCurve()
	bezier := c.curveTypeMasks()[Bezier]

	forEachCurve(bezier, grainBezier, func(curve int) {
		r := points.At(curve)
		calculateAutoHandles(cyclic[curve],
			sliceRange(tl, r), sliceRange(tr, r),
			sliceRange(positions, r), sliceRange(left, r), sliceRange(right, r))
	})
	return true
}
