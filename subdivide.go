package curves

import (
	"fmt"

	"github.com/gogpu/gg-curves/internal/parallel"
)

func (c *typedColumn[T]) subdivideLinear(dst column, srcPoints, dstPoints IndexRange, segmentOffsets []int, _ bool) {
	out := dst.(*typedColumn[T]).values
	interpolateLinearSegments(c.ops, sliceRange(c.values, srcPoints), segmentOffsets, sliceRange(out, dstPoints))
}

func (c *typedColumn[T]) subdivideCatmullRom(dst column, srcPoints, dstPoints IndexRange, segmentOffsets []int, cyclic bool) {
	out := dst.(*typedColumn[T]).values
	catmullRomInterpolateWithOffsets(c.ops, sliceRange(c.values, srcPoints), cyclic, segmentOffsets, sliceRange(out, dstPoints))
}

// Subdivide inserts cuts[i] new points after control point i of every
// selected curve. cuts has one value per point; negative values count as
// zero and the last point of an open curve never gets cuts.
//
// Poly and NURBS attributes are interpolated linearly, Catmull-Rom
// attributes with the Catmull-Rom basis so the shape is kept. Bezier
// positions and handles are split with de Casteljau's algorithm and keep the
// exact shape; other Bezier attributes are interpolated linearly.
// Unselected curves are copied unchanged. filter decides which non built-in
// attributes are transferred.
//
// When nothing would change (no points, empty selection, no cuts) a copy of c
// is returned.
func (c *Curves) Subdivide(selection IndexMask, cuts VArray[int], filter AttributeFilter) *Curves {
	if c.pointNum == 0 || selection.IsEmpty() {
		return c.Copy()
	}
	if v, ok := cuts.Single(); ok && v < 1 {
		return c.Copy()
	}
	if cuts.Len() != c.pointNum {
		panic(fmt.Sprintf("curves: %d cut counts for %d points", cuts.Len(), c.pointNum))
	}

	points := c.PointsByCurve()
	cyclic := c.Cyclic().Materialize()
	cutsValues := cuts.Materialize()

	// Local segment offsets of every selected curve, indexed with
	// perCurvePointOffsetsRange, and the new point count of every curve.
	segmentOffsets := make([]int, c.pointNum+c.curveNum)
	dstOffsets := make([]int, c.curveNum+1)
	for curve := range c.curveNum {
		dstOffsets[curve] = points.At(curve).Size
	}
	forEachCurve(selection, grainOffsets, func(curve int) {
		r := points.At(curve)
		offsets := sliceRange(segmentOffsets, perCurvePointOffsetsRange(r, curve))
		for i := range r.Size {
			switch {
			case r.Size == 1, !cyclic[curve] && i == r.Size-1:
				offsets[i] = 1
			default:
				offsets[i] = max(cutsValues[r.Start+i], 0) + 1
			}
		}
		dstOffsets[curve] = AccumulateCountsToOffsets(offsets, 0)
	})
	total := AccumulateCountsToOffsets(dstOffsets, 0)
	if total == c.pointNum {
		return c.Copy()
	}

	dst := newFromOffsets(dstOffsets)
	dst.typeCounts = c.typeCounts
	dstPoints := dst.PointsByCurve()
	unselected := selection.Complement(c.curveNum)

	types := c.CurveTypes()
	var byType [numCurveTypes]IndexMask
	for _, curve := range selection {
		t := types.At(curve)
		byType[t] = append(byType[t], curve)
	}
	localOffsets := func(curve int) []int {
		return sliceRange(segmentOffsets, perCurvePointOffsetsRange(points.At(curve), curve))
	}

	for _, name := range c.attributes.Names() {
		attr := c.attributes.columns[name]
		if attr.Domain == DomainCurve {
			dst.attributes.put(name, DomainCurve, attr.col.clone())
			continue
		}
		if _, builtin := builtinAttributes[name]; !builtin && !filter.allows(name) {
			continue
		}
		src := attr.col
		out := src.empty(total)
		copyGroupsParallel(out, src, points, dstPoints, unselected)
		for t, mask := range byType {
			subdivide := src.subdivideLinear
			if CurveType(t) == CatmullRom {
				subdivide = src.subdivideCatmullRom
			}
			forEachCurve(mask, grainEvaluate, func(curve int) {
				subdivide(out, points.At(curve), dstPoints.At(curve), localOffsets(curve), cyclic[curve])
			})
		}
		dst.attributes.put(name, DomainPoint, out)
	}

	if len(byType[Bezier]) > 0 {
		c.subdivideBezier(dst, byType[Bezier], localOffsets, cyclic)
	}
	c.subdivideCustomKnots(dst, selection)

	Logger().Debug("curves: subdivide", "curves", selection.Len(), "points", c.pointNum, "result", total)
	return dst
}

// copyGroupsParallel copies the point values of the given curves.
func copyGroupsParallel(dst, src column, srcOffsets, dstOffsets OffsetIndices, curves IndexMask) {
	parallel.For(len(curves), grainOffsets, func(start, end int) {
		dst.copyGroups(src, srcOffsets, dstOffsets, curves[start:end])
	})
}

// bezierSpans are the Bezier control arrays of one curve.
type bezierSpans struct {
	positions  []Vec3
	left       []Vec3
	right      []Vec3
	typesLeft  []HandleType
	typesRight []HandleType
}

// subdivideBezier overwrites the positions, handles and handle types of the
// subdivided Bezier curves in dst with the exact split of the source curves.
func (c *Curves) subdivideBezier(dst *Curves, curves IndexMask, localOffsets func(int) []int, cyclic []bool) {
	c.ensureAutoHandles()
	positions := c.Positions()
	left, right := c.HandlePositionsLeft(), c.HandlePositionsRight()
	if left == nil {
		left = positions
	}
	if right == nil {
		right = positions
	}
	typesLeft := c.HandleTypesLeft().Materialize()
	typesRight := c.HandleTypesRight().Materialize()

	dstPositions := dst.Positions()
	dstLeft := dst.handleBufferForSubdivide(AttrHandleLeft, dstPositions)
	dstRight := dst.handleBufferForSubdivide(AttrHandleRight, dstPositions)
	dstTypesLeft := dst.HandleTypesLeftForWrite()
	dstTypesRight := dst.HandleTypesRightForWrite()

	points := c.PointsByCurve()
	dstPoints := dst.PointsByCurve()
	forEachCurve(curves, grainEvaluate, func(curve int) {
		r, dr := points.At(curve), dstPoints.At(curve)
		src := bezierSpans{
			positions:  sliceRange(positions, r),
			left:       sliceRange(left, r),
			right:      sliceRange(right, r),
			typesLeft:  sliceRange(typesLeft, r),
			typesRight: sliceRange(typesRight, r),
		}
		out := bezierSpans{
			positions:  sliceRange(dstPositions, dr),
			left:       sliceRange(dstLeft, dr),
			right:      sliceRange(dstRight, dr),
			typesLeft:  sliceRange(dstTypesLeft, dr),
			typesRight: sliceRange(dstTypesRight, dr),
		}
		subdivideBezierCurve(src, localOffsets(curve), cyclic[curve], out)
	})
}

// handleBufferForSubdivide returns a handle attribute of dst. A handle that
// did not exist in the source starts as a copy of the positions, which is how
// missing handles are evaluated.
func (c *Curves) handleBufferForSubdivide(name string, positions []Vec3) []Vec3 {
	if values, ok := LookupAttribute[Vec3](c.attributes, name); ok {
		return values
	}
	values := lookupOrAdd(c.attributes, name, DomainPoint, Vec3{})
	copy(values, positions)
	return values
}

// subdivideBezierCurve splits every segment of one curve into the number of
// segments given by offsets and recomputes auto, vector and align handles.
func subdivideBezierCurve(src bezierSpans, offsets []int, cyclic bool, dst bezierSpans) {
	n := len(src.positions)
	if n == 0 {
		return
	}
	for i := range n - 1 {
		subdivideBezierSegment(src, i, i+1, Range(offsets[i], offsets[i+1]-offsets[i]), dst, false)
	}
	last := len(dst.positions) - 1
	if cyclic {
		subdivideBezierSegment(src, n-1, 0, Range(offsets[n-1], offsets[n]-offsets[n-1]), dst, true)
	} else {
		dst.positions[last] = src.positions[n-1]
		dst.typesLeft[0] = src.typesLeft[0]
		dst.left[0] = src.left[0]
		dst.typesRight[last] = src.typesRight[n-1]
		dst.right[last] = src.right[n-1]
	}
	freezeSplitEnds(offsets, n, cyclic, dst)
	calculateAutoHandles(cyclic, dst.typesLeft, dst.typesRight, dst.positions, dst.left, dst.right)
}

// freezeSplitEnds turns the auto and align handles of every original point
// next to a cut segment into free handles. Their neighbors moved closer, so
// recomputing them would bend the curve.
func freezeSplitEnds(offsets []int, n int, cyclic bool, dst bezierSpans) {
	segments := n - 1
	if cyclic {
		segments = n
	}
	freeze := func(point int) {
		p := offsets[point]
		if t := dst.typesLeft[p]; t == HandleAuto || t == HandleAlign {
			dst.typesLeft[p] = HandleFree
		}
		if t := dst.typesRight[p]; t == HandleAuto || t == HandleAlign {
			dst.typesRight[p] = HandleFree
		}
	}
	for i := range segments {
		if offsets[i+1]-offsets[i] > 1 {
			freeze(i)
			freeze((i + 1) % n)
		}
	}
}

// subdivideBezierSegment writes the points of the segment from src point i to
// src point next into dst[seg]. A segment without cuts is copied verbatim. A
// vector segment stays straight with vector handles. Any other segment is
// split with repeated de Casteljau insertion and gets free handles.
func subdivideBezierSegment(src bezierSpans, i, next int, seg IndexRange, dst bezierSpans, lastCyclic bool) {
	dstNext := seg.End()
	if lastCyclic {
		dstNext = 0
	}

	if seg.Size == 1 {
		dst.positions[seg.Start] = src.positions[i]
		dst.right[seg.Start] = src.right[i]
		dst.typesRight[seg.Start] = src.typesRight[i]
		dst.left[dstNext] = src.left[next]
		dst.typesLeft[dstNext] = src.typesLeft[next]
		return
	}

	// The left handle of the segment's first point belongs to the previous
	// segment; the left handle of the following point belongs to this one.
	fillTypes := func(t HandleType) {
		for p := seg.Start; p < seg.End(); p++ {
			dst.typesRight[p] = t
		}
		for p := seg.Start + 1; p < seg.End(); p++ {
			dst.typesLeft[p] = t
		}
		dst.typesLeft[dstNext] = t
	}

	if src.typesRight[i] == HandleVector && src.typesLeft[next] == HandleVector {
		linearInterpolation[Vec3](vec3Arith{}, src.positions[i], src.positions[next], sliceRange(dst.positions, seg))
		fillTypes(HandleVector)
		return
	}

	dst.positions[seg.Start] = src.positions[i]
	fillTypes(HandleFree)

	start := src.positions[i]
	handlePrev := src.right[i]
	handleNext := src.left[next]
	end := src.positions[next]
	for k := range seg.Size - 1 {
		t := 1 / float32(seg.Size-k)
		p := seg.Start + k
		ins := BezierInsert(start, handlePrev, handleNext, end, t)
		dst.right[p] = ins.HandlePrev
		dst.left[p+1] = ins.Left
		dst.positions[p+1] = ins.Position

		start = ins.Position
		handlePrev = ins.Right
		handleNext = ins.HandleNext
	}
	dst.right[seg.Last()] = handlePrev
	dst.left[dstNext] = handleNext
}

// subdivideCustomKnots keeps the custom knots of curves whose point count did
// not change and resets the others to generated knots.
func (c *Curves) subdivideCustomKnots(dst *Curves, selection IndexMask) {
	if !c.HasCustomKnots() {
		return
	}
	dst.customKnots = make([][]float32, c.curveNum)
	for i, k := range c.customKnots {
		dst.customKnots[i] = append([]float32(nil), k...)
	}
	modes, ok := LookupAttribute[KnotsMode](dst.attributes, AttrKnotsMode)
	points, dstPoints := c.PointsByCurve(), dst.PointsByCurve()
	for _, curve := range selection {
		if dst.customKnots[curve] == nil || points.At(curve).Size == dstPoints.At(curve).Size {
			continue
		}
		dst.customKnots[curve] = nil
		if ok && modes[curve] == KnotsCustom {
			modes[curve] = KnotsNormal
		}
	}
}
