package curves

import (
	"fmt"
	"slices"
)

// gather builds new curves from point and curve indices of c. dstOffsets
// describes the new curves; pointIndices and curveIndices name the source
// element of every new point and curve.
func (c *Curves) gather(dstOffsets, pointIndices, curveIndices []int, filter AttributeFilter) *Curves {
	dst := newFromOffsets(dstOffsets)
	for _, name := range c.attributes.Names() {
		attr := c.attributes.columns[name]
		if _, builtin := builtinAttributes[name]; !builtin && !filter.allows(name) {
			continue
		}
		indices := pointIndices
		if attr.Domain == DomainCurve {
			indices = curveIndices
		}
		dst.attributes.put(name, attr.Domain, attr.col.gather(indices))
	}
	if c.HasCustomKnots() {
		dst.customKnots = make([][]float32, len(curveIndices))
		for i, curve := range curveIndices {
			dst.customKnots[i] = slices.Clone(c.customKnots[curve])
		}
	}
	dst.typeCounts = countCurveTypes(dst.CurveTypes())
	return dst
}

// resetChangedCustomKnots switches curves whose point count differs from
// their source curve back to generated knots.
func (c *Curves) resetChangedCustomKnots(srcCounts []int, curveIndices []int) {
	modes, ok := LookupAttribute[KnotsMode](c.attributes, AttrKnotsMode)
	if !ok {
		return
	}
	points := c.PointsByCurve()
	for i, src := range curveIndices {
		if modes[i] != KnotsCustom || points.At(i).Size == srcCounts[src] {
			continue
		}
		modes[i] = KnotsNormal
		if c.customKnots != nil {
			c.customKnots[i] = nil
		}
	}
}

// CopyCurves returns new curves containing only the selected curves, in
// selection order, with all their points and attributes.
func (c *Curves) CopyCurves(selection IndexMask) *Curves {
	if selection.Len() == c.curveNum {
		return c.Copy()
	}
	points := c.PointsByCurve()
	offsets := make([]int, selection.Len()+1)
	for i, curve := range selection {
		offsets[i] = points.At(curve).Size
	}
	total := AccumulateCountsToOffsets(offsets, 0)

	pointIndices := make([]int, 0, total)
	for _, curve := range selection {
		r := points.At(curve)
		for p := r.Start; p < r.End(); p++ {
			pointIndices = append(pointIndices, p)
		}
	}
	return c.gather(offsets, pointIndices, selection, nil)
}

// RemoveCurves returns new curves without the selected curves.
func (c *Curves) RemoveCurves(selection IndexMask) *Curves {
	if selection.IsEmpty() {
		return c.Copy()
	}
	return c.CopyCurves(selection.Complement(c.curveNum))
}

// RemovePoints returns new curves without the points in remove. Curves keep
// their cyclic flag; curves left without points are removed.
func (c *Curves) RemovePoints(remove IndexMask) *Curves {
	if remove.IsEmpty() {
		return c.Copy()
	}
	removed := remove.ToBools(c.pointNum)
	points := c.PointsByCurve()

	var (
		offsets      = []int{}
		pointIndices = make([]int, 0, c.pointNum-remove.Len())
		curveIndices []int
	)
	for curve := range c.curveNum {
		r := points.At(curve)
		before := len(pointIndices)
		for p := r.Start; p < r.End(); p++ {
			if !removed[p] {
				pointIndices = append(pointIndices, p)
			}
		}
		if len(pointIndices) > before {
			offsets = append(offsets, before)
			curveIndices = append(curveIndices, curve)
		}
	}
	offsets = append(offsets, len(pointIndices))

	dst := c.gather(offsets, pointIndices, curveIndices, nil)
	dst.resetChangedCustomKnots(c.CurvePointCounts().Materialize(), curveIndices)
	Logger().Debug("curves: remove points", "removed", remove.Len(), "curves", dst.curveNum)
	return dst
}

// RemovePointsAndSplit returns new curves without the points in remove, where
// every run of consecutive kept points becomes its own curve.
//
// A cyclic curve whose first and last points are both kept joins its last
// and first runs into one cyclic curve, emitted after its other runs, which
// are open. A cyclic curve with nothing removed stays cyclic. Custom knots are reset to
// generated knots because their curves change size.
func (c *Curves) RemovePointsAndSplit(remove IndexMask) *Curves {
	if remove.IsEmpty() {
		return c.Copy()
	}
	if remove.Len() > c.pointNum || remove[len(remove)-1] >= c.pointNum {
		panic(fmt.Sprintf("curves: removal mask exceeds %d points", c.pointNum))
	}
	removed := remove.ToBools(c.pointNum)
	points := c.PointsByCurve()
	cyclic := c.Cyclic().Materialize()

	var (
		offsets      = []int{}
		pointIndices = make([]int, 0, c.pointNum-remove.Len())
		curveIndices []int
		dstCyclic    []bool
	)
	addRuns := func(curve int, runs []IndexRange, isCyclic bool) {
		offsets = append(offsets, len(pointIndices))
		curveIndices = append(curveIndices, curve)
		dstCyclic = append(dstCyclic, isCyclic)
		start := points.At(curve).Start
		for _, run := range runs {
			for p := run.Start; p < run.End(); p++ {
				pointIndices = append(pointIndices, start+p)
			}
		}
	}

	for curve := range c.curveNum {
		r := points.At(curve)
		kept := findRanges(sliceRange(removed, r), false)
		switch {
		case len(kept) == 0:
			continue
		case len(kept) == 1 && kept[0].Size == r.Size:
			addRuns(curve, kept, cyclic[curve])
			continue
		}

		last := len(kept) - 1
		joined := cyclic[curve] && last > 0 && kept[0].Start == 0 && kept[last].End() == r.Size
		if !joined {
			for _, run := range kept {
				addRuns(curve, []IndexRange{run}, false)
			}
			continue
		}
		for _, run := range kept[1:last] {
			addRuns(curve, []IndexRange{run}, false)
		}
		addRuns(curve, []IndexRange{kept[last], kept[0]}, true)
	}
	offsets = append(offsets, len(pointIndices))

	dst := c.gather(offsets, pointIndices, curveIndices, nil)
	if c.attributes.Contains(AttrCyclic) {
		copy(dst.CyclicForWrite(), dstCyclic)
	}
	if modes, ok := LookupAttribute[KnotsMode](dst.attributes, AttrKnotsMode); ok {
		for i, m := range modes {
			if m == KnotsCustom {
				modes[i] = KnotsNormal
			}
		}
	}
	dst.customKnots = nil

	Logger().Debug("curves: remove points and split", "removed", remove.Len(),
		"curves", c.curveNum, "result", dst.curveNum)
	return dst
}

// ReverseCurves reverses the point order of the selected curves in place.
// Bezier handles and handle types swap sides so the shape is unchanged, and
// custom knot vectors are mirrored.
func (c *Curves) ReverseCurves(selection IndexMask) {
	if selection.IsEmpty() {
		return
	}
	points := c.PointsByCurve()
	for _, name := range c.attributes.NamesOnDomain(DomainPoint) {
		col := c.attributes.columns[name].col
		forEachCurve(selection, grainOffsets, func(curve int) {
			col.reverseRange(points.At(curve))
		})
	}

	left, okL := LookupAttribute[Vec3](c.attributes, AttrHandleLeft)
	right, okR := LookupAttribute[Vec3](c.attributes, AttrHandleRight)
	if okL && okR {
		swapRanges(left, right, points, selection)
	}
	typesLeft, okL := LookupAttribute[HandleType](c.attributes, AttrHandleTypeLeft)
	typesRight, okR := LookupAttribute[HandleType](c.attributes, AttrHandleTypeRight)
	if okL && okR {
		swapRanges(typesLeft, typesRight, points, selection)
	}

	for _, curve := range selection {
		if knots := c.CustomKnots(curve); knots != nil {
			mirrored := make([]float32, len(knots))
			first, last := knots[0], knots[len(knots)-1]
			for i := range knots {
				mirrored[i] = first + last - knots[len(knots)-1-i]
			}
			c.customKnots[curve] = mirrored
		}
	}
	c.TagTopologyChanged()
}

// swapRanges exchanges the values of a and b in the points of the selected
// curves.
func swapRanges[T any](a, b []T, points OffsetIndices, selection IndexMask) {
	forEachCurve(selection, grainOffsets, func(curve int) {
		r := points.At(curve)
		for i := r.Start; i < r.End(); i++ {
			a[i], b[i] = b[i], a[i]
		}
	})
}
