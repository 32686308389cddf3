package curves

import (
	"fmt"
	"slices"
)

// Curves stores the control data of a set of curves in flat arrays.
//
// Points of all curves are stored back to back; curve i owns the points in
// PointsRange(i). Per-point and per-curve data live in named attributes, and
// derived data (evaluated offsets, positions, tangents, normals, lengths, NURBS
// basis weights) is computed lazily and cached.
//
// A Curves value has a single writer: after changing control data through a
// ForWrite accessor the caller must call the matching tag method
// (TagPositionsChanged, TagTopologyChanged or TagNormalsChanged), otherwise
// derived data is stale. Reading derived data from many goroutines at once is
// safe while no mutation is in flight.
type Curves struct {
	pointNum int
	curveNum int

	// curveOffsets always has curveNum+1 elements.
	curveOffsets []int

	attributes *Attributes

	// customKnots holds a knot vector per curve whose knots mode is
	// KnotsCustom. It is nil when no curve has custom knots.
	customKnots [][]float32

	typeCounts [numCurveTypes]int

	runtime *runtime
}

// New creates curves with the given number of points and curves. Positions
// are zero, offsets start at 0 and end at pointNum; the caller fills the
// offsets in between. All derived caches start dirty.
func New(pointNum, curveNum int) *Curves {
	if pointNum < 0 || curveNum < 0 {
		panic(fmt.Sprintf("curves: negative size (%d points, %d curves)", pointNum, curveNum))
	}
	c := &Curves{
		pointNum:     pointNum,
		curveNum:     curveNum,
		curveOffsets: make([]int, curveNum+1),
		attributes:   newAttributes(pointNum, curveNum),
		runtime:      newRuntime(),
	}
	c.curveOffsets[curveNum] = pointNum
	c.attributes.put(AttrPosition, DomainPoint, newColumn(make([]Vec3, pointNum)))
	c.typeCounts[CatmullRom] = curveNum
	return c
}

// Empty returns curves without points or curves.
func Empty() *Curves {
	return New(0, 0)
}

// NewWithCounts creates curves whose offsets are built from per-curve point
// counts.
func NewWithCounts(counts []int) *Curves {
	offsets := make([]int, len(counts)+1)
	copy(offsets, counts)
	total := AccumulateCountsToOffsets(offsets, 0)
	c := New(total, len(counts))
	copy(c.curveOffsets, offsets)
	return c
}

// PointsNum returns the number of control points.
func (c *Curves) PointsNum() int { return c.pointNum }

// CurvesNum returns the number of curves.
func (c *Curves) CurvesNum() int { return c.curveNum }

// IsEmpty reports whether there are no points.
func (c *Curves) IsEmpty() bool { return c.pointNum == 0 }

// CurvesRange returns the range of all curve indices.
func (c *Curves) CurvesRange() IndexRange { return Range(0, c.curveNum) }

// PointsRangeAll returns the range of all point indices.
func (c *Curves) PointsRangeAll() IndexRange { return Range(0, c.pointNum) }

// Offsets returns the curve offsets (curveNum+1 prefix sums).
func (c *Curves) Offsets() []int { return c.curveOffsets }

// OffsetsForWrite returns the curve offsets for modification. Call
// TagTopologyChanged afterwards.
func (c *Curves) OffsetsForWrite() []int { return c.curveOffsets }

// PointsByCurve returns an O(1) lookup from curve index to point range.
func (c *Curves) PointsByCurve() OffsetIndices {
	return NewOffsetIndices(c.curveOffsets)
}

// PointsRange returns the points of curve i. It panics if i is out of range.
func (c *Curves) PointsRange(i int) IndexRange {
	return c.PointsByCurve().At(i)
}

// CurvePointCounts returns the number of points of every curve as a
// computed view over the offsets.
func (c *Curves) CurvePointCounts() VArray[int] {
	offsets := c.curveOffsets
	return VArrayFunc(c.curveNum, func(i int) int { return offsets[i+1] - offsets[i] })
}

// Attributes returns the attribute storage.
func (c *Curves) Attributes() *Attributes { return c.attributes }

// Positions returns the control point positions.
func (c *Curves) Positions() []Vec3 {
	return lookupOrAdd(c.attributes, AttrPosition, DomainPoint, Vec3{})
}

// PositionsForWrite returns the control point positions for modification.
// Call TagPositionsChanged afterwards.
func (c *Curves) PositionsForWrite() []Vec3 { return c.Positions() }

// HandlePositionsLeft returns the left Bezier handles, or nil if none exist.
func (c *Curves) HandlePositionsLeft() []Vec3 {
	h, _ := LookupAttribute[Vec3](c.attributes, AttrHandleLeft)
	return h
}

// HandlePositionsRight returns the right Bezier handles, or nil if none exist.
func (c *Curves) HandlePositionsRight() []Vec3 {
	h, _ := LookupAttribute[Vec3](c.attributes, AttrHandleRight)
	return h
}

// HandlePositionsLeftForWrite returns the left handles, creating them if needed.
func (c *Curves) HandlePositionsLeftForWrite() []Vec3 {
	return lookupOrAdd(c.attributes, AttrHandleLeft, DomainPoint, Vec3{})
}

// HandlePositionsRightForWrite returns the right handles, creating them if needed.
func (c *Curves) HandlePositionsRightForWrite() []Vec3 {
	return lookupOrAdd(c.attributes, AttrHandleRight, DomainPoint, Vec3{})
}

// HandleTypesLeft returns the left handle types (default HandleFree).
func (c *Curves) HandleTypesLeft() VArray[HandleType] {
	return lookupVArray(c.attributes, AttrHandleTypeLeft, DomainPoint, HandleFree)
}

// HandleTypesRight returns the right handle types (default HandleFree).
func (c *Curves) HandleTypesRight() VArray[HandleType] {
	return lookupVArray(c.attributes, AttrHandleTypeRight, DomainPoint, HandleFree)
}

// HandleTypesLeftForWrite returns the left handle types for modification.
// Handle types decide which segments are vector segments, so call
// TagTopologyChanged afterwards. Missing handle positions are created at the
// control points, ready for auto, vector and align handles.
func (c *Curves) HandleTypesLeftForWrite() []HandleType {
	c.ensureHandlePositions()
	return lookupOrAdd(c.attributes, AttrHandleTypeLeft, DomainPoint, HandleFree)
}

// HandleTypesRightForWrite returns the right handle types for modification.
// Call TagTopologyChanged afterwards.
func (c *Curves) HandleTypesRightForWrite() []HandleType {
	c.ensureHandlePositions()
	return lookupOrAdd(c.attributes, AttrHandleTypeRight, DomainPoint, HandleFree)
}

// ensureHandlePositions creates missing handle positions as copies of the
// control points.
func (c *Curves) ensureHandlePositions() {
	for _, name := range [...]string{AttrHandleLeft, AttrHandleRight} {
		if !c.attributes.Contains(name) {
			copy(lookupOrAdd(c.attributes, name, DomainPoint, Vec3{}), c.Positions())
		}
	}
}

// NURBSWeights returns the rational weights of control points (default 1).
func (c *Curves) NURBSWeights() VArray[float32] {
	return lookupVArray(c.attributes, AttrNURBSWeight, DomainPoint, float32(1))
}

// NURBSWeightsForWrite returns the rational weights for modification.
func (c *Curves) NURBSWeightsForWrite() []float32 {
	return lookupOrAdd(c.attributes, AttrNURBSWeight, DomainPoint, float32(1))
}

// Radius returns the per-point radius (default 1).
func (c *Curves) Radius() VArray[float32] {
	return lookupVArray(c.attributes, AttrRadius, DomainPoint, float32(1))
}

// RadiusForWrite returns the per-point radius for modification.
func (c *Curves) RadiusForWrite() []float32 {
	return lookupOrAdd(c.attributes, AttrRadius, DomainPoint, float32(1))
}

// Tilt returns the per-point tilt in radians (default 0).
func (c *Curves) Tilt() VArray[float32] {
	return lookupVArray(c.attributes, AttrTilt, DomainPoint, float32(0))
}

// TiltForWrite returns the per-point tilt for modification. Call
// TagNormalsChanged afterwards.
func (c *Curves) TiltForWrite() []float32 {
	return lookupOrAdd(c.attributes, AttrTilt, DomainPoint, float32(0))
}

// Cyclic returns whether each curve is closed (default false).
func (c *Curves) Cyclic() VArray[bool] {
	return lookupVArray(c.attributes, AttrCyclic, DomainCurve, false)
}

// CyclicForWrite returns the cyclic flags for modification. Call
// TagTopologyChanged afterwards.
func (c *Curves) CyclicForWrite() []bool {
	return lookupOrAdd(c.attributes, AttrCyclic, DomainCurve, false)
}

// Resolution returns the evaluation density of each curve (default 12).
func (c *Curves) Resolution() VArray[int32] {
	return lookupVArray(c.attributes, AttrResolution, DomainCurve, int32(DefaultResolution))
}

// ResolutionForWrite returns the resolutions for modification. Call
// TagTopologyChanged afterwards.
func (c *Curves) ResolutionForWrite() []int32 {
	return lookupOrAdd(c.attributes, AttrResolution, DomainCurve, int32(DefaultResolution))
}

// NURBSOrders returns the order of each NURBS curve (default 4).
func (c *Curves) NURBSOrders() VArray[int8] {
	return lookupVArray(c.attributes, AttrNURBSOrder, DomainCurve, int8(DefaultNURBSOrder))
}

// NURBSOrdersForWrite returns the NURBS orders for modification. Call
// TagTopologyChanged afterwards.
func (c *Curves) NURBSOrdersForWrite() []int8 {
	return lookupOrAdd(c.attributes, AttrNURBSOrder, DomainCurve, int8(DefaultNURBSOrder))
}

// KnotsModes returns the knot vector mode of each NURBS curve.
func (c *Curves) KnotsModes() VArray[KnotsMode] {
	return lookupVArray(c.attributes, AttrKnotsMode, DomainCurve, KnotsNormal)
}

// KnotsModesForWrite returns the knot modes for modification. Call
// TagTopologyChanged afterwards.
func (c *Curves) KnotsModesForWrite() []KnotsMode {
	return lookupOrAdd(c.attributes, AttrKnotsMode, DomainCurve, KnotsNormal)
}

// NormalModes returns the normal mode of each curve.
func (c *Curves) NormalModes() VArray[NormalMode] {
	return lookupVArray(c.attributes, AttrNormalMode, DomainCurve, NormalMinimumTwist)
}

// NormalModesForWrite returns the normal modes for modification. Call
// TagNormalsChanged afterwards.
func (c *Curves) NormalModesForWrite() []NormalMode {
	return lookupOrAdd(c.attributes, AttrNormalMode, DomainCurve, NormalMinimumTwist)
}

// CustomKnots returns the custom knot vector of a curve, or nil.
func (c *Curves) CustomKnots(curve int) []float32 {
	if c.customKnots == nil {
		return nil
	}
	return c.customKnots[curve]
}

// SetCustomKnots stores a knot vector for a curve and switches its knots mode
// to KnotsCustom. Passing nil removes the knots and resets the mode to
// KnotsNormal. Invalid vectors are accepted; such curves evaluate as a single
// degenerate point.
func (c *Curves) SetCustomKnots(curve int, knots []float32) {
	if curve < 0 || curve >= c.curveNum {
		panic(fmt.Sprintf("curves: curve index %d out of range [0, %d)", curve, c.curveNum))
	}
	modes := c.KnotsModesForWrite()
	if knots == nil {
		if c.customKnots != nil {
			c.customKnots[curve] = nil
		}
		modes[curve] = KnotsNormal
	} else {
		if c.customKnots == nil {
			c.customKnots = make([][]float32, c.curveNum)
		}
		c.customKnots[curve] = slices.Clone(knots)
		modes[curve] = KnotsCustom
	}
	c.TagTopologyChanged()
}

// HasCustomKnots reports whether any curve stores a custom knot vector.
func (c *Curves) HasCustomKnots() bool {
	for _, k := range c.customKnots {
		if k != nil {
			return true
		}
	}
	return false
}

// resetCustomKnots drops all custom knot vectors and switches those curves
// back to KnotsNormal.
func (c *Curves) resetCustomKnots() {
	if c.customKnots == nil {
		return
	}
	if modes, ok := LookupAttribute[KnotsMode](c.attributes, AttrKnotsMode); ok {
		for i, m := range modes {
			if m == KnotsCustom {
				modes[i] = KnotsNormal
			}
		}
	}
	c.customKnots = nil
}

// CurveTypes returns the type of each curve. A homogeneous store without a
// curve type attribute returns a single-value view.
func (c *Curves) CurveTypes() VArray[CurveType] {
	return lookupVArray(c.attributes, AttrCurveType, DomainCurve, CatmullRom)
}

// CurveTypesForWrite returns the curve types for modification. Call
// UpdateCurveTypes afterwards.
func (c *Curves) CurveTypesForWrite() []CurveType {
	return lookupOrAdd(c.attributes, AttrCurveType, DomainCurve, CatmullRom)
}

// FillCurveTypes sets every curve to t.
func (c *Curves) FillCurveTypes(t CurveType) {
	if t == CatmullRom {
		// The default needs no storage.
		c.attributes.Remove(AttrCurveType)
	} else {
		types := c.CurveTypesForWrite()
		for i := range types {
			types[i] = t
		}
	}
	c.typeCounts = [numCurveTypes]int{}
	c.typeCounts[t] = c.curveNum
	c.TagTopologyChanged()
}

// SetCurveTypes sets the curves in selection to t.
func (c *Curves) SetCurveTypes(selection IndexMask, t CurveType) {
	if selection.Len() == c.curveNum {
		c.FillCurveTypes(t)
		return
	}
	types := c.CurveTypesForWrite()
	for _, i := range selection {
		types[i] = t
	}
	c.UpdateCurveTypes()
}

// UpdateCurveTypes recounts the curve types after direct writes and tags the
// topology changed.
func (c *Curves) UpdateCurveTypes() {
	c.typeCounts = countCurveTypes(c.CurveTypes())
	c.TagTopologyChanged()
}

func countCurveTypes(types VArray[CurveType]) [numCurveTypes]int {
	var counts [numCurveTypes]int
	if t, ok := types.Single(); ok {
		counts[t] = types.Len()
		return counts
	}
	for _, t := range types.Materialize() {
		if t >= 0 && t < numCurveTypes {
			counts[t]++
		}
	}
	return counts
}

// CurveTypeCounts returns how many curves have each type, indexed by CurveType.
func (c *Curves) CurveTypeCounts() [4]int { return c.typeCounts }

// HasCurveWithType reports whether any curve has one of the given types.
func (c *Curves) HasCurveWithType(types ...CurveType) bool {
	for _, t := range types {
		if c.typeCounts[t] > 0 {
			return true
		}
	}
	return false
}

// IsSingleType reports whether every curve has type t.
func (c *Curves) IsSingleType(t CurveType) bool {
	return c.typeCounts[t] == c.curveNum
}

// curveTypeMasks groups curve indices by type.
func (c *Curves) curveTypeMasks() [numCurveTypes]IndexMask {
	var masks [numCurveTypes]IndexMask
	types := c.CurveTypes()
	if t, ok := types.Single(); ok {
		masks[t] = MaskFromRange(c.CurvesRange())
		return masks
	}
	for t := range masks {
		masks[t] = make(IndexMask, 0, c.typeCounts[t])
	}
	for i, t := range types.Materialize() {
		masks[t] = append(masks[t], i)
	}
	return masks
}

// TagPositionsChanged invalidates data derived from positions, handles and
// NURBS weights. Auto, vector and align handles are recomputed before the
// next evaluation.
func (c *Curves) TagPositionsChanged() {
	r := c.runtime
	r.autoHandles.Tag()
	r.evaluatedPositions.Tag()
	r.evaluatedTangents.Tag()
	r.evaluatedNormals.Tag()
	r.evaluatedLengths.Tag()
	r.bounds.Tag()
}

// TagTopologyChanged invalidates all derived data. Call it after changing
// offsets, curve types, cyclic flags, resolutions, NURBS orders or knots.
func (c *Curves) TagTopologyChanged() {
	c.runtime.evaluatedOffsets.Tag()
	c.runtime.nurbsBasis.Tag()
	c.TagPositionsChanged()
}

// TagNormalsChanged invalidates evaluated normals. Call it after changing
// tilt or normal modes.
func (c *Curves) TagNormalsChanged() {
	c.runtime.evaluatedNormals.Tag()
}

// Copy returns a deep copy with fresh (dirty) derived caches.
func (c *Curves) Copy() *Curves {
	out := &Curves{
		pointNum:     c.pointNum,
		curveNum:     c.curveNum,
		curveOffsets: slices.Clone(c.curveOffsets),
		attributes:   c.attributes.clone(),
		typeCounts:   c.typeCounts,
		runtime:      newRuntime(),
	}
	if c.customKnots != nil {
		out.customKnots = make([][]float32, len(c.customKnots))
		for i, k := range c.customKnots {
			out.customKnots[i] = slices.Clone(k)
		}
	}
	return out
}

// Move transfers all buffers and caches to a new Curves and leaves c empty.
func (c *Curves) Move() *Curves {
	out := &Curves{}
	*out = *c
	*c = *Empty()
	return out
}

// Resize changes the number of points and curves, keeping leading values of
// every attribute and zero-filling new ones. New offsets repeat the previous
// last offset except the final entry, which becomes pointNum.
func (c *Curves) Resize(pointNum, curveNum int) {
	if pointNum < 0 || curveNum < 0 {
		panic(fmt.Sprintf("curves: negative size (%d points, %d curves)", pointNum, curveNum))
	}
	if curveNum != c.curveNum {
		offsets := make([]int, curveNum+1)
		n := copy(offsets, c.curveOffsets[:min(len(c.curveOffsets), curveNum+1)])
		for i := n; i < len(offsets); i++ {
			offsets[i] = offsets[max(n-1, 0)]
		}
		c.curveOffsets = offsets
		if c.customKnots != nil {
			knots := make([][]float32, curveNum)
			copy(knots, c.customKnots)
			c.customKnots = knots
		}
	}
	c.curveOffsets[curveNum] = pointNum
	c.pointNum = pointNum
	c.curveNum = curveNum
	c.attributes.resize(pointNum, curveNum)
	c.typeCounts = countCurveTypes(c.CurveTypes())
	c.TagTopologyChanged()
}

// newFromOffsets creates curves with the given offsets, carrying over nothing but
// the sizes. Attributes are filled in by the structural editors.
func newFromOffsets(offsets []int) *Curves {
	curveNum := len(offsets) - 1
	c := &Curves{
		pointNum:     offsets[curveNum],
		curveNum:     curveNum,
		curveOffsets: offsets,
		attributes:   newAttributes(offsets[curveNum], curveNum),
		runtime:      newRuntime(),
	}
	return c
}
