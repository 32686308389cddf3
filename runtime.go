package curves

import (
	"slices"
	"sync/atomic"

	"github.com/gogpu/gg-curves/internal/cache"
	"github.com/gogpu/gg-curves/internal/parallel"
)

// Grain sizes for parallel loops, in curves (or points for flat copies).
// Cheap per-item work uses large grains so a task covers many items.
const (
	grainCopy     = 4096
	grainOffsets  = 1024
	grainBezier   = 256
	grainEvaluate = 64
)

// SetWorkers replaces the worker pool used to evaluate and edit curves.
// n <= 0 uses GOMAXPROCS workers.
func SetWorkers(n int) {
	parallel.SetDefault(parallel.NewWorkerPool(n))
}

// forEachCurve calls fn for every curve in mask, in parallel chunks of at
// least grain curves. fn must not read derived caches.
func forEachCurve(mask IndexMask, grain int, fn func(curve int)) {
	parallel.For(len(mask), grain, func(start, end int) {
		for _, curve := range mask[start:end] {
			fn(curve)
		}
	})
}

// runtime holds the derived data of a Curves value. Every field is computed
// lazily under its own lock, so reading positions never blocks a reader of
// normals that are already cached.
//
// Caches only ever lock caches upstream of themselves (normals, tangents,
// positions, handles, basis, offsets), so there are no lock cycles.
type runtime struct {
	// autoHandles is clean once auto, vector and align handles match the
	// current positions.
	autoHandles        cache.Shared[bool]
	evaluatedOffsets   cache.Shared[*evaluatedOffsets]
	nurbsBasis         cache.Shared[[]nurbsBasis]
	evaluatedPositions cache.Shared[[]Vec3]
	evaluatedTangents  cache.Shared[[]Vec3]
	evaluatedNormals   cache.Shared[[]Vec3]
	evaluatedLengths   cache.Shared[*evaluatedLengths]
	bounds             cache.Shared[bounds]
}

func newRuntime() *runtime {
	return &runtime{}
}

type evaluatedOffsets struct {
	// offsets has curveNum+1 elements.
	offsets []int
	// bezier holds, for every Bezier curve, the first evaluated point of each
	// control point relative to the curve start, plus the curve's evaluated
	// size. Indexed with perCurvePointOffsetsRange. Nil without Bezier curves.
	bezier []int
	// invalid flags curves that are evaluated as a single degenerate point.
	// Nil when every curve is valid.
	invalid []bool
}

type evaluatedLengths struct {
	// accumulated is the distance along the curve of every evaluated point.
	accumulated []float32
	// totals is the length of every curve, including the closing segment of
	// cyclic curves.
	totals []float32
}

type bounds struct {
	min, max Vec3
	ok       bool
}

func (c *Curves) evaluatedOffsetsData() *evaluatedOffsets {
	return c.runtime.evaluatedOffsets.Ensure(c.computeEvaluatedOffsets)
}

func (c *Curves) computeEvaluatedOffsets() *evaluatedOffsets {
	out := &evaluatedOffsets{offsets: make([]int, c.curveNum+1)}
	if c.curveNum == 0 {
		return out
	}
	points := c.PointsByCurve()
	counts := out.offsets

	if c.IsSingleType(Poly) {
		copy(counts, c.curveOffsets)
		return out
	}

	types := c.CurveTypes().Materialize()
	cyclic := c.Cyclic().Materialize()
	resolution := c.Resolution().Materialize()

	var typesLeft, typesRight []HandleType
	if c.HasCurveWithType(Bezier) {
		typesLeft = c.HandleTypesLeft().Materialize()
		typesRight = c.HandleTypesRight().Materialize()
		out.bezier = make([]int, c.pointNum+c.curveNum)
	}
	var orders []int8
	var modes []KnotsMode
	var invalid []bool
	var invalidNum atomic.Int64
	if c.HasCurveWithType(NURBS) {
		orders = c.NURBSOrders().Materialize()
		modes = c.KnotsModes().Materialize()
		invalid = make([]bool, c.curveNum)
	}

	parallel.For(c.curveNum, grainOffsets, func(start, end int) {
		for curve := start; curve < end; curve++ {
			r := points.At(curve)
			switch types[curve] {
			case CatmullRom:
				counts[curve] = CatmullRomEvaluatedNum(r.Size, cyclic[curve], int(resolution[curve]))
			case Bezier:
				offsets := sliceRange(out.bezier, perCurvePointOffsetsRange(r, curve))
				bezierEvaluatedOffsets(sliceRange(typesLeft, r), sliceRange(typesRight, r),
					cyclic[curve], int(resolution[curve]), offsets)
				counts[curve] = offsets[r.Size]
			case NURBS:
				order := int(orders[curve])
				custom := c.CustomKnots(curve)
				if r.Size > 0 && !nurbsCurveValid(r.Size, order, cyclic[curve], modes[curve], custom) {
					invalid[curve] = true
					invalidNum.Add(1)
				}
				counts[curve] = NURBSEvaluatedNum(r.Size, order, cyclic[curve], int(resolution[curve]), modes[curve], custom)
			default:
				counts[curve] = r.Size
			}
		}
	})
	total := AccumulateCountsToOffsets(counts, 0)

	if n := invalidNum.Load(); n > 0 {
		out.invalid = invalid
		Logger().Warn("curves: NURBS curves cannot be evaluated, using a single point",
			"invalid", n)
	}
	Logger().Debug("curves: evaluated offsets", "curves", c.curveNum, "evaluated", total)
	return out
}

// EvaluatedPointsSize returns the total number of evaluated points.
func (c *Curves) EvaluatedPointsSize() int {
	offsets := c.evaluatedOffsetsData().offsets
	return offsets[len(offsets)-1]
}

// EvaluatedOffsets returns the evaluated offsets (curveNum+1 prefix sums).
// The slice is shared and must not be modified.
func (c *Curves) EvaluatedOffsets() []int {
	return c.evaluatedOffsetsData().offsets
}

// EvaluatedPointsByCurve returns the evaluated point ranges of all curves.
func (c *Curves) EvaluatedPointsByCurve() OffsetIndices {
	return NewOffsetIndices(c.EvaluatedOffsets())
}

// EvaluatedPointsRange returns the evaluated points of curve i. It panics if
// i is out of range.
func (c *Curves) EvaluatedPointsRange(i int) IndexRange {
	return c.EvaluatedPointsByCurve().At(i)
}

// InvalidCurves returns the curves that are evaluated as a single degenerate
// point because their NURBS parameters cannot form a basis.
func (c *Curves) InvalidCurves() IndexMask {
	invalid := c.evaluatedOffsetsData().invalid
	if invalid == nil {
		return nil
	}
	return MaskFromBools(invalid)
}

func (c *Curves) nurbsBasisData() []nurbsBasis {
	return c.runtime.nurbsBasis.Ensure(c.computeNURBSBasis)
}

func (c *Curves) computeNURBSBasis() []nurbsBasis {
	if !c.HasCurveWithType(NURBS) {
		return nil
	}
	offsets := c.evaluatedOffsetsData()
	evaluated := NewOffsetIndices(offsets.offsets)
	points := c.PointsByCurve()
	cyclic := c.Cyclic().Materialize()
	orders := c.NURBSOrders().Materialize()
	modes := c.KnotsModes().Materialize()
	mask := c.curveTypeMasks()[NURBS]

	out := make([]nurbsBasis, c.curveNum)
	forEachCurve(mask, grainEvaluate, func(curve int) {
		r := points.At(curve)
		if r.Size == 0 {
			return
		}
		if offsets.invalid != nil && offsets.invalid[curve] {
			out[curve] = nurbsBasis{invalid: true}
			return
		}
		order := int(orders[curve])
		isCyclic := effectiveCyclic(r.Size, cyclic[curve])
		knots := c.CustomKnots(curve)
		if modes[curve] != KnotsCustom {
			knots = generatedKnots(r.Size, modes[curve], order, isCyclic)
		}
		out[curve] = calculateNURBSBasis(r.Size, order, isCyclic, evaluated.At(curve).Size, knots)
	})
	Logger().Debug("curves: NURBS basis", "curves", len(mask))
	return out
}

// evalContext gathers everything the per-type evaluators read, so parallel
// loops never touch the caches themselves.
type evalContext struct {
	points    OffsetIndices
	evaluated OffsetIndices
	masks     [numCurveTypes]IndexMask

	cyclic        []bool
	resolution    []int32
	bezierOffsets []int
	basis         []nurbsBasis
	orders        []int8
	weights       []float32
}

func (c *Curves) newEvalContext() *evalContext {
	offsets := c.evaluatedOffsetsData()
	ctx := &evalContext{
		points:        c.PointsByCurve(),
		evaluated:     NewOffsetIndices(offsets.offsets),
		masks:         c.curveTypeMasks(),
		cyclic:        c.Cyclic().Materialize(),
		resolution:    c.Resolution().Materialize(),
		bezierOffsets: offsets.bezier,
	}
	if c.HasCurveWithType(NURBS) {
		ctx.basis = c.nurbsBasisData()
		ctx.orders = c.NURBSOrders().Materialize()
		if w, ok := LookupAttribute[float32](c.attributes, AttrNURBSWeight); ok {
			ctx.weights = w
		}
	}
	return ctx
}

// forEachCurve runs fn for every non-empty curve, one curve type after the
// other and in parallel within a type.
func (ctx *evalContext) forEachCurve(fn func(t CurveType, curve int, points, evaluated IndexRange)) {
	for t, mask := range ctx.masks {
		if len(mask) == 0 {
			continue
		}
		ct := CurveType(t)
		grain := grainEvaluate
		if ct == Poly {
			grain = grainCopy
		}
		forEachCurve(mask, grain, func(curve int) {
			r := ctx.points.At(curve)
			if r.Size == 0 {
				return
			}
			fn(ct, curve, r, ctx.evaluated.At(curve))
		})
	}
}

// isCyclic returns the cyclic flag used when evaluating a curve.
func (ctx *evalContext) isCyclic(t CurveType, curve int, points IndexRange) bool {
	if t == CatmullRom || t == NURBS {
		return effectiveCyclic(points.Size, ctx.cyclic[curve])
	}
	return ctx.cyclic[curve]
}

// controlWeights returns the rational weights of a NURBS curve, or nil if
// they are all one.
func (ctx *evalContext) controlWeights(points IndexRange) []float32 {
	if ctx.weights == nil {
		return nil
	}
	w := sliceRange(ctx.weights, points)
	if !rationalWeights(w) {
		return nil
	}
	return w
}

// interpolate transfers a point attribute to the evaluated points of every
// curve. Bezier curves use linear interpolation per segment.
func interpolate[T any](ctx *evalContext, ops arith[T], src, dst []T) {
	ctx.forEachCurve(func(t CurveType, curve int, points, evaluated IndexRange) {
		s := sliceRange(src, points)
		d := sliceRange(dst, evaluated)
		switch t {
		case CatmullRom:
			catmullRomInterpolateToEvaluated(ops, s, ctx.cyclic[curve], int(ctx.resolution[curve]), d)
		case Bezier:
			offsets := sliceRange(ctx.bezierOffsets, perCurvePointOffsetsRange(points, curve))
			interpolateLinearSegments(ops, s, offsets, d)
		case NURBS:
			nurbsInterpolateToEvaluated(ops, &ctx.basis[curve], int(ctx.orders[curve]), ctx.controlWeights(points), s, d)
		default:
			copy(d, s)
		}
	})
}

// InterpolateToEvaluated interpolates a point attribute to the evaluated
// points of every curve, using the same rules as positions: Catmull-Rom and
// NURBS curves use their basis, Bezier curves interpolate linearly between
// control points and poly curves copy. src must have one value per point.
func InterpolateToEvaluated[T Mixable](c *Curves, src []T) []T {
	if len(src) != c.pointNum {
		panic("curves: attribute size does not match the number of points")
	}
	ctx := c.newEvalContext()
	dst := make([]T, ctx.evaluated.TotalSize())
	interpolate(ctx, arithFor[T](), src, dst)
	return dst
}

// EvaluatedPositions returns the positions of all evaluated points. The slice
// is shared by all readers and must not be modified.
func (c *Curves) EvaluatedPositions() []Vec3 {
	return c.runtime.evaluatedPositions.Ensure(c.computeEvaluatedPositions)
}

func (c *Curves) computeEvaluatedPositions() []Vec3 {
	positions := c.Positions()
	c.ensureAutoHandles()
	if c.IsSingleType(Poly) {
		Logger().Debug("curves: evaluated positions", "curves", c.curveNum, "evaluated", c.pointNum)
		return slices.Clone(positions)
	}

	ctx := c.newEvalContext()
	out := make([]Vec3, ctx.evaluated.TotalSize())
	left := c.HandlePositionsLeft()
	right := c.HandlePositionsRight()
	if left == nil {
		left = positions
	}
	if right == nil {
		right = positions
	}
	ops := vec3Arith{}
	ctx.forEachCurve(func(t CurveType, curve int, points, evaluated IndexRange) {
		s := sliceRange(positions, points)
		d := sliceRange(out, evaluated)
		switch t {
		case CatmullRom:
			catmullRomInterpolateToEvaluated[Vec3](ops, s, ctx.cyclic[curve], int(ctx.resolution[curve]), d)
		case Bezier:
			offsets := sliceRange(ctx.bezierOffsets, perCurvePointOffsetsRange(points, curve))
			bezierEvaluatePositions(s, sliceRange(left, points), sliceRange(right, points), offsets, d)
		case NURBS:
			nurbsInterpolateToEvaluated[Vec3](ops, &ctx.basis[curve], int(ctx.orders[curve]), ctx.controlWeights(points), s, d)
		default:
			copy(d, s)
		}
	})
	Logger().Debug("curves: evaluated positions", "curves", c.curveNum, "evaluated", len(out))
	return out
}

// EvaluatedTangents returns the unit tangent of every evaluated point. The
// tangents at the ends of open Bezier curves follow the end handles.
func (c *Curves) EvaluatedTangents() []Vec3 {
	return c.runtime.evaluatedTangents.Ensure(c.computeEvaluatedTangents)
}

func (c *Curves) computeEvaluatedTangents() []Vec3 {
	evaluatedPositions := c.EvaluatedPositions()
	ctx := c.newEvalContext()
	out := make([]Vec3, len(evaluatedPositions))
	positions := c.Positions()
	left := c.HandlePositionsLeft()
	right := c.HandlePositionsRight()

	ctx.forEachCurve(func(t CurveType, curve int, points, evaluated IndexRange) {
		cyclic := ctx.isCyclic(t, curve, points)
		tangents := sliceRange(out, evaluated)
		calculateTangents(sliceRange(evaluatedPositions, evaluated), cyclic, tangents)

		if t != Bezier || cyclic || left == nil || right == nil {
			return
		}
		first, last := points.Start, points.Last()
		if !right[first].almostEqualRelative(positions[first], equalPositionEpsilon) {
			tangents[0] = right[first].Sub(positions[first]).Normalize()
		}
		if !left[last].almostEqualRelative(positions[last], equalPositionEpsilon) {
			tangents[len(tangents)-1] = positions[last].Sub(left[last]).Normalize()
		}
	})
	return out
}

// EvaluatedNormals returns the unit normal of every evaluated point, computed
// with each curve's normal mode and rotated by the interpolated tilt.
func (c *Curves) EvaluatedNormals() []Vec3 {
	return c.runtime.evaluatedNormals.Ensure(c.computeEvaluatedNormals)
}

func (c *Curves) computeEvaluatedNormals() []Vec3 {
	tangents := c.EvaluatedTangents()
	ctx := c.newEvalContext()
	out := make([]Vec3, len(tangents))
	modes := c.NormalModes().Materialize()

	var tilt []float32
	if src, ok := LookupAttribute[float32](c.attributes, AttrTilt); ok {
		tilt = make([]float32, len(tangents))
		interpolate[float32](ctx, floatArith{}, src, tilt)
	}

	ctx.forEachCurve(func(t CurveType, curve int, points, evaluated IndexRange) {
		curveTangents := sliceRange(tangents, evaluated)
		normals := sliceRange(out, evaluated)
		switch modes[curve] {
		case NormalZUp:
			calculateNormalsZUp(curveTangents, normals)
		default:
			calculateNormalsMinimumTwist(curveTangents, ctx.isCyclic(t, curve, points), normals)
		}
		if tilt != nil {
			applyTilt(curveTangents, sliceRange(tilt, evaluated), normals)
		}
	})
	return out
}

func (c *Curves) evaluatedLengthsData() *evaluatedLengths {
	return c.runtime.evaluatedLengths.Ensure(c.computeEvaluatedLengths)
}

func (c *Curves) computeEvaluatedLengths() *evaluatedLengths {
	positions := c.EvaluatedPositions()
	ctx := c.newEvalContext()
	out := &evaluatedLengths{
		accumulated: make([]float32, len(positions)),
		totals:      make([]float32, c.curveNum),
	}
	ctx.forEachCurve(func(t CurveType, curve int, points, evaluated IndexRange) {
		p := sliceRange(positions, evaluated)
		acc := sliceRange(out.accumulated, evaluated)
		var length float32
		for i := 1; i < len(p); i++ {
			length += p[i].Distance(p[i-1])
			acc[i] = length
		}
		if ctx.isCyclic(t, curve, points) && len(p) > 1 {
			length += p[0].Distance(p[len(p)-1])
		}
		out.totals[curve] = length
	})
	return out
}

// EvaluatedLengths returns, for every evaluated point, the distance from the
// start of its curve. The slice is shared and must not be modified.
func (c *Curves) EvaluatedLengths() []float32 {
	return c.evaluatedLengthsData().accumulated
}

// CurveLength returns the evaluated length of curve i, including the closing
// segment of a cyclic curve.
func (c *Curves) CurveLength(i int) float32 {
	totals := c.evaluatedLengthsData().totals
	if i < 0 || i >= len(totals) {
		panic("curves: curve index out of range")
	}
	return totals[i]
}

// Bounds returns the axis-aligned bounding box of the evaluated positions.
// ok is false when there are no evaluated points.
func (c *Curves) Bounds() (lo, hi Vec3, ok bool) {
	b := c.runtime.bounds.Ensure(func() bounds {
		positions := c.EvaluatedPositions()
		if len(positions) == 0 {
			return bounds{}
		}
		b := bounds{min: positions[0], max: positions[0], ok: true}
		for _, p := range positions[1:] {
			b.min = b.min.Min(p)
			b.max = b.max.Max(p)
		}
		return b
	})
	return b.min, b.max, b.ok
}
