package curves

import (
	"slices"

	"github.com/gogpu/gg-curves/internal/cache"
)

// NURBSKnotsNum returns the length of the knot vector of a NURBS curve.
// Cyclic curves carry order-1 extra knots so the basis wraps around.
func NURBSKnotsNum(points, order int, cyclic bool) int {
	n := points + order
	if cyclic {
		n += order - 1
	}
	return n
}

// NURBSValid reports whether a curve with the given point count, order, cyclic
// flag and generated knot mode can be evaluated.
func NURBSValid(points, order int, cyclic bool, mode KnotsMode) bool {
	if order < 2 || points < order {
		return false
	}
	if mode == KnotsBezier || mode == KnotsEndpointBezier {
		if mode == KnotsBezier && points <= order {
			return false
		}
		return !cyclic || points%(order-1) == 0
	}
	return true
}

// customKnotsValid reports whether a user supplied knot vector has the right
// length, never decreases and spans a non-zero parameter range.
func customKnotsValid(knots []float32, points, order int, cyclic bool) bool {
	if len(knots) != NURBSKnotsNum(points, order, cyclic) {
		return false
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return false
		}
	}
	degree := order - 1
	return knots[degree] < knots[nurbsControlPointsNum(points, order, cyclic)]
}

// nurbsControlPointsNum returns the number of control points of the basis,
// counting the degree wrapped points of a cyclic curve.
func nurbsControlPointsNum(points, order int, cyclic bool) int {
	if cyclic {
		return points + order - 1
	}
	return points
}

// nurbsCurveValid applies every validity rule to one curve. cyclic is the
// stored flag.
func nurbsCurveValid(points, order int, cyclic bool, mode KnotsMode, custom []float32) bool {
	cyclic = effectiveCyclic(points, cyclic)
	if mode == KnotsCustom {
		return order >= 2 && points >= order && customKnotsValid(custom, points, order, cyclic)
	}
	return NURBSValid(points, order, cyclic, mode)
}

// NURBSEvaluatedNum returns the number of evaluated points of a NURBS curve.
// Curves that cannot be evaluated produce a single degenerate point.
func NURBSEvaluatedNum(points, order int, cyclic bool, resolution int, mode KnotsMode, custom []float32) int {
	if points == 0 {
		return 0
	}
	if !nurbsCurveValid(points, order, cyclic, mode, custom) {
		return 1
	}
	cyclic = effectiveCyclic(points, cyclic)
	return max(resolution, 1) * segmentsNum(points, cyclic)
}

type knotKey struct {
	points int
	order  int
	mode   KnotsMode
	cyclic bool
}

func hashKnotKey(k knotKey) uint64 {
	h := uint64(k.points) * 0x9e3779b97f4a7c15
	h ^= uint64(k.order)<<32 | uint64(k.mode)<<8
	if k.cyclic {
		h ^= 0xff51afd7ed558ccd
	}
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// knotCache shares generated knot vectors between all curves with the same
// point count, order, mode and cyclic flag.
var knotCache = cache.NewSharded[knotKey, []float32](cache.DefaultCapacity, hashKnotKey)

// generatedKnots returns a cached knot vector. The result is shared and must
// not be modified.
func generatedKnots(points int, mode KnotsMode, order int, cyclic bool) []float32 {
	key := knotKey{points: points, order: order, mode: mode, cyclic: cyclic}
	return knotCache.GetOrCreate(key, func() []float32 {
		knots := make([]float32, NURBSKnotsNum(points, order, cyclic))
		fillKnots(points, mode, order, cyclic, knots)
		return knots
	})
}

// CalculateKnots returns the knot vector generated for the given mode. The
// curve must satisfy NURBSValid; KnotsCustom is treated as KnotsNormal.
func CalculateKnots(points int, mode KnotsMode, order int, cyclic bool) []float32 {
	return slices.Clone(generatedKnots(points, mode, order, cyclic))
}

// fillKnots writes a generated knot vector.
//
// Inner knots increase by one and are repeated order-1 times in the Bezier
// modes. Endpoint modes repeat the first knot order times; the tail knots of
// endpoint and cyclic vectors repeat the spacing of the head so the basis
// wraps around or clamps symmetrically.
func fillKnots(points int, mode KnotsMode, order int, cyclic bool, knots []float32) {
	isBezier := mode == KnotsBezier || mode == KnotsEndpointBezier
	isEndpoint := mode == KnotsEndpoint || mode == KnotsEndpointBezier

	repeatInner := 1
	if isBezier {
		repeatInner = order - 1
	}
	var head int
	switch {
	case isEndpoint && cyclic:
		head = order - 1
	case isEndpoint:
		head = order
	case isBezier:
		head = min(2, repeatInner)
	default:
		head = 1
	}
	var tail int
	switch {
	case cyclic:
		tail = 2*order - 1
	case isEndpoint:
		tail = order
	}

	r := head
	var current float32
	offset := 0
	if isEndpoint && cyclic {
		knots[0] = current
		current++
		offset = 1
	}
	for i := offset; i < len(knots)-tail; i++ {
		knots[i] = current
		r--
		if r == 0 {
			current++
			r = repeatInner
		}
	}
	tailIndex := len(knots) - tail
	for i := range tail {
		knots[tailIndex+i] = current + (knots[i] - knots[0])
	}
}

// nurbsBasis stores, for every evaluated point of one curve, the first
// control point influencing it and the order weights of the influencing
// control points.
type nurbsBasis struct {
	startIndices []int
	weights      []float32
	invalid      bool
}

// calculateNURBSBasis evaluates the B-spline basis at evaluatedNum evenly
// spaced parameters. cyclic must already be the effective flag and knots must
// be valid for the curve.
func calculateNURBSBasis(points, order int, cyclic bool, evaluatedNum int, knots []float32) nurbsBasis {
	degree := order - 1
	controls := nurbsControlPointsNum(points, order, cyclic)
	start := knots[degree]
	end := knots[controls]

	basis := nurbsBasis{
		startIndices: make([]int, evaluatedNum),
		weights:      make([]float32, evaluatedNum*order),
	}
	// Open curves reach the end parameter on their last point; cyclic curves
	// stop one step short since the first point closes them.
	samples := float32(max(evaluatedNum-1, 1))
	if cyclic {
		samples = float32(evaluatedNum)
	}

	left := make([]float32, order)
	right := make([]float32, order)
	span := degree
	for i := range evaluatedNum {
		u := min(lerpScalar(start, end, float32(i)/samples), end)

		for span < controls-1 && u >= knots[span+1] {
			span++
		}
		// At the end parameter the last non-empty span is used.
		for span > degree && knots[span] == knots[span+1] {
			span--
		}

		n := basis.weights[i*order : (i+1)*order]
		basisFunctions(knots, span, degree, u, left, right, n)
		basis.startIndices[i] = span - degree
	}
	return basis
}

// basisFunctions computes the degree+1 non-zero basis functions at u for the
// knot span knots[span] <= u < knots[span+1] (The NURBS Book, A2.2).
// left and right are scratch buffers of degree+1 elements.
func basisFunctions(knots []float32, span, degree int, u float32, left, right, n []float32) {
	n[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = u - knots[span+1-j]
		right[j] = knots[span+j] - u
		var saved float32
		for r := range j {
			temp := n[r] / (right[r+1] + left[j-r])
			n[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		n[j] = saved
	}
}

// rationalWeights reports whether any control weight differs from one.
func rationalWeights(weights []float32) bool {
	for _, w := range weights {
		if w != 1 {
			return true
		}
	}
	return false
}

// nurbsInterpolateToEvaluated blends control point values of one curve with
// the cached basis. controlWeights is nil for non-rational curves. An invalid
// curve evaluates to its first control point. Values that cannot be mixed take
// the value of the most influential control point.
func nurbsInterpolateToEvaluated[T any](ops arith[T], basis *nurbsBasis, order int, controlWeights []float32, src, dst []T) {
	if len(dst) == 0 || len(src) == 0 {
		return
	}
	if basis.invalid {
		for i := range dst {
			dst[i] = src[0]
		}
		return
	}
	n := len(src)
	scaled := make([]float32, order)
	for i := range dst {
		start := basis.startIndices[i]
		w := basis.weights[i*order : (i+1)*order]
		if controlWeights != nil {
			var sum float32
			for j := range order {
				scaled[j] = w[j] * controlWeights[(start+j)%n]
				sum += scaled[j]
			}
			if sum != 0 {
				for j := range order {
					scaled[j] /= sum
				}
			}
			w = scaled
		}

		if ops == nil {
			best := 0
			for j := 1; j < order; j++ {
				if w[j] > w[best] {
					best = j
				}
			}
			dst[i] = src[(start+best)%n]
			continue
		}
		var acc T
		for j := range order {
			acc = ops.add(acc, ops.scale(src[(start+j)%n], w[j]))
		}
		dst[i] = acc
	}
}
