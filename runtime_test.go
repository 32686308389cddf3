package curves

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mixedCurves returns one curve of every type plus an empty curve.
func mixedCurves(t testing.TB) *Curves {
	c := newTestCurves(t,
		[]Vec3{{0, 0, 0}, {1, 1, 0}, {2, 0, 0}, {3, 1, 0}},
		[]Vec3{{0, 0, 1}, {1, 0, 1}, {2, 0, 1}},
		[]Vec3{},
		[]Vec3{{0, 2, 0}, {1, 3, 0}, {2, 2, 0}},
		[]Vec3{{0, 4, 0}, {1, 5, 0}, {2, 4, 0}, {3, 5, 0}, {4, 4, 0}},
	)
	types := c.CurveTypesForWrite()
	copy(types, []CurveType{CatmullRom, Poly, Poly, Bezier, NURBS})
	c.UpdateCurveTypes()
	c.ResolutionForWrite()[0] = 4
	c.ResolutionForWrite()[3] = 3
	c.ResolutionForWrite()[4] = 2
	c.TagTopologyChanged()
	return c
}

func TestEvaluatedOffsets(t *testing.T) {
	c := mixedCurves(t)
	// Catmull-Rom 3*4+1, poly 3, empty 0, Bezier 2*3+1, NURBS 2*(5-1).
	want := []int{0, 13, 16, 16, 23, 31}
	assert.Equal(t, want, c.EvaluatedOffsets())
	assert.Equal(t, 31, c.EvaluatedPointsSize())
	assert.Equal(t, Range(16, 7), c.EvaluatedPointsRange(3))
	assert.Equal(t, Range(16, 0), c.EvaluatedPointsRange(2))
	assert.Len(t, c.EvaluatedPositions(), 31)
	assert.Len(t, c.EvaluatedTangents(), 31)
	assert.Len(t, c.EvaluatedNormals(), 31)
	assert.Len(t, c.EvaluatedLengths(), 31)
	assert.Empty(t, c.InvalidCurves())
}

func TestEvaluatedOffsetsMonotonic(t *testing.T) {
	c := mixedCurves(t)
	c.CyclicForWrite()[0] = true
	c.CyclicForWrite()[3] = true
	c.TagTopologyChanged()

	offsets := c.EvaluatedOffsets()
	require.Len(t, offsets, c.CurvesNum()+1)
	assert.Equal(t, 0, offsets[0])
	for i := 1; i < len(offsets); i++ {
		assert.GreaterOrEqual(t, offsets[i], offsets[i-1])
	}
	assert.Equal(t, 16, offsets[1], "cyclic Catmull-Rom drops the extra end point")
}

func TestEvaluatedPositionsPoly(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}}, []Vec3{{5, 5, 5}})
	c.FillCurveTypes(Poly)
	assert.Equal(t, c.Positions(), c.EvaluatedPositions())
	assert.Equal(t, c.Offsets(), c.EvaluatedOffsets())
}

func TestEvaluatedPositionsEmpty(t *testing.T) {
	c := Empty()
	assert.Equal(t, 0, c.EvaluatedPointsSize())
	assert.Empty(t, c.EvaluatedPositions())
	_, _, ok := c.Bounds()
	assert.False(t, ok)
}

func TestConcurrentReadersComputeOnce(t *testing.T) {
	c := mixedCurves(t)

	const readers = 32
	results := make([][]Vec3, readers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				c.EvaluatedNormals()
			}
			results[i] = c.EvaluatedPositions()
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, uint64(1), c.runtime.evaluatedPositions.Computations())
	assert.Equal(t, uint64(1), c.runtime.evaluatedOffsets.Computations())
	assert.Equal(t, uint64(1), c.runtime.evaluatedNormals.Computations())
	for i := 1; i < readers; i++ {
		assert.Same(t, &results[0][0], &results[i][0])
	}
}

func TestTagTopologyRecomputesOffsets(t *testing.T) {
	c := mixedCurves(t)
	before := c.EvaluatedPointsSize()
	c.ResolutionForWrite()[0] = 8
	c.TagTopologyChanged()
	assert.Equal(t, before+12, c.EvaluatedPointsSize())
	assert.Equal(t, uint64(2), c.runtime.evaluatedOffsets.Computations())
}

func TestInterpolateToEvaluated(t *testing.T) {
	c := mixedCurves(t)
	src := make([]float32, c.PointsNum())
	for i := range src {
		src[i] = 2
	}
	got := InterpolateToEvaluated(c, src)
	require.Len(t, got, c.EvaluatedPointsSize())
	for i, v := range got {
		assert.InDelta(t, 2, v, 1e-5, "evaluated point %d", i)
	}
	assert.Panics(t, func() { InterpolateToEvaluated(c, src[1:]) })
}

func TestInterpolateMatchesPositions(t *testing.T) {
	c := mixedCurves(t)
	// Bezier positions use handles, so compare only the other curves.
	c.SetCurveTypes(IndexMask{3}, Poly)
	got := InterpolateToEvaluated(c, c.Positions())
	if diff := cmp.Diff(c.EvaluatedPositions(), got, approx); diff != "" {
		t.Errorf("interpolated positions differ (-want +got):\n%s", diff)
	}
}

func TestCurveLengthAndBounds(t *testing.T) {
	c := newTestCurves(t,
		[]Vec3{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}},
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	)
	c.FillCurveTypes(Poly)
	c.CyclicForWrite()[1] = true
	c.TagTopologyChanged()

	assert.InDelta(t, 7, c.CurveLength(0), 1e-6)
	assert.InDelta(t, 4, c.CurveLength(1), 1e-6, "cyclic length includes the closing segment")
	assert.Equal(t, []float32{0, 3, 7, 0, 1, 2, 3}, c.EvaluatedLengths())
	assert.Panics(t, func() { c.CurveLength(2) })

	lo, hi, ok := c.Bounds()
	assert.True(t, ok)
	assert.Equal(t, V3(0, 0, 0), lo)
	assert.Equal(t, V3(3, 4, 0), hi)
}

func TestSetWorkers(t *testing.T) {
	SetWorkers(2)
	defer SetWorkers(0)

	c := mixedCurves(t)
	assert.Len(t, c.EvaluatedPositions(), 31)
}

func BenchmarkEvaluatedPositions(b *testing.B) {
	const curves, points = 1000, 16
	counts := make([]int, curves)
	for i := range counts {
		counts[i] = points
	}
	c := NewWithCounts(counts)
	positions := c.PositionsForWrite()
	for i := range positions {
		positions[i] = V3(float32(i%points), float32(i/points), 0)
	}
	c.FillCurveTypes(Bezier)
	types := c.HandleTypesLeftForWrite()
	for i := range types {
		types[i] = HandleAuto
	}
	types = c.HandleTypesRightForWrite()
	for i := range types {
		types[i] = HandleAuto
	}
	c.CalculateBezierAutoHandles()

	b.ResetTimer()
	for b.Loop() {
		c.TagPositionsChanged()
		c.EvaluatedPositions()
	}
}
