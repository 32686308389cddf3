package curves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePointsAndSplitNothingRemoved(t *testing.T) {
	c := mixedCurves(t)
	got := c.RemovePointsAndSplit(nil)
	assert.Equal(t, c.Offsets(), got.Offsets())
	assert.Equal(t, c.Positions(), got.Positions())
	assert.Equal(t, c.CurveTypes().Materialize(), got.CurveTypes().Materialize())
	assert.NotSame(t, &c.Positions()[0], &got.Positions()[0])
}

func TestRemovePointsAndSplitOpen(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}})
	require.NoError(t, AddAttribute(c.Attributes(), "id", DomainPoint, []int32{10, 11, 12, 13, 14}))
	require.NoError(t, AddAttribute(c.Attributes(), "group", DomainCurve, []int32{7}))

	got := c.RemovePointsAndSplit(MaskFromIndices(2))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 2, 4}, got.Offsets())

	ids, _ := LookupAttribute[int32](got.Attributes(), "id")
	assert.Equal(t, []int32{10, 11, 13, 14}, ids)
	groups, _ := LookupAttribute[int32](got.Attributes(), "group")
	assert.Equal(t, []int32{7, 7}, groups)
}

func TestRemovePointsAndSplitCyclicSquare(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	c.CyclicForWrite()[0] = true

	got := c.RemovePointsAndSplit(MaskFromIndices(1, 3))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 1, 2}, got.Offsets())
	assert.Equal(t, []Vec3{{0, 0, 0}, {1, 1, 0}}, got.Positions())
	assert.Equal(t, []bool{false, false}, got.Cyclic().Materialize())
}

func TestRemovePointsAndSplitJoinsAcrossSeam(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}, {5, 0, 0}})
	c.CyclicForWrite()[0] = true

	got := c.RemovePointsAndSplit(MaskFromIndices(2))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 5}, got.Offsets())
	assert.Equal(t, []Vec3{{3, 0, 0}, {4, 0, 0}, {5, 0, 0}, {0, 0, 0}, {1, 0, 0}}, got.Positions())
	assert.Equal(t, []bool{true}, got.Cyclic().Materialize())
}

func TestRemovePointsAndSplitJoinedRunComesLast(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}, {5, 0, 0}, {6, 0, 0}})
	c.FillCurveTypes(Poly)
	c.CyclicForWrite()[0] = true

	got := c.RemovePointsAndSplit(MaskFromIndices(2, 4))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 1, 5}, got.Offsets())
	assert.Equal(t, []Vec3{{3, 0, 0}, {5, 0, 0}, {6, 0, 0}, {0, 0, 0}, {1, 0, 0}}, got.Positions())
	assert.Equal(t, []bool{false, true}, got.Cyclic().Materialize())
	// The joined curve closes back from its last point to its first.
	assert.InDelta(t, 12, got.CurveLength(1), 1e-5)
}

func TestRemovePointsAndSplitKeepsUntouchedCyclic(t *testing.T) {
	c := newTestCurves(t,
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		[]Vec3{{5, 0, 0}, {6, 0, 0}, {7, 0, 0}},
	)
	cyclic := c.CyclicForWrite()
	cyclic[0], cyclic[1] = true, true
	c.SetCustomKnots(0, []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	got := c.RemovePointsAndSplit(MaskFromIndices(3, 4, 5))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 3}, got.Offsets())
	assert.Equal(t, []bool{true}, got.Cyclic().Materialize())
	assert.False(t, got.HasCustomKnots())
	assert.Equal(t, KnotsNormal, got.KnotsModes().At(0))
}

func TestRemovePointsAndSplitEverything(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}})
	got := c.RemovePointsAndSplit(MaskFromIndices(0, 1))
	assert.Equal(t, 0, got.CurvesNum())
	assert.Equal(t, 0, got.PointsNum())
	assert.NoError(t, got.Validate())
	assert.Panics(t, func() { c.RemovePointsAndSplit(MaskFromIndices(2)) })
}

func TestCopyCurves(t *testing.T) {
	c := mixedCurves(t)
	got := c.CopyCurves(IndexMask{1, 4})
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 3, 8}, got.Offsets())
	assert.Equal(t, []CurveType{Poly, NURBS}, got.CurveTypes().Materialize())
	assert.Equal(t, [4]int{0, 1, 0, 1}, got.CurveTypeCounts())
	assert.Equal(t, []int32{12, 2}, got.Resolution().Materialize())
	assert.Equal(t, c.Positions()[4:7], got.Positions()[:3])
}

func TestRemoveCurves(t *testing.T) {
	c := mixedCurves(t)
	got := c.RemoveCurves(IndexMask{0, 2, 3})
	require.NoError(t, got.Validate())
	assert.Equal(t, 2, got.CurvesNum())
	assert.Equal(t, []CurveType{Poly, NURBS}, got.CurveTypes().Materialize())
	assert.Equal(t, 5, c.CurvesNum(), "source is unchanged")

	all := c.RemoveCurves(MaskFromRange(c.CurvesRange()))
	assert.Equal(t, 0, all.CurvesNum())
	assert.NoError(t, all.Validate())
}

func TestRemovePoints(t *testing.T) {
	c := newTestCurves(t,
		[]Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
		[]Vec3{{9, 9, 9}},
	)
	c.CyclicForWrite()[0] = true
	c.SetCustomKnots(0, []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	got := c.RemovePoints(MaskFromIndices(1, 4))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{0, 3}, got.Offsets())
	assert.Equal(t, []Vec3{{0, 0, 0}, {2, 0, 0}, {3, 0, 0}}, got.Positions())
	assert.Equal(t, []bool{true}, got.Cyclic().Materialize())
	assert.Equal(t, KnotsNormal, got.KnotsModes().At(0), "changed curves drop custom knots")
	assert.Nil(t, got.CustomKnots(0))
}

func TestReverseCurves(t *testing.T) {
	c := newTestCurves(t,
		[]Vec3{{0, 0, 0}, {3, 0, 0}},
		[]Vec3{{5, 5, 5}, {6, 6, 6}},
	)
	c.FillCurveTypes(Bezier)
	copy(c.HandlePositionsRightForWrite(), []Vec3{{1, 1, 0}, {4, 0, 0}, {5, 5, 5}, {6, 6, 6}})
	copy(c.HandlePositionsLeftForWrite(), []Vec3{{-1, 0, 0}, {2, 1, 0}, {5, 5, 5}, {6, 6, 6}})
	c.HandleTypesLeftForWrite()[0] = HandleVector
	c.TagPositionsChanged()
	before := append([]Vec3(nil), sliceRange(c.EvaluatedPositions(), c.EvaluatedPointsRange(0))...)

	c.ReverseCurves(IndexMask{0})
	assert.Equal(t, []Vec3{{3, 0, 0}, {0, 0, 0}, {5, 5, 5}, {6, 6, 6}}, c.Positions())
	assert.Equal(t, HandleVector, c.HandleTypesRight().At(1))
	assert.Equal(t, HandleFree, c.HandleTypesLeft().At(1))

	after := sliceRange(c.EvaluatedPositions(), c.EvaluatedPointsRange(0))
	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, before[i].Approx(after[len(after)-1-i], 1e-5), "point %d", i)
	}
}

func TestReverseCurvesMirrorsKnots(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}})
	c.FillCurveTypes(NURBS)
	c.SetCustomKnots(0, []float32{0, 0, 0, 0, 1, 3, 3, 3})
	c.ReverseCurves(IndexMask{0})
	assert.Equal(t, []float32{0, 0, 0, 2, 3, 3, 3, 3}, c.CustomKnots(0))
}
