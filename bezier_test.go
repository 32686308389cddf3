package curves

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBezierEvaluatedOffsets(t *testing.T) {
	F, V := HandleFree, HandleVector
	tests := []struct {
		name        string
		left, right []HandleType
		cyclic      bool
		want        []int
	}{
		{"single", []HandleType{F}, []HandleType{F}, false, []int{0, 1}},
		{"open", []HandleType{F, F, F}, []HandleType{F, F, F}, false, []int{0, 4, 8, 9}},
		{"cyclic", []HandleType{F, F, F}, []HandleType{F, F, F}, true, []int{0, 4, 8, 12}},
		{"vector segment", []HandleType{F, V, F}, []HandleType{V, F, F}, false, []int{0, 1, 5, 6}},
		{"vector closing segment", []HandleType{V, F}, []HandleType{F, V}, true, []int{0, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offsets := make([]int, len(tt.left)+1)
			bezierEvaluatedOffsets(tt.left, tt.right, tt.cyclic, 4, offsets)
			assert.Equal(t, tt.want, offsets)
			assert.Equal(t, tt.want[len(tt.want)-1], BezierEvaluatedNum(tt.left, tt.right, tt.cyclic, 4))
		})
	}
}

func TestBezierEvaluateSegment(t *testing.T) {
	p0, p1, p2, p3 := V3(0, 0, 0), V3(1, 1, 0), V3(2, 1, 0), V3(3, 0, 0)
	dst := make([]Vec3, 4)
	BezierEvaluateSegment(p0, p1, p2, p3, dst)

	for i, got := range dst {
		// Direct Bernstein evaluation.
		u := float32(i) / 4
		v := 1 - u
		want := p0.Mul(v * v * v).Add(p1.Mul(3 * v * v * u)).Add(p2.Mul(3 * v * u * u)).Add(p3.Mul(u * u * u))
		if diff := cmp.Diff(want, got, approx); diff != "" {
			t.Errorf("sample %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestBezierInsertKeepsShape(t *testing.T) {
	p0, h0, h1, p1 := V3(0, 0, 0), V3(1, 1, 0), V3(2, 1, 0), V3(3, 0, 0)
	ins := BezierInsert(p0, h0, h1, p1, 0.5)

	full := make([]Vec3, 8)
	BezierEvaluateSegment(p0, h0, h1, p1, full)
	first := make([]Vec3, 4)
	BezierEvaluateSegment(p0, ins.HandlePrev, ins.Left, ins.Position, first)
	second := make([]Vec3, 4)
	BezierEvaluateSegment(ins.Position, ins.Right, ins.HandleNext, p1, second)

	if diff := cmp.Diff(full, append(first, second...), approx); diff != "" {
		t.Errorf("split segments differ from original (-want +got):\n%s", diff)
	}
	assert.True(t, ins.Position.Approx(V3(1.5, 0.75, 0), 1e-6))
}

func TestCalculatePointHandles(t *testing.T) {
	prev, pos, next := V3(-1, 0, 0), V3(0, 0, 0), V3(1, 0, 0)

	t.Run("vector", func(t *testing.T) {
		left, right := V3(9, 9, 9), V3(9, 9, 9)
		calculatePointHandles(HandleVector, HandleVector, pos, prev, next, &left, &right)
		assert.Equal(t, pos, left)
		assert.Equal(t, pos, right)
	})
	t.Run("auto", func(t *testing.T) {
		var left, right Vec3
		calculatePointHandles(HandleAuto, HandleAuto, pos, prev, next, &left, &right)
		assert.Less(t, left[0], float32(0))
		assert.Greater(t, right[0], float32(0))
		assert.InDelta(t, -left[0], right[0], 1e-6, "symmetric neighbors give symmetric handles")
		assert.Zero(t, left[1])
	})
	t.Run("align mirrors free", func(t *testing.T) {
		left, right := V3(-2, 1, 0), V3(5, 5, 5)
		calculatePointHandles(HandleFree, HandleAlign, pos, prev, next, &left, &right)
		assert.Equal(t, V3(2, -1, 0), right)
	})
	t.Run("align keeps handle when other is degenerate", func(t *testing.T) {
		left, right := pos, V3(1, 2, 3)
		calculatePointHandles(HandleVector, HandleAlign, pos, prev, next, &left, &right)
		assert.Equal(t, V3(1, 2, 3), right)
	})
	t.Run("free untouched", func(t *testing.T) {
		left, right := V3(1, 2, 3), V3(4, 5, 6)
		calculatePointHandles(HandleFree, HandleFree, pos, prev, next, &left, &right)
		assert.Equal(t, V3(1, 2, 3), left)
		assert.Equal(t, V3(4, 5, 6), right)
	})
}

func TestCalculateBezierAutoHandles(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 1, 0}, {2, 0, 0}})
	c.FillCurveTypes(Bezier)
	for i := range 3 {
		c.HandleTypesLeftForWrite()[i] = HandleAuto
		c.HandleTypesRightForWrite()[i] = HandleAuto
	}
	before := c.EvaluatedPositions()
	c.CalculateBezierAutoHandles()

	left, right := c.HandlePositionsLeft(), c.HandlePositionsRight()
	// The middle point is a local maximum, so its handles are horizontal.
	assert.InDelta(t, 1, left[1][1], 1e-6)
	assert.InDelta(t, 1, right[1][1], 1e-6)
	assert.Less(t, left[1][0], float32(1))
	assert.Greater(t, right[1][0], float32(1))

	after := c.EvaluatedPositions()
	assert.Empty(t, cmp.Diff(before, after, approx), "evaluation already used the generated handles")
	assert.Equal(t, V3(0, 0, 0), after[0])
}

func TestAutoHandlesFollowMovedPoints(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {2, 2, 0}, {4, 0, 0}})
	c.FillCurveTypes(Bezier)
	for i := range 3 {
		c.HandleTypesLeftForWrite()[i] = HandleAuto
		c.HandleTypesRightForWrite()[i] = HandleAuto
	}
	c.TagTopologyChanged()
	c.CalculateBezierAutoHandles()
	_ = c.EvaluatedPositions()

	c.PositionsForWrite()[1] = V3(2, 4, 0)
	c.TagPositionsChanged()
	got := c.EvaluatedPositions()

	want := c.Copy()
	want.CalculateBezierAutoHandles()
	assert.Empty(t, cmp.Diff(want.EvaluatedPositions(), got, approx))
	assert.Empty(t, cmp.Diff(want.HandlePositionsRight(), c.HandlePositionsRight(), approx))
	assert.InDelta(t, 4, c.HandlePositionsLeft()[1][1], 1e-5, "handles of the moved peak stay level with it")
	assert.InDelta(t, 4, got[DefaultResolution][1], 1e-5)
}

func TestVectorHandlesNeedTopologyTag(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 1, 0}, {2, 0, 0}})
	c.FillCurveTypes(Bezier)
	assert.Equal(t, 2*DefaultResolution+1, c.EvaluatedPointsSize())

	c.HandleTypesLeftForWrite()[1] = HandleVector
	c.HandleTypesRightForWrite()[0] = HandleVector
	c.TagTopologyChanged()
	// The first segment has vector handles on both sides and evaluates to a line.
	assert.Equal(t, 1+DefaultResolution+1, c.EvaluatedPointsSize())
}

func TestBezierEvaluatedPositionsThroughControlPoints(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {3, 0, 0}})
	c.FillCurveTypes(Bezier)
	c.ResolutionForWrite()[0] = 8
	copy(c.HandlePositionsRightForWrite(), []Vec3{{1, 1, 0}, {4, 0, 0}})
	copy(c.HandlePositionsLeftForWrite(), []Vec3{{-1, 0, 0}, {2, 1, 0}})
	c.TagPositionsChanged()

	evaluated := c.EvaluatedPositions()
	assert.Len(t, evaluated, 9)
	assert.Equal(t, V3(0, 0, 0), evaluated[0])
	assert.Equal(t, V3(3, 0, 0), evaluated[8])
	assert.True(t, evaluated[4].Approx(V3(1.5, 0.75, 0), 1e-5), "midpoint %v", evaluated[4])
}
