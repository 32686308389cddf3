package curves

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTangents(t *testing.T) {
	tests := []struct {
		name      string
		positions []Vec3
		cyclic    bool
		want      []Vec3
	}{
		{
			name:      "single point points up",
			positions: []Vec3{{1, 2, 3}},
			want:      []Vec3{zAxis},
		},
		{
			name:      "straight line",
			positions: []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
			want:      []Vec3{xAxis, xAxis, xAxis},
		},
		{
			name:      "all coincident",
			positions: []Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
			want:      []Vec3{zAxis, zAxis, zAxis},
		},
		{
			name:      "duplicate point copies neighbor",
			positions: []Vec3{{0, 0, 0}, {0, 0, 0}, {0, 1, 0}},
			want:      []Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]Vec3, len(tt.positions))
			calculateTangents(tt.positions, tt.cyclic, got)
			for i := range got {
				assert.True(t, got[i].Approx(tt.want[i], 1e-6), "tangent %d = %v, want %v", i, got[i], tt.want[i])
			}
		})
	}
}

func TestCalculateTangentsCyclicSquare(t *testing.T) {
	square := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	got := make([]Vec3, 4)
	calculateTangents(square, true, got)
	s := 1 / math32.Sqrt(2)
	assert.True(t, got[0].Approx(V3(s, -s, 0), 1e-6), "corner tangent %v", got[0])
	assert.True(t, got[1].Approx(V3(s, s, 0), 1e-6), "corner tangent %v", got[1])
}

func TestNormalsArePerpendicular(t *testing.T) {
	positions := []Vec3{{0, 0, 0}, {1, 0, 0.5}, {2, 1, 0}, {2, 2, 1}, {1, 3, 0}}
	tangents := make([]Vec3, len(positions))
	calculateTangents(positions, false, tangents)

	for _, mode := range []NormalMode{NormalMinimumTwist, NormalZUp} {
		normals := make([]Vec3, len(positions))
		if mode == NormalZUp {
			calculateNormalsZUp(tangents, normals)
		} else {
			calculateNormalsMinimumTwist(tangents, false, normals)
		}
		for i := range normals {
			assert.InDelta(t, 1, normals[i].Length(), 1e-5, "%v normal %d length", mode, i)
			assert.InDelta(t, 0, normals[i].Dot(tangents[i]), 1e-5, "%v normal %d not perpendicular", mode, i)
		}
	}
}

func TestMinimumTwistCyclicMeetsUp(t *testing.T) {
	// A twisted closed loop: transported normals do not match at the seam
	// without correction.
	const n = 16
	positions := make([]Vec3, n)
	for i := range positions {
		a := 2 * math32.Pi * float32(i) / n
		positions[i] = V3(math32.Cos(a), math32.Sin(a), 0.5*math32.Sin(2*a))
	}
	tangents := make([]Vec3, n)
	calculateTangents(positions, true, tangents)
	normals := make([]Vec3, n)
	calculateNormalsMinimumTwist(tangents, true, normals)

	transported := nextNormal(normals[n-1], tangents[n-1], tangents[0])
	assert.InDelta(t, 1, transported.Dot(normals[0]), 0.05)
}

func TestZUpNormalsAreHorizontal(t *testing.T) {
	tangents := []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	normals := make([]Vec3, 3)
	calculateNormalsZUp(tangents, normals)
	for i, n := range normals {
		assert.Zero(t, n[2], "normal %d", i)
	}
	assert.Equal(t, xAxis, normals[2], "vertical tangent falls back to +X")
}

func TestEvaluatedNormalsTilt(t *testing.T) {
	c := newTestCurves(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}})
	c.FillCurveTypes(Poly)
	before := append([]Vec3(nil), c.EvaluatedNormals()...)

	tilt := c.TiltForWrite()
	for i := range tilt {
		tilt[i] = math32.Pi / 2
	}
	c.TagNormalsChanged()
	after := c.EvaluatedNormals()
	tangents := c.EvaluatedTangents()

	require.Len(t, after, 3)
	for i := range after {
		assert.InDelta(t, 0, before[i].Dot(after[i]), 1e-5, "normal %d rotated by a quarter turn", i)
		assert.InDelta(t, 0, after[i].Dot(tangents[i]), 1e-5)
	}
}
