package curves

import (
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gg-curves/internal/parallel"
)

// transformPoint applies a row-major affine or projective matrix to p.
func transformPoint(m *f32.Mat4, p Vec3) Vec3 {
	out := Vec3{
		m[0]*p[0] + m[1]*p[1] + m[2]*p[2] + m[3],
		m[4]*p[0] + m[5]*p[1] + m[6]*p[2] + m[7],
		m[8]*p[0] + m[9]*p[1] + m[10]*p[2] + m[11],
	}
	if w := m[12]*p[0] + m[13]*p[1] + m[14]*p[2] + m[15]; w != 1 && w != 0 {
		out = out.Div(w)
	}
	return out
}

// IdentityMat4 returns the identity matrix.
func IdentityMat4() f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// transformPositions applies fn to positions and both handle arrays.
func (c *Curves) transformPositions(fn func(Vec3) Vec3) {
	buffers := [][]Vec3{c.PositionsForWrite(), c.HandlePositionsLeft(), c.HandlePositionsRight()}
	for _, b := range buffers {
		if b == nil {
			continue
		}
		parallel.For(len(b), grainCopy, func(start, end int) {
			for i := start; i < end; i++ {
				b[i] = fn(b[i])
			}
		})
	}
	c.TagPositionsChanged()
}

// Transform multiplies positions and Bezier handles by the row-major matrix m.
func (c *Curves) Transform(m f32.Mat4) {
	c.transformPositions(func(p Vec3) Vec3 { return transformPoint(&m, p) })
}

// Translate moves positions and Bezier handles by offset.
func (c *Curves) Translate(offset Vec3) {
	if offset.IsZero() {
		return
	}
	c.transformPositions(func(p Vec3) Vec3 { return p.Add(offset) })
}
