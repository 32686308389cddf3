// Package preview rasterizes evaluated curves into a grayscale image.
//
// Curves are projected onto the XY plane and scaled uniformly to fit the
// image, keeping a margin on every side. Each evaluated segment is drawn as a
// filled quad of the configured stroke width.
package preview

import (
	"errors"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/vector"

	curves "github.com/gogpu/gg-curves"
)

// ErrSize is returned when the requested image has no pixels.
var ErrSize = errors.New("preview: image size must be positive")

// Options control the rendered image.
type Options struct {
	// Width and Height of the image in pixels.
	Width, Height int
	// StrokeWidth is the line width in pixels. Values below 1 draw 1 pixel
	// wide lines.
	StrokeWidth float32
	// Margin is the empty border in pixels.
	Margin float32
}

// DefaultOptions returns a 512x512 preview with 1.5 pixel lines.
func DefaultOptions() Options {
	return Options{Width: 512, Height: 512, StrokeWidth: 1.5, Margin: 16}
}

// viewport maps curve space to pixel space.
type viewport struct {
	scale   float32
	offsetX float32
	offsetY float32
	height  float32
}

func newViewport(lo, hi curves.Vec3, opts Options) viewport {
	w := float32(opts.Width) - 2*opts.Margin
	h := float32(opts.Height) - 2*opts.Margin
	spanX := hi[0] - lo[0]
	spanY := hi[1] - lo[1]

	vp := viewport{height: float32(opts.Height)}
	if max(spanX, spanY) <= 0 || w <= 0 || h <= 0 {
		vp.scale = 1
	} else {
		vp.scale = min(w/max(spanX, 1e-12), h/max(spanY, 1e-12))
	}
	// Center the drawing.
	vp.offsetX = float32(opts.Width)/2 - (lo[0]+spanX/2)*vp.scale
	vp.offsetY = float32(opts.Height)/2 - (lo[1]+spanY/2)*vp.scale
	return vp
}

// project returns the pixel position of p. Y grows upwards in curve space
// and downwards in the image.
func (vp viewport) project(p curves.Vec3) (float32, float32) {
	x := p[0]*vp.scale + vp.offsetX
	y := p[1]*vp.scale + vp.offsetY
	return x, vp.height - y
}

// Render draws the evaluated curves of c.
func Render(c *curves.Curves, opts Options) (*image.Alpha, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrSize
	}
	dst := image.NewAlpha(image.Rect(0, 0, opts.Width, opts.Height))
	lo, hi, ok := c.Bounds()
	if !ok {
		return dst, nil
	}

	vp := newViewport(lo, hi, opts)
	half := max(opts.StrokeWidth, 1) / 2
	positions := c.EvaluatedPositions()
	evaluated := c.EvaluatedPointsByCurve()
	cyclic := c.Cyclic()

	ras := vector.NewRasterizer(opts.Width, opts.Height)
	for curve := range c.CurvesNum() {
		r := evaluated.At(curve)
		p := positions[r.Start:r.End()]
		switch len(p) {
		case 0:
			continue
		case 1:
			x, y := vp.project(p[0])
			square(ras, x, y, half)
			continue
		}
		for i := 1; i < len(p); i++ {
			segment(ras, vp, p[i-1], p[i], half)
		}
		if cyclic.At(curve) && len(p) > 2 {
			segment(ras, vp, p[len(p)-1], p[0], half)
		}
	}
	ras.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	curves.Logger().Debug("preview: rendered", "curves", c.CurvesNum(),
		"points", len(positions), "width", opts.Width, "height", opts.Height)
	return dst, nil
}

// segment adds the quad covering the line from a to b.
func segment(ras *vector.Rasterizer, vp viewport, a, b curves.Vec3, half float32) {
	ax, ay := vp.project(a)
	bx, by := vp.project(b)
	dx, dy := bx-ax, by-ay
	length := math32.Hypot(dx, dy)
	if length == 0 {
		square(ras, ax, ay, half)
		return
	}
	// Normal scaled to half the stroke width.
	nx, ny := -dy/length*half, dx/length*half
	ras.MoveTo(ax+nx, ay+ny)
	ras.LineTo(bx+nx, by+ny)
	ras.LineTo(bx-nx, by-ny)
	ras.LineTo(ax-nx, ay-ny)
	ras.ClosePath()
}

// square adds an axis-aligned square centered at (x, y), wound like the
// quads of segment so overlapping coverage adds up.
func square(ras *vector.Rasterizer, x, y, half float32) {
	ras.MoveTo(x-half, y+half)
	ras.LineTo(x+half, y+half)
	ras.LineTo(x+half, y-half)
	ras.LineTo(x-half, y-half)
	ras.ClosePath()
}

// Encode renders c and writes it to w as PNG.
func Encode(w io.Writer, c *curves.Curves, opts Options) error {
	img, err := Render(c, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WritePNG renders c into the PNG file at path.
func WritePNG(path string, c *curves.Curves, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, c, opts)
}
