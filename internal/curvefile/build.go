package curvefile

import (
	"fmt"

	curves "github.com/gogpu/gg-curves"
)

// Build converts a document into curves. Per-point lists must be empty or
// have one value per point. Auto, vector and align handles are recomputed.
func Build(doc *Document) (*curves.Curves, error) {
	counts := make([]int, len(doc.Curves))
	var has struct {
		handles, handleTypes, weights, radius, tilt bool
		cyclic, resolution, order, knotsMode, normalMode bool
	}
	for i := range doc.Curves {
		dc := &doc.Curves[i]
		n := len(dc.Points)
		counts[i] = n
		lists := []struct {
			name string
			len  int
		}{
			{"handle_left", len(dc.HandleLeft)},
			{"handle_right", len(dc.HandleRight)},
			{"handle_type_left", len(dc.HandleTypeLeft)},
			{"handle_type_right", len(dc.HandleTypeRight)},
			{"weights", len(dc.Weights)},
			{"radius", len(dc.Radius)},
			{"tilt", len(dc.Tilt)},
		}
		for _, l := range lists {
			if l.len != 0 && l.len != n {
				return nil, fmt.Errorf("%w: curve %d has %d %s for %d points", ErrLength, i, l.len, l.name, n)
			}
		}
		has.handles = has.handles || len(dc.HandleLeft) > 0 || len(dc.HandleRight) > 0
		has.handleTypes = has.handleTypes || len(dc.HandleTypeLeft) > 0 || len(dc.HandleTypeRight) > 0
		has.weights = has.weights || len(dc.Weights) > 0
		has.radius = has.radius || len(dc.Radius) > 0
		has.tilt = has.tilt || len(dc.Tilt) > 0
		has.cyclic = has.cyclic || dc.Cyclic
		has.resolution = has.resolution || dc.Resolution != 0
		has.order = has.order || dc.Order != 0
		has.knotsMode = has.knotsMode || dc.KnotsMode != curves.KnotsNormal
		has.normalMode = has.normalMode || dc.NormalMode != curves.NormalMinimumTwist
	}

	c := curves.NewWithCounts(counts)
	points := c.PointsByCurve()
	positions := c.PositionsForWrite()
	types := c.CurveTypesForWrite()
	for i, dc := range doc.Curves {
		r := points.At(i)
		for j, p := range dc.Points {
			positions[r.Start+j] = curves.Vec3(p)
		}
		types[i] = dc.Type
	}

	if has.handles {
		left, right := c.HandlePositionsLeftForWrite(), c.HandlePositionsRightForWrite()
		for i, dc := range doc.Curves {
			r := points.At(i)
			fillVec3(left[r.Start:r.End()], dc.HandleLeft, dc.Points)
			fillVec3(right[r.Start:r.End()], dc.HandleRight, dc.Points)
		}
	}
	if has.handleTypes {
		left, right := c.HandleTypesLeftForWrite(), c.HandleTypesRightForWrite()
		for i, dc := range doc.Curves {
			r := points.At(i)
			copy(left[r.Start:r.End()], dc.HandleTypeLeft)
			copy(right[r.Start:r.End()], dc.HandleTypeRight)
		}
	}
	if has.weights {
		fillFloats(c.NURBSWeightsForWrite(), points, doc.Curves, func(dc *Curve) []float32 { return dc.Weights })
	}
	if has.radius {
		fillFloats(c.RadiusForWrite(), points, doc.Curves, func(dc *Curve) []float32 { return dc.Radius })
	}
	if has.tilt {
		fillFloats(c.TiltForWrite(), points, doc.Curves, func(dc *Curve) []float32 { return dc.Tilt })
	}

	for i, dc := range doc.Curves {
		if has.cyclic {
			c.CyclicForWrite()[i] = dc.Cyclic
		}
		if has.resolution && dc.Resolution != 0 {
			c.ResolutionForWrite()[i] = dc.Resolution
		}
		if has.order && dc.Order != 0 {
			c.NURBSOrdersForWrite()[i] = dc.Order
		}
		if has.knotsMode {
			c.KnotsModesForWrite()[i] = dc.KnotsMode
		}
		if has.normalMode {
			c.NormalModesForWrite()[i] = dc.NormalMode
		}
		if len(dc.Knots) > 0 {
			c.SetCustomKnots(i, dc.Knots)
		}
	}

	c.UpdateCurveTypes()
	c.CalculateBezierAutoHandles()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	curves.Logger().Debug("curvefile: built curves", "curves", c.CurvesNum(), "points", c.PointsNum())
	return c, nil
}

// fillVec3 copies src into dst, or the positions when src is empty.
func fillVec3(dst []curves.Vec3, src, positions [][3]float32) {
	if len(src) == 0 {
		src = positions
	}
	for i, p := range src {
		dst[i] = curves.Vec3(p)
	}
}

// fillFloats copies the per-point values of every curve that lists them.
func fillFloats(dst []float32, points curves.OffsetIndices, cs []Curve, values func(*Curve) []float32) {
	for i := range cs {
		if v := values(&cs[i]); len(v) > 0 {
			r := points.At(i)
			copy(dst[r.Start:r.End()], v)
		}
	}
}

// FromCurves converts curves into a document. Only data that differs from
// the defaults is written.
func FromCurves(c *curves.Curves) *Document {
	points := c.PointsByCurve()
	positions := c.Positions()
	left, right := c.HandlePositionsLeft(), c.HandlePositionsRight()
	attrs := c.Attributes()
	types := c.CurveTypes()
	cyclic := c.Cyclic()
	resolution := c.Resolution()
	orders := c.NURBSOrders()
	knotsModes := c.KnotsModes()
	normalModes := c.NormalModes()

	doc := &Document{Curves: make([]Curve, c.CurvesNum())}
	for i := range doc.Curves {
		r := points.At(i)
		dc := &doc.Curves[i]
		dc.Type = types.At(i)
		dc.Cyclic = cyclic.At(i)
		if res := resolution.At(i); res != curves.DefaultResolution {
			dc.Resolution = res
		}
		if o := orders.At(i); o != curves.DefaultNURBSOrder {
			dc.Order = o
		}
		dc.NormalMode = normalModes.At(i)
		if knots := c.CustomKnots(i); knots != nil {
			dc.Knots = knots
		} else if m := knotsModes.At(i); m != curves.KnotsCustom {
			dc.KnotsMode = m
		}

		dc.Points = toArrays(positions[r.Start:r.End()])
		if left != nil {
			dc.HandleLeft = toArrays(left[r.Start:r.End()])
		}
		if right != nil {
			dc.HandleRight = toArrays(right[r.Start:r.End()])
		}
		if v, ok := curves.LookupAttribute[curves.HandleType](attrs, curves.AttrHandleTypeLeft); ok {
			dc.HandleTypeLeft = v[r.Start:r.End()]
		}
		if v, ok := curves.LookupAttribute[curves.HandleType](attrs, curves.AttrHandleTypeRight); ok {
			dc.HandleTypeRight = v[r.Start:r.End()]
		}
		if v, ok := curves.LookupAttribute[float32](attrs, curves.AttrNURBSWeight); ok {
			dc.Weights = v[r.Start:r.End()]
		}
		if v, ok := curves.LookupAttribute[float32](attrs, curves.AttrRadius); ok {
			dc.Radius = v[r.Start:r.End()]
		}
		if v, ok := curves.LookupAttribute[float32](attrs, curves.AttrTilt); ok {
			dc.Tilt = v[r.Start:r.End()]
		}
	}
	return doc
}

func toArrays(values []curves.Vec3) [][3]float32 {
	out := make([][3]float32, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
