// Package curves stores and evaluates collections of 3D curves.
//
// # Overview
//
// A [Curves] value holds many curves in flat buffers: every curve owns a
// contiguous range of control points, described by an offsets array with one
// more element than there are curves. Per-point and per-curve data live in
// named attributes; a handful of built-in attributes (positions, handles,
// curve types, cyclic flags, resolution, NURBS parameters) drive evaluation.
//
// # Quick Start
//
//	c := curves.NewWithCounts([]int{4})
//	copy(c.PositionsForWrite(), []curves.Vec3{{0, 0, 0}, {1, 1, 0}, {2, 1, 0}, {3, 0, 0}})
//	c.TagPositionsChanged()
//	c.FillCurveTypes(curves.CatmullRom)
//
//	points := c.EvaluatedPositions()
//	length := c.CurveLength(0)
//
// # Curve Types
//
// Four curve types are supported:
//   - Poly: evaluated points are the control points.
//   - Bezier: cubic segments between control points, shaped by left and right
//     handles. Auto, vector and align handles are derived from positions.
//   - Catmull-Rom: interpolating spline through the control points.
//   - NURBS: rational B-splines with per-curve order, knot mode and weights.
//
// # Derived Data
//
// Evaluated offsets, positions, tangents, normals, lengths, bounds and the
// NURBS basis are computed lazily and cached. Each cache has its own lock, so
// concurrent readers share one computation. Writers must call the matching
// tag method ([Curves.TagPositionsChanged], [Curves.TagTopologyChanged],
// [Curves.TagNormalsChanged]) after changing buffers, and must not write while
// other goroutines read.
//
// # Structural Edits
//
// [Curves.Subdivide], [Curves.RemovePointsAndSplit], [Curves.RemovePoints],
// [Curves.CopyCurves] and [Curves.RemoveCurves] return new values and leave
// the source untouched. Per-curve work runs on a shared worker pool, sized
// with [SetWorkers].
//
// # Logging
//
// The package logs through [log/slog]. It is silent by default; see
// [SetLogger].
package curves
