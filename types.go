package curves

import (
	"errors"
	"fmt"
)

// CurveType selects the evaluation algorithm of a curve.
type CurveType int8

// Curve types. The numeric values are stable and used in stored data.
const (
	CatmullRom CurveType = iota
	Poly
	Bezier
	NURBS

	numCurveTypes = 4
)

// String returns the lower-case name used in curve description files.
func (t CurveType) String() string {
	switch t {
	case CatmullRom:
		return "catmull_rom"
	case Poly:
		return "poly"
	case Bezier:
		return "bezier"
	case NURBS:
		return "nurbs"
	default:
		return "unknown"
	}
}

// HandleType controls how a Bezier handle is positioned.
type HandleType int8

// Handle types.
const (
	// HandleFree handles are left exactly where the user put them.
	HandleFree HandleType = iota
	// HandleAuto handles are computed from the neighboring control points.
	HandleAuto
	// HandleVector handles coincide with their control point. A segment
	// bounded by two vector handles is a straight line.
	HandleVector
	// HandleAlign handles mirror the opposite handle: collinear, pointing
	// the other way, with the same length.
	HandleAlign
)

// String returns the lower-case name of the handle type.
func (t HandleType) String() string {
	switch t {
	case HandleFree:
		return "free"
	case HandleAuto:
		return "auto"
	case HandleVector:
		return "vector"
	case HandleAlign:
		return "align"
	default:
		return "unknown"
	}
}

// KnotsMode selects how a NURBS knot vector is generated.
type KnotsMode int8

// Knot modes.
const (
	// KnotsNormal is a uniform knot vector.
	KnotsNormal KnotsMode = iota
	// KnotsEndpoint repeats the first and last knots so the curve touches
	// its end control points.
	KnotsEndpoint
	// KnotsBezier repeats inner knots so every order-1 points form a Bezier segment.
	KnotsBezier
	// KnotsEndpointBezier combines KnotsEndpoint and KnotsBezier.
	KnotsEndpointBezier
	// KnotsCustom uses a user supplied knot vector.
	KnotsCustom
)

// String returns the lower-case name of the knot mode.
func (m KnotsMode) String() string {
	switch m {
	case KnotsNormal:
		return "normal"
	case KnotsEndpoint:
		return "endpoint"
	case KnotsBezier:
		return "bezier"
	case KnotsEndpointBezier:
		return "endpoint_bezier"
	case KnotsCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// NormalMode selects how evaluated normals are computed.
type NormalMode int8

// Normal modes.
const (
	// NormalMinimumTwist transports the first normal along the curve with the
	// smallest possible rotation between neighbors.
	NormalMinimumTwist NormalMode = iota
	// NormalZUp keeps normals perpendicular to the Z axis.
	NormalZUp
)

// String returns the lower-case name of the normal mode.
func (m NormalMode) String() string {
	switch m {
	case NormalMinimumTwist:
		return "minimum_twist"
	case NormalZUp:
		return "z_up"
	default:
		return "unknown"
	}
}

// Built-in attribute names.
const (
	AttrPosition        = "position"
	AttrHandleLeft      = "handle_left"
	AttrHandleRight     = "handle_right"
	AttrHandleTypeLeft  = "handle_type_left"
	AttrHandleTypeRight = "handle_type_right"
	AttrNURBSWeight     = "nurbs_weight"
	AttrRadius          = "radius"
	AttrTilt            = "tilt"

	AttrCurveType  = "curve_type"
	AttrCyclic     = "cyclic"
	AttrResolution = "resolution"
	AttrNURBSOrder = "nurbs_order"
	AttrKnotsMode  = "knots_mode"
	AttrNormalMode = "normal_mode"
)

// Defaults used when a built-in attribute does not exist.
const (
	DefaultResolution = 12
	DefaultNURBSOrder = 4
)

// ErrUnknownName is returned when text does not name a value of an enum.
var ErrUnknownName = errors.New("curves: unknown name")

// parseName returns the value of type T in [0, count) whose String is text.
func parseName[T interface {
	~int8
	fmt.Stringer
}](text []byte, count int) (T, error) {
	for i := range count {
		if v := T(i); v.String() == string(text) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownName, text)
}

// MarshalText implements encoding.TextMarshaler.
func (t CurveType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CurveType) UnmarshalText(text []byte) (err error) {
	*t, err = parseName[CurveType](text, numCurveTypes)
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (t HandleType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *HandleType) UnmarshalText(text []byte) (err error) {
	*t, err = parseName[HandleType](text, int(HandleAlign)+1)
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (m KnotsMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *KnotsMode) UnmarshalText(text []byte) (err error) {
	*m, err = parseName[KnotsMode](text, int(KnotsCustom)+1)
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (m NormalMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NormalMode) UnmarshalText(text []byte) (err error) {
	*m, err = parseName[NormalMode](text, int(NormalZUp)+1)
	return err
}
