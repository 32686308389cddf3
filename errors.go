package curves

import (
	"errors"
	"fmt"
)

// Validation errors returned by Validate.
var (
	ErrOffsetsLength       = errors.New("curves: offsets length does not match the curve count")
	ErrOffsetsNotMonotonic = errors.New("curves: offsets decrease")
	ErrOffsetsBounds       = errors.New("curves: offsets do not span the points")
	ErrUnknownCurveType    = errors.New("curves: unknown curve type")
	ErrCustomKnots         = errors.New("curves: custom knots do not match the curve count")
)

// builtinAttribute describes the storage of a built-in attribute.
type builtinAttribute struct {
	domain  Domain
	hasType func(column) bool
}

func isColumn[T any](c column) bool {
	_, ok := c.(*typedColumn[T])
	return ok
}

var builtinAttributes = map[string]builtinAttribute{
	AttrPosition:        {DomainPoint, isColumn[Vec3]},
	AttrHandleLeft:      {DomainPoint, isColumn[Vec3]},
	AttrHandleRight:     {DomainPoint, isColumn[Vec3]},
	AttrHandleTypeLeft:  {DomainPoint, isColumn[HandleType]},
	AttrHandleTypeRight: {DomainPoint, isColumn[HandleType]},
	AttrNURBSWeight:     {DomainPoint, isColumn[float32]},
	AttrRadius:          {DomainPoint, isColumn[float32]},
	AttrTilt:            {DomainPoint, isColumn[float32]},
	AttrCurveType:       {DomainCurve, isColumn[CurveType]},
	AttrCyclic:          {DomainCurve, isColumn[bool]},
	AttrResolution:      {DomainCurve, isColumn[int32]},
	AttrNURBSOrder:      {DomainCurve, isColumn[int8]},
	AttrKnotsMode:       {DomainCurve, isColumn[KnotsMode]},
	AttrNormalMode:      {DomainCurve, isColumn[NormalMode]},
}

// checkBuiltin returns ErrAttributeType if name is a built-in attribute that
// must be stored with a different element type or domain.
func checkBuiltin(name string, domain Domain, col column) error {
	b, ok := builtinAttributes[name]
	if !ok {
		return nil
	}
	if b.domain != domain || !b.hasType(col) {
		return fmt.Errorf("%w: %q cannot be %s on the %s domain", ErrAttributeType, name, col.elementType(), domain)
	}
	return nil
}

// Validate checks the stored invariants: offsets shape, attribute sizes and
// types, curve type values and custom knot storage. Degenerate curves (empty
// curves, invalid NURBS parameters) are valid data.
func (c *Curves) Validate() error {
	offsets := c.curveOffsets
	if len(offsets) != c.curveNum+1 {
		return fmt.Errorf("%w: %d offsets for %d curves", ErrOffsetsLength, len(offsets), c.curveNum)
	}
	if offsets[0] != 0 || offsets[c.curveNum] != c.pointNum {
		return fmt.Errorf("%w: offsets run from %d to %d, want 0 to %d",
			ErrOffsetsBounds, offsets[0], offsets[c.curveNum], c.pointNum)
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("%w: curve %d starts at %d after %d", ErrOffsetsNotMonotonic, i, offsets[i], offsets[i-1])
		}
	}

	for _, name := range c.attributes.Names() {
		attr := c.attributes.columns[name]
		if want := c.attributes.sizes[attr.Domain]; attr.Len() != want {
			return fmt.Errorf("%w: %q has %d values, want %d", ErrAttributeSize, name, attr.Len(), want)
		}
		if err := checkBuiltin(name, attr.Domain, attr.col); err != nil {
			return err
		}
	}

	if types, ok := LookupAttribute[CurveType](c.attributes, AttrCurveType); ok {
		for i, t := range types {
			if t < 0 || t >= numCurveTypes {
				return fmt.Errorf("%w: curve %d has type %d", ErrUnknownCurveType, i, t)
			}
		}
	}
	if c.customKnots != nil && len(c.customKnots) != c.curveNum {
		return fmt.Errorf("%w: %d knot vectors for %d curves", ErrCustomKnots, len(c.customKnots), c.curveNum)
	}
	return nil
}
