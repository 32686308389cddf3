package curves

import (
	"errors"
	"fmt"
	"slices"
)

// Domain is the element an attribute stores one value per.
type Domain int8

// Attribute domains.
const (
	DomainPoint Domain = iota
	DomainCurve
)

// String returns the lower-case name of the domain.
func (d Domain) String() string {
	switch d {
	case DomainPoint:
		return "point"
	case DomainCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// Attribute errors.
var (
	ErrAttributeExists = errors.New("curves: attribute already exists")
	ErrAttributeSize   = errors.New("curves: attribute size does not match its domain")
	ErrAttributeType   = errors.New("curves: attribute has a different element type")
	ErrUnknownDomain   = errors.New("curves: unknown attribute domain")
)

// AttributeFilter decides whether a named attribute is propagated by a
// structural edit. A nil filter propagates everything.
type AttributeFilter func(name string) bool

func (f AttributeFilter) allows(name string) bool {
	return f == nil || f(name)
}

// column is the type-erased storage of one attribute.
type column interface {
	Len() int
	clone() column
	empty(n int) column
	resize(n int)
	gather(indices []int) column
	copyGroups(src column, srcOffsets, dstOffsets OffsetIndices, groups IndexMask)
	subdivideLinear(dst column, srcPoints, dstPoints IndexRange, segmentOffsets []int, cyclic bool)
	subdivideCatmullRom(dst column, srcPoints, dstPoints IndexRange, segmentOffsets []int, cyclic bool)
	reverseRange(r IndexRange)
	elementType() string
}

type typedColumn[T any] struct {
	values []T
	ops    arith[T]
}

func newColumn[T any](values []T) *typedColumn[T] {
	return &typedColumn[T]{values: values, ops: arithFor[T]()}
}

func (c *typedColumn[T]) Len() int { return len(c.values) }

func (c *typedColumn[T]) clone() column {
	return &typedColumn[T]{values: slices.Clone(c.values), ops: c.ops}
}

func (c *typedColumn[T]) empty(n int) column {
	return &typedColumn[T]{values: make([]T, n), ops: c.ops}
}

func (c *typedColumn[T]) resize(n int) {
	if n <= cap(c.values) {
		old := len(c.values)
		c.values = c.values[:n]
		clear(c.values[min(old, n):])
		return
	}
	grown := make([]T, n)
	copy(grown, c.values)
	c.values = grown
}

func (c *typedColumn[T]) gather(indices []int) column {
	out := make([]T, len(indices))
	for i, src := range indices {
		out[i] = c.values[src]
	}
	return &typedColumn[T]{values: out, ops: c.ops}
}

func (c *typedColumn[T]) copyGroups(src column, srcOffsets, dstOffsets OffsetIndices, groups IndexMask) {
	from := src.(*typedColumn[T]).values
	for _, g := range groups {
		copy(sliceRange(c.values, dstOffsets.At(g)), sliceRange(from, srcOffsets.At(g)))
	}
}

func (c *typedColumn[T]) reverseRange(r IndexRange) {
	slices.Reverse(sliceRange(c.values, r))
}

func (c *typedColumn[T]) elementType() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// Attribute describes one stored attribute.
type Attribute struct {
	Name   string
	Domain Domain
	col    column
}

// Len returns the number of stored values.
func (a *Attribute) Len() int { return a.col.Len() }

// Attributes is a set of named columns on the point and curve domains.
// Every column on a domain has exactly that domain's size.
type Attributes struct {
	sizes   [2]int
	columns map[string]*Attribute
}

func newAttributes(points, curves int) *Attributes {
	return &Attributes{sizes: [2]int{points, curves}, columns: make(map[string]*Attribute)}
}

// DomainSize returns the number of elements in a domain.
func (a *Attributes) DomainSize(d Domain) int {
	return a.sizes[d]
}

// Contains reports whether an attribute with the name exists.
func (a *Attributes) Contains(name string) bool {
	_, ok := a.columns[name]
	return ok
}

// Lookup returns the attribute metadata for name.
func (a *Attributes) Lookup(name string) (*Attribute, bool) {
	attr, ok := a.columns[name]
	return attr, ok
}

// Remove deletes an attribute. Returns false if it did not exist.
func (a *Attributes) Remove(name string) bool {
	if _, ok := a.columns[name]; !ok {
		return false
	}
	delete(a.columns, name)
	return true
}

// Names returns the attribute names in sorted order.
func (a *Attributes) Names() []string {
	names := make([]string, 0, len(a.columns))
	for name := range a.columns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NamesOnDomain returns the sorted names of attributes stored on d.
func (a *Attributes) NamesOnDomain(d Domain) []string {
	var names []string
	for _, name := range a.Names() {
		if a.columns[name].Domain == d {
			names = append(names, name)
		}
	}
	return names
}

func (a *Attributes) clone() *Attributes {
	out := &Attributes{sizes: a.sizes, columns: make(map[string]*Attribute, len(a.columns))}
	for name, attr := range a.columns {
		out.columns[name] = &Attribute{Name: name, Domain: attr.Domain, col: attr.col.clone()}
	}
	return out
}

// resize changes both domain sizes, keeping the leading values.
func (a *Attributes) resize(points, curves int) {
	a.sizes = [2]int{points, curves}
	for _, attr := range a.columns {
		attr.col.resize(a.sizes[attr.Domain])
	}
}

// put stores a column, replacing any attribute with the same name.
func (a *Attributes) put(name string, domain Domain, col column) {
	if col.Len() != a.sizes[domain] {
		panic(fmt.Sprintf("curves: attribute %q has %d values, %s domain has %d", name, col.Len(), domain, a.sizes[domain]))
	}
	a.columns[name] = &Attribute{Name: name, Domain: domain, col: col}
}

// LookupAttribute returns the values of the attribute called name.
// The slice aliases the storage: writes are visible to the curves, and the
// matching tag method must be called afterwards.
func LookupAttribute[T any](a *Attributes, name string) ([]T, bool) {
	attr, ok := a.columns[name]
	if !ok {
		return nil, false
	}
	col, ok := attr.col.(*typedColumn[T])
	if !ok {
		return nil, false
	}
	return col.values, true
}

// AddAttribute creates an attribute. A nil values slice creates a
// zero-filled attribute of the domain's size.
func AddAttribute[T any](a *Attributes, name string, domain Domain, values []T) error {
	if domain != DomainPoint && domain != DomainCurve {
		return fmt.Errorf("%w: %d", ErrUnknownDomain, domain)
	}
	if a.Contains(name) {
		return fmt.Errorf("%w: %q", ErrAttributeExists, name)
	}
	size := a.sizes[domain]
	if values == nil {
		values = make([]T, size)
	}
	if len(values) != size {
		return fmt.Errorf("%w: %q has %d values, %s domain has %d", ErrAttributeSize, name, len(values), domain, size)
	}
	col := newColumn(values)
	if err := checkBuiltin(name, domain, col); err != nil {
		return err
	}
	a.put(name, domain, col)
	return nil
}

// lookupOrAdd returns the values of a built-in attribute, creating it filled
// with def if it does not exist.
func lookupOrAdd[T any](a *Attributes, name string, domain Domain, def T) []T {
	if attr, ok := a.columns[name]; ok {
		col, ok := attr.col.(*typedColumn[T])
		if !ok || attr.Domain != domain {
			panic(fmt.Sprintf("curves: built-in attribute %q has type %s on %s domain", name, attr.col.elementType(), attr.Domain))
		}
		return col.values
	}
	values := make([]T, a.sizes[domain])
	for i := range values {
		values[i] = def
	}
	a.put(name, domain, newColumn(values))
	return values
}

// lookupVArray returns a built-in attribute as a VArray, or a single default
// value if it does not exist.
func lookupVArray[T any](a *Attributes, name string, domain Domain, def T) VArray[T] {
	if values, ok := LookupAttribute[T](a, name); ok {
		return VArraySpan(values)
	}
	return VArraySingle(def, a.sizes[domain])
}
