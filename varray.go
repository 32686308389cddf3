package curves

import "fmt"

// varrayKind tags how a VArray stores its values.
type varrayKind uint8

const (
	varraySingle varrayKind = iota
	varraySpan
	varrayFunc
)

// VArray is a read-only view of size values that may be backed by a single
// repeated value, a dense slice, or a function of the index. Callers must not
// assume a backing slice exists; hot loops should call Materialize or check
// Span first to avoid per-element dispatch.
type VArray[T any] struct {
	kind   varrayKind
	size   int
	single T
	span   []T
	fn     func(int) T
}

// VArraySingle returns a view where every element equals value.
func VArraySingle[T any](value T, size int) VArray[T] {
	return VArray[T]{kind: varraySingle, size: size, single: value}
}

// VArraySpan returns a view over s. The slice is not copied.
func VArraySpan[T any](s []T) VArray[T] {
	return VArray[T]{kind: varraySpan, size: len(s), span: s}
}

// VArrayFunc returns a view whose element i is fn(i).
func VArrayFunc[T any](size int, fn func(int) T) VArray[T] {
	return VArray[T]{kind: varrayFunc, size: size, fn: fn}
}

// Len returns the number of elements.
func (v VArray[T]) Len() int { return v.size }

// At returns element i.
func (v VArray[T]) At(i int) T {
	if i < 0 || i >= v.size {
		panic(fmt.Sprintf("curves: VArray index %d out of range [0, %d)", i, v.size))
	}
	switch v.kind {
	case varraySingle:
		return v.single
	case varraySpan:
		return v.span[i]
	default:
		return v.fn(i)
	}
}

// Single returns the repeated value if the view is backed by one.
func (v VArray[T]) Single() (T, bool) {
	if v.kind == varraySingle {
		return v.single, true
	}
	var zero T
	return zero, false
}

// Span returns the backing slice if the view is backed by one.
func (v VArray[T]) Span() ([]T, bool) {
	if v.kind == varraySpan {
		return v.span, true
	}
	return nil, false
}

// Materialize returns the values as a slice. A span-backed view returns its
// slice directly; callers must not modify the result.
func (v VArray[T]) Materialize() []T {
	if v.kind == varraySpan {
		return v.span
	}
	out := make([]T, v.size)
	v.MaterializeTo(IndexRange{Size: v.size}, out)
	return out
}

// MaterializeTo copies the elements in r into dst.
func (v VArray[T]) MaterializeTo(r IndexRange, dst []T) {
	switch v.kind {
	case varraySingle:
		for i := range r.Size {
			dst[i] = v.single
		}
	case varraySpan:
		copy(dst[:r.Size], v.span[r.Start:r.End()])
	default:
		for i := range r.Size {
			dst[i] = v.fn(r.Start + i)
		}
	}
}
