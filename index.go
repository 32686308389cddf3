package curves

import (
	"fmt"
	"slices"
)

// IndexRange is a contiguous half-open range of indices [Start, Start+Size).
type IndexRange struct {
	Start int
	Size  int
}

// Range is a convenience function to create an IndexRange.
func Range(start, size int) IndexRange {
	return IndexRange{Start: start, Size: size}
}

// End returns one past the last index.
func (r IndexRange) End() int { return r.Start + r.Size }

// Last returns the last index. The range must not be empty.
func (r IndexRange) Last() int {
	if r.Size == 0 {
		panic("curves: Last of empty IndexRange")
	}
	return r.Start + r.Size - 1
}

// IsEmpty reports whether the range contains no indices.
func (r IndexRange) IsEmpty() bool { return r.Size == 0 }

// Contains reports whether i is inside the range.
func (r IndexRange) Contains(i int) bool { return i >= r.Start && i < r.End() }

// DropFront returns the range without its first n indices.
func (r IndexRange) DropFront(n int) IndexRange {
	n = min(n, r.Size)
	return IndexRange{Start: r.Start + n, Size: r.Size - n}
}

// DropBack returns the range without its last n indices.
func (r IndexRange) DropBack(n int) IndexRange {
	n = min(n, r.Size)
	return IndexRange{Start: r.Start, Size: r.Size - n}
}

// Shift returns the range moved by n.
func (r IndexRange) Shift(n int) IndexRange {
	return IndexRange{Start: r.Start + n, Size: r.Size}
}

// sliceRange returns the part of s covered by r.
func sliceRange[T any](s []T, r IndexRange) []T {
	return s[r.Start:r.End():r.End()]
}

// OffsetIndices interprets an "N+1 prefix sums" array as N groups, so group i
// covers [offsets[i], offsets[i+1]). Lookups are O(1) indexing.
type OffsetIndices struct {
	offsets []int
}

// NewOffsetIndices wraps offsets without copying. offsets must have at least
// one element and be non-decreasing.
func NewOffsetIndices(offsets []int) OffsetIndices {
	if len(offsets) == 0 {
		panic("curves: offsets must contain at least one element")
	}
	return OffsetIndices{offsets: offsets}
}

// Size returns the number of groups.
func (o OffsetIndices) Size() int { return len(o.offsets) - 1 }

// TotalSize returns the number of indices covered by all groups.
func (o OffsetIndices) TotalSize() int { return o.offsets[len(o.offsets)-1] - o.offsets[0] }

// At returns the range of group i. It panics if i is out of range.
func (o OffsetIndices) At(i int) IndexRange {
	if i < 0 || i >= len(o.offsets)-1 {
		panic(fmt.Sprintf("curves: group index %d out of range [0, %d)", i, len(o.offsets)-1))
	}
	begin := o.offsets[i]
	return IndexRange{Start: begin, Size: o.offsets[i+1] - begin}
}

// Offsets returns the underlying prefix sums.
func (o OffsetIndices) Offsets() []int { return o.offsets }

// AccumulateCountsToOffsets turns counts stored in counts[:len-1] into prefix
// sums in place, starting at start. The last element receives the total.
func AccumulateCountsToOffsets(counts []int, start int) int {
	offset := start
	for i := range len(counts) - 1 {
		size := counts[i]
		counts[i] = offset
		offset += size
	}
	counts[len(counts)-1] = offset
	return offset
}

// perCurvePointOffsetsRange returns the range for arrays that store one extra
// element per curve, such as per-point Bezier evaluated offsets.
func perCurvePointOffsetsRange(points IndexRange, curve int) IndexRange {
	return IndexRange{Start: points.Start + curve, Size: points.Size + 1}
}

// IndexMask is a sorted set of unique indices, used as a selection.
type IndexMask []int

// MaskFromBools returns the indices where b is true.
func MaskFromBools(b []bool) IndexMask {
	mask := make(IndexMask, 0, len(b))
	for i, v := range b {
		if v {
			mask = append(mask, i)
		}
	}
	return mask
}

// MaskFromRange returns a mask with every index of r.
func MaskFromRange(r IndexRange) IndexMask {
	mask := make(IndexMask, r.Size)
	for i := range mask {
		mask[i] = r.Start + i
	}
	return mask
}

// MaskFromIndices sorts and deduplicates indices into a mask.
func MaskFromIndices(indices ...int) IndexMask {
	mask := slices.Clone(indices)
	slices.Sort(mask)
	return slices.Compact(mask)
}

// Len returns the number of selected indices.
func (m IndexMask) Len() int { return len(m) }

// IsEmpty reports whether nothing is selected.
func (m IndexMask) IsEmpty() bool { return len(m) == 0 }

// ToBools writes the mask into a bool slice of the given size.
func (m IndexMask) ToBools(size int) []bool {
	b := make([]bool, size)
	for _, i := range m {
		b[i] = true
	}
	return b
}

// Complement returns every index in [0, size) that is not in m.
func (m IndexMask) Complement(size int) IndexMask {
	out := make(IndexMask, 0, size-len(m))
	next := 0
	for i := range size {
		if next < len(m) && m[next] == i {
			next++
			continue
		}
		out = append(out, i)
	}
	return out
}

// findRanges returns the maximal runs of indices where b[i] == value.
func findRanges(b []bool, value bool) []IndexRange {
	var ranges []IndexRange
	for i := 0; i < len(b); {
		if b[i] != value {
			i++
			continue
		}
		start := i
		for i < len(b) && b[i] == value {
			i++
		}
		ranges = append(ranges, IndexRange{Start: start, Size: i - start})
	}
	return ranges
}
