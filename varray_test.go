package curves

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVArray(t *testing.T) {
	single := VArraySingle(7, 3)
	v, ok := single.Single()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, []int{7, 7, 7}, single.Materialize())
	_, ok = single.Span()
	assert.False(t, ok)

	values := []int{1, 2, 3}
	span := VArraySpan(values)
	s, ok := span.Span()
	assert.True(t, ok)
	assert.Same(t, &values[0], &s[0])
	assert.Equal(t, 2, span.At(1))

	fn := VArrayFunc(4, func(i int) int { return i * i })
	assert.Equal(t, 4, fn.Len())
	assert.Equal(t, []int{0, 1, 4, 9}, fn.Materialize())

	dst := make([]int, 2)
	fn.MaterializeTo(Range(2, 2), dst)
	assert.Equal(t, []int{4, 9}, dst)

	assert.Panics(t, func() { span.At(3) })
}
