package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		a, b CodeRange
		want CodeRange
	}{
		{ASCIIOnly, ASCIIOnly, ASCIIOnly},
		{ASCIIOnly, Valid, Valid},
		{Valid, ASCIIOnly, Valid},
		{Valid, Valid, Valid},
		{ASCIIOnly, Broken, Broken},
		{Broken, Valid, Broken},
		{Broken, Unknown, Broken},
		{Unknown, Broken, Broken},
		{Unknown, ASCIIOnly, Unknown},
		{Valid, Unknown, Unknown},
		{Unknown, Unknown, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"+"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
		})
	}
}

func TestMergeCommutative(t *testing.T) {
	all := []CodeRange{Unknown, ASCIIOnly, Valid, Broken}
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, Merge(a, b), Merge(b, a), "%s/%s", a, b)
		}
	}
}

func TestCodeRangePredicates(t *testing.T) {
	assert.False(t, Unknown.IsKnown())
	assert.True(t, Broken.IsKnown())
	assert.True(t, ASCIIOnly.IsValid())
	assert.True(t, Valid.IsValid())
	assert.False(t, Broken.IsValid())
	assert.False(t, Unknown.IsValid())
	assert.Equal(t, "invalid-code-range", CodeRange(42).String())
}
