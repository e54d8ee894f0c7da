package util

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 8, 24},
		{-8, 16, 0},
	}

	for _, test := range tests {
		be.Equal(t, AlignUp(test.n, test.align), test.want)
	}
}

func TestMapContains(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(x int) int { return x * 2 })
	be.Equal(t, doubled, []int{2, 4, 6})
	be.True(t, Contains(doubled, 4))
	be.True(t, !Contains(doubled, 5))
}
