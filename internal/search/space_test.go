package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
)

func TestSpaceLen(t *testing.T) {
	// 64 bits have 7 factor pairs; plus the no-matrix configuration.
	s := NewSpace(8)
	assert.Len(t, s.Matrices(), 8)
	assert.Equal(t, (7+1)*3*2*8, s.Len())

	assert.Equal(t, 1*3*2*8, NewSpace(0).Len())
}

func TestSpaceAtOrdering(t *testing.T) {
	s := NewSpace(8)
	tests := []struct {
		index int
		want  string
	}{
		{0, "none:standard:rotate-then-xor:0"},
		{7, "none:standard:rotate-then-xor:7"},
		{8, "none:standard:xor-then-rotate:0"},
		{16, "none:spin-right:rotate-then-xor:0"},
		{47, "none:spin-left:xor-then-rotate:7"},
		{48, "1x64:standard:rotate-then-xor:0"},
		{383, "64x1:spin-left:xor-then-rotate:7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.At(tt.index).String(), "index %d", tt.index)
	}
}

func TestSpaceAtCoversEveryCombinationOnce(t *testing.T) {
	s := NewSpace(3)
	seen := make(map[analysis.Combination]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		c := s.At(i)
		if seen[c] {
			t.Fatalf("combination %s enumerated twice", c)
		}
		seen[c] = true
	}
	assert.Len(t, seen, s.Len())
}

func TestSpaceAtOutOfRangePanics(t *testing.T) {
	s := NewSpace(1)
	assert.Panics(t, func() { s.At(s.Len()) })
	assert.Panics(t, func() { s.At(-1) })
}

func TestMatrixOptions(t *testing.T) {
	want := []bitops.Dimension{{Rows: 1, Cols: 8}, {Rows: 2, Cols: 4}, {Rows: 4, Cols: 2}, {Rows: 8, Cols: 1}}
	assert.Equal(t, want, MatrixOptions([]byte{0xff}))
	assert.Nil(t, MatrixOptions(nil))
}
