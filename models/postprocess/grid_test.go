package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGridsAndStride_Count(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   int
	}{
		{name: "640x640", width: 640, height: 640, want: 80*80 + 40*40 + 20*20},
		{name: "416x416", width: 416, height: 416, want: 52*52 + 26*26 + 13*13},
		{name: "288x288", width: 288, height: 288, want: 36*36 + 18*18 + 9*9},
		{name: "640x480", width: 640, height: 480, want: 80*60 + 40*30 + 20*15},
		{name: "non multiple of 32", width: 100, height: 40, want: 12*5 + 6*2 + 3*1},
		{name: "empty", width: 0, height: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := GenerateGridsAndStride(tt.width, tt.height, DefaultStrides)
			assert.Len(t, grid, tt.want)
			assert.Equal(t, tt.want, AnchorCount(tt.width, tt.height, DefaultStrides))
		})
	}
}

func TestGenerateGridsAndStride_Order(t *testing.T) {
	grid := GenerateGridsAndStride(64, 32, DefaultStrides)
	require.Len(t, grid, 8*4+4*2+2*1)

	// Stride 8 block: row-major, columns inner.
	assert.Equal(t, GridStride{GridX: 0, GridY: 0, Stride: 8}, grid[0])
	assert.Equal(t, GridStride{GridX: 1, GridY: 0, Stride: 8}, grid[1])
	assert.Equal(t, GridStride{GridX: 7, GridY: 0, Stride: 8}, grid[7])
	assert.Equal(t, GridStride{GridX: 0, GridY: 1, Stride: 8}, grid[8])
	assert.Equal(t, GridStride{GridX: 7, GridY: 3, Stride: 8}, grid[31])

	// Then stride 16, then stride 32.
	assert.Equal(t, GridStride{GridX: 0, GridY: 0, Stride: 16}, grid[32])
	assert.Equal(t, GridStride{GridX: 3, GridY: 1, Stride: 16}, grid[39])
	assert.Equal(t, GridStride{GridX: 0, GridY: 0, Stride: 32}, grid[40])
	assert.Equal(t, GridStride{GridX: 1, GridY: 0, Stride: 32}, grid[41])

	prev := 0
	for _, g := range grid {
		assert.GreaterOrEqual(t, g.Stride, prev, "strides must be non-decreasing")
		prev = g.Stride
	}
}

func TestGenerateGridsAndStride_SingleCell(t *testing.T) {
	grid := GenerateGridsAndStride(32, 32, []int{32})
	assert.Equal(t, []GridStride{{GridX: 0, GridY: 0, Stride: 32}}, grid)
}
