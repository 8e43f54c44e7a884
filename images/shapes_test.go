package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIoU_Correctness validates the IoU implementation against known test cases
func TestIoU_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		r1       Rect
		r2       Rect
		expected float32
	}{
		{
			name:     "Identical rectangles",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{0, 0, 100, 100},
			expected: 1.0,
		},
		{
			name:     "No overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{200, 200, 100, 100},
			expected: 0.0,
		},
		{
			name:     "Touching edges",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{100, 0, 100, 100},
			expected: 0.0,
		},
		{
			name:     "Half overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{50, 50, 100, 100},
			expected: 0.142857, // 2500 / (10000 + 10000 - 2500)
		},
		{
			name:     "One inside other",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{25, 25, 50, 50},
			expected: 0.25,
		},
		{
			name:     "Fractional coordinates",
			r1:       Rect{0.5, 0.5, 10, 10},
			r2:       Rect{5.5, 0.5, 10, 10},
			expected: 0.333333, // 50 / (100 + 100 - 50)
		},
		{
			name:     "Degenerate boxes",
			r1:       Rect{10, 10, 0, 0},
			r2:       Rect{10, 10, 0, 0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateIoU(tt.r1, tt.r2)
			assert.InDelta(t, tt.expected, result, 1e-4, "IoU(%v, %v)", tt.r1, tt.r2)

			// IoU(A, B) should equal IoU(B, A)
			assert.InDelta(t, result, CalculateIoU(tt.r2, tt.r1), 1e-6, "IoU should be symmetric")
		})
	}
}

func TestRect_Intersect(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, Width: 10, Height: 10}

	assert.Equal(t, Rect{X0: 5, Y0: 2, Width: 5, Height: 8}, a.Intersect(Rect{X0: 5, Y0: 2, Width: 20, Height: 20}))
	assert.Equal(t, Rect{}, a.Intersect(Rect{X0: 10, Y0: 0, Width: 5, Height: 5}), "touching boxes do not intersect")
	assert.Equal(t, Rect{}, a.Intersect(Rect{X0: -20, Y0: -20, Width: 5, Height: 5}))
	assert.Equal(t, float32(10), a.Right())
	assert.Equal(t, float32(10), a.Bottom())
	assert.Equal(t, float32(100), a.Area())
}
