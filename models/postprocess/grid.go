package postprocess

// DefaultStrides are the feature map strides of the YOLOX heads, smallest first.
var DefaultStrides = []int{8, 16, 32}

// GridStride is one anchor location of the YOLOX output: the cell column and row on the feature
// map of the given stride.
type GridStride struct {
	GridX  int
	GridY  int
	Stride int
}

// GenerateGridsAndStride builds the anchor table for a padded input of width x height.
//
// Anchors are ordered by stride in the order given, then by row, then by column. The network emits
// its proposals in exactly this order, so the table index of an anchor is its proposal index.
//
// Arguments:
//   - width: The padded model input width.
//   - height: The padded model input height.
//   - strides: The head strides, usually DefaultStrides.
//
// Returns:
//   - []GridStride: The ordered anchor table.
func GenerateGridsAndStride(width, height int, strides []int) []GridStride {
	grid := make([]GridStride, 0, AnchorCount(width, height, strides))

	for _, stride := range strides {
		if stride <= 0 {
			continue
		}
		gh := height / stride
		gw := width / stride
		for row := 0; row < gh; row++ {
			for col := 0; col < gw; col++ {
				grid = append(grid, GridStride{GridX: col, GridY: row, Stride: stride})
			}
		}
	}

	return grid
}

// AnchorCount returns the number of anchors GenerateGridsAndStride produces for the same input.
func AnchorCount(width, height int, strides []int) int {
	n := 0
	for _, stride := range strides {
		if stride <= 0 {
			continue
		}
		n += (width / stride) * (height / stride)
	}

	return n
}
