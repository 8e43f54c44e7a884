// Package postprocess - Postprocessing utilities for models.
package postprocess

import "github.com/nvr-ai/go-yolox/images"

// Detection represents a single detected object.
type Detection struct {
	// The bounding box of the detection, top-left anchored. Coordinates are in padded model input
	// space until Unmap is applied.
	Box images.Rect
	// The predicted class index of the detection.
	Label int
	// The objectness multiplied by the best class score.
	Prob float32
}
