package postprocess

import "github.com/chewxy/math32"

// UnmapOptions controls how detections are mapped back into source image space.
type UnmapOptions struct {
	// Scale is the letterbox scale factor, min(inputW/imageW, inputH/imageH).
	Scale float32
	// ImageWidth is the width of the source image.
	ImageWidth int
	// ImageHeight is the height of the source image.
	ImageHeight int
	// ScaleExtents also divides width and height by Scale. When false the extents are left in
	// model space and only the corner is mapped.
	ScaleExtents bool
}

// Unmap maps detections from padded model space back into source image space in place.
//
// The top-left corner is divided by the scale and clamped to [0, width-1] x [0, height-1].
// Width and height are only rescaled when ScaleExtents is set.
func Unmap(detections []Detection, opts UnmapOptions) {
	if opts.Scale <= 0 {
		return
	}

	maxX := float32(opts.ImageWidth - 1)
	maxY := float32(opts.ImageHeight - 1)

	for i := range detections {
		box := &detections[i].Box

		box.X0 = clamp(box.X0/opts.Scale, 0, maxX)
		box.Y0 = clamp(box.Y0/opts.Scale, 0, maxY)

		if opts.ScaleExtents {
			box.Width /= opts.Scale
			box.Height /= opts.Scale
		}
	}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(math32.Min(v, hi), lo)
}
