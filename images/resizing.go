package images

import (
	"image"

	"github.com/nfnt/resize"
)

// ResizeBilinear scales img to exactly width x height using bilinear interpolation.
//
// The source is returned untouched when it already has the requested size.
//
// Arguments:
//   - img: The image to resize.
//   - width: The target width.
//   - height: The target height.
//
// Returns:
//   - image.Image: The resized image.
func ResizeBilinear(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}

	return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
}
