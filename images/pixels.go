package images

import (
	"fmt"
	"image"
)

// BytesPerPixel is the stride of one pixel in the four-channel buffers handed to the pipeline.
const BytesPerPixel = 4

// FromRGBA wraps a tightly packed four-channel buffer (RGBA or RGBX) as an *image.RGBA without
// copying it. The fourth byte of each pixel is carried along but never read by the detector.
//
// Arguments:
//   - pixels: The packed pixel buffer, row-major.
//   - width: The width of the image in pixels.
//   - height: The height of the image in pixels.
//
// Returns:
//   - *image.RGBA: An image backed by pixels.
//   - error: An error if the dimensions are not positive or the buffer length does not match.
func FromRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	if want := width * height * BytesPerPixel; len(pixels) != want {
		return nil, fmt.Errorf("pixel buffer has %d bytes, expected %d for %dx%d", len(pixels), want, width, height)
	}

	return &image.RGBA{
		Pix:    pixels,
		Stride: width * BytesPerPixel,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}
