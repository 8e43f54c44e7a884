// Package preprocess - Letterbox preprocessing of raw frames into model input tensors.
package preprocess

import (
	"image"

	"github.com/nvr-ai/go-yolox/images"
	"github.com/pkg/errors"
)

// Channels is the number of color channels written to the tensor.
const Channels = 3

// ImageNet channel statistics used to standardize pixel values.
var (
	ImageNetMean = [Channels]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [Channels]float32{0.229, 0.224, 0.225}
)

// Letterbox scales a frame into a fixed model input while preserving its aspect ratio.
//
// The scaled frame is anchored at the top-left corner of the input and the remaining bottom and
// right area is zero-filled before normalization. The tensor is written in planar CHW order.
type Letterbox struct {
	// InputWidth is the width of the model input.
	InputWidth int
	// InputHeight is the height of the model input.
	InputHeight int
	// Mean is subtracted from each channel after scaling pixel values to [0, 1].
	Mean [Channels]float32
	// Std divides each channel after the mean is subtracted.
	Std [Channels]float32
}

// NewLetterbox creates a letterbox preprocessor with ImageNet statistics.
//
// Arguments:
// - width: The model input width.
// - height: The model input height.
//
// Returns:
// - A configured Letterbox instance.
// - error if either dimension is not positive.
//
// @example
//
//	lb, err := NewLetterbox(640, 640)
//	if err != nil {
//	    return err
//	}
//	err = lb.Process(pixels, 1920, 1080, tensor)
func NewLetterbox(width, height int) (*Letterbox, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid input dimensions %dx%d", width, height)
	}

	return &Letterbox{
		InputWidth:  width,
		InputHeight: height,
		Mean:        ImageNetMean,
		Std:         ImageNetStd,
	}, nil
}

// TensorSize returns the number of float32 values in one input tensor.
func (l *Letterbox) TensorSize() int {
	return Channels * l.InputWidth * l.InputHeight
}

// Scale returns the factor applied to a frame of imageWidth x imageHeight.
func (l *Letterbox) Scale(imageWidth, imageHeight int) float32 {
	return min(
		float32(l.InputWidth)/float32(imageWidth),
		float32(l.InputHeight)/float32(imageHeight),
	)
}

// Process letterboxes a packed four-channel frame into dst.
//
// Arguments:
// - pixels: The frame as RGBA or RGBX bytes, row-major. The fourth channel is ignored.
// - imageWidth: The frame width.
// - imageHeight: The frame height.
// - dst: The tensor to write, exactly TensorSize() values long.
//
// Returns:
// - error if the frame or destination sizes are wrong.
func (l *Letterbox) Process(pixels []byte, imageWidth, imageHeight int, dst []float32) error {
	if len(dst) != l.TensorSize() {
		return errors.Errorf("destination tensor has %d values, expected %d", len(dst), l.TensorSize())
	}

	src, err := images.FromRGBA(pixels, imageWidth, imageHeight)
	if err != nil {
		return errors.Wrap(err, "input validation failed")
	}

	scale := l.Scale(imageWidth, imageHeight)
	resizedW := min(max(int(scale*float32(imageWidth)), 1), l.InputWidth)
	resizedH := min(max(int(scale*float32(imageHeight)), 1), l.InputHeight)

	resized := images.ResizeBilinear(src, resizedW, resizedH)

	l.fillPadding(dst)
	l.writeTensor(resized, dst)

	return nil
}

// fillPadding sets every tensor value to the normalized value of a black pixel.
func (l *Letterbox) fillPadding(dst []float32) {
	plane := l.InputWidth * l.InputHeight
	for c := 0; c < Channels; c++ {
		v := -l.Mean[c] / l.Std[c]
		channel := dst[c*plane : (c+1)*plane]
		for i := range channel {
			channel[i] = v
		}
	}
}

// writeTensor normalizes the resized frame into the top-left region of dst.
func (l *Letterbox) writeTensor(img image.Image, dst []float32) {
	plane := l.InputWidth * l.InputHeight
	b := img.Bounds()

	var inv [Channels]float32
	for c := range inv {
		inv[c] = 1 / (255 * l.Std[c])
	}
	var offset [Channels]float32
	for c := range offset {
		offset[c] = l.Mean[c] / l.Std[c]
	}

	var (
		pix    []byte
		stride int
	)
	switch m := img.(type) {
	case *image.RGBA:
		pix, stride = m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], m.Stride
	case *image.NRGBA:
		pix, stride = m.Pix[m.PixOffset(b.Min.X, b.Min.Y):], m.Stride
	}

	if pix != nil {
		for y := 0; y < b.Dy(); y++ {
			row := pix[y*stride:]
			for x := 0; x < b.Dx(); x++ {
				p := row[x*images.BytesPerPixel:]
				idx := y*l.InputWidth + x
				for c := 0; c < Channels; c++ {
					dst[c*plane+idx] = float32(p[c])*inv[c] - offset[c]
				}
			}
		}
		return
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			idx := y*l.InputWidth + x
			dst[idx] = float32(r>>8)*inv[0] - offset[0]
			dst[plane+idx] = float32(g>>8)*inv[1] - offset[1]
			dst[2*plane+idx] = float32(bl>>8)*inv[2] - offset[2]
		}
	}
}
