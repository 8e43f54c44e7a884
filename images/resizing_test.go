package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	return img
}

func TestResizeBilinear(t *testing.T) {
	src := getTestImage(100, 60)

	out := ResizeBilinear(src, 50, 30)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())

	r, g, b, _ := out.At(10, 10).RGBA()
	assert.InDelta(t, 0xffff, r, 0x200, "a uniform image should stay uniform")
	assert.Zero(t, g)
	assert.Zero(t, b)

	same := ResizeBilinear(src, 100, 60)
	assert.Same(t, src, same.(*image.RGBA), "no-op resize should return the source")
}

func TestFromRGBA(t *testing.T) {
	pix := make([]byte, 3*2*BytesPerPixel)
	pix[0], pix[1], pix[2] = 10, 20, 30

	img, err := FromRGBA(pix, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0}, img.RGBAAt(0, 0))

	_, err = FromRGBA(pix, 4, 2)
	assert.Error(t, err, "length mismatch should fail")

	_, err = FromRGBA(pix, 0, 2)
	assert.Error(t, err, "zero width should fail")
}
