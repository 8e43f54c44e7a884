package models

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCOCOClasses(t *testing.T) {
	require.Equal(t, 80, COCOClasses.Len())

	for i, c := range COCOClasses.Classes {
		assert.Equal(t, i, c.Index, "class %q is out of order", c.Name)
		assert.Equal(t, uint8(255), c.Color.A)
	}

	assert.Equal(t, "person", COCOClasses.Name(0))
	assert.Equal(t, "toothbrush", COCOClasses.Name(79))
	assert.Equal(t, "class_80", COCOClasses.Name(80))
	assert.Equal(t, "class_-1", COCOClasses.Name(-1))

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, COCOClasses.Color(9))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, COCOClasses.Color(500))

	idx, err := COCOClasses.Index("dog")
	require.NoError(t, err)
	assert.Equal(t, 16, idx)

	_, err = COCOClasses.Index("unicorn")
	assert.Error(t, err)
}
