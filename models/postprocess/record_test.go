package postprocess

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRecords_Layout(t *testing.T) {
	buf := make([]byte, RecordSize)
	n := MarshalRecords(buf, []Detection{det(1.5, 2.5, 3.5, 4.5, 0.75, 17)})
	require.Equal(t, 1, n)

	le := binary.LittleEndian
	assert.Equal(t, float32(1.5), math.Float32frombits(le.Uint32(buf[0:4])))
	assert.Equal(t, float32(2.5), math.Float32frombits(le.Uint32(buf[4:8])))
	assert.Equal(t, float32(3.5), math.Float32frombits(le.Uint32(buf[8:12])))
	assert.Equal(t, float32(4.5), math.Float32frombits(le.Uint32(buf[12:16])))
	assert.Equal(t, int32(17), int32(le.Uint32(buf[16:20])))
	assert.Equal(t, float32(0.75), math.Float32frombits(le.Uint32(buf[20:24])))
}

func TestMarshalRecords_Truncates(t *testing.T) {
	dets := []Detection{
		det(1, 1, 1, 1, 0.9, 0),
		det(2, 2, 2, 2, 0.8, 1),
		det(3, 3, 3, 3, 0.7, 2),
	}

	buf := make([]byte, 2*RecordSize+10)
	assert.Equal(t, 2, MarshalRecords(buf, dets))

	got := UnmarshalRecords(buf)
	require.Len(t, got, 2)
	assert.Equal(t, dets[:2], got)

	assert.Zero(t, MarshalRecords(nil, dets))
	assert.Zero(t, MarshalRecords(buf, nil))
}
