package postprocess

import (
	"encoding/binary"
	"math"

	"github.com/nvr-ai/go-yolox/images"
)

// RecordSize is the size in bytes of one encoded detection record.
//
// Layout, little-endian, no padding:
//
//	offset  0  float32  x0
//	offset  4  float32  y0
//	offset  8  float32  width
//	offset 12  float32  height
//	offset 16  int32    label
//	offset 20  float32  prob
const RecordSize = 24

// MarshalRecords encodes as many detections as fit into dst and returns the number written.
func MarshalRecords(dst []byte, detections []Detection) int {
	n := min(len(detections), len(dst)/RecordSize)

	for i := 0; i < n; i++ {
		putRecord(dst[i*RecordSize:(i+1)*RecordSize], detections[i])
	}

	return n
}

// UnmarshalRecords decodes every complete record in src.
func UnmarshalRecords(src []byte) []Detection {
	n := len(src) / RecordSize
	out := make([]Detection, n)

	for i := 0; i < n; i++ {
		out[i] = readRecord(src[i*RecordSize : (i+1)*RecordSize])
	}

	return out
}

func putRecord(b []byte, d Detection) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], math.Float32bits(d.Box.X0))
	le.PutUint32(b[4:], math.Float32bits(d.Box.Y0))
	le.PutUint32(b[8:], math.Float32bits(d.Box.Width))
	le.PutUint32(b[12:], math.Float32bits(d.Box.Height))
	le.PutUint32(b[16:], uint32(int32(d.Label)))
	le.PutUint32(b[20:], math.Float32bits(d.Prob))
}

func readRecord(b []byte) Detection {
	le := binary.LittleEndian
	return Detection{
		Box: images.Rect{
			X0:     math.Float32frombits(le.Uint32(b[0:])),
			Y0:     math.Float32frombits(le.Uint32(b[4:])),
			Width:  math.Float32frombits(le.Uint32(b[8:])),
			Height: math.Float32frombits(le.Uint32(b[12:])),
		},
		Label: int(int32(le.Uint32(b[16:]))),
		Prob:  math.Float32frombits(le.Uint32(b[20:])),
	}
}
