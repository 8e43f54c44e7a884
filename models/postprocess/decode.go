package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-yolox/images"
)

// Layout of a single YOLOX proposal: box regression, objectness, then one score per class.
const (
	offsetX      = 0
	offsetY      = 1
	offsetW      = 2
	offsetH      = 3
	offsetObj    = 4
	offsetScores = 5
)

// MinProposalLength is the length of a proposal carrying a box and objectness but no classes.
const MinProposalLength = offsetScores

// GenerateProposals decodes the flat YOLOX output into candidate detections in padded model
// space and appends those scoring above threshold to dst.
//
// For each anchor the box centre is (raw + grid cell) * stride and the extent is
// exp(raw) * stride. The probability is objectness times the best class score; the label is the
// first class reaching that maximum. Scores are used as emitted by the graph, no activation is
// applied here.
//
// Arguments:
//   - dst: Slice to append to, usually a reused buffer truncated to length 0.
//   - output: The raw network output, anchors in grid table order.
//   - grid: The anchor table from GenerateGridsAndStride.
//   - proposalLength: The number of floats per anchor (classes + 5).
//   - threshold: Detections with a probability at or below this value are dropped.
//
// Returns:
//   - []Detection: dst with the surviving candidates appended, in anchor order.
func GenerateProposals(dst []Detection, output []float32, grid []GridStride, proposalLength int, threshold float32) []Detection {
	if proposalLength < MinProposalLength {
		return dst
	}
	numClasses := proposalLength - offsetScores

	for i, anchor := range grid {
		base := i * proposalLength
		if base+proposalLength > len(output) {
			break
		}
		p := output[base : base+proposalLength]

		stride := float32(anchor.Stride)
		cx := (p[offsetX] + float32(anchor.GridX)) * stride
		cy := (p[offsetY] + float32(anchor.GridY)) * stride
		w := math32.Exp(p[offsetW]) * stride
		h := math32.Exp(p[offsetH]) * stride

		objectness := p[offsetObj]

		var (
			prob  float32
			label int
		)
		for c := 0; c < numClasses; c++ {
			score := objectness * p[offsetScores+c]
			if score > prob {
				prob = score
				label = c
			}
		}

		if prob > threshold {
			dst = append(dst, Detection{
				Box: images.Rect{
					X0:     cx - w*0.5,
					Y0:     cy - h*0.5,
					Width:  w,
					Height: h,
				},
				Label: label,
				Prob:  prob,
			})
		}
	}

	return dst
}
