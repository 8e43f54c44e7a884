// Package yolox - YOLOX model.
package yolox

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-yolox/models/model"
	"github.com/nvr-ai/go-yolox/models/postprocess"
)

const (
	// DefaultConfidenceThreshold is the minimum objectness times class score kept by the decoder.
	DefaultConfidenceThreshold float32 = 0.3
	// DefaultNMSThreshold is the IoU above which overlapping detections are suppressed.
	DefaultNMSThreshold float32 = 0.45
)

// Options is the options for the YOLOX model.
type Options struct {
	// Strides of the detection heads, smallest first.
	Strides []int `json:"strides" yaml:"strides"`
	// ConfidenceThreshold drops proposals scoring at or below it. Clamped to [0, 1].
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// NMSThreshold suppresses proposals overlapping an accepted one by more than it. Clamped to
	// [0, 1].
	NMSThreshold float32 `json:"nms_threshold" yaml:"nms_threshold"`
}

// DefaultOptions returns the thresholds and strides of the reference YOLOX export.
func DefaultOptions() Options {
	return Options{
		Strides:             append([]int(nil), postprocess.DefaultStrides...),
		ConfidenceThreshold: DefaultConfidenceThreshold,
		NMSThreshold:        DefaultNMSThreshold,
	}
}

// YOLOX is the instance of the YOLOX model post-processor.
//
// It owns the anchor table for the current input size and the per-frame proposal buffers. A
// YOLOX value is not safe for concurrent use.
type YOLOX struct {
	options        Options
	grid           []postprocess.GridStride
	proposalLength int
	proposals      []postprocess.Detection
	picked         []postprocess.Detection
}

// NewModel creates a new YOLOX post-processor.
//
// Arguments:
//   - opts: The strides and thresholds. Thresholds outside [0, 1] are clamped.
//
// Returns:
//   - The model.
//   - An error if no strides are given or a stride is not positive.
func NewModel(opts Options) (*YOLOX, error) {
	if len(opts.Strides) == 0 {
		return nil, fmt.Errorf("NewModel requires strides to be set")
	}
	for _, s := range opts.Strides {
		if s <= 0 {
			return nil, fmt.Errorf("NewModel requires positive strides, got %d", s)
		}
	}

	m := &YOLOX{
		options: Options{Strides: append([]int(nil), opts.Strides...)},
	}
	m.SetConfidenceThreshold(opts.ConfidenceThreshold)
	m.SetNMSThreshold(opts.NMSThreshold)

	return m, nil
}

// Name returns the architecture identifier.
func (m *YOLOX) Name() model.Name {
	return model.ModelNameYOLOX
}

// Options returns a copy of the current options.
func (m *YOLOX) Options() Options {
	o := m.options
	o.Strides = append([]int(nil), m.options.Strides...)
	return o
}

// SetInputSize rebuilds the anchor table for a padded input of width x height.
//
// Returns:
//   - The number of anchors in the new table.
func (m *YOLOX) SetInputSize(width, height int) int {
	m.grid = postprocess.GenerateGridsAndStride(width, height, m.options.Strides)
	return len(m.grid)
}

// AnchorCount returns the number of anchors in the current table.
func (m *YOLOX) AnchorCount() int {
	return len(m.grid)
}

// Grid returns the current anchor table. The slice must not be modified.
func (m *YOLOX) Grid() []postprocess.GridStride {
	return m.grid
}

// SetProposalLength sets the number of floats per anchor in the network output.
func (m *YOLOX) SetProposalLength(n int) error {
	if n < postprocess.MinProposalLength {
		return fmt.Errorf("proposal length %d is shorter than the %d box fields", n, postprocess.MinProposalLength)
	}
	m.proposalLength = n
	return nil
}

// ProposalLength returns the number of floats per anchor.
func (m *YOLOX) ProposalLength() int {
	return m.proposalLength
}

// NumClasses returns the number of class scores per anchor.
func (m *YOLOX) NumClasses() int {
	if m.proposalLength < postprocess.MinProposalLength {
		return 0
	}
	return m.proposalLength - postprocess.MinProposalLength
}

// OutputSize returns the number of floats the network emits for the current table.
func (m *YOLOX) OutputSize() int {
	return len(m.grid) * m.proposalLength
}

// SetConfidenceThreshold updates the decode threshold and returns the clamped value in effect.
func (m *YOLOX) SetConfidenceThreshold(v float32) float32 {
	m.options.ConfidenceThreshold = clampUnit(v)
	return m.options.ConfidenceThreshold
}

// SetNMSThreshold updates the suppression threshold and returns the clamped value in effect.
func (m *YOLOX) SetNMSThreshold(v float32) float32 {
	m.options.NMSThreshold = clampUnit(v)
	return m.options.NMSThreshold
}

// PostProcess decodes, sorts and suppresses one frame of raw output.
//
// Arguments:
//   - output: The flat network output for the current anchor table.
//
// Returns:
//   - The accepted detections in padded model space, highest probability first. The slice is
//     owned by the model and is overwritten by the next call.
func (m *YOLOX) PostProcess(output []float32) []postprocess.Detection {
	m.proposals = postprocess.GenerateProposals(
		m.proposals[:0],
		output,
		m.grid,
		m.proposalLength,
		m.options.ConfidenceThreshold,
	)

	postprocess.SortProposals(m.proposals)
	picked := postprocess.NMSSortedBoxes(m.proposals, m.options.NMSThreshold)

	m.picked = m.picked[:0]
	for _, i := range picked {
		m.picked = append(m.picked, m.proposals[i])
	}

	return m.picked
}

// ProposalCount returns the number of candidates that passed the confidence threshold in the last
// frame.
func (m *YOLOX) ProposalCount() int {
	return len(m.proposals)
}

// Reset discards the per-frame buffers. The anchor table is kept.
func (m *YOLOX) Reset() {
	m.proposals = m.proposals[:0]
	m.picked = m.picked[:0]
}

func clampUnit(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}
