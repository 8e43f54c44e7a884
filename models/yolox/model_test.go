package yolox

import (
	"testing"

	"github.com/nvr-ai/go-yolox/models/model"
	"github.com/nvr-ai/go-yolox/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	m, err := NewModel(DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, model.ModelNameYOLOX, m.Name())
	assert.Equal(t, []int{8, 16, 32}, m.Options().Strides)
	assert.Equal(t, float32(0.3), m.Options().ConfidenceThreshold)
	assert.Equal(t, float32(0.45), m.Options().NMSThreshold)

	_, err = NewModel(Options{})
	assert.Error(t, err, "strides are required")

	_, err = NewModel(Options{Strides: []int{8, 0}})
	assert.Error(t, err, "strides must be positive")
}

func TestThresholdClamping(t *testing.T) {
	m, err := NewModel(DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, float32(1), m.SetConfidenceThreshold(1.5))
	assert.Equal(t, float32(0), m.SetConfidenceThreshold(-0.2))
	assert.Equal(t, float32(0.6), m.SetConfidenceThreshold(0.6))
	assert.Equal(t, float32(0.6), m.Options().ConfidenceThreshold)

	assert.Equal(t, float32(1), m.SetNMSThreshold(7))
	assert.Equal(t, float32(0.25), m.SetNMSThreshold(0.25))
}

func TestSetInputSize(t *testing.T) {
	m, err := NewModel(DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 8400, m.SetInputSize(640, 640))
	assert.Equal(t, 8400, m.AnchorCount())

	require.NoError(t, m.SetProposalLength(85))
	assert.Equal(t, 80, m.NumClasses())
	assert.Equal(t, 8400*85, m.OutputSize())

	assert.Equal(t, 36*36+18*18+9*9, m.SetInputSize(288, 288), "rebuilding replaces the table")
	assert.Error(t, m.SetProposalLength(4))
	assert.Equal(t, 85, m.ProposalLength(), "a rejected length keeps the previous one")
}

func TestPostProcess(t *testing.T) {
	m, err := NewModel(DefaultOptions())
	require.NoError(t, err)
	m.SetInputSize(64, 64)
	require.NoError(t, m.SetProposalLength(7))

	output := make([]float32, m.OutputSize())
	set := func(anchor int, vals ...float32) {
		copy(output[anchor*7:], vals)
	}

	// Two overlapping boxes on neighboring stride 8 cells and one isolated box.
	set(0, 0.5, 0.5, 2, 2, 0.9, 0.9, 0.1)  // prob 0.81, label 0
	set(1, 0.5, 0.5, 2, 2, 0.8, 0.1, 0.9)  // prob 0.72, label 1, shifted by one cell
	set(63, 0.5, 0.5, 0, 0, 0.6, 0.1, 0.9) // prob 0.54, far corner
	set(2, 0, 0, 0, 0, 0.5, 0.5, 0.5)      // prob 0.25, below threshold

	got := m.PostProcess(output)
	require.Len(t, got, 2)
	assert.Equal(t, 3, m.ProposalCount())

	assert.InDelta(t, 0.81, got[0].Prob, 1e-5)
	assert.Equal(t, 0, got[0].Label)
	assert.InDelta(t, 0.54, got[1].Prob, 1e-5)
	assert.Equal(t, 1, got[1].Label)
	assert.InDelta(t, 7*8+4-4, got[1].Box.X0, 1e-4)

	m.SetNMSThreshold(1)
	assert.Len(t, m.PostProcess(output), 3, "a threshold of 1 suppresses nothing")

	m.SetConfidenceThreshold(1)
	assert.Empty(t, m.PostProcess(output))

	m.Reset()
	assert.Zero(t, m.ProposalCount())
	assert.Equal(t, 64/8*64/8+4*4+2*2, m.AnchorCount(), "reset keeps the anchor table")
}

func TestPostProcess_EmptyGrid(t *testing.T) {
	m, err := NewModel(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, m.SetProposalLength(85))

	assert.Empty(t, m.PostProcess([]float32{1, 2, 3}))
	assert.Equal(t, []postprocess.GridStride(nil), m.Grid())
}
