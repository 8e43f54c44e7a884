package postprocess

import (
	"math/rand"
	"testing"
)

// benchmarkOutput builds a 640x640 COCO output with roughly one proposal in fifty above 0.3.
func benchmarkOutput(grid []GridStride, proposalLength int) []float32 {
	rng := rand.New(rand.NewSource(7))
	out := make([]float32, len(grid)*proposalLength)
	for i := range grid {
		row := out[i*proposalLength : (i+1)*proposalLength]
		row[0], row[1] = rng.Float32(), rng.Float32()
		row[2], row[3] = rng.Float32()*2, rng.Float32()*2
		row[4] = rng.Float32() * 0.1
		if rng.Intn(50) == 0 {
			row[4] = 0.9
		}
		row[5+rng.Intn(proposalLength-5)] = rng.Float32()
	}
	return out
}

func BenchmarkGenerateProposals(b *testing.B) {
	grid := GenerateGridsAndStride(640, 640, DefaultStrides)
	out := benchmarkOutput(grid, 85)
	var dst []Detection

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = GenerateProposals(dst[:0], out, grid, 85, 0.3)
	}
}

func BenchmarkApplyGreedyNMS(b *testing.B) {
	grid := GenerateGridsAndStride(640, 640, DefaultStrides)
	proposals := GenerateProposals(nil, benchmarkOutput(grid, 85), grid, 85, 0.3)
	work := make([]Detection, len(proposals))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(work, proposals)
		_ = ApplyGreedyNMS(work, 0.45)
	}
}
