// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-yolox/images"
)

// SortProposals orders detections by descending probability in place.
//
// The sort is stable, so detections with equal probability keep their decode order (ascending
// anchor index).
func SortProposals(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Prob > detections[j].Prob
	})
}

// NMSSortedBoxes performs greedy Non-Maximum Suppression over detections already sorted by
// descending probability.
//
// A candidate is accepted only when its IoU with every previously accepted detection is at most
// iouThreshold. Rejected candidates are never reconsidered.
//
// Arguments:
//   - detections: Slice of detections sorted by descending probability.
//   - iouThreshold: IoU above which an overlapping candidate is suppressed.
//
// Returns:
//   - []int: Indices into detections of the accepted boxes, in acceptance order.
func NMSSortedBoxes(detections []Detection, iouThreshold float32) []int {
	picked := make([]int, 0, len(detections))

	for i := range detections {
		keep := true
		for _, j := range picked {
			if images.CalculateIoU(detections[i].Box, detections[j].Box) > iouThreshold {
				keep = false
				break
			}
		}
		if keep {
			picked = append(picked, i)
		}
	}

	return picked
}

// ApplyGreedyNMS sorts detections in place and returns the survivors of greedy suppression.
//
// Arguments:
//   - detections: The decoded candidates. The slice is reordered.
//   - iouThreshold: IoU above which an overlapping candidate is suppressed.
//
// Returns:
//   - []Detection: The accepted detections, highest probability first. Nil when no detections
//     are provided.
func ApplyGreedyNMS(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return nil
	}

	SortProposals(detections)
	picked := NMSSortedBoxes(detections, iouThreshold)

	filtered := make([]Detection, len(picked))
	for k, i := range picked {
		filtered[k] = detections[i]
	}

	return filtered
}
