// Package model - Definitions shared by detection model implementations.
package model

import "github.com/nvr-ai/go-yolox/models/postprocess"

// Family is the family of class sets a model is trained on.
type Family string

const (
	// ModelFamilyCOCO is the COCO model family.
	ModelFamilyCOCO Family = "coco"
	// ModelFamilyVOC is the Pascal VOC model family.
	ModelFamilyVOC Family = "voc"
)

// Name is the unique identifier of a model architecture.
type Name string

const (
	// ModelNameYOLOX is the name of the YOLOX model.
	ModelNameYOLOX Name = "yolox"
)

// Model decodes the raw output of a detection network into detections in model input space.
type Model interface {
	// Name returns the architecture identifier.
	Name() Name
	// PostProcess decodes and filters one frame of raw output.
	PostProcess(output []float32) []postprocess.Detection
}
