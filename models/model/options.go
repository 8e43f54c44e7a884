// Package model - Model options.
//
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
package model

import "fmt"

// Precision represents the inference precision requested from the execution provider.
type Precision string

const (
	// PrecisionAccuracy runs the model at its native input precision.
	// (OpenVINO's default input precision type.)
	PrecisionAccuracy Precision = "ACCURACY"
	// PrecisionFP32 represents 32-bit floating point precision.
	PrecisionFP32 Precision = "FP32"
	// PrecisionFP16 represents 16-bit floating point precision.
	PrecisionFP16 Precision = "FP16"
)

// ParsePrecision validates a precision string.
func ParsePrecision(s string) (Precision, error) {
	switch p := Precision(s); p {
	case PrecisionAccuracy, PrecisionFP32, PrecisionFP16:
		return p, nil
	case "":
		return PrecisionFP32, nil
	default:
		return "", fmt.Errorf("unsupported precision %q", s)
	}
}
