// Package providers - OpenVINO execution provider.
package providers

import (
	"strconv"
	"strings"

	"github.com/nvr-ai/go-yolox/models/model"
)

const (
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	// Overrides the accelerator default value of number of threads with this value at runtime.
	// Zero keeps the provider default.
	NumOfThreads int `json:"numOfThreads"         yaml:"num_of_threads"         validate:"gte=0"`
	// Overrides the accelerator default streams with this value at runtime. Zero keeps the
	// provider default of 1, performance for latency.
	NumStreams int `json:"numStreams"           yaml:"num_streams"            validate:"gte=0"`
	// This option enables rewriting dynamic shaped models to static shape at runtime and execute.
	DisableDynamicShapes bool `json:"disableDynamicShapes" yaml:"disable_dynamic_shapes"`
	// This option configures which models should be allocated to the best resource.
	ModelPriority string `json:"modelPriority"        yaml:"model_priority"         validate:"omitempty,oneof=LOW MEDIUM HIGH DEFAULT"`
}

// ProviderOptions builds the provider option map for an OpenVINO device type.
//
// GPU targets get a model cache directory so recompiles for the same shape are reused.
//
// Arguments:
//   - deviceType: The OpenVINO device type, e.g. "GPU" or "CPU".
//   - precision: The requested inference precision; empty keeps the device default.
//   - cacheDir: The compiled model cache directory; empty disables caching.
//
// Returns:
//   - map[string]string: The options for ort.SessionOptions.AppendExecutionProviderOpenVINO.
func (o OpenVINOOptions) ProviderOptions(
	deviceType string,
	precision model.Precision,
	cacheDir string,
) map[string]string {
	config := map[string]string{
		"device_type": deviceType,
	}
	if precision != "" {
		config["precision"] = string(precision)
	}
	if o.NumOfThreads > 0 {
		config["num_of_threads"] = strconv.Itoa(o.NumOfThreads)
	}
	if o.NumStreams > 0 {
		config["num_streams"] = strconv.Itoa(o.NumStreams)
	}
	if o.DisableDynamicShapes {
		config["disable_dynamic_shapes"] = "true"
	}
	if o.ModelPriority != "" {
		config["model_priority"] = o.ModelPriority
	}
	if cacheDir != "" && strings.HasPrefix(deviceType, "GPU") {
		config["cache_dir"] = cacheDir
	}
	return config
}
