// Package providers - Runtime configuration.
package providers

import "github.com/nvr-ai/go-yolox/models/model"

// DefaultCacheDir is where OpenVINO caches networks compiled for GPU devices.
const DefaultCacheDir = "cache"

// DefaultDevices is the device list used when none is configured, in preference order.
var DefaultDevices = []string{"openvino:GPU", "openvino:CPU", "cpu"}

// Options configures the ONNX Runtime backed Runtime.
type Options struct {
	// LibraryPath is the onnxruntime shared library. Empty searches the environment and the
	// platform defaults.
	LibraryPath string `json:"library_path" yaml:"library_path"`

	// Devices lists the devices sessions may bind to, in preference order.
	Devices []string `json:"devices"      yaml:"devices"      validate:"required,min=1,dive,required"`

	// Precision is the inference precision requested from OpenVINO.
	Precision model.Precision `json:"precision"    yaml:"precision"    validate:"omitempty,oneof=ACCURACY FP32 FP16"`

	// NumThreads is the intra-op thread count when the optimization config leaves it unset.
	NumThreads int `json:"num_threads"  yaml:"num_threads"  validate:"gte=0"`

	// CacheDir is the OpenVINO model cache for GPU devices. Empty disables caching.
	CacheDir string `json:"cache_dir"    yaml:"cache_dir"`

	// Verbose enables verbose native runtime logging.
	Verbose bool `json:"verbose"      yaml:"verbose"`

	// InputName and OutputName select the model tensors. Empty uses the first of each.
	InputName  string `json:"input_name"   yaml:"input_name"`
	OutputName string `json:"output_name"  yaml:"output_name"`

	OpenVINO     OpenVINOOptions    `json:"openvino"     yaml:"openvino"`
	CUDA         CUDAOptions        `json:"cuda"         yaml:"cuda"`
	CoreML       CoreMLOptions      `json:"coreml"       yaml:"coreml"`
	Optimization OptimizationConfig `json:"optimization" yaml:"optimization"`
}

// DefaultOptions returns the runtime defaults.
func DefaultOptions() Options {
	return Options{
		Devices:      append([]string(nil), DefaultDevices...),
		Precision:    model.PrecisionFP32,
		CacheDir:     DefaultCacheDir,
		Optimization: DefaultOptimizationConfig(),
	}
}
