// Package providers - CUDA execution provider.
package providers

import (
	"fmt"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CUDAProviderBackend uses NVIDIA CUDA for inference optimization.
	CUDAProviderBackend ProviderBackend = "cuda"
)

// CUDAOptions contains arguments for the CUDA provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
type CUDAOptions struct {
	// The size limit of the device memory arena in bytes. This size limit is only for the execution
	// provider's arena. The total device memory usage may be higher. Zero keeps the default.
	GPUMemLimit int64 `json:"gpuMemLimit"           yaml:"gpu_mem_limit"            validate:"gte=0"`
	// The strategy for extending the device memory arena.
	// kNextPowerOfTwo: subsequent extensions extend by larger amounts (multiplied by powers of two)
	// kSameAsRequested: extend by the requested amount
	ArenaExtendStrategy string `json:"arenaExtendStrategy"   yaml:"arena_extend_strategy"    validate:"omitempty,oneof=kNextPowerOfTwo kSameAsRequested"`
	// The type of search done for cuDNN convolution algorithms: EXHAUSTIVE, HEURISTIC or DEFAULT.
	CudnnConvAlgoSearch string `json:"cudnnConvAlgoSearch"   yaml:"cudnn_conv_algo_search"   validate:"omitempty,oneof=EXHAUSTIVE HEURISTIC DEFAULT"`
	// Whether to do copies in the default stream or use separate streams. The recommended setting is
	// true. If false, there are race conditions and possibly better performance.
	DoCopyInDefaultStream bool `json:"doCopyInDefaultStream" yaml:"do_copy_in_default_stream"`
	// If this option is enabled, the execution provider prefers NHWC operators over NCHW.
	PreferNHWC bool `json:"preferNHWC"            yaml:"prefer_nhwc"`
	// TF32 is a math mode available on NVIDIA GPUs since Ampere. It allows certain float32 matrix
	// multiplications and convolutions to run much faster on tensor cores.
	UseTF32 bool `json:"useTF32"               yaml:"use_tf32"`
}

// ProviderOptions builds the provider option map for a CUDA device.
func (o CUDAOptions) ProviderOptions(deviceID int) map[string]string {
	config := map[string]string{
		"device_id":                 strconv.Itoa(deviceID),
		"do_copy_in_default_stream": boolFlag(o.DoCopyInDefaultStream),
		"prefer_nhwc":               boolFlag(o.PreferNHWC),
		"use_tf32":                  boolFlag(o.UseTF32),
	}
	if o.GPUMemLimit > 0 {
		config["gpu_mem_limit"] = strconv.FormatInt(o.GPUMemLimit, 10)
	}
	if o.ArenaExtendStrategy != "" {
		config["arena_extend_strategy"] = o.ArenaExtendStrategy
	}
	if o.CudnnConvAlgoSearch != "" {
		config["cudnn_conv_algo_search"] = o.CudnnConvAlgoSearch
	}
	return config
}

// ToNativeProviderOptions converts the CUDA options to a CUDA provider options.
// The caller must destroy the returned options.
func (o CUDAOptions) ToNativeProviderOptions(deviceID int) (*ort.CUDAProviderOptions, error) {
	opts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating CUDA provider options: %w", err)
	}

	if err := opts.Update(o.ProviderOptions(deviceID)); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("error updating CUDA provider options: %w", err)
	}

	return opts, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
