package providers

import (
	"testing"

	"github.com/nvr-ai/go-yolox/models/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name    string
		want    Device
		wantErr bool
	}{
		{name: "openvino:GPU", want: Device{Backend: OpenVINOProviderBackend, Target: "GPU"}},
		{name: "OpenVINO:cpu", want: Device{Backend: OpenVINOProviderBackend, Target: "CPU"}},
		{name: "GPU.1", want: Device{Backend: OpenVINOProviderBackend, Target: "GPU.1"}},
		{name: "cuda:1", want: Device{Backend: CUDAProviderBackend, Target: "1"}},
		{name: "cuda", want: Device{Backend: CUDAProviderBackend}},
		{name: "coreml", want: Device{Backend: CoreMLProviderBackend}},
		{name: " cpu ", want: Device{Backend: CPUProviderBackend}},
		{name: "", wantErr: true},
		{name: "openvino", wantErr: true},
		{name: "openvino:", wantErr: true},
		{name: "cuda:x", wantErr: true},
		{name: "cuda:-1", wantErr: true},
		{name: "cpu:0", wantErr: true},
		{name: "tpu:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDevice(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "openvino:GPU", Device{Backend: OpenVINOProviderBackend, Target: "GPU"}.String())
	assert.Equal(t, "cpu", Device{Backend: CPUProviderBackend}.String())

	id, err := Device{Backend: CUDAProviderBackend}.CUDADeviceID()
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestFilterDevices(t *testing.T) {
	got := FilterDevices([]string{
		"GPU", "GNA", "openvino:CPU", "openvino:GNA.0", "openvino:GPU", "bogus:1", "cpu",
	})
	assert.Equal(t, []string{"openvino:GPU", "openvino:CPU", "cpu"}, got)

	assert.Empty(t, FilterDevices([]string{"GNA"}))
	assert.Empty(t, FilterDevices(nil))
}

func TestOpenVINOProviderOptions(t *testing.T) {
	opts := OpenVINOOptions{NumOfThreads: 4, ModelPriority: "HIGH"}

	gpu := opts.ProviderOptions("GPU", model.PrecisionFP16, DefaultCacheDir)
	assert.Equal(t, map[string]string{
		"device_type":    "GPU",
		"precision":      "FP16",
		"num_of_threads": "4",
		"model_priority": "HIGH",
		"cache_dir":      "cache",
	}, gpu)

	cpu := OpenVINOOptions{}.ProviderOptions("CPU", "", DefaultCacheDir)
	assert.Equal(t, map[string]string{"device_type": "CPU"}, cpu, "only GPU targets are cached")

	noCache := OpenVINOOptions{NumStreams: 2, DisableDynamicShapes: true}.ProviderOptions("GPU.1", "", "")
	assert.Equal(t, map[string]string{
		"device_type":            "GPU.1",
		"num_streams":            "2",
		"disable_dynamic_shapes": "true",
	}, noCache)
}

func TestCUDAProviderOptions(t *testing.T) {
	got := CUDAOptions{
		GPUMemLimit:           2147483648,
		ArenaExtendStrategy:   "kSameAsRequested",
		CudnnConvAlgoSearch:   "HEURISTIC",
		DoCopyInDefaultStream: true,
	}.ProviderOptions(1)

	assert.Equal(t, map[string]string{
		"device_id":                 "1",
		"gpu_mem_limit":             "2147483648",
		"arena_extend_strategy":     "kSameAsRequested",
		"cudnn_conv_algo_search":    "HEURISTIC",
		"do_copy_in_default_stream": "1",
		"prefer_nhwc":               "0",
		"use_tf32":                  "0",
	}, got)
}

func TestCoreMLFlags(t *testing.T) {
	assert.Equal(t, uint32(0), CoreMLOptions{}.Flags())
	assert.Equal(t, uint32(0x001|0x010), CoreMLOptions{CPUOnly: true, MLProgram: true}.Flags())
	assert.Equal(t, uint32(0x002|0x004|0x008), CoreMLOptions{
		EnableOnSubgraphs:        true,
		RequireANE:               true,
		RequireStaticInputShapes: true,
	}.Flags())
}

func TestOptimizationConfig(t *testing.T) {
	level, err := DefaultOptimizationConfig().GraphLevel()
	require.NoError(t, err)
	assert.Equal(t, ort.GraphOptimizationLevelEnableExtended, level)

	mode, err := DefaultOptimizationConfig().Mode()
	require.NoError(t, err)
	assert.Equal(t, ort.ExecutionModeSequential, mode)

	level, err = OptimizationConfig{GraphOptimizationLevel: "disable"}.GraphLevel()
	require.NoError(t, err)
	assert.Equal(t, ort.GraphOptimizationLevelDisableAll, level)

	mode, err = OptimizationConfig{ExecutionMode: "parallel"}.Mode()
	require.NoError(t, err)
	assert.Equal(t, ort.ExecutionModeParallel, mode)

	_, err = OptimizationConfig{GraphOptimizationLevel: "max"}.GraphLevel()
	assert.Error(t, err)
	_, err = OptimizationConfig{ExecutionMode: "async"}.Mode()
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, DefaultDevices, opts.Devices)
	assert.Equal(t, model.PrecisionFP32, opts.Precision)
	assert.Equal(t, DefaultCacheDir, opts.CacheDir)

	opts.Devices[0] = "cpu"
	assert.Equal(t, "openvino:GPU", DefaultDevices[0], "defaults are copied")
}
