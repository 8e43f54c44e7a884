// Package providers - ONNX Runtime session optimization settings.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// OptimizationConfig contains the ONNX Runtime session settings applied to every compile.
type OptimizationConfig struct {
	// GraphOptimizationLevel controls the level of graph optimization: disable, basic, extended or
	// all.
	GraphOptimizationLevel string `json:"graph_optimization_level" yaml:"graph_optimization_level" validate:"omitempty,oneof=disable basic extended all"`

	// ExecutionMode controls sequential vs parallel execution.
	ExecutionMode string `json:"execution_mode"           yaml:"execution_mode"           validate:"omitempty,oneof=sequential parallel"`

	// IntraOpNumThreads sets threads for parallelizing ops. Zero lets the runtime decide.
	IntraOpNumThreads int `json:"intra_op_num_threads"     yaml:"intra_op_num_threads"     validate:"gte=0"`

	// InterOpNumThreads sets threads for parallelizing independent ops. Zero lets the runtime
	// decide.
	InterOpNumThreads int `json:"inter_op_num_threads"     yaml:"inter_op_num_threads"     validate:"gte=0"`
}

// DefaultOptimizationConfig returns extended graph optimization with sequential execution.
func DefaultOptimizationConfig() OptimizationConfig {
	return OptimizationConfig{
		GraphOptimizationLevel: "extended",
		ExecutionMode:          "sequential",
	}
}

// GraphLevel converts GraphOptimizationLevel to the runtime value.
func (c OptimizationConfig) GraphLevel() (ort.GraphOptimizationLevel, error) {
	switch c.GraphOptimizationLevel {
	case "disable":
		return ort.GraphOptimizationLevelDisableAll, nil
	case "basic":
		return ort.GraphOptimizationLevelEnableBasic, nil
	case "", "extended":
		return ort.GraphOptimizationLevelEnableExtended, nil
	case "all":
		return ort.GraphOptimizationLevelEnableAll, nil
	default:
		return 0, fmt.Errorf("unknown graph optimization level %q", c.GraphOptimizationLevel)
	}
}

// Mode converts ExecutionMode to the runtime value.
func (c OptimizationConfig) Mode() (ort.ExecutionMode, error) {
	switch c.ExecutionMode {
	case "", "sequential":
		return ort.ExecutionModeSequential, nil
	case "parallel":
		return ort.ExecutionModeParallel, nil
	default:
		return 0, fmt.Errorf("unknown execution mode %q", c.ExecutionMode)
	}
}

// newSessionOptions creates session options for a device.
//
// Execution Providers (EPs) let ONNX Runtime leverage specialized hardware or optimized
// libraries. The CPU device appends none and runs on the default provider.
//
// Arguments:
//   - opts: The runtime options.
//   - device: The device to compile for.
//
// Returns:
//   - *ort.SessionOptions: Configured session options; the caller must destroy them.
//   - error: Configuration error if any
func newSessionOptions(opts Options, device Device) (*ort.SessionOptions, error) {
	level, err := opts.Optimization.GraphLevel()
	if err != nil {
		return nil, err
	}
	mode, err := opts.Optimization.Mode()
	if err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}

	intra := opts.Optimization.IntraOpNumThreads
	if intra == 0 {
		intra = opts.NumThreads
	}
	if err := options.SetIntraOpNumThreads(intra); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("error setting intra-op threads: %w", err)
	}
	if err := options.SetInterOpNumThreads(opts.Optimization.InterOpNumThreads); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("error setting inter-op threads: %w", err)
	}
	if err := options.SetGraphOptimizationLevel(level); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("error setting graph optimization level: %w", err)
	}
	if err := options.SetExecutionMode(mode); err != nil {
		options.Destroy()
		return nil, fmt.Errorf("error setting execution mode: %w", err)
	}

	if err := appendExecutionProvider(options, opts, device); err != nil {
		options.Destroy()
		return nil, err
	}

	return options, nil
}

func appendExecutionProvider(options *ort.SessionOptions, opts Options, device Device) error {
	switch device.Backend {
	case CPUProviderBackend:
		return nil
	case OpenVINOProviderBackend:
		config := opts.OpenVINO.ProviderOptions(device.Target, opts.Precision, opts.CacheDir)
		if err := options.AppendExecutionProviderOpenVINO(config); err != nil {
			return fmt.Errorf("error enabling OpenVINO: %w", err)
		}
		return nil
	case CUDAProviderBackend:
		id, err := device.CUDADeviceID()
		if err != nil {
			return err
		}
		cuda, err := opts.CUDA.ToNativeProviderOptions(id)
		if err != nil {
			return fmt.Errorf("error converting CUDA options: %w", err)
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return fmt.Errorf("error enabling CUDA: %w", err)
		}
		return nil
	case CoreMLProviderBackend:
		if err := options.AppendExecutionProviderCoreML(opts.CoreML.Flags()); err != nil {
			return fmt.Errorf("error enabling CoreML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported execution provider: %s", device.Backend)
	}
}
