// Package providers - Inference sessions.
package providers

import (
	"fmt"
	"os"

	"github.com/nvr-ai/go-yolox/inference"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	_ inference.Runtime = (*Runtime)(nil)
	_ inference.Network = (*Network)(nil)
	_ inference.Request = (*Request)(nil)
)

// Runtime is an inference.Runtime backed by ONNX Runtime.
type Runtime struct {
	opts   Options
	logger *logrus.Entry
}

// NewRuntime loads the ONNX Runtime shared library and returns a runtime for opts.
//
// Arguments:
//   - opts: The runtime options.
//   - logger: The logger; nil uses the standard logrus logger.
//
// Returns:
//   - *Runtime: The runtime.
//   - error: An error if the library cannot be found or initialized.
func NewRuntime(opts Options, logger *logrus.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if len(opts.Devices) == 0 {
		opts.Devices = append([]string(nil), DefaultDevices...)
	}

	libPath, err := GetSharedLibPath(opts.LibraryPath)
	if err != nil {
		return nil, err
	}
	if err := initializeEnvironment(libPath, opts.Verbose); err != nil {
		return nil, err
	}

	entry := logger.WithField("component", "onnxruntime")
	entry.WithField("library", libPath).Debug("runtime initialized")

	return &Runtime{opts: opts, logger: entry}, nil
}

// Devices returns the configured devices with unusable ones filtered out.
func (r *Runtime) Devices() ([]string, error) {
	devices := FilterDevices(r.opts.Devices)
	if len(devices) == 0 {
		return nil, fmt.Errorf("no usable devices in %v", r.opts.Devices)
	}
	return devices, nil
}

// ReadNetwork reads the tensor layout of an ONNX model.
func (r *Runtime) ReadNetwork(path string) (inference.Network, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model io info: %w", err)
	}

	in, err := selectTensor(inputs, r.opts.InputName, "input")
	if err != nil {
		return nil, err
	}
	out, err := selectTensor(outputs, r.opts.OutputName, "output")
	if err != nil {
		return nil, err
	}

	return &Network{
		path:        path,
		opts:        r.opts,
		logger:      r.logger.WithField("model", path),
		input:       in.Name,
		output:      out.Name,
		inShape:     append([]int64(nil), in.Dimensions...),
		outShape:    append([]int64(nil), out.Dimensions...),
		declaredIn:  append([]int64(nil), in.Dimensions...),
		declaredOut: append([]int64(nil), out.Dimensions...),
	}, nil
}

func selectTensor(infos []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("model has no %s tensors", kind)
	}

	info := infos[0]
	if name != "" {
		found := false
		for _, candidate := range infos {
			if candidate.Name == name {
				info, found = candidate, true
				break
			}
		}
		if !found {
			return ort.InputOutputInfo{}, fmt.Errorf("model has no %s tensor named %q", kind, name)
		}
	}

	if info.DataType != ort.TensorElementDataTypeFloat {
		return ort.InputOutputInfo{}, fmt.Errorf("%s %q is %v, expected float32", kind, info.Name, info.DataType)
	}
	return info, nil
}

// Network is an ONNX model whose tensor shapes are fixed by Reshape before Compile.
type Network struct {
	path   string
	opts   Options
	logger *logrus.Entry

	input, output string
	// declaredIn and declaredOut are the shapes stored in the model; dynamic axes are <= 0.
	declaredIn, declaredOut []int64
	inShape, outShape       []int64
}

// InputShape returns the current input shape.
func (n *Network) InputShape() []int64 { return append([]int64(nil), n.inShape...) }

// OutputShape returns the current output shape.
func (n *Network) OutputShape() []int64 { return append([]int64(nil), n.outShape...) }

// Reshape sets the tensor shapes allocated by the next Compile.
//
// Static model axes must match the requested shape. A rank 2 output, [anchors, proposal length],
// accepts a rank 3 request with batch 1.
func (n *Network) Reshape(input, output []int64) error {
	in, err := fitShape(n.declaredIn, input)
	if err != nil {
		return fmt.Errorf("%w: input %q: %w", inference.ErrShapeMismatch, n.input, err)
	}
	out, err := fitShape(n.declaredOut, output)
	if err != nil {
		return fmt.Errorf("%w: output %q: %w", inference.ErrShapeMismatch, n.output, err)
	}

	n.inShape, n.outShape = in, out
	return nil
}

// fitShape checks want against a model's declared shape and returns want in the declared rank.
func fitShape(declared, want []int64) ([]int64, error) {
	if len(declared) == len(want)-1 && len(want) > 0 && want[0] == 1 {
		want = want[1:]
	}
	if len(declared) != len(want) {
		return nil, fmt.Errorf("rank %d does not match the model's %v", len(want), declared)
	}
	for i, d := range declared {
		if want[i] <= 0 {
			return nil, fmt.Errorf("axis %d of %v is not positive", i, want)
		}
		if d > 0 && d != want[i] {
			return nil, fmt.Errorf(
				"axis %d is fixed to %d in the model, requested %d; export the model with dynamic axes",
				i, d, want[i],
			)
		}
	}
	return append([]int64(nil), want...), nil
}

// Compile creates an ONNX Runtime session on device with preallocated input and output tensors.
//
// Order of operations:
//  1. Tensor allocation: Prepares fixed-shape buffers for input/output data.
//  2. Session options: Threading, optimization level and the device's execution provider.
//  3. Session creation: Loads model and binds resources, creating the runnable inference engine.
func (n *Network) Compile(device string) (inference.Request, error) {
	d, err := ParseDevice(device)
	if err != nil {
		return nil, err
	}
	for _, shape := range [][]int64{n.inShape, n.outShape} {
		for _, v := range shape {
			if v <= 0 {
				return nil, fmt.Errorf("%w: dynamic shape %v must be set by Reshape", inference.ErrShapeMismatch, shape)
			}
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(n.inShape...))
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(n.outShape...))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := newSessionOptions(n.opts, d)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		n.path,
		[]string{n.input},
		[]string{n.output},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("error creating ORT session on %s: %w", d, err)
	}

	n.logger.WithFields(logrus.Fields{
		"device":       d.String(),
		"input_shape":  n.inShape,
		"output_shape": n.outShape,
	}).Debug("session created")

	return &Request{session: session, input: input, output: output}, nil
}

// Close releases the network. Compiled requests stay valid.
func (n *Network) Close() error { return nil }

// Request represents a model session from the onnxruntime.
type Request struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// Input returns the input tensor data.
func (r *Request) Input() []float32 { return r.input.GetData() }

// Output returns the output tensor data.
func (r *Request) Output() []float32 { return r.output.GetData() }

// Run executes the session.
func (r *Request) Run() error {
	if r.session == nil {
		return fmt.Errorf("run on closed session")
	}
	return r.session.Run()
}

// Close releases the resources associated with the Request.
func (r *Request) Close() error {
	if r.input != nil {
		r.input.Destroy()
		r.input = nil
	}
	if r.output != nil {
		r.output.Destroy()
		r.output = nil
	}
	if r.session != nil {
		err := r.session.Destroy()
		r.session = nil
		if err != nil {
			return fmt.Errorf("error destroying ORT session: %w", err)
		}
	}
	return nil
}
