// Package inference - Detection sessions.
package inference

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nvr-ai/go-yolox/log"
	"github.com/nvr-ai/go-yolox/models/model/preprocess"
	"github.com/nvr-ai/go-yolox/models/postprocess"
	"github.com/nvr-ai/go-yolox/models/yolox"
	"github.com/nvr-ai/go-yolox/profiler"
	"github.com/sirupsen/logrus"
)

// InputAlignment is the multiple the padded model input dimensions are rounded to.
const InputAlignment = 32

// Geometry relates the source frame to the padded model input.
type Geometry struct {
	// ImageWidth and ImageHeight are the source frame dimensions.
	ImageWidth, ImageHeight int
	// InputWidth and InputHeight are the padded model input dimensions.
	InputWidth, InputHeight int
	// Scale is min(InputWidth/ImageWidth, InputHeight/ImageHeight).
	Scale float32
}

// PaddedSize rounds v to the nearest multiple of InputAlignment.
func PaddedSize(v int) int {
	if v <= 0 {
		return 0
	}
	return (v + InputAlignment/2) / InputAlignment * InputAlignment
}

// NewGeometry computes the padded input dimensions and scale for a source frame.
//
// Arguments:
//   - imageWidth: The source frame width.
//   - imageHeight: The source frame height.
//
// Returns:
//   - Geometry: The frame geometry.
//   - error: ErrInvalidDimensions when a dimension is not positive or pads to zero.
func NewGeometry(imageWidth, imageHeight int) (Geometry, error) {
	if imageWidth <= 0 || imageHeight <= 0 {
		return Geometry{}, fmt.Errorf("%w: image %dx%d", ErrInvalidDimensions, imageWidth, imageHeight)
	}

	inW, inH := PaddedSize(imageWidth), PaddedSize(imageHeight)
	if inW == 0 || inH == 0 {
		return Geometry{}, fmt.Errorf(
			"%w: image %dx%d rounds to an empty %dx%d input",
			ErrInvalidDimensions, imageWidth, imageHeight, inW, inH,
		)
	}

	return Geometry{
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
		InputWidth:  inW,
		InputHeight: inH,
		Scale: min(
			float32(inW)/float32(imageWidth),
			float32(inH)/float32(imageHeight),
		),
	}, nil
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Entries are tagged with the session identifier.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Session) { s.baseLogger = logger }
}

// WithProfiler records stage timings into p.
func WithProfiler(p *profiler.Profiler) Option {
	return func(s *Session) { s.profiler = p }
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithModelOptions sets the head strides and initial thresholds.
func WithModelOptions(opts yolox.Options) Option {
	return func(s *Session) { s.modelOptions = opts }
}

// WithScaleExtents also rescales detection width and height into source space.
func WithScaleExtents(enabled bool) Option {
	return func(s *Session) { s.scaleExtents = enabled }
}

// Session runs YOLOX detection for frames of one size on one device.
//
// A session moves through StateUnconfigured, StateNetworkLoaded, StateReshaped and StateReady.
// Changing the input size of a ready session drops it back to StateReshaped until it is bound
// again. Thresholds can be changed in any state.
type Session struct {
	mu sync.Mutex

	id           string
	runtime      Runtime
	baseLogger   *logrus.Logger
	logger       *logrus.Entry
	profiler     *profiler.Profiler
	modelOptions yolox.Options
	scaleExtents bool

	state     State
	model     *yolox.YOLOX
	network   Network
	request   Request
	letterbox *preprocess.Letterbox
	geometry  Geometry
	devices   []string
	device    string
	objects   []postprocess.Detection
}

// NewSession creates an unconfigured session backed by rt.
//
// Arguments:
//   - rt: The runtime used to enumerate devices and load networks.
//   - opts: Optional settings.
//
// Returns:
//   - *Session: The session in StateUnconfigured.
//   - error: An error if the model options are invalid.
func NewSession(rt Runtime, opts ...Option) (*Session, error) {
	if rt == nil {
		return nil, fmt.Errorf("NewSession requires a runtime")
	}

	s := &Session{
		runtime:      rt,
		modelOptions: yolox.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.id == "" {
		s.id = log.NewSessionID()
	}
	if s.baseLogger == nil {
		s.baseLogger = log.Default()
	}
	s.logger = log.FromContext(log.WithSessionID(context.Background(), s.id), s.baseLogger)

	m, err := yolox.NewModel(s.modelOptions)
	if err != nil {
		return nil, fmt.Errorf("invalid model options: %w", err)
	}
	s.model = m

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current configuration stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Geometry returns the current frame geometry. It is zero until SetInputDims succeeds.
func (s *Session) Geometry() Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry
}

// Device returns the name of the bound device, empty unless the session is ready.
func (s *Session) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// AnchorCount returns the size of the current anchor table.
func (s *Session) AnchorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.AnchorCount()
}

// AvailableDevices returns a copy of the device list, enumerating it on first use.
func (s *Session) AvailableDevices() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.enumerateDevices()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), devices...), nil
}

// DeviceName returns the name of the device at index.
func (s *Session) DeviceName(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices, err := s.enumerateDevices()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(devices) {
		return "", &IndexError{Index: index, Len: len(devices)}
	}
	return devices[index], nil
}

func (s *Session) enumerateDevices() ([]string, error) {
	if len(s.devices) > 0 {
		return s.devices, nil
	}

	devices, err := s.runtime.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	s.devices = append([]string(nil), devices...)

	s.logger.WithField("devices", s.devices).Debug("devices enumerated")
	return s.devices, nil
}

// LoadModel reads a network and moves the session to StateNetworkLoaded.
//
// Any previously loaded network and device binding are released. The network must take a 4D
// input and produce proposals of at least five values (box and objectness).
func (s *Session) LoadModel(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadModel(path)
}

func (s *Session) loadModel(path string) error {
	network, err := s.runtime.ReadNetwork(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModelLoadFailed, path, err)
	}

	in, out := network.InputShape(), network.OutputShape()
	if len(in) != 4 {
		network.Close()
		return fmt.Errorf("%w: %s: expected a 4D input, got %v", ErrModelLoadFailed, path, in)
	}
	if len(out) < 2 {
		network.Close()
		return fmt.Errorf("%w: %s: unexpected output shape %v", ErrModelLoadFailed, path, out)
	}
	if err := s.model.SetProposalLength(int(out[len(out)-1])); err != nil {
		network.Close()
		return fmt.Errorf("%w: %s: %w", ErrModelLoadFailed, path, err)
	}

	s.release()
	s.network = network
	s.geometry = Geometry{}
	s.letterbox = nil
	s.model.SetInputSize(0, 0)
	s.setState(StateNetworkLoaded)

	s.logger.WithFields(logrus.Fields{
		"path":            path,
		"input_shape":     in,
		"output_shape":    out,
		"proposal_length": s.model.ProposalLength(),
	}).Info("model loaded")

	return nil
}

// SetInputDims configures the session for frames of width x height.
//
// The model input is padded to the nearest multiple of 32 in each dimension, the anchor table is
// rebuilt and the network is reshaped. A ready session releases its device binding and must be
// bound again.
func (s *Session) SetInputDims(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setInputDims(width, height)
}

func (s *Session) setInputDims(width, height int) error {
	if s.state < StateNetworkLoaded {
		return &StateError{Op: "SetInputDims", State: s.state, Want: StateNetworkLoaded}
	}

	geometry, err := NewGeometry(width, height)
	if err != nil {
		return err
	}

	letterbox, err := preprocess.NewLetterbox(geometry.InputWidth, geometry.InputHeight)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDimensions, err)
	}

	anchors := postprocess.AnchorCount(geometry.InputWidth, geometry.InputHeight, s.modelOptions.Strides)
	input := []int64{1, preprocess.Channels, int64(geometry.InputHeight), int64(geometry.InputWidth)}
	output := []int64{1, int64(anchors), int64(s.model.ProposalLength())}
	if err := s.network.Reshape(input, output); err != nil {
		return fmt.Errorf("reshaping network to %v: %w", input, err)
	}

	if s.request != nil {
		s.closeRequest()
	}

	s.geometry = geometry
	s.letterbox = letterbox
	s.model.SetInputSize(geometry.InputWidth, geometry.InputHeight)
	s.objects = s.objects[:0]
	s.model.Reset()
	s.setState(StateReshaped)

	s.logger.WithFields(logrus.Fields{
		"image_w": geometry.ImageWidth,
		"image_h": geometry.ImageHeight,
		"input_w": geometry.InputWidth,
		"input_h": geometry.InputHeight,
		"scale":   geometry.Scale,
		"anchors": anchors,
	}).Info("input dimensions set")

	return nil
}

// BindToDevice compiles the network for the device at index and moves the session to StateReady.
//
// Returns:
//   - string: The name of the bound device.
//   - error: ErrInvalidState before SetInputDims, ErrIndexOutOfRange for a bad index, or the
//     runtime's compile error.
func (s *Session) BindToDevice(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindToDevice(index)
}

func (s *Session) bindToDevice(index int) (string, error) {
	if s.state < StateReshaped {
		return "", &StateError{Op: "BindToDevice", State: s.state, Want: StateReshaped}
	}

	devices, err := s.enumerateDevices()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(devices) {
		return "", &IndexError{Index: index, Len: len(devices)}
	}
	device := devices[index]

	if s.request != nil {
		s.closeRequest()
		s.setState(StateReshaped)
	}

	done := s.profiler.StartOperation(profiler.StageCompile)
	request, err := s.network.Compile(device)
	done()
	if err != nil {
		return "", fmt.Errorf("compiling for %s: %w", device, err)
	}

	if got, want := len(request.Input()), s.letterbox.TensorSize(); got != want {
		request.Close()
		return "", fmt.Errorf("%w: input tensor has %d values, expected %d", ErrShapeMismatch, got, want)
	}
	if got, want := len(request.Output()), s.model.OutputSize(); got < want {
		request.Close()
		return "", fmt.Errorf("%w: output tensor has %d values, expected %d", ErrShapeMismatch, got, want)
	}

	s.request = request
	s.device = device
	s.setState(StateReady)

	s.logger.WithField("device", device).Info("network bound to device")
	return device, nil
}

// Init loads a model, sizes it for width x height frames and binds it to the device at index.
//
// Returns:
//   - string: The name of the bound device.
//   - error: The first failing step's error.
func (s *Session) Init(path string, width, height, deviceIndex int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.enumerateDevices(); err != nil {
		return "", err
	}
	if err := s.loadModel(path); err != nil {
		return "", err
	}
	if err := s.setInputDims(width, height); err != nil {
		return "", err
	}
	return s.bindToDevice(deviceIndex)
}

// SetConfidenceThreshold sets the minimum detection probability, clamped to [0, 1]. It takes
// effect on the next frame and returns the value in effect.
func (s *Session) SetConfidenceThreshold(v float32) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v = s.model.SetConfidenceThreshold(v)
	s.logger.WithField("confidence_threshold", v).Debug("threshold updated")
	return v
}

// SetNMSThreshold sets the suppression IoU threshold, clamped to [0, 1]. It takes effect on the
// next frame and returns the value in effect.
func (s *Session) SetNMSThreshold(v float32) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v = s.model.SetNMSThreshold(v)
	s.logger.WithField("nms_threshold", v).Debug("threshold updated")
	return v
}

// Thresholds returns the confidence and NMS thresholds in effect.
func (s *Session) Thresholds() (confidence, nms float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.model.Options()
	return o.ConfidenceThreshold, o.NMSThreshold
}

// Infer runs detection on one frame and stores the detections.
//
// The frame must be ImageWidth x ImageHeight pixels of four bytes each (RGBA or RGBX), matching
// the last SetInputDims call. The call blocks until the network completes; ctx is checked before
// the network runs.
//
// Returns:
//   - int: The number of detections.
//   - error: ErrInvalidState unless ready, ErrInvalidInput for a wrong sized frame, or the
//     runtime's error.
func (s *Session) Infer(ctx context.Context, pixels []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return 0, &StateError{Op: "Infer", State: s.state, Want: StateReady}
	}

	s.objects = s.objects[:0]
	s.model.Reset()

	done := s.profiler.StartOperation(profiler.StagePreprocess)
	err := s.letterbox.Process(pixels, s.geometry.ImageWidth, s.geometry.ImageHeight, s.request.Input())
	done()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	done = s.profiler.StartOperation(profiler.StageInference)
	err = s.request.Run()
	done()
	if err != nil {
		return 0, fmt.Errorf("running inference on %s: %w", s.device, err)
	}

	output := s.request.Output()
	if len(output) < s.model.OutputSize() {
		return 0, fmt.Errorf(
			"%w: output has %d values, expected %d",
			ErrShapeMismatch, len(output), s.model.OutputSize(),
		)
	}

	done = s.profiler.StartOperation(profiler.StageDecode)
	s.objects = append(s.objects, s.model.PostProcess(output)...)
	postprocess.Unmap(s.objects, postprocess.UnmapOptions{
		Scale:        s.geometry.Scale,
		ImageWidth:   s.geometry.ImageWidth,
		ImageHeight:  s.geometry.ImageHeight,
		ScaleExtents: s.scaleExtents,
	})
	done()

	s.logger.WithFields(logrus.Fields{
		"proposals": s.model.ProposalCount(),
		"count":     len(s.objects),
	}).Debug("frame processed")

	return len(s.objects), nil
}

// ObjectCount returns the number of detections from the last frame.
func (s *Session) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Objects returns a copy of the detections from the last frame in source image coordinates,
// highest probability first.
func (s *Session) Objects() []postprocess.Detection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]postprocess.Detection(nil), s.objects...)
}

// PopulateObjects writes the detections from the last frame into dst as 24 byte records (see
// postprocess.RecordSize).
//
// Returns:
//   - int: The number of records written.
//   - error: io.ErrShortBuffer when dst cannot hold every detection. The records that fit are
//     still written.
func (s *Session) PopulateObjects(dst []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := postprocess.MarshalRecords(dst, s.objects)
	if n < len(s.objects) {
		return n, fmt.Errorf("%w: room for %d of %d records", io.ErrShortBuffer, n, len(s.objects))
	}
	return n, nil
}

// Reset clears the detections, the proposal buffers and the cached device list. The loaded
// network, anchor table and device binding are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects = s.objects[:0]
	s.model.Reset()
	s.devices = nil

	s.logger.Debug("session reset")
}

// Close releases the device binding and network and returns the session to StateUnconfigured.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.release()
	s.geometry = Geometry{}
	s.letterbox = nil
	s.objects = s.objects[:0]
	s.model.Reset()
	s.model.SetInputSize(0, 0)
	s.setState(StateUnconfigured)

	return err
}

// release closes the request and network.
func (s *Session) release() error {
	var err error
	if s.request != nil {
		err = s.closeRequest()
	}
	if s.network != nil {
		if cerr := s.network.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing network: %w", cerr)
		}
		s.network = nil
	}
	return err
}

func (s *Session) closeRequest() error {
	err := s.request.Close()
	s.request = nil
	s.device = ""
	if err != nil {
		s.logger.WithError(err).Warn("failed to release device binding")
		return fmt.Errorf("closing request: %w", err)
	}
	return nil
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"from": s.state.String(),
		"to":   state.String(),
	}).Debug("state transition")
	s.state = state
}
