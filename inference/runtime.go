package inference

// Runtime loads networks and reports the devices they can be compiled for.
type Runtime interface {
	// Devices returns the ordered list of device names usable with Network.Compile.
	Devices() ([]string, error)
	// ReadNetwork parses a model artifact.
	ReadNetwork(path string) (Network, error)
}

// Network is a parsed model that can be reshaped and compiled.
type Network interface {
	// InputShape returns the current input tensor shape, [batch, channels, height, width].
	InputShape() []int64
	// OutputShape returns the current output tensor shape, [batch, anchors, proposal length].
	OutputShape() []int64
	// Reshape sets the tensor shapes used by the next Compile.
	Reshape(input, output []int64) error
	// Compile binds the network to a device and allocates its tensors.
	Compile(device string) (Request, error)
	// Close releases the network.
	Close() error
}

// Request is a network compiled for one device with bound input and output tensors.
type Request interface {
	// Input returns the input tensor data to fill before Run.
	Input() []float32
	// Output returns the output tensor data written by Run.
	Output() []float32
	// Run executes the network synchronously.
	Run() error
	// Close releases the native resources of the request.
	Close() error
}
