package inference

import (
	"errors"
	"fmt"
)

// fakeRuntime is an in-memory Runtime whose networks produce scripted outputs.
type fakeRuntime struct {
	devices     []string
	devicesErr  error
	deviceCalls int

	// networks maps model paths to the shapes ReadNetwork reports.
	networks map[string]*fakeNetwork
	readErr  error
	opened   []*fakeNetwork
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		devices:  []string{"openvino:GPU", "openvino:CPU", "cpu"},
		networks: map[string]*fakeNetwork{},
	}
}

func (r *fakeRuntime) addNetwork(path string, in, out []int64) *fakeNetwork {
	n := &fakeNetwork{in: in, out: out}
	r.networks[path] = n
	return n
}

func (r *fakeRuntime) Devices() ([]string, error) {
	r.deviceCalls++
	if r.devicesErr != nil {
		return nil, r.devicesErr
	}
	return r.devices, nil
}

func (r *fakeRuntime) ReadNetwork(path string) (Network, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	n, ok := r.networks[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", path)
	}
	n.closed = false
	r.opened = append(r.opened, n)
	return n, nil
}

type fakeNetwork struct {
	in, out    []int64
	reshapeErr error
	compileErr error
	closed     bool
	// shortOutput makes compiled requests allocate fewer output values than the shape requires.
	shortOutput bool
	// fill writes the scripted network output on each Run.
	fill     func(out []float32)
	runErr   error
	requests []*fakeRequest
}

func (n *fakeNetwork) InputShape() []int64  { return append([]int64(nil), n.in...) }
func (n *fakeNetwork) OutputShape() []int64 { return append([]int64(nil), n.out...) }

func (n *fakeNetwork) Reshape(input, output []int64) error {
	if n.reshapeErr != nil {
		return n.reshapeErr
	}
	n.in = append([]int64(nil), input...)
	n.out = append([]int64(nil), output...)
	return nil
}

func (n *fakeNetwork) Compile(device string) (Request, error) {
	if n.compileErr != nil {
		return nil, n.compileErr
	}
	outLen := product(n.out)
	if n.shortOutput {
		outLen--
	}
	req := &fakeRequest{
		network: n,
		device:  device,
		in:      make([]float32, product(n.in)),
		out:     make([]float32, outLen),
	}
	n.requests = append(n.requests, req)
	return req, nil
}

func (n *fakeNetwork) Close() error {
	n.closed = true
	return nil
}

func (n *fakeNetwork) lastRequest() *fakeRequest {
	if len(n.requests) == 0 {
		return nil
	}
	return n.requests[len(n.requests)-1]
}

type fakeRequest struct {
	network *fakeNetwork
	device  string
	in, out []float32
	runs    int
	closed  bool
}

func (r *fakeRequest) Input() []float32  { return r.in }
func (r *fakeRequest) Output() []float32 { return r.out }

func (r *fakeRequest) Run() error {
	if r.closed {
		return errors.New("run on closed request")
	}
	r.runs++
	if r.network.runErr != nil {
		return r.network.runErr
	}
	for i := range r.out {
		r.out[i] = 0
	}
	if r.network.fill != nil {
		r.network.fill(r.out)
	}
	return nil
}

func (r *fakeRequest) Close() error {
	r.closed = true
	return nil
}

func product(shape []int64) int {
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}
