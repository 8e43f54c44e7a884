// Package providers - ONNX Runtime execution providers and device names.
package providers

import (
	"fmt"
	"strconv"
	"strings"
)

// ProviderBackend represents different ONNX Runtime execution providers
type ProviderBackend string

const (
	// CPUProviderBackend runs on the default ONNX Runtime CPU provider.
	CPUProviderBackend ProviderBackend = "cpu"
)

// Device is a parsed device name of the form "backend:target".
//
// Examples: "openvino:GPU", "openvino:CPU", "cuda:0", "coreml", "cpu". A bare OpenVINO target such
// as "GPU" is accepted and treated as "openvino:GPU".
type Device struct {
	// Backend is the execution provider.
	Backend ProviderBackend
	// Target selects the hardware within the backend: an OpenVINO device type or a CUDA device id.
	Target string
}

// String returns the canonical device name.
func (d Device) String() string {
	if d.Target == "" {
		return string(d.Backend)
	}
	return string(d.Backend) + ":" + d.Target
}

// CUDADeviceID returns the CUDA device ordinal, 0 when the target is empty.
func (d Device) CUDADeviceID() (int, error) {
	if d.Target == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(d.Target)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid CUDA device id %q", d.Target)
	}
	return id, nil
}

// ParseDevice parses a device name.
//
// Arguments:
//   - name: The device name, e.g. "openvino:GPU" or "cuda:0".
//
// Returns:
//   - Device: The parsed device.
//   - error: An error if the backend is unknown or the target is malformed.
func ParseDevice(name string) (Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Device{}, fmt.Errorf("empty device name")
	}

	backend, target, hasTarget := strings.Cut(name, ":")
	b := ProviderBackend(strings.ToLower(backend))

	switch b {
	case CPUProviderBackend, CoreMLProviderBackend:
		if hasTarget && target != "" {
			return Device{}, fmt.Errorf("device %q: %s takes no target", name, b)
		}
		return Device{Backend: b}, nil
	case OpenVINOProviderBackend:
		if target == "" {
			return Device{}, fmt.Errorf("device %q: missing OpenVINO device type", name)
		}
		return Device{Backend: b, Target: strings.ToUpper(target)}, nil
	case CUDAProviderBackend:
		d := Device{Backend: b, Target: target}
		if _, err := d.CUDADeviceID(); err != nil {
			return Device{}, fmt.Errorf("device %q: %w", name, err)
		}
		return d, nil
	}

	if hasTarget {
		return Device{}, fmt.Errorf("device %q: unsupported backend %q", name, backend)
	}
	// Bare OpenVINO device types ("GPU", "CPU", "NPU", "GPU.1").
	return Device{Backend: OpenVINOProviderBackend, Target: strings.ToUpper(name)}, nil
}

// IsGNA reports whether the device is an OpenVINO GNA accelerator.
func (d Device) IsGNA() bool {
	return d.Backend == OpenVINOProviderBackend && strings.HasPrefix(d.Target, "GNA")
}

// FilterDevices returns the canonical names of the usable devices, in order.
//
// GNA devices are dropped because they cannot run the detector. Duplicates and names that do not
// parse are skipped.
func FilterDevices(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	devices := make([]string, 0, len(names))
	for _, name := range names {
		d, err := ParseDevice(name)
		if err != nil || d.IsGNA() {
			continue
		}
		canonical := d.String()
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		devices = append(devices, canonical)
	}
	return devices
}
