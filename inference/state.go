package inference

// State is the configuration stage of a Session.
type State int

const (
	// StateUnconfigured means no model has been loaded.
	StateUnconfigured State = iota
	// StateNetworkLoaded means a model is loaded but no input size is set.
	StateNetworkLoaded
	// StateReshaped means the input size and anchor table are set but no device is bound.
	StateReshaped
	// StateReady means the network is compiled for a device and frames can be processed.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateNetworkLoaded:
		return "network_loaded"
	case StateReshaped:
		return "reshaped"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}
