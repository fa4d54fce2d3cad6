package backend

import "context"

// State is the last known state of a backend device as a dynamic map
type State map[string]any

// Controller reads and writes device state on the transport that reaches
// the physical devices. Devices are addressed by their topic.
type Controller interface {
	// GetDeviceState returns the last known state of a device
	GetDeviceState(ctx context.Context, topic string) (State, error)

	// SetDeviceState sends a partial state update to a device
	SetDeviceState(ctx context.Context, topic string, state map[string]any) error

	// IsConnected returns true if the controller is connected
	IsConnected() bool

	// Close disconnects the controller
	Close()
}
