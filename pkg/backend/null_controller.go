package backend

import "context"

// NullController is a no-op controller used when no MQTT broker is configured.
// Every device reads as unreachable.
type NullController struct{}

// NewNullController creates a new NullController.
func NewNullController() *NullController {
	return &NullController{}
}

func (c *NullController) GetDeviceState(ctx context.Context, topic string) (State, error) {
	return nil, ErrNotConnected
}

func (c *NullController) SetDeviceState(ctx context.Context, topic string, state map[string]any) error {
	return ErrNotConnected
}

func (c *NullController) IsConnected() bool {
	return false
}

func (c *NullController) Close() {}
