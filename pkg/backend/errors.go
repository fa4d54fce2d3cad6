package backend

import "errors"

var (
	// ErrNotFound indicates no state is known for a device
	ErrNotFound = errors.New("device state not found")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrNotConnected indicates the controller is not connected
	ErrNotConnected = errors.New("controller not connected")
)
