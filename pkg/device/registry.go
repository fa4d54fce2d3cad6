package device

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// NormalizeOptions controls how Normalize treats malformed devices
type NormalizeOptions struct {
	// Strict fails the whole batch on the first malformed device.
	// Otherwise malformed devices are skipped with a warning.
	Strict bool
	Logger zerolog.Logger
}

// Normalize validates a device list returned by a Source.
// Devices without an ID are numbered by their position among the accepted
// devices ("1", "2", ...) and a missing GlobalQuery resolves to nil.
// The input slice is not modified.
func Normalize(devices []Device, opts NormalizeOptions) ([]Device, error) {
	accepted := make([]Device, 0, len(devices))

	for _, d := range devices {
		if d.ID == "" {
			d.ID = strconv.Itoa(len(accepted) + 1)
		}

		if err := validateDevice(&d); err != nil {
			if opts.Strict {
				return nil, err
			}
			opts.Logger.Warn().Err(err).Str("device_id", d.ID).Msg("Skipping malformed device")
			continue
		}

		if d.GlobalQuery == nil {
			d.GlobalQuery = nullGlobalQuery
		}

		accepted = append(accepted, d)
	}

	return accepted, nil
}

// FindByID returns the device with the given id, or nil
func FindByID(devices []Device, id string) *Device {
	for i := range devices {
		if devices[i].ID == id {
			return &devices[i]
		}
	}
	return nil
}

func validateDevice(d *Device) error {
	if d.Name == "" {
		return fmt.Errorf("%w: device with id '%s' has no 'name'", ErrDeviceValidation, d.ID)
	}
	if d.Type == "" {
		return fmt.Errorf("%w: device '%s' (id %s) has no 'type'", ErrDeviceValidation, d.Name, d.ID)
	}
	if d.Capabilities == nil && d.Properties == nil {
		return fmt.Errorf("%w: device '%s' (id %s) must have 'capabilities' or 'properties'", ErrDeviceValidation, d.Name, d.ID)
	}
	if (d.Capabilities != nil && len(d.Capabilities) == 0) || (d.Properties != nil && len(d.Properties) == 0) {
		return fmt.Errorf("%w: device '%s' (id %s) must have at least one capability or property", ErrDeviceValidation, d.Name, d.ID)
	}
	for i, c := range d.Capabilities {
		if c == nil {
			return fmt.Errorf("%w: device '%s' (id %s) has a nil capability at index %d", ErrDeviceValidation, d.Name, d.ID, i)
		}
	}
	for i, p := range d.Properties {
		if p == nil {
			return fmt.Errorf("%w: device '%s' (id %s) has a nil property at index %d", ErrDeviceValidation, d.Name, d.ID, i)
		}
	}
	return nil
}

func nullGlobalQuery(context.Context) (any, error) {
	return nil, nil
}
