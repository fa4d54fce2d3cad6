// Package catalog exposes configured devices to the provider, with query and
// action hooks backed by a backend.Controller.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/config"
	"github.com/urmzd/voicelink/pkg/device"
)

// ErrUnknownUser indicates a user missing from the accounts configuration
var ErrUnknownUser = errors.New("catalog: unknown user")

// Catalog implements device.Source over the configured devices
type Catalog struct {
	cfg        *config.Config
	controller backend.Controller
	logger     zerolog.Logger
}

var _ device.Source = (*Catalog)(nil)

// New checks every device declaration and creates a new Catalog
func New(cfg *config.Config, controller backend.Controller, logger zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		cfg:        cfg,
		controller: controller,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}

	for _, dc := range cfg.Devices {
		if _, err := c.build(dc); err != nil {
			return nil, fmt.Errorf("device %s: %w", dc.ID, err)
		}
	}
	return c, nil
}

// Devices returns the devices visible to a user. A user without a device
// list sees every device; an empty list shows none.
func (c *Catalog) Devices(ctx context.Context, userID string) ([]device.Device, error) {
	ids, ok := c.cfg.UserDevices(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}

	visible := make(map[string]bool, len(ids))
	for _, id := range ids {
		visible[id] = true
	}

	devices := make([]device.Device, 0, len(c.cfg.Devices))
	for _, dc := range c.cfg.Devices {
		if ids != nil && !visible[dc.ID] {
			continue
		}
		d, err := c.build(dc)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}

	c.logger.Debug().Str("user", userID).Int("count", len(devices)).Msg("Listing devices")
	return devices, nil
}

// build turns a declaration into a device whose hooks read and write the
// device's backend topic
func (c *Catalog) build(dc config.DeviceConfig) (device.Device, error) {
	topic := dc.StateTopic()

	d := device.Device{
		ID:          dc.ID,
		Name:        dc.Name,
		Type:        dc.Type,
		Description: dc.Description,
		Room:        dc.Room,
		CustomData:  dc.CustomData,
		DeviceInfo:  dc.DeviceInfo,
		GlobalQuery: c.globalQuery(topic),
	}

	if dc.Capabilities != nil {
		d.Capabilities = make([]*device.Capability, 0, len(dc.Capabilities))
	}
	for _, cc := range dc.Capabilities {
		// Build once to resolve defaults, then bind hooks to the result
		capability, err := device.NewCapability(cc.Type, device.CapabilityOptions{
			Retrievable: cc.Retrievable,
			Reportable:  cc.Reportable,
			Parameters:  cc.Parameters,
		})
		if err != nil {
			return device.Device{}, err
		}
		b := binding{controller: c.controller, topic: topic, capability: capability}
		if capability.Retrievable {
			capability.OnQuery = b.query
		}
		capability.OnAction = b.action
		d.Capabilities = append(d.Capabilities, capability)
	}

	if dc.Properties != nil {
		d.Properties = make([]*device.Property, 0, len(dc.Properties))
	}
	for _, pc := range dc.Properties {
		property, err := device.NewProperty(pc.Type, device.PropertyOptions{
			Retrievable: pc.Retrievable,
			Reportable:  pc.Reportable,
			Parameters:  pc.Parameters,
		})
		if err != nil {
			return device.Device{}, err
		}
		if property.Retrievable {
			property.OnQuery = readState(property.Parameters.Instance, property.Parameters.Instance)
		}
		d.Properties = append(d.Properties, property)
	}

	return d, nil
}

// globalQuery fetches the device state once per query cycle
func (c *Catalog) globalQuery(topic string) device.GlobalQueryFunc {
	return func(ctx context.Context) (any, error) {
		state, err := c.controller.GetDeviceState(ctx, topic)
		if err != nil {
			return nil, backendError(err)
		}
		return state, nil
	}
}

// backendError maps controller failures to protocol error codes
func backendError(err error) error {
	switch {
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, backend.ErrNotConnected):
		return device.NewCodeError(device.CodeDeviceUnreachable, err)
	case errors.Is(err, backend.ErrTimeout):
		return device.NewCodeError(device.CodeDeviceBusy, err)
	default:
		return err
	}
}

// readState returns a query hook reporting state[key] as instance.
// Missing keys leave the entry out of the response.
func readState(instance, key string) device.QueryFunc {
	return func(_ context.Context, global any) (*device.State, error) {
		state, ok := global.(backend.State)
		if !ok {
			return nil, nil
		}
		value, ok := state[key]
		if !ok {
			return nil, nil
		}
		return &device.State{Instance: instance, Value: value}, nil
	}
}
