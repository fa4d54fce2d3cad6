package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/urmzd/voicelink/pkg/device"
	"golang.org/x/sync/errgroup"
)

// CapabilityState is the reported state of one capability
type CapabilityState struct {
	Type  device.CapabilityType `json:"type"`
	State device.State          `json:"state"`
}

// PropertyState is the reported state of one property
type PropertyState struct {
	Type  device.PropertyType `json:"type"`
	State device.State        `json:"state"`
}

// DeviceState is the query result of one device. A failed device carries
// only its ID and ErrorCode.
type DeviceState struct {
	ID           string
	Capabilities []CapabilityState
	Properties   []PropertyState
	ErrorCode    device.ErrorCode
}

// Failed reports whether the device query failed
func (s DeviceState) Failed() bool {
	return s.ErrorCode != ""
}

func (s DeviceState) MarshalJSON() ([]byte, error) {
	if s.Failed() {
		return json.Marshal(struct {
			ID        string           `json:"id"`
			ErrorCode device.ErrorCode `json:"error_code"`
		}{s.ID, s.ErrorCode})
	}

	capabilities := s.Capabilities
	if capabilities == nil {
		capabilities = []CapabilityState{}
	}
	properties := s.Properties
	if properties == nil {
		properties = []PropertyState{}
	}

	return json.Marshal(struct {
		ID           string            `json:"id"`
		Capabilities []CapabilityState `json:"capabilities"`
		Properties   []PropertyState   `json:"properties"`
	}{s.ID, capabilities, properties})
}

// Query returns the current state of the requested devices of a user.
//
// Devices are queried concurrently. Each device runs its GlobalQuery and then
// all capability and property queries concurrently; any failure turns that
// device's entry into an error entry without affecting the others. Unknown
// ids are left out. Entries follow the request order, while capabilities and
// properties inside an entry follow completion order.
func (s *Service) Query(ctx context.Context, userID string, ids []string) ([]DeviceState, error) {
	devices, err := s.Devices(ctx, userID)
	if err != nil {
		return nil, err
	}

	targets := make([]*device.Device, 0, len(ids))
	for _, id := range ids {
		if d := device.FindByID(devices, id); d != nil {
			targets = append(targets, d)
		}
	}

	results := make([]DeviceState, len(targets))

	var wg sync.WaitGroup
	for i, d := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.queryDevice(ctx, d)
		}()
	}
	wg.Wait()

	return results, nil
}

func (s *Service) queryDevice(ctx context.Context, d *device.Device) DeviceState {
	logger := s.logger.With().Str("device", d.Name).Str("device_id", d.ID).Logger()
	logger.Debug().Msg("Query device")

	var global any
	err := guard(func() error {
		var err error
		global, err = d.GlobalQuery(ctx)
		return err
	})
	if err != nil {
		return s.queryFailed(d, err)
	}

	result := DeviceState{
		ID:           d.ID,
		Capabilities: []CapabilityState{},
		Properties:   []PropertyState{},
	}
	var mu sync.Mutex
	var g errgroup.Group

	for _, c := range d.Capabilities {
		if c.OnQuery == nil {
			continue
		}
		g.Go(func() error {
			logger.Debug().Str("capability", string(c.Type)).Str("instance", c.Parameters.Instance).Msg("Query on capability")

			return guard(func() error {
				state, err := c.OnQuery(ctx, global)
				if err != nil || state == nil {
					return err
				}
				mu.Lock()
				result.Capabilities = append(result.Capabilities, CapabilityState{Type: c.Type, State: *state})
				mu.Unlock()
				return nil
			})
		})
	}

	for _, p := range d.Properties {
		if p.OnQuery == nil {
			continue
		}
		g.Go(func() error {
			logger.Debug().Str("property", string(p.Type)).Str("instance", p.Parameters.Instance).Msg("Query on property")

			return guard(func() error {
				state, err := p.OnQuery(ctx, global)
				if err != nil || state == nil {
					return err
				}
				mu.Lock()
				result.Properties = append(result.Properties, PropertyState{Type: p.Type, State: *state})
				mu.Unlock()
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return s.queryFailed(d, err)
	}

	return result
}

func (s *Service) queryFailed(d *device.Device, err error) DeviceState {
	err = fmt.Errorf("%w: %s: %w", device.ErrDeviceQuery, d.ID, err)
	code := device.CodeOf(err)

	s.logger.Warn().Err(err).
		Str("device", d.Name).
		Str("error_code", string(code)).
		Msg("Device query error")

	return DeviceState{ID: d.ID, ErrorCode: code}
}
