package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/device"
)

// binding connects one capability to its device topic
type binding struct {
	controller backend.Controller
	topic      string
	capability *device.Capability
}

// query reports the capability's state key. A color_setting capability
// reports the first of its instances present in the device state.
func (b binding) query(ctx context.Context, global any) (*device.State, error) {
	if b.capability.Type != device.CapabilityColorSetting {
		key := b.capability.Instance()
		return readState(key, key)(ctx, global)
	}

	for _, instance := range colorInstances(b.capability.Parameters) {
		state, err := readState(instance, instance)(ctx, global)
		if err != nil || state != nil {
			return state, err
		}
	}
	return nil, nil
}

// action checks the requested value and publishes {instance: value} to the device
func (b binding) action(ctx context.Context, state device.State) (*device.ActionOutcome, error) {
	instance := state.Instance
	if instance == "" {
		instance = b.capability.Instance()
	}
	value := state.Value

	switch b.capability.Type {
	case device.CapabilityOnOff, device.CapabilityToggle:
		on, ok := value.(bool)
		if !ok {
			return device.Failed(instance, device.CodeInvalidValue, "value must be a boolean"), nil
		}
		if state.Relative != nil && *state.Relative {
			current, err := b.current(ctx, instance)
			if err != nil {
				return nil, err
			}
			prev, _ := current.(bool)
			on = !prev
		}
		value = on

	case device.CapabilityMode:
		mode, ok := value.(string)
		if !ok {
			return device.Failed(instance, device.CodeInvalidValue, "value must be a string"), nil
		}
		if modes := b.capability.Parameters.Modes; len(modes) > 0 && !slices.ContainsFunc(modes, func(m device.ModeValue) bool {
			return m.Value == mode
		}) {
			return device.Failed(instance, device.CodeInvalidValue, fmt.Sprintf("unsupported mode %q", mode)), nil
		}

	case device.CapabilityRange:
		n, ok := toFloat(value)
		if !ok {
			return device.Failed(instance, device.CodeInvalidValue, "value must be a number"), nil
		}
		if state.Relative != nil && *state.Relative {
			current, err := b.current(ctx, instance)
			if err != nil {
				return nil, err
			}
			base, _ := toFloat(current)
			n += base
		}
		if r := b.capability.Parameters.Range; r != nil {
			n = math.Min(math.Max(n, r.Min), r.Max)
		}
		value = n
	}

	if err := b.controller.SetDeviceState(ctx, b.topic, map[string]any{instance: value}); err != nil {
		return nil, backendError(err)
	}
	return device.Done(instance), nil
}

// current reads one key of the device state for relative changes
func (b binding) current(ctx context.Context, key string) (any, error) {
	state, err := b.controller.GetDeviceState(ctx, b.topic)
	if err != nil {
		return nil, backendError(err)
	}
	return state[key], nil
}

// colorInstances lists the state keys a color_setting capability answers to
func colorInstances(p device.Parameters) []string {
	var instances []string
	if p.ColorModel != "" {
		instances = append(instances, p.ColorModel)
	}
	if p.TemperatureK != nil {
		instances = append(instances, "temperature_k")
	}
	if p.ColorScene != nil {
		instances = append(instances, "color_scene")
	}
	return instances
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
