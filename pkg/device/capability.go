package device

import "fmt"

// CapabilityOptions declares a capability. Nil fields take their defaults:
// Retrievable true, Reportable false.
type CapabilityOptions struct {
	Retrievable *bool
	Reportable  *bool
	Parameters  *Parameters

	OnQuery  QueryFunc
	OnAction ActionFunc
}

// NewCapability builds a capability of the given type
func NewCapability(t CapabilityType, opts CapabilityOptions) (*Capability, error) {
	switch t {
	case CapabilityOnOff:
		return NewOnOff(opts)
	case CapabilityColorSetting:
		return NewColorSetting(opts)
	case CapabilityMode:
		return NewMode(opts)
	case CapabilityRange:
		return NewRange(opts)
	case CapabilityToggle:
		return NewToggle(opts)
	default:
		return nil, fmt.Errorf("%w: unknown capability type %q", ErrSchema, t)
	}
}

// NewOnOff builds an on_off capability. Parameters default to {split: false}.
func NewOnOff(opts CapabilityOptions) (*Capability, error) {
	params := Parameters{Split: boolPtr(false)}
	if opts.Parameters != nil {
		params = *opts.Parameters
	}
	return newCapability(CapabilityOnOff, opts, params), nil
}

// NewColorSetting builds a color_setting capability.
// At least one of color_model, temperature_k or color_scene is required.
func NewColorSetting(opts CapabilityOptions) (*Capability, error) {
	if opts.Parameters == nil {
		return nil, fmt.Errorf("%w: ColorSetting capability: 'parameters' is missing", ErrSchema)
	}
	p := opts.Parameters
	if p.ColorModel == "" && p.TemperatureK == nil && p.ColorScene == nil {
		return nil, fmt.Errorf("%w: ColorSetting capability: 'parameters' must have 'color_model', 'temperature_k' or 'color_scene'", ErrSchema)
	}
	return newCapability(CapabilityColorSetting, opts, *p), nil
}

// NewMode builds a mode capability
func NewMode(opts CapabilityOptions) (*Capability, error) {
	return newInstanceCapability(CapabilityMode, "Mode", opts)
}

// NewRange builds a range capability
func NewRange(opts CapabilityOptions) (*Capability, error) {
	return newInstanceCapability(CapabilityRange, "Range", opts)
}

// NewToggle builds a toggle capability
func NewToggle(opts CapabilityOptions) (*Capability, error) {
	return newInstanceCapability(CapabilityToggle, "Toggle", opts)
}

// Instance returns the instance the capability answers to in query responses
func (c *Capability) Instance() string {
	switch c.Type {
	case CapabilityOnOff:
		return "on"
	case CapabilityColorSetting:
		if c.Parameters.ColorModel != "" {
			return c.Parameters.ColorModel
		}
		if c.Parameters.TemperatureK != nil {
			return "temperature_k"
		}
		return "color_scene"
	default:
		return c.Parameters.Instance
	}
}

func newInstanceCapability(t CapabilityType, name string, opts CapabilityOptions) (*Capability, error) {
	if opts.Parameters == nil {
		return nil, fmt.Errorf("%w: %s capability: 'parameters' is missing", ErrSchema, name)
	}
	if opts.Parameters.Instance == "" {
		return nil, fmt.Errorf("%w: %s capability: 'parameters' must have 'instance'", ErrSchema, name)
	}
	return newCapability(t, opts, *opts.Parameters), nil
}

func newCapability(t CapabilityType, opts CapabilityOptions, params Parameters) *Capability {
	return &Capability{
		Type:        t,
		Retrievable: boolOr(opts.Retrievable, true),
		Reportable:  boolOr(opts.Reportable, false),
		Parameters:  params,
		OnQuery:     opts.OnQuery,
		OnAction:    opts.OnAction,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func boolPtr(v bool) *bool {
	return &v
}
