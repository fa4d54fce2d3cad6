package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOnOff_Defaults(t *testing.T) {
	c, err := NewOnOff(CapabilityOptions{})
	require.NoError(t, err)

	assert.Equal(t, CapabilityOnOff, c.Type)
	assert.True(t, c.Retrievable)
	assert.False(t, c.Reportable)
	require.NotNil(t, c.Parameters.Split)
	assert.False(t, *c.Parameters.Split)
	assert.Nil(t, c.OnQuery)
	assert.Nil(t, c.OnAction)
}

func TestNewOnOff_Overrides(t *testing.T) {
	split := true
	retrievable := false
	reportable := true
	action := func(ctx context.Context, s State) (*ActionOutcome, error) { return Done(s.Instance), nil }

	c, err := NewOnOff(CapabilityOptions{
		Retrievable: &retrievable,
		Reportable:  &reportable,
		Parameters:  &Parameters{Split: &split},
		OnAction:    action,
	})
	require.NoError(t, err)

	assert.False(t, c.Retrievable)
	assert.True(t, c.Reportable)
	assert.True(t, *c.Parameters.Split)
	assert.NotNil(t, c.OnAction)
}

func TestInstanceCapabilities_RequireInstance(t *testing.T) {
	constructors := map[string]func(CapabilityOptions) (*Capability, error){
		"mode":   NewMode,
		"range":  NewRange,
		"toggle": NewToggle,
	}

	for name, build := range constructors {
		t.Run(name, func(t *testing.T) {
			_, err := build(CapabilityOptions{})
			assert.ErrorIs(t, err, ErrSchema, "missing parameters")

			_, err = build(CapabilityOptions{Parameters: &Parameters{Unit: "unit.percent"}})
			assert.ErrorIs(t, err, ErrSchema, "missing instance")

			c, err := build(CapabilityOptions{Parameters: &Parameters{Instance: "volume"}})
			require.NoError(t, err)
			assert.Equal(t, "volume", c.Parameters.Instance)
			assert.Equal(t, "volume", c.Instance())
		})
	}
}

func TestNewColorSetting(t *testing.T) {
	_, err := NewColorSetting(CapabilityOptions{})
	assert.ErrorIs(t, err, ErrSchema)

	_, err = NewColorSetting(CapabilityOptions{Parameters: &Parameters{}})
	assert.ErrorIs(t, err, ErrSchema)

	c, err := NewColorSetting(CapabilityOptions{Parameters: &Parameters{ColorModel: "rgb"}})
	require.NoError(t, err)
	assert.Equal(t, "rgb", c.Instance())

	c, err = NewColorSetting(CapabilityOptions{Parameters: &Parameters{TemperatureK: &TemperatureRange{Min: 2700, Max: 6500}}})
	require.NoError(t, err)
	assert.Equal(t, "temperature_k", c.Instance())

	c, err = NewColorSetting(CapabilityOptions{Parameters: &Parameters{ColorScene: &ColorScene{Scenes: []SceneID{{ID: "night"}}}}})
	require.NoError(t, err)
	assert.Equal(t, "color_scene", c.Instance())
}

func TestNewCapability_UnknownType(t *testing.T) {
	_, err := NewCapability("devices.capabilities.video_stream", CapabilityOptions{})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestProperties_RequireInstance(t *testing.T) {
	for _, typ := range []PropertyType{PropertyFloat, PropertyBool} {
		t.Run(string(typ), func(t *testing.T) {
			_, err := NewProperty(typ, PropertyOptions{})
			assert.ErrorIs(t, err, ErrSchema)

			_, err = NewProperty(typ, PropertyOptions{Parameters: &Parameters{Unit: "unit.temperature.celsius"}})
			assert.ErrorIs(t, err, ErrSchema)

			p, err := NewProperty(typ, PropertyOptions{Parameters: &Parameters{Instance: "temperature"}})
			require.NoError(t, err)
			assert.Equal(t, typ, p.Type)
			assert.Equal(t, "temperature", p.Parameters.Instance)
			assert.True(t, p.Retrievable)
			assert.False(t, p.Reportable)
		})
	}

	_, err := NewProperty("devices.properties.event", PropertyOptions{Parameters: &Parameters{Instance: "open"}})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeDeviceUnreachable, CodeOf(NewCodeError(CodeDeviceUnreachable, nil)))
	assert.Equal(t, ErrorCode("VENDOR_SPECIFIC"), CodeOf(NewCodeError("VENDOR_SPECIFIC", assert.AnError)))
	assert.Equal(t, CodeInternalError, CodeOf(assert.AnError))
	assert.ErrorIs(t, NewCodeError(CodeDeviceBusy, assert.AnError), assert.AnError)
}
