package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCapability(t *testing.T, typ CapabilityType, params *Parameters) *Capability {
	t.Helper()
	c, err := NewCapability(typ, CapabilityOptions{Parameters: params})
	require.NoError(t, err)
	return c
}

func TestResolve(t *testing.T) {
	onOff := mustCapability(t, CapabilityOnOff, nil)
	rgb := mustCapability(t, CapabilityColorSetting, &Parameters{
		ColorModel:   "rgb",
		TemperatureK: &TemperatureRange{Min: 2700, Max: 6500},
	})
	brightness := mustCapability(t, CapabilityRange, &Parameters{Instance: "brightness"})
	volume := mustCapability(t, CapabilityToggle, &Parameters{Instance: "volume"})
	program := mustCapability(t, CapabilityMode, &Parameters{Instance: "program"})

	d := &Device{Capabilities: []*Capability{onOff, rgb, brightness, volume, program}}

	tests := []struct {
		name string
		ref  CapabilityRef
		want *Capability
	}{
		{"on_off ignores instance", CapabilityRef{CapabilityOnOff, "on"}, onOff},
		{"color model", CapabilityRef{CapabilityColorSetting, "rgb"}, rgb},
		{"color temperature", CapabilityRef{CapabilityColorSetting, "temperature_k"}, rgb},
		{"color scene not declared", CapabilityRef{CapabilityColorSetting, "color_scene"}, nil},
		{"other color model", CapabilityRef{CapabilityColorSetting, "hsv"}, nil},
		{"range by instance", CapabilityRef{CapabilityRange, "brightness"}, brightness},
		{"range instance mismatch", CapabilityRef{CapabilityRange, "volume"}, nil},
		{"toggle instance is not a range", CapabilityRef{CapabilityRange, "volume"}, nil},
		{"toggle by instance", CapabilityRef{CapabilityToggle, "volume"}, volume},
		{"mode by instance", CapabilityRef{CapabilityMode, "program"}, program},
		{"unknown type", CapabilityRef{"devices.capabilities.video_stream", "x"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, Resolve(d, tt.ref))
		})
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	first := mustCapability(t, CapabilityRange, &Parameters{Instance: "brightness"})
	second := mustCapability(t, CapabilityRange, &Parameters{Instance: "brightness"})

	d := &Device{Capabilities: []*Capability{first, second}}
	assert.Same(t, first, Resolve(d, CapabilityRef{CapabilityRange, "brightness"}))
}

func TestResolve_ColorScene(t *testing.T) {
	scene := mustCapability(t, CapabilityColorSetting, &Parameters{ColorScene: &ColorScene{Scenes: []SceneID{{ID: "party"}}}})
	d := &Device{Capabilities: []*Capability{scene}}

	assert.Same(t, scene, Resolve(d, CapabilityRef{CapabilityColorSetting, "color_scene"}))
	assert.Nil(t, Resolve(d, CapabilityRef{CapabilityColorSetting, "temperature_k"}))
}
