package device

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lamp(name string) Device {
	onOff, _ := NewOnOff(CapabilityOptions{})
	return Device{
		Name:         name,
		Type:         "devices.types.light",
		Capabilities: []*Capability{onOff},
	}
}

func TestNormalize_AssignsSequentialIDs(t *testing.T) {
	devices := []Device{lamp("a"), lamp("b"), lamp("c")}

	out, err := Normalize(devices, NormalizeOptions{Strict: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
	assert.Equal(t, "3", out[2].ID)

	// Input is left untouched
	assert.Empty(t, devices[0].ID)
}

func TestNormalize_KeepsExplicitIDs(t *testing.T) {
	a := lamp("a")
	a.ID = "kitchen"

	out, err := Normalize([]Device{a, lamp("b")}, NormalizeOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "kitchen", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
}

func TestNormalize_LenientSkipsWithWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	broken := lamp("")
	out, err := Normalize([]Device{lamp("a"), broken, lamp("c")}, NormalizeOptions{Logger: logger})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "c", out[1].Name)
	// Ids follow the accepted count
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "has no 'name'")
}

func TestNormalize_StrictFails(t *testing.T) {
	out, err := Normalize([]Device{lamp("a"), lamp(""), lamp("c")}, NormalizeOptions{Strict: true, Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, ErrDeviceValidation)
	assert.Nil(t, out)
}

func TestNormalize_StructuralRules(t *testing.T) {
	noType := lamp("a")
	noType.Type = ""

	noFacets := Device{Name: "a", Type: "devices.types.other"}

	emptyCaps := Device{Name: "a", Type: "devices.types.other", Capabilities: []*Capability{}}

	prop, _ := NewFloat(PropertyOptions{Parameters: &Parameters{Instance: "temperature"}})
	emptyProps := lamp("a")
	emptyProps.Properties = []*Property{}

	onlyProps := Device{Name: "sensor", Type: "devices.types.sensor", Properties: []*Property{prop}}

	tests := []struct {
		name    string
		device  Device
		wantErr bool
	}{
		{"missing type", noType, true},
		{"no capabilities or properties", noFacets, true},
		{"empty capabilities", emptyCaps, true},
		{"empty properties next to capabilities", emptyProps, true},
		{"properties only", onlyProps, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]Device{tt.device}, NormalizeOptions{Strict: true, Logger: zerolog.Nop()})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDeviceValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalize_DefaultsGlobalQuery(t *testing.T) {
	out, err := Normalize([]Device{lamp("a")}, NormalizeOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NotNil(t, out[0].GlobalQuery)

	global, err := out[0].GlobalQuery(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, global)
}

func TestFindByID(t *testing.T) {
	out, _ := Normalize([]Device{lamp("a"), lamp("b")}, NormalizeOptions{Logger: zerolog.Nop()})

	d := FindByID(out, "2")
	require.NotNil(t, d)
	assert.Equal(t, "b", d.Name)
	assert.Nil(t, FindByID(out, "9"))
}
