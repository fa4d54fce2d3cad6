package types

import (
	"time"

	"github.com/urmzd/voicelink/pkg/device"
	"github.com/urmzd/voicelink/pkg/provider"
)

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"devices is required"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`
	Backend   string    `json:"backend" example:"connected"`
	Timestamp time.Time `json:"timestamp"`
}

// DevicesResponse is the device list of a user
type DevicesResponse struct {
	RequestID string         `json:"request_id" example:"ff36a3cc-ec34-11e6-b1a0-64510650abcf"`
	Payload   DevicesPayload `json:"payload"`
}

// DevicesPayload carries the user id and the device descriptions
type DevicesPayload struct {
	UserID  string              `json:"user_id" example:"alice"`
	Devices []DeviceDescription `json:"devices"`
}

// DeviceDescription describes a device to the platform
type DeviceDescription struct {
	ID           string                  `json:"id" example:"lamp"`
	Name         string                  `json:"name" example:"Lamp"`
	Description  string                  `json:"description,omitempty"`
	Room         string                  `json:"room,omitempty" example:"Kitchen"`
	Type         string                  `json:"type" example:"devices.types.light"`
	CustomData   map[string]any          `json:"custom_data,omitempty"`
	Capabilities []CapabilityDescription `json:"capabilities,omitempty"`
	Properties   []PropertyDescription   `json:"properties,omitempty"`
	DeviceInfo   *device.Info            `json:"device_info,omitempty"`
}

// CapabilityDescription describes a capability without its hooks
type CapabilityDescription struct {
	Type        device.CapabilityType `json:"type" swaggertype:"string" example:"devices.capabilities.on_off"`
	Retrievable bool                  `json:"retrievable"`
	Reportable  bool                  `json:"reportable"`
	Parameters  device.Parameters     `json:"parameters"`
}

// PropertyDescription describes a property without its hook
type PropertyDescription struct {
	Type        device.PropertyType `json:"type" swaggertype:"string" example:"devices.properties.float"`
	Retrievable bool                `json:"retrievable"`
	Reportable  bool                `json:"reportable"`
	Parameters  device.Parameters   `json:"parameters"`
}

// QueryRequest asks for the state of devices
type QueryRequest struct {
	Devices []DeviceRef `json:"devices"`
}

// DeviceRef identifies a device in a request
type DeviceRef struct {
	ID string `json:"id" example:"lamp"`
}

// QueryResponse reports device states
type QueryResponse struct {
	RequestID string       `json:"request_id"`
	Payload   QueryPayload `json:"payload"`
}

// QueryPayload carries one entry per known requested device
type QueryPayload struct {
	Devices []provider.DeviceState `json:"devices"`
}

// ActionRequest asks for capability changes
type ActionRequest struct {
	Payload ActionRequestPayload `json:"payload"`
}

// ActionRequestPayload carries the requested device actions
type ActionRequestPayload struct {
	Devices []provider.ActionRequest `json:"devices"`
}

// ActionResponse reports action outcomes
type ActionResponse struct {
	RequestID string        `json:"request_id"`
	Payload   ActionPayload `json:"payload"`
}

// ActionPayload carries one entry per known requested device
type ActionPayload struct {
	Devices []provider.ActionDeviceResult `json:"devices"`
}

// UnlinkResponse acknowledges an account unlink
type UnlinkResponse struct {
	RequestID string `json:"request_id"`
}

// Describe converts devices to their platform descriptions
func Describe(devices []device.Device) []DeviceDescription {
	out := make([]DeviceDescription, 0, len(devices))
	for _, d := range devices {
		desc := DeviceDescription{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Room:        d.Room,
			Type:        d.Type,
			CustomData:  d.CustomData,
			DeviceInfo:  d.DeviceInfo,
		}
		for _, c := range d.Capabilities {
			desc.Capabilities = append(desc.Capabilities, CapabilityDescription{
				Type:        c.Type,
				Retrievable: c.Retrievable,
				Reportable:  c.Reportable,
				Parameters:  c.Parameters,
			})
		}
		for _, p := range d.Properties {
			desc.Properties = append(desc.Properties, PropertyDescription{
				Type:        p.Type,
				Retrievable: p.Retrievable,
				Reportable:  p.Reportable,
				Parameters:  p.Parameters,
			})
		}
		out = append(out, desc)
	}
	return out
}
