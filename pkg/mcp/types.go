package mcp

import (
	"github.com/urmzd/voicelink/pkg/device"
	"github.com/urmzd/voicelink/pkg/provider"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Backend   string `json:"backend" jsonschema:"description=Device backend connection status"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- List Devices Tool ---

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	UserID  string       `json:"user_id" jsonschema:"description=User the devices belong to"`
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Devices of the user"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// DeviceInfo represents a device in tool outputs
type DeviceInfo struct {
	ID           string           `json:"id" jsonschema:"description=Device identifier"`
	Name         string           `json:"name" jsonschema:"description=User-friendly device name"`
	Type         string           `json:"type" jsonschema:"description=Device type (devices.types.*)"`
	Room         string           `json:"room,omitempty" jsonschema:"description=Room the device is in"`
	Capabilities []CapabilityInfo `json:"capabilities,omitempty" jsonschema:"description=Controllable capabilities"`
	Properties   []PropertyInfo   `json:"properties,omitempty" jsonschema:"description=Read-only properties"`
}

// CapabilityInfo describes a capability in tool outputs
type CapabilityInfo struct {
	Type       device.CapabilityType `json:"type"`
	Instance   string                `json:"instance"`
	Parameters device.Parameters     `json:"parameters"`
}

// PropertyInfo describes a property in tool outputs
type PropertyInfo struct {
	Type       device.PropertyType `json:"type"`
	Instance   string              `json:"instance"`
	Parameters device.Parameters   `json:"parameters"`
}

// --- Query Devices Tool ---

// QueryDevicesOutput is the output for the query_devices tool
type QueryDevicesOutput struct {
	Devices []provider.DeviceState `json:"devices" jsonschema:"description=Current state of each known device"`
}

// --- Device Action Tool ---

// DeviceActionOutput is the output for the device_action, turn_on and turn_off tools
type DeviceActionOutput struct {
	Devices []provider.ActionDeviceResult `json:"devices" jsonschema:"description=Outcome of each capability action"`
}

// DeviceToInfo converts a device to its tool output form
func DeviceToInfo(d *device.Device) DeviceInfo {
	info := DeviceInfo{
		ID:   d.ID,
		Name: d.Name,
		Type: d.Type,
		Room: d.Room,
	}
	for _, c := range d.Capabilities {
		info.Capabilities = append(info.Capabilities, CapabilityInfo{
			Type:       c.Type,
			Instance:   c.Instance(),
			Parameters: c.Parameters,
		})
	}
	for _, p := range d.Properties {
		info.Properties = append(info.Properties, PropertyInfo{
			Type:       p.Type,
			Instance:   p.Parameters.Instance,
			Parameters: p.Parameters,
		})
	}
	return info
}
