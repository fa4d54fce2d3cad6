package device

import "context"

// CapabilityType is the protocol tag of a capability variant
type CapabilityType string

// PropertyType is the protocol tag of a property variant
type PropertyType string

// Capability type tags
const (
	CapabilityOnOff        CapabilityType = "devices.capabilities.on_off"
	CapabilityColorSetting CapabilityType = "devices.capabilities.color_setting"
	CapabilityMode         CapabilityType = "devices.capabilities.mode"
	CapabilityRange        CapabilityType = "devices.capabilities.range"
	CapabilityToggle       CapabilityType = "devices.capabilities.toggle"
)

// Property type tags
const (
	PropertyFloat PropertyType = "devices.properties.float"
	PropertyBool  PropertyType = "devices.properties.bool"
)

// Action result statuses
const (
	StatusDone  = "DONE"
	StatusError = "ERROR"
)

// GlobalQueryFunc fetches a device-wide state snapshot shared by all
// capability and property queries of one query cycle.
type GlobalQueryFunc func(ctx context.Context) (any, error)

// QueryFunc reports the current state of one capability or property.
// A nil state means the entry is left out of this cycle's response.
type QueryFunc func(ctx context.Context, global any) (*State, error)

// ActionFunc applies a requested state to a capability.
// A nil outcome means the capability is left out of the action response.
type ActionFunc func(ctx context.Context, state State) (*ActionOutcome, error)

// State is the {instance, value} pair exchanged with the platform
type State struct {
	Instance string `json:"instance"`
	Value    any    `json:"value"`
	Relative *bool  `json:"relative,omitempty"`
}

// ActionResult reports the outcome of a single capability action
type ActionResult struct {
	Status       string    `json:"status"`
	ErrorCode    ErrorCode `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// ActionOutcome is returned by an ActionFunc
type ActionOutcome struct {
	Instance     string       `json:"instance"`
	ActionResult ActionResult `json:"action_result"`
}

// Done returns a successful outcome for instance
func Done(instance string) *ActionOutcome {
	return &ActionOutcome{Instance: instance, ActionResult: ActionResult{Status: StatusDone}}
}

// Failed returns an error outcome for instance
func Failed(instance string, code ErrorCode, message string) *ActionOutcome {
	return &ActionOutcome{
		Instance: instance,
		ActionResult: ActionResult{
			Status:       StatusError,
			ErrorCode:    code,
			ErrorMessage: message,
		},
	}
}

// Parameters holds the variant-specific parameters of a capability or property.
// Only the fields relevant to a variant are set.
type Parameters struct {
	Split        *bool             `json:"split,omitempty" yaml:"split,omitempty"`
	Instance     string            `json:"instance,omitempty" yaml:"instance,omitempty"`
	ColorModel   string            `json:"color_model,omitempty" yaml:"color_model,omitempty"`
	TemperatureK *TemperatureRange `json:"temperature_k,omitempty" yaml:"temperature_k,omitempty"`
	ColorScene   *ColorScene       `json:"color_scene,omitempty" yaml:"color_scene,omitempty"`
	Modes        []ModeValue       `json:"modes,omitempty" yaml:"modes,omitempty"`
	Range        *Range            `json:"range,omitempty" yaml:"range,omitempty"`
	Unit         string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	RandomAccess *bool             `json:"random_access,omitempty" yaml:"random_access,omitempty"`
	Events       []EventValue      `json:"events,omitempty" yaml:"events,omitempty"`
}

// TemperatureRange is the supported white temperature range in kelvin
type TemperatureRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// ColorScene lists the scenes supported by a color_setting capability
type ColorScene struct {
	Scenes []SceneID `json:"scenes" yaml:"scenes"`
}

// SceneID identifies a color scene
type SceneID struct {
	ID string `json:"id" yaml:"id"`
}

// ModeValue is one selectable value of a mode capability
type ModeValue struct {
	Value string `json:"value" yaml:"value"`
}

// Range bounds a range capability
type Range struct {
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	Precision float64 `json:"precision,omitempty" yaml:"precision,omitempty"`
}

// EventValue is one reportable event of an event property
type EventValue struct {
	Value string `json:"value" yaml:"value"`
}

// Capability is a controllable facet of a device
type Capability struct {
	Type        CapabilityType
	Retrievable bool
	Reportable  bool
	Parameters  Parameters

	OnQuery  QueryFunc
	OnAction ActionFunc
}

// Property is a read-only telemetry facet of a device
type Property struct {
	Type        PropertyType
	Retrievable bool
	Reportable  bool
	Parameters  Parameters

	OnQuery QueryFunc
}

// Info is the manufacturer and model information of a device
type Info struct {
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	HWVersion    string `json:"hw_version,omitempty" yaml:"hw_version,omitempty"`
	SWVersion    string `json:"sw_version,omitempty" yaml:"sw_version,omitempty"`
}

// Device is a user's device as declared by a Source.
//
// A nil Capabilities or Properties slice means the device does not declare it;
// a non-nil empty slice is a declaration without entries and fails validation.
type Device struct {
	ID          string
	Name        string
	Type        string
	Description string
	Room        string
	CustomData  map[string]any
	DeviceInfo  *Info

	Capabilities []*Capability
	Properties   []*Property

	GlobalQuery GlobalQueryFunc
}

// Source supplies the device list of a user
type Source interface {
	// Devices returns all devices of the given user
	Devices(ctx context.Context, userID string) ([]Device, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, userID string) ([]Device, error)

// Devices calls f(ctx, userID)
func (f SourceFunc) Devices(ctx context.Context, userID string) ([]Device, error) {
	return f(ctx, userID)
}
