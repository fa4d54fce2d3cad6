package device

// CapabilityRef names a requested capability by type and instance
type CapabilityRef struct {
	Type     CapabilityType
	Instance string
}

// Resolve finds the capability of d matching ref.
// Capabilities are scanned in declaration order and the first match wins;
// nil is returned when none matches.
func Resolve(d *Device, ref CapabilityRef) *Capability {
	for _, c := range d.Capabilities {
		if c == nil || c.Type != ref.Type {
			continue
		}
		if matches(c, ref.Instance) {
			return c
		}
	}
	return nil
}

func matches(c *Capability, instance string) bool {
	switch c.Type {
	case CapabilityOnOff:
		return true
	case CapabilityColorSetting:
		p := c.Parameters
		return (p.ColorModel != "" && p.ColorModel == instance) ||
			(instance == "temperature_k" && p.TemperatureK != nil) ||
			(instance == "color_scene" && p.ColorScene != nil)
	case CapabilityMode, CapabilityRange, CapabilityToggle:
		return c.Parameters.Instance == instance
	default:
		return false
	}
}
