package contracts

// DeviceInfo describes a MIDI input source at the moment of enumeration.
// It is a value type rebuilt on every Devices call; the ID is the source's
// position in the platform table rendered as a decimal string and carries no
// stable hardware identity across table changes. Observe the DevicesChanged
// signal and re-enumerate before reusing an ID.
type DeviceInfo struct {
	ID           string // Positional identifier, e.g. "0".
	Name         string // Display name reported by the platform.
	Manufacturer string // Manufacturer, when the platform exposes it.
	EntityName   string // Name of the owning entity, when exposed.
}
