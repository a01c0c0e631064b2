package entities

// ActuatorKind identifies one logical actuator channel. The string value is
// also the channel suffix on the command topic tree.
type ActuatorKind string

const (
	PHPump       ActuatorKind = "ph_pump"
	NutrientPump ActuatorKind = "nutrient_pump"
	MainPump     ActuatorKind = "main_pump"
	Lights       ActuatorKind = "lights"
	Fans         ActuatorKind = "fans"
)

// AllActuators lists every channel the controller tracks state for.
var AllActuators = []ActuatorKind{PHPump, NutrientPump, MainPump, Lights, Fans}

// CommandState is the last command issued to an actuator. CommandUnknown
// means nothing has been issued since startup; there is no feedback channel,
// so the controller never assumes the physical state.
type CommandState string

const (
	CommandOn      CommandState = "ON"
	CommandOff     CommandState = "OFF"
	CommandUnknown CommandState = "UNKNOWN"
)

// IsPulsed reports whether the actuator is a dosing pump driven by timed
// pulses. Pulsed actuators carry duration_ms on the wire and never receive
// an explicit OFF; the firmware side owns the auto-off.
func (k ActuatorKind) IsPulsed() bool {
	switch k {
	case PHPump, NutrientPump, MainPump:
		return true
	}
	return false
}
