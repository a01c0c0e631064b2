package messages

import "github.com/pfal-lab/pfal-controller/internal/model/entities"

// ActuatorCommand is produced by the rule engine and handed to the
// transport. DurationMs is meaningful only for pulsed actuators (pumps);
// level actuators (lights, fans) ignore it.
type ActuatorCommand struct {
	Kind       entities.ActuatorKind
	Command    entities.CommandState
	DurationMs uint32
	Reason     string
}

// CommandPayload is the outbound wire shape published on an actuator
// channel. DurationMs is omitted for level actuators.
type CommandPayload struct {
	Command    string  `json:"command"`
	DurationMs *uint32 `json:"duration_ms,omitempty"`
}

// Payload builds the wire payload for the command. The duration is attached
// at construction, not at send time, and only for pulsed actuators.
func (c ActuatorCommand) Payload() CommandPayload {
	p := CommandPayload{Command: string(c.Command)}
	if c.Kind.IsPulsed() && c.DurationMs > 0 {
		d := c.DurationMs
		p.DurationMs = &d
	}
	return p
}
