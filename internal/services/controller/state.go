package controller

import (
	"time"

	"github.com/pfal-lab/pfal-controller/internal/model/entities"
)

// ActuatorState is the last command issued to one actuator and when it was
// issued. It models commanded state only: there is no feedback channel from
// the physical actuators, so the tracker never claims to know what the
// hardware is doing.
type ActuatorState struct {
	LastCommand   entities.CommandState
	LastChangedAt time.Time
}

// ActuatorStates tracks commanded state per actuator. All slots start as
// CommandUnknown. Like Snapshot it is serialized by the driver, not
// internally.
type ActuatorStates struct {
	states map[entities.ActuatorKind]ActuatorState
}

func NewActuatorStates() *ActuatorStates {
	m := make(map[entities.ActuatorKind]ActuatorState, len(entities.AllActuators))
	for _, k := range entities.AllActuators {
		m[k] = ActuatorState{LastCommand: entities.CommandUnknown}
	}
	return &ActuatorStates{states: m}
}

func (a *ActuatorStates) Get(kind entities.ActuatorKind) ActuatorState {
	if st, ok := a.states[kind]; ok {
		return st
	}
	return ActuatorState{LastCommand: entities.CommandUnknown}
}

// Apply records a command hand-off. Called by the driver right after the
// command is handed to the transport; a failed forward still counts, since
// re-issuing before the debounce window expires could double-dose.
func (a *ActuatorStates) Apply(kind entities.ActuatorKind, cmd entities.CommandState, at time.Time) {
	a.states[kind] = ActuatorState{LastCommand: cmd, LastChangedAt: at}
}
