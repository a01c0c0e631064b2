package controller

import (
	"log"
	"time"

	"github.com/pfal-lab/pfal-controller/internal/model/entities"
	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

// Engine evaluates the control rules against a snapshot, the crop profile
// and the tracked actuator states. Evaluation is pure computation over
// already-fetched state: no I/O beyond logging, no clock access (the caller
// supplies now), no mutation of its inputs.
type Engine struct {
	profile entities.CropProfile
}

func NewEngine(profile entities.CropProfile) *Engine {
	return &Engine{profile: profile}
}

// Evaluate runs every rule in fixed order (pH, EC, climate, lighting) and
// returns the commands to issue this tick. The order matters only for
// command/log ordering; no rule reads another rule's output.
func (e *Engine) Evaluate(now time.Time, snap *Snapshot, states *ActuatorStates) []messages.ActuatorCommand {
	var cmds []messages.ActuatorCommand
	if c, ok := e.evaluatePH(now, snap, states); ok {
		cmds = append(cmds, c)
	}
	if c, ok := e.evaluateEC(now, snap, states); ok {
		cmds = append(cmds, c)
	}
	if c, ok := e.evaluateClimate(snap, states); ok {
		cmds = append(cmds, c)
	}
	if c, ok := e.evaluateLighting(now, states); ok {
		cmds = append(cmds, c)
	}
	return cmds
}

// evaluatePH fires a timed pH-up dose when pH drops below target-tolerance.
// Only low pH is corrected automatically; high pH is logged and left to the
// operator. Pumps never receive an OFF: the dose is a pulse and the firmware
// side owns the auto-off.
func (e *Engine) evaluatePH(now time.Time, snap *Snapshot, states *ActuatorStates) (messages.ActuatorCommand, bool) {
	v, ok := snap.Value(messages.KindPH)
	if !ok {
		return messages.ActuatorCommand{}, false
	}
	if v >= e.profile.PHTarget-e.profile.PHTolerance {
		if v > e.profile.PHTarget+e.profile.PHTolerance {
			log.Printf("rules: pH %.2f above target range (no automated high-pH correction)", v)
		}
		return messages.ActuatorCommand{}, false
	}
	if !doseAllowed(states.Get(entities.PHPump), now, e.profile.PHPumpDurationMs) {
		return messages.ActuatorCommand{}, false
	}
	return messages.ActuatorCommand{
		Kind:       entities.PHPump,
		Command:    entities.CommandOn,
		DurationMs: e.profile.PHPumpDurationMs,
		Reason:     "ph_low",
	}, true
}

// evaluateEC fires a timed nutrient dose when EC drops below
// target-tolerance. Symmetric to the pH rule.
func (e *Engine) evaluateEC(now time.Time, snap *Snapshot, states *ActuatorStates) (messages.ActuatorCommand, bool) {
	v, ok := snap.Value(messages.KindEC)
	if !ok {
		return messages.ActuatorCommand{}, false
	}
	if v >= e.profile.ECTarget-e.profile.ECTolerance {
		return messages.ActuatorCommand{}, false
	}
	if !doseAllowed(states.Get(entities.NutrientPump), now, e.profile.NutrientPumpDurationMs) {
		return messages.ActuatorCommand{}, false
	}
	return messages.ActuatorCommand{
		Kind:       entities.NutrientPump,
		Command:    entities.CommandOn,
		DurationMs: e.profile.NutrientPumpDurationMs,
		Reason:     "ec_low",
	}, true
}

// doseAllowed gates pulsed pumps: a pump last commanded ON within its dose
// duration is presumed still dosing and must not be re-fired.
func doseAllowed(st ActuatorState, now time.Time, durationMs uint32) bool {
	if st.LastCommand != entities.CommandOn {
		return true
	}
	return now.Sub(st.LastChangedAt) >= time.Duration(durationMs)*time.Millisecond
}

// evaluateClimate drives the fans from temperature and humidity.
// Activation is a disjunction: either variable above its maximum is enough
// to ventilate. Deactivation is a conjunction: both variables must be back
// in range, with the hysteresis margin pulled below the activation ceiling.
// Commands are suppressed while the fans are already in the wanted state.
func (e *Engine) evaluateClimate(snap *Snapshot, states *ActuatorStates) (messages.ActuatorCommand, bool) {
	st := states.Get(entities.Fans)
	temp, hasTemp := snap.Value(messages.KindTemperature)
	hum, hasHum := snap.Value(messages.KindHumidity)

	if hasTemp && temp > e.profile.TempMax {
		if st.LastCommand == entities.CommandOn {
			return messages.ActuatorCommand{}, false
		}
		return messages.ActuatorCommand{Kind: entities.Fans, Command: entities.CommandOn, Reason: "temp_high"}, true
	}
	if hasHum && hum > e.profile.HumidityMax {
		if st.LastCommand == entities.CommandOn {
			return messages.ActuatorCommand{}, false
		}
		return messages.ActuatorCommand{Kind: entities.Fans, Command: entities.CommandOn, Reason: "humidity_high"}, true
	}

	if st.LastCommand != entities.CommandOn {
		return messages.ActuatorCommand{}, false
	}
	if !hasTemp || !hasHum {
		return messages.ActuatorCommand{}, false
	}
	tempOK := temp >= e.profile.TempMin && temp <= e.profile.TempMax-e.profile.FanTempHysteresis
	humOK := hum >= e.profile.HumidityMin && hum <= e.profile.HumidityMax-e.profile.FanHumidityHysteresis
	if tempOK && humOK {
		return messages.ActuatorCommand{Kind: entities.Fans, Command: entities.CommandOff, Reason: "normalized"}, true
	}
	return messages.ActuatorCommand{}, false
}

// evaluateLighting compares the scheduled state for the wall-clock hour with
// the last commanded state and emits only on transition. It needs no sensor
// data, so the periodic tick keeps it honest even when the enclosure is
// silent.
func (e *Engine) evaluateLighting(now time.Time, states *ActuatorStates) (messages.ActuatorCommand, bool) {
	desired := entities.CommandOff
	reason := "schedule_off"
	if lightsScheduledOn(now.Hour(), e.profile.LightsOnHour, e.profile.LightsOffHour) {
		desired = entities.CommandOn
		reason = "schedule_on"
	}
	if states.Get(entities.Lights).LastCommand == desired {
		return messages.ActuatorCommand{}, false
	}
	return messages.ActuatorCommand{Kind: entities.Lights, Command: desired, Reason: reason}, true
}

// lightsScheduledOn reports whether hour falls inside the lighting window.
// Windows wrap midnight: on=22 off=6 means lit during [22,24) and [0,6).
func lightsScheduledOn(hour, on, off int) bool {
	if on < off {
		return hour >= on && hour < off
	}
	return hour >= on || hour < off
}
