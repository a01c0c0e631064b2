package controller

import (
	"testing"
	"time"

	"github.com/pfal-lab/pfal-controller/internal/model/entities"
)

func TestActuatorStatesStartUnknown(t *testing.T) {
	states := NewActuatorStates()
	for _, k := range entities.AllActuators {
		if st := states.Get(k); st.LastCommand != entities.CommandUnknown {
			t.Errorf("%s: expected UNKNOWN at startup, got %s", k, st.LastCommand)
		}
	}
}

func TestActuatorStatesApply(t *testing.T) {
	states := NewActuatorStates()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	states.Apply(entities.Fans, entities.CommandOn, at)
	st := states.Get(entities.Fans)
	if st.LastCommand != entities.CommandOn || !st.LastChangedAt.Equal(at) {
		t.Fatalf("unexpected state after apply: %+v", st)
	}

	later := at.Add(time.Hour)
	states.Apply(entities.Fans, entities.CommandOff, later)
	st = states.Get(entities.Fans)
	if st.LastCommand != entities.CommandOff || !st.LastChangedAt.Equal(later) {
		t.Fatalf("unexpected state after second apply: %+v", st)
	}

	// Other slots untouched.
	if states.Get(entities.Lights).LastCommand != entities.CommandUnknown {
		t.Error("unrelated slot was modified")
	}
}

func TestActuatorStatesUnknownKind(t *testing.T) {
	states := NewActuatorStates()
	if st := states.Get(entities.ActuatorKind("co2_valve")); st.LastCommand != entities.CommandUnknown {
		t.Errorf("untracked kind must read as UNKNOWN, got %s", st.LastCommand)
	}
}
