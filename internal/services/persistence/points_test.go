package persistence

import (
	"testing"
	"time"

	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

func TestScalarPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := ScalarPoint(messages.KindPH, 6.2, "probe-1", at)

	if p.Name() != "ph" {
		t.Errorf("expected measurement ph, got %s", p.Name())
	}
	if !p.Time().Equal(at) {
		t.Errorf("expected time %v, got %v", at, p.Time())
	}

	tags := p.TagList()
	if len(tags) != 1 || tags[0].Key != "sensor_id" || tags[0].Value != "probe-1" {
		t.Errorf("unexpected tags: %+v", tags)
	}
	fields := p.FieldList()
	if len(fields) != 1 || fields[0].Key != "value" || fields[0].Value != 6.2 {
		t.Errorf("unexpected fields: %+v", fields)
	}
}

func TestEnvironmentPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := messages.EnvPayload{Temperature: 24.5, Humidity: 61.0, Pressure: 1012.3, SensorID: "bme-1"}
	p := EnvironmentPoint(env, at)

	if p.Name() != "bme280" {
		t.Errorf("expected measurement bme280, got %s", p.Name())
	}

	want := map[string]float64{"temperature": 24.5, "humidity": 61.0, "pressure": 1012.3}
	got := make(map[string]float64)
	for _, f := range p.FieldList() {
		v, ok := f.Value.(float64)
		if !ok {
			t.Fatalf("field %s is not float64: %T", f.Key, f.Value)
		}
		got[f.Key] = v
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %s: expected %v, got %v", k, v, got[k])
		}
	}
}
