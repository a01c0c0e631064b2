package controller

import (
	"testing"
	"time"

	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

func TestSnapshotUpdateAndGet(t *testing.T) {
	s := NewSnapshot()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, ok := s.Get(messages.KindPH); ok {
		t.Fatal("empty snapshot must report absence")
	}
	if _, ok := s.Value(messages.KindPH); ok {
		t.Fatal("empty snapshot must report absence for Value too")
	}

	s.Update(messages.SensorReading{Kind: messages.KindPH, Value: 6.1, SourceID: "p1", ObservedAt: at})
	got, ok := s.Get(messages.KindPH)
	if !ok || got.Value != 6.1 || got.SourceID != "p1" {
		t.Fatalf("unexpected reading: %+v (ok=%v)", got, ok)
	}
}

func TestSnapshotLastWriteWins(t *testing.T) {
	s := NewSnapshot()
	newer := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	older := newer.Add(-time.Minute)

	s.Update(messages.SensorReading{Kind: messages.KindEC, Value: 1.8, ObservedAt: newer})
	// A later-arriving reading with an older timestamp still overwrites:
	// arrival order is the only order the transport guarantees.
	s.Update(messages.SensorReading{Kind: messages.KindEC, Value: 1.2, ObservedAt: older})

	v, ok := s.Value(messages.KindEC)
	if !ok || v != 1.2 {
		t.Fatalf("expected last write 1.2, got %v (ok=%v)", v, ok)
	}
}

func TestSnapshotLatestIsSortedCopy(t *testing.T) {
	s := NewSnapshot()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Update(messages.SensorReading{Kind: messages.KindTemperature, Value: 24, ObservedAt: at})
	s.Update(messages.SensorReading{Kind: messages.KindEC, Value: 1.5, ObservedAt: at})
	s.Update(messages.SensorReading{Kind: messages.KindPH, Value: 6.0, ObservedAt: at})

	got := s.Latest()
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	want := []messages.SensorKind{messages.KindEC, messages.KindPH, messages.KindTemperature}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("position %d: expected %s, got %s", i, k, got[i].Kind)
		}
	}

	// Mutating the copy must not touch the snapshot.
	got[0].Value = 99
	if v, _ := s.Value(messages.KindEC); v != 1.5 {
		t.Error("Latest must return a copy")
	}
}
