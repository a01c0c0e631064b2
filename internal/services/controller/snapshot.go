package controller

import (
	"sort"

	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

// Snapshot holds the most recent reading per sensor kind. Last write wins:
// the transport gives no ordering guarantee, so a stale out-of-order reading
// overwrites a newer one rather than being reconciled by timestamp. A kind
// that was never observed is simply absent; rules that need it do not fire.
//
// Snapshot is not internally locked. The driver owns all access and
// serializes it behind its own mutex.
type Snapshot struct {
	readings map[messages.SensorKind]messages.SensorReading
}

func NewSnapshot() *Snapshot {
	return &Snapshot{readings: make(map[messages.SensorKind]messages.SensorReading)}
}

// Update replaces the slot for the reading's kind unconditionally.
func (s *Snapshot) Update(r messages.SensorReading) {
	s.readings[r.Kind] = r
}

// Get returns the latest reading for kind, if any was ever observed.
func (s *Snapshot) Get(kind messages.SensorKind) (messages.SensorReading, bool) {
	r, ok := s.readings[kind]
	return r, ok
}

// Value returns the latest value for kind, if any was ever observed.
func (s *Snapshot) Value(kind messages.SensorKind) (float64, bool) {
	r, ok := s.readings[kind]
	return r.Value, ok
}

// Latest returns a copy of every slot, ordered by kind for stable output.
func (s *Snapshot) Latest() []messages.SensorReading {
	out := make([]messages.SensorReading, 0, len(s.readings))
	for _, r := range s.readings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
