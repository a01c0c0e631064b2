package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sony/gobreaker"

	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

// Config holds the InfluxDB connection parameters.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Recorder writes every reading to InfluxDB. Writes run through a circuit
// breaker: once the store fails several writes in a row the breaker opens
// and readings are dropped with a log line instead of stalling each one on
// a write timeout. The last write error is tracked for the health surface.
type Recorder struct {
	write api.WriteAPIBlocking
	cb    *gobreaker.CircuitBreaker

	mu      sync.RWMutex
	lastErr time.Time
}

func NewRecorder(client influxdb2.Client, cfg Config) (*Recorder, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("influx config incomplete")
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "influx-write",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Recorder{
		write: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		cb:    cb,
		// start "far in the past" so a fresh process reports healthy
		lastErr: time.Now().Add(-24 * time.Hour),
	}, nil
}

// RecordScalar persists one single-value reading under its kind's
// measurement.
func (r *Recorder) RecordScalar(ctx context.Context, kind messages.SensorKind, value float64, sensorID string, at time.Time) error {
	return r.writePoint(ctx, ScalarPoint(kind, value, sensorID, at))
}

// RecordEnvironment persists one combined BME280 sample as a single point.
func (r *Recorder) RecordEnvironment(ctx context.Context, env messages.EnvPayload, at time.Time) error {
	return r.writePoint(ctx, EnvironmentPoint(env, at))
}

func (r *Recorder) writePoint(ctx context.Context, p *write.Point) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.write.WritePoint(ctx, p)
	})
	if err != nil {
		r.mu.Lock()
		r.lastErr = time.Now()
		r.mu.Unlock()
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// LastErrorAge returns how long the recorder has gone without a write error.
func (r *Recorder) LastErrorAge() time.Duration {
	r.mu.RLock()
	t := r.lastErr
	r.mu.RUnlock()
	return time.Since(t)
}
