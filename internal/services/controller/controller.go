package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pfal-lab/pfal-controller/internal/model/entities"
	"github.com/pfal-lab/pfal-controller/internal/model/messages"
	"github.com/pfal-lab/pfal-controller/pkg/broker"
	"github.com/pfal-lab/pfal-controller/pkg/dedup"
)

const (
	defaultTickInterval = 60 * time.Second
	defaultSensorID     = "default"
	recordTimeout       = 5 * time.Second
)

// CommandPublisher hands actuator commands to the transport. The transport
// owns delivery; the controller only decides whether to call.
type CommandPublisher interface {
	PublishCommand(kind entities.ActuatorKind, payload messages.CommandPayload) error
}

// Recorder forwards readings to the time-series store. Best-effort: a write
// failure never affects rule evaluation.
type Recorder interface {
	RecordScalar(ctx context.Context, kind messages.SensorKind, value float64, sensorID string, at time.Time) error
	RecordEnvironment(ctx context.Context, env messages.EnvPayload, at time.Time) error
}

// SensorTopics maps the inbound subscription topics to sensor kinds.
type SensorTopics struct {
	PH          string
	EC          string
	Temperature string
	BME280      string
}

func DefaultSensorTopics() SensorTopics {
	return SensorTopics{
		PH:          "pfal/sensors/ph",
		EC:          "pfal/sensors/ec",
		Temperature: "pfal/sensors/temperature",
		BME280:      "pfal/sensors/bme280",
	}
}

func (t SensorTopics) All() []string {
	return []string{t.PH, t.EC, t.Temperature, t.BME280}
}

// Controller is the driver: it owns the snapshot and the actuator states,
// and is the single place they are read or written. The reactive path (one
// tick per accepted reading) and the periodic ticker are serialized behind
// one mutex; the rule engine runs inside that section, which is safe because
// it performs no I/O. Command publishing is hand-off only, so holding the
// lock across it never blocks on the network.
type Controller struct {
	consumer  broker.IConsumer[messages.ScalarPayload]
	publisher CommandPublisher
	recorder  Recorder
	engine    *Engine
	topics    SensorTopics
	deduper   *dedup.Deduper

	mu       sync.Mutex
	snapshot *Snapshot
	states   *ActuatorStates

	tickInterval time.Duration
	now          func() time.Time
}

func NewController(
	consumer broker.IConsumer[messages.ScalarPayload],
	publisher CommandPublisher,
	recorder Recorder,
	profile entities.CropProfile,
	topics SensorTopics,
	tickInterval time.Duration,
) (*Controller, error) {
	if publisher == nil {
		return nil, fmt.Errorf("command publisher is nil")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder is nil")
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}
	c := &Controller{
		consumer:     consumer,
		publisher:    publisher,
		recorder:     recorder,
		engine:       NewEngine(profile),
		topics:       topics,
		deduper:      dedup.New(5*time.Second, 4096),
		snapshot:     NewSnapshot(),
		states:       NewActuatorStates(),
		tickInterval: tickInterval,
		now:          time.Now,
	}
	if consumer != nil {
		consumer.SetHandler(c.handleMessage)
	}
	return c, nil
}

// Start runs the consumer and the periodic ticker until ctx is cancelled.
// The ticker re-evaluates time-only rules (lighting) and expired debounce
// windows even when no sensor traffic arrives.
func (c *Controller) Start(ctx context.Context) {
	go c.consumer.ConsumeMessage(ctx)

	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick runs one periodic rule evaluation against the current snapshot.
func (c *Controller) Tick() {
	now := c.now()
	c.mu.Lock()
	c.runRules(now, "periodic")
	c.mu.Unlock()
}

// handleMessage is the reactive trigger: decode, validate, persist, update
// the snapshot, evaluate. Per-message failures are logged and swallowed so
// the stream never stalls.
func (c *Controller) handleMessage(topic string, m mqtt.Message) error {
	if c.deduper != nil && !c.deduper.ShouldProcess(dedup.Key(m.Payload())) {
		return nil
	}
	switch topic {
	case c.topics.PH:
		return c.handleScalar(messages.KindPH, m.Payload())
	case c.topics.EC:
		return c.handleScalar(messages.KindEC, m.Payload())
	case c.topics.Temperature:
		return c.handleScalar(messages.KindTemperature, m.Payload())
	case c.topics.BME280:
		return c.handleEnvironment(m.Payload())
	}
	log.Printf("controller: message on unexpected topic %s", topic)
	return nil
}

func (c *Controller) handleScalar(kind messages.SensorKind, payload []byte) error {
	var p messages.ScalarPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("controller: bad %s payload: %v", kind, err)
		readingsRejected.WithLabelValues(string(kind), "decode").Inc()
		return nil
	}
	if err := validateScalar(kind, p.Value); err != nil {
		log.Printf("controller: rejected %s reading: %v", kind, err)
		readingsRejected.WithLabelValues(string(kind), "range").Inc()
		return nil
	}
	now := c.now()
	r := messages.SensorReading{
		Kind:       kind,
		Value:      p.Value,
		SourceID:   orDefaultID(p.SensorID),
		ObservedAt: now,
	}
	c.record(func(ctx context.Context) error {
		return c.recorder.RecordScalar(ctx, kind, r.Value, r.SourceID, now)
	})

	c.mu.Lock()
	c.snapshot.Update(r)
	readingsTotal.WithLabelValues(string(kind)).Inc()
	c.runRules(now, "reactive")
	c.mu.Unlock()
	return nil
}

// handleEnvironment ingests one BME280 sample: a single persisted point and
// three snapshot slots sharing one arrival time.
func (c *Controller) handleEnvironment(payload []byte) error {
	var p messages.EnvPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("controller: bad bme280 payload: %v", err)
		readingsRejected.WithLabelValues("bme280", "decode").Inc()
		return nil
	}
	if err := validateEnvironment(p); err != nil {
		log.Printf("controller: rejected bme280 reading: %v", err)
		readingsRejected.WithLabelValues("bme280", "range").Inc()
		return nil
	}
	now := c.now()
	p.SensorID = orDefaultID(p.SensorID)
	c.record(func(ctx context.Context) error {
		return c.recorder.RecordEnvironment(ctx, p, now)
	})

	c.mu.Lock()
	c.snapshot.Update(messages.SensorReading{Kind: messages.KindTemperature, Value: p.Temperature, SourceID: p.SensorID, ObservedAt: now})
	c.snapshot.Update(messages.SensorReading{Kind: messages.KindHumidity, Value: p.Humidity, SourceID: p.SensorID, ObservedAt: now})
	c.snapshot.Update(messages.SensorReading{Kind: messages.KindPressure, Value: p.Pressure, SourceID: p.SensorID, ObservedAt: now})
	readingsTotal.WithLabelValues("bme280").Inc()
	c.runRules(now, "reactive")
	c.mu.Unlock()
	return nil
}

// runRules evaluates the engine and forwards the resulting commands.
// Caller holds c.mu. Forwarding is per-command best-effort: one failure is
// logged and the rest still go out. State is applied at hand-off either way;
// retrying an unconfirmed dose before its debounce window expires could
// double-dose, so a failed forward still counts as issued.
func (c *Controller) runRules(now time.Time, trigger string) {
	ruleTicks.WithLabelValues(trigger).Inc()
	for _, cmd := range c.engine.Evaluate(now, c.snapshot, c.states) {
		if err := c.publisher.PublishCommand(cmd.Kind, cmd.Payload()); err != nil {
			log.Printf("controller: forward %s %s failed: %v", cmd.Kind, cmd.Command, err)
			forwardFailures.Inc()
		} else {
			log.Printf("controller: %s -> %s (%s)", cmd.Kind, cmd.Command, cmd.Reason)
		}
		commandsTotal.WithLabelValues(string(cmd.Kind), string(cmd.Command)).Inc()
		c.states.Apply(cmd.Kind, cmd.Command, now)
	}
}

// record forwards a reading to the time-series store outside the driver
// lock. Failures are logged; the recorder's breaker keeps a dead store from
// stalling ingestion.
func (c *Controller) record(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Printf("controller: persist reading: %v", err)
	}
}

// LatestReadings returns a copy of the current snapshot for the HTTP API.
func (c *Controller) LatestReadings() []messages.SensorReading {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Latest()
}

// ActuatorView is one actuator's commanded state for the HTTP API.
type ActuatorView struct {
	Actuator      string    `json:"actuator"`
	LastCommand   string    `json:"last_command"`
	LastChangedAt time.Time `json:"last_changed_at,omitempty"`
}

// CommandedStates returns the commanded state of every actuator.
func (c *Controller) CommandedStates() []ActuatorView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ActuatorView, 0, len(entities.AllActuators))
	for _, k := range entities.AllActuators {
		st := c.states.Get(k)
		out = append(out, ActuatorView{
			Actuator:      string(k),
			LastCommand:   string(st.LastCommand),
			LastChangedAt: st.LastChangedAt,
		})
	}
	return out
}

// Value-range validation is a transport concern: anything outside physical
// plausibility never reaches the snapshot.

func validateScalar(kind messages.SensorKind, v float64) error {
	switch kind {
	case messages.KindPH:
		if v < 0 || v > 14 {
			return fmt.Errorf("pH %.2f outside [0,14]", v)
		}
	case messages.KindEC:
		if v < 0 || v > 10 {
			return fmt.Errorf("EC %.2f outside [0,10] mS/cm", v)
		}
	case messages.KindTemperature:
		if v < -20 || v > 60 {
			return fmt.Errorf("temperature %.1f outside [-20,60] C", v)
		}
	}
	return nil
}

func validateEnvironment(p messages.EnvPayload) error {
	if p.Temperature < -20 || p.Temperature > 60 {
		return fmt.Errorf("temperature %.1f outside [-20,60] C", p.Temperature)
	}
	if p.Humidity < 0 || p.Humidity > 100 {
		return fmt.Errorf("humidity %.1f outside [0,100] %%RH", p.Humidity)
	}
	if p.Pressure < 300 || p.Pressure > 1100 {
		return fmt.Errorf("pressure %.1f outside [300,1100] hPa", p.Pressure)
	}
	return nil
}

func orDefaultID(id string) string {
	if id == "" {
		return defaultSensorID
	}
	return id
}
