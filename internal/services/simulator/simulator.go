package simulator

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/pfal-lab/pfal-controller/internal/model/messages"
	"github.com/pfal-lab/pfal-controller/pkg/broker"
)

// Topics are the inbound sensor topics the simulator publishes on.
type Topics struct {
	PH     string
	EC     string
	BME280 string
}

// Simulator publishes synthetic pH/EC/BME280 payloads at a fixed period so
// the full pipeline can run without hardware. Values drift inside ranges
// that occasionally cross the default profile's thresholds, which makes the
// controller visibly react.
type Simulator struct {
	pub      broker.IPublisher
	topics   Topics
	sensorID string
	interval time.Duration

	ph       *Generator
	ec       *Generator
	temp     *Generator
	humidity *Generator
	pressure *Generator
}

func New(pub broker.IPublisher, topics Topics, sensorID string, interval time.Duration, seed int64) *Simulator {
	return &Simulator{
		pub:      pub,
		topics:   topics,
		sensorID: sensorID,
		interval: interval,
		ph:       NewGenerator(6.0, 5.2, 7.0, 0.08, seed),
		ec:       NewGenerator(1.5, 1.0, 2.2, 0.05, seed+1),
		temp:     NewGenerator(24.0, 16.0, 32.0, 0.4, seed+2),
		humidity: NewGenerator(60.0, 40.0, 85.0, 1.5, seed+3),
		pressure: NewGenerator(1013.0, 990.0, 1030.0, 0.5, seed+4),
	}
}

// Start publishes one round per tick until ctx is cancelled.
func (s *Simulator) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.pub.Close()
			return
		case <-ticker.C:
			s.publishRound()
		}
	}
}

func (s *Simulator) publishRound() {
	s.publishScalar(s.topics.PH, s.ph.Next())
	s.publishScalar(s.topics.EC, s.ec.Next())

	env := messages.EnvPayload{
		Temperature: s.temp.Next(),
		Humidity:    s.humidity.Next(),
		Pressure:    s.pressure.Next(),
		SensorID:    s.sensorID,
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("simulator: marshal bme280: %v", err)
		return
	}
	if err := s.pub.Publish(s.topics.BME280, 0, b); err != nil {
		log.Printf("simulator: publish %s: %v", s.topics.BME280, err)
	}
}

func (s *Simulator) publishScalar(topic string, value float64) {
	b, err := json.Marshal(messages.ScalarPayload{Value: value, SensorID: s.sensorID})
	if err != nil {
		log.Printf("simulator: marshal %s: %v", topic, err)
		return
	}
	if err := s.pub.Publish(topic, 0, b); err != nil {
		log.Printf("simulator: publish %s: %v", topic, err)
	}
}
