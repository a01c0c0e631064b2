package broker

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pfal-lab/pfal-controller/internal/model/entities"
	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

// publishWait bounds how long the completion watcher waits before logging a
// publish as lost.
const publishWait = 5 * time.Second

// IPublisher publishes raw payloads. Close releases the underlying client.
type IPublisher interface {
	Publish(topic string, qos byte, payload []byte) error
	Close()
}

// Publisher hands payloads to the MQTT client without blocking the caller:
// token completion is observed on a goroutine and failures are logged there.
// Retry/backoff beyond that belongs to the broker client, not to callers.
type Publisher struct {
	client mqtt.Client
}

func NewPublisher(client mqtt.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish hands the payload off to the client. Only immediate errors (client
// terminally disconnected) surface to the caller.
func (p *Publisher) Publish(topic string, qos byte, payload []byte) error {
	if !p.client.IsConnectionOpen() && !p.client.IsConnected() {
		return fmt.Errorf("publish %s: client not connected", topic)
	}
	token := p.client.Publish(topic, qos, false, payload)
	go func() {
		if !token.WaitTimeout(publishWait) {
			log.Printf("broker: publish to %s not confirmed within %s", topic, publishWait)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("broker: publish to %s failed: %v", topic, err)
		}
	}()
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	CloseConn(p.client)
}

// CommandPublisher publishes actuator commands on the channel tree rooted at
// prefix (e.g. "pfal/actuators"). Commands go out at QoS 1.
type CommandPublisher struct {
	pub    *Publisher
	prefix string
}

func NewCommandPublisher(client mqtt.Client, prefix string) *CommandPublisher {
	return &CommandPublisher{
		pub:    NewPublisher(client),
		prefix: strings.TrimRight(prefix, "/"),
	}
}

// PublishCommand encodes and sends one command to its actuator channel.
func (c *CommandPublisher) PublishCommand(kind entities.ActuatorKind, payload messages.CommandPayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode command for %s: %w", kind, err)
	}
	return c.pub.Publish(c.prefix+"/"+string(kind), 1, b)
}

// Close disconnects the underlying client.
func (c *CommandPublisher) Close() {
	c.pub.Close()
}
