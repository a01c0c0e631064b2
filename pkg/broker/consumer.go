package broker

import (
	"context"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IConsumer subscribes to one or more topics and feeds messages carrying a
// T-shaped payload to a handler.
type IConsumer[T any] interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler func(topic string, message mqtt.Message) error)
}

// qosFor picks the subscription QoS per topic class. Actuator command
// channels ride QoS 1 (a lost dose command is worse than a duplicate, which
// the firmware debounces); sensor readings stay at-most-once.
func qosFor(topic string) byte {
	if strings.Contains(topic, "/actuators/") {
		return 1
	}
	return 0
}

// Consumer subscribes to a single topic.
type Consumer struct {
	client  mqtt.Client
	topic   string
	handler func(topic string, message mqtt.Message) error
}

func NewConsumer(client mqtt.Client, topic string, handler func(topic string, message mqtt.Message) error) *Consumer {
	return &Consumer{client: client, topic: topic, handler: handler}
}

func (c *Consumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	c.handler = handler
}

// ConsumeMessage subscribes and dispatches until ctx is cancelled.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	token := c.client.Subscribe(c.topic, qosFor(c.topic), func(_ mqtt.Client, message mqtt.Message) {
		if c.handler == nil {
			log.Printf("broker: no handler set for topic %s", c.topic)
			return
		}
		if err := c.handler(c.topic, message); err != nil {
			log.Printf("broker: handler error on %s: %v", c.topic, err)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("broker: subscribe %s failed: %v", c.topic, token.Error())
		return
	}
	log.Printf("broker: subscribed to %s", c.topic)

	<-ctx.Done()
	c.client.Unsubscribe(c.topic).Wait()
}

// MultiConsumer subscribes to a set of topics and dispatches them all to one
// handler. The handler receives the subscription topic, not the wildcard
// expansion, so it can switch on the topics it was configured with.
type MultiConsumer struct {
	client  mqtt.Client
	topics  []string
	handler func(topic string, message mqtt.Message) error
}

func NewMultiConsumer(client mqtt.Client, topics []string, handler func(topic string, message mqtt.Message) error) *MultiConsumer {
	return &MultiConsumer{client: client, topics: topics, handler: handler}
}

func (m *MultiConsumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	m.handler = handler
}

func (m *MultiConsumer) ConsumeMessage(ctx context.Context) {
	for _, topic := range m.topics {
		topic := topic
		token := m.client.Subscribe(topic, qosFor(topic), func(_ mqtt.Client, msg mqtt.Message) {
			if m.handler == nil {
				log.Printf("broker: no handler set for topic %s", topic)
				return
			}
			if err := m.handler(topic, msg); err != nil {
				log.Printf("broker: handler error on %s: %v", topic, err)
			}
		})
		token.Wait()
		if token.Error() != nil {
			log.Printf("broker: subscribe %s failed: %v", topic, token.Error())
		} else {
			log.Printf("broker: subscribed to %s", topic)
		}
	}

	<-ctx.Done()

	for _, topic := range m.topics {
		m.client.Unsubscribe(topic)
	}
}
