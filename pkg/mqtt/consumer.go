package mqtt

import (
	"context"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// IConsumer defines the consume loop with message type T for documentation
// purposes; payload decoding stays in the handler.
type IConsumer[T any] interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler func(topic string, message mqtt.Message) error)
}

// Consumer subscribes to a single topic filter on the shared client.
type Consumer struct {
	client  mqtt.Client
	handler func(topic string, message mqtt.Message) error
	topic   string
	log     *zap.Logger
}

func NewConsumer(client mqtt.Client, topic string, handler func(topic string, message mqtt.Message) error, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{client: client, topic: topic, handler: handler, log: log}
}

func (c *Consumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	c.handler = handler
}

// qosFor: aggregated readings and event topics ride QoS 1, raw telemetry
// stays at QoS 0.
func qosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "sensor/aggregated") || strings.HasPrefix(t, "event/") {
		return 1
	}
	return 0
}

// ConsumeMessage subscribes and blocks until ctx is cancelled.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	token := c.client.Subscribe(
		c.topic,
		qosFor(c.topic),
		func(_ mqtt.Client, message mqtt.Message) {
			if c.handler == nil {
				c.log.Warn("no handler set", zap.String("topic", c.topic))
				return
			}
			if err := c.handler(c.topic, message); err != nil {
				c.log.Error("handler error", zap.String("topic", c.topic), zap.Error(err))
			}
		},
	)
	if token.Wait() && token.Error() != nil {
		c.log.Error("subscribe error", zap.String("topic", c.topic), zap.Error(token.Error()))
		return
	}
	c.log.Info("subscribed", zap.String("topic", c.topic))

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}

// MultiConsumer subscribes to several topic filters with one handler.
type MultiConsumer struct {
	client  mqtt.Client
	topics  []string
	handler func(topic string, message mqtt.Message) error
	log     *zap.Logger
}

func NewMultiConsumer(client mqtt.Client, topics []string, handler func(topic string, message mqtt.Message) error, log *zap.Logger) *MultiConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &MultiConsumer{client: client, topics: topics, handler: handler, log: log}
}

func (m *MultiConsumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	m.handler = handler
}

func (m *MultiConsumer) ConsumeMessage(ctx context.Context) {
	for _, topic := range m.topics {
		topic := topic
		token := m.client.Subscribe(
			topic,
			qosFor(topic),
			func(_ mqtt.Client, msg mqtt.Message) {
				if m.handler == nil {
					m.log.Warn("no handler set", zap.String("topic", topic))
					return
				}
				if err := m.handler(topic, msg); err != nil {
					m.log.Error("handler error", zap.String("topic", topic), zap.Error(err))
				}
			},
		)
		token.Wait()
		if token.Error() != nil {
			m.log.Error("subscribe error", zap.String("topic", topic), zap.Error(token.Error()))
		} else {
			m.log.Info("subscribed", zap.String("topic", topic))
		}
	}

	<-ctx.Done()

	for _, topic := range m.topics {
		m.client.Unsubscribe(topic)
	}
}
