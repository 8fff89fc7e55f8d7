package mqtt

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// IPublisher is the publishing contract handed to the services.
type IPublisher interface {
	PublishMessage(message string) error
	PublishMessageQos(qos byte, retained bool, message string) error
	Close()
}

// PublisherFactory builds a publisher bound to a computed topic,
// e.g. event/alert/{field}/{sensor} after template expansion.
type PublisherFactory func(topic string) IPublisher

// Publisher publishes to a fixed topic on the shared client.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    *zap.Logger
}

func NewPublisher(client mqtt.Client, topic string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{client: client, topic: topic, log: log}
}

// PublishMessage publishes at QoS 0.
func (p *Publisher) PublishMessage(message string) error {
	return p.PublishMessageQos(0, false, message)
}

func (p *Publisher) PublishMessageQos(qos byte, retained bool, message string) error {
	token := p.client.Publish(p.topic, qos, retained, message)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message: %w", token.Error())
	}
	p.log.Debug("published", zap.String("topic", p.topic), zap.Uint8("qos", qos))
	return nil
}

// Close is a no-op for the shared connection; the owner of the client
// disconnects it. Kept to satisfy IPublisher.
func (p *Publisher) Close() {}
