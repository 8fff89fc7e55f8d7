package aggregator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agri-ai/portal/internal/model/messages"
	pkgmqtt "github.com/agri-ai/portal/pkg/mqtt"
)

type fakeMessage struct{ payload []byte }

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "sensor/reading/field1/s1" }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakePublisher struct {
	topic    string
	messages []string
	qos      []byte
}

func (p *fakePublisher) PublishMessage(message string) error {
	return p.PublishMessageQos(0, false, message)
}
func (p *fakePublisher) PublishMessageQos(qos byte, _ bool, message string) error {
	p.messages = append(p.messages, message)
	p.qos = append(p.qos, qos)
	return nil
}
func (p *fakePublisher) Close() {}

func TestAggregateAndPublish(t *testing.T) {
	published := map[string]*fakePublisher{}
	factory := func(topic string) pkgmqtt.IPublisher {
		p, ok := published[topic]
		if !ok {
			p = &fakePublisher{topic: topic}
			published[topic] = p
		}
		return p
	}

	svc := New(nil, factory, "", time.Minute, nil)

	feed := func(r messages.SensorReading) {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		require.NoError(t, svc.messageHandler("", fakeMessage{payload: b}))
	}

	feed(messages.SensorReading{FieldID: "field1", SensorID: "s1", TemperatureC: 30, HumidityPct: 80, MoisturePct: 20})
	feed(messages.SensorReading{FieldID: "field1", SensorID: "s1", TemperatureC: 34, HumidityPct: 60, MoisturePct: 30})
	// aggregated input must not be buffered again
	feed(messages.SensorReading{FieldID: "field1", SensorID: "s1", MoisturePct: 99, Aggregated: true})

	svc.AggregateAndPublish()

	p, ok := published["sensor/aggregated/field1/s1"]
	require.True(t, ok, "expected publish on the aggregated topic")
	require.Len(t, p.messages, 1)
	assert.Equal(t, byte(1), p.qos[0])

	var out messages.SensorReading
	require.NoError(t, json.Unmarshal([]byte(p.messages[0]), &out))
	assert.True(t, out.Aggregated)
	assert.InDelta(t, 32.0, out.TemperatureC, 1e-9)
	assert.InDelta(t, 70.0, out.HumidityPct, 1e-9)
	assert.InDelta(t, 25.0, out.MoisturePct, 1e-9)

	// buffer is drained: a second cycle publishes nothing new
	svc.AggregateAndPublish()
	assert.Len(t, p.messages, 1)
}

func TestMessageHandlerRejectsGarbage(t *testing.T) {
	svc := New(nil, func(string) pkgmqtt.IPublisher { return &fakePublisher{} }, "", time.Minute, nil)
	assert.Error(t, svc.messageHandler("", fakeMessage{payload: []byte("not-json")}))
}
