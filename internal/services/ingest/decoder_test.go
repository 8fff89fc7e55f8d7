package ingest

import (
	"encoding/json"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	msg "github.com/agri-ai/portal/internal/model/messages"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

var _ mqtt.Message = fakeMessage{}

func TestHandleReading(t *testing.T) {
	var got msg.SensorReading
	h := NewMQTTHandler(func(r msg.SensorReading) { got = r }, nil)

	ts := time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC)
	payload, _ := json.Marshal(msg.SensorReading{
		TemperatureC: 31.5,
		HumidityPct:  78,
		MoisturePct:  22,
		Timestamp:    ts,
	})

	t.Run("ids recovered from topic", func(t *testing.T) {
		err := h.Handle("", fakeMessage{topic: "sensor/reading/field1/s1", payload: payload})
		require.NoError(t, err)
		assert.Equal(t, "field1", got.FieldID)
		assert.Equal(t, "s1", got.SensorID)
		assert.False(t, got.Aggregated)
		assert.Equal(t, ts, got.Timestamp)
	})

	t.Run("aggregated topic forces the flag", func(t *testing.T) {
		err := h.Handle("", fakeMessage{topic: "sensor/aggregated/field1/s1", payload: payload})
		require.NoError(t, err)
		assert.True(t, got.Aggregated)
	})

	t.Run("bad payload is an error", func(t *testing.T) {
		err := h.Handle("", fakeMessage{topic: "sensor/reading/field1/s1", payload: []byte("{")})
		assert.Error(t, err)
	})

	t.Run("unrelated topics are ignored", func(t *testing.T) {
		err := h.Handle("", fakeMessage{topic: "something/else", payload: payload})
		assert.NoError(t, err)
	})
}

func TestHandleEvents(t *testing.T) {
	var got CommonEvent
	h := NewMQTTHandler(nil, func(e CommonEvent) { got = e })

	t.Run("advisory decision", func(t *testing.T) {
		payload, _ := json.Marshal(msg.AdvisoryEvent{
			FieldID:     "field1",
			SensorID:    "s1",
			Kind:        "water_stress",
			Severity:    "warning",
			StressScore: 6.5,
			Timestamp:   time.Now().UTC(),
		})
		err := h.Handle("", fakeMessage{topic: "event/advisory/field1/s1", payload: payload})
		require.NoError(t, err)
		assert.Equal(t, "advisory.decision", got.EventType)
		assert.Equal(t, "warning", got.Severity)
		assert.Equal(t, "water_stress", got.Fields["kind"])
	})

	t.Run("dispatched alert notice", func(t *testing.T) {
		payload, _ := json.Marshal(alertNotice{
			TicketID:    "t-7",
			Kind:        "heat_stress",
			Severity:    "critical",
			Message:     "canopy temperature 41.0C is 3.0C above the crop ceiling",
			MetricValue: 41.0,
			Timestamp:   time.Now().UTC(),
		})
		err := h.Handle("", fakeMessage{topic: "event/alert/field1/s1", payload: payload})
		require.NoError(t, err)
		assert.Equal(t, "alert.dispatched", got.EventType)
		assert.Equal(t, "alert-service", got.SourceService)
		assert.Equal(t, "field1", got.FieldID)
		assert.Equal(t, "s1", got.SensorID)
		assert.Equal(t, "critical", got.Severity)
		assert.Equal(t, "t-7", got.Fields["ticket_id"])
		assert.Equal(t, 41.0, got.Fields["metric_value"])
	})

	t.Run("failed alert result is warning severity", func(t *testing.T) {
		payload, _ := json.Marshal(msg.AlertResultEvent{
			FieldID:   "field1",
			SensorID:  "s1",
			TicketID:  "t-1",
			Status:    "FAILED",
			Reason:    "offline",
			Timestamp: time.Now().UTC(),
		})
		err := h.Handle("", fakeMessage{topic: "event/alertResult/field1/s1", payload: payload})
		require.NoError(t, err)
		assert.Equal(t, "alert.result", got.EventType)
		assert.Equal(t, "warning", got.Severity)
	})

	t.Run("missing ids in payload and topic is an error", func(t *testing.T) {
		payload, _ := json.Marshal(msg.AdvisoryEvent{Kind: "water_stress"})
		err := h.Handle("", fakeMessage{topic: "event/advisory/only-one", payload: payload})
		assert.Error(t, err)
	})
}
