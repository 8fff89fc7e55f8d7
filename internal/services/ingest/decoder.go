package ingest

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/agri-ai/portal/internal/model/messages"
)

// CommonEvent is the normalized form of the portal event topics.
type CommonEvent struct {
	EventType     string // advisory.decision | alert.dispatched | alert.result
	SourceService string // advisory | alert-service
	FieldID       string
	SensorID      string
	Severity      string // info|warning|critical
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler turns MQTT messages into readings and events and hands them
// to the sinks (Influx).
type MQTTHandler struct {
	readingSink func(msg.SensorReading)
	eventSink   func(CommonEvent)
}

func NewMQTTHandler(readingSink func(msg.SensorReading), eventSink func(CommonEvent)) *MQTTHandler {
	return &MQTTHandler{readingSink: readingSink, eventSink: eventSink}
}

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	switch {
	case strings.HasPrefix(topic, "sensor/reading/"), strings.HasPrefix(topic, "sensor/aggregated/"):
		r, err := decodeReading(topic, payload)
		if err != nil {
			return err
		}
		if h.readingSink != nil {
			h.readingSink(r)
		}
		return nil
	case strings.HasPrefix(topic, "event/advisory/"):
		evt, err := decodeAdvisory(topic, payload)
		if err != nil {
			return err
		}
		if h.eventSink != nil {
			h.eventSink(evt)
		}
		return nil
	case strings.HasPrefix(topic, "event/alert/"):
		evt, err := decodeAlertNotice(topic, payload)
		if err != nil {
			return err
		}
		if h.eventSink != nil {
			h.eventSink(evt)
		}
		return nil
	case strings.HasPrefix(topic, "event/alertResult/"):
		evt, err := decodeAlertResult(topic, payload)
		if err != nil {
			return err
		}
		if h.eventSink != nil {
			h.eventSink(evt)
		}
		return nil
	default:
		return nil // ignore other topics
	}
}

func decodeReading(topic string, payload []byte) (msg.SensorReading, error) {
	var r msg.SensorReading
	if err := json.Unmarshal(payload, &r); err != nil {
		return msg.SensorReading{}, err
	}
	prefix := "sensor/reading/"
	if strings.HasPrefix(topic, "sensor/aggregated/") {
		prefix = "sensor/aggregated/"
		r.Aggregated = true
	}
	r.FieldID, r.SensorID = pickIDs(topic, r.FieldID, r.SensorID, prefix)
	if r.FieldID == "" || r.SensorID == "" {
		return msg.SensorReading{}, errors.New("reading: missing field/sensor")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	return r, nil
}

func decodeAdvisory(topic string, payload []byte) (CommonEvent, error) {
	var a msg.AdvisoryEvent
	if err := json.Unmarshal(payload, &a); err != nil {
		return CommonEvent{}, err
	}
	fieldID, sensorID := pickIDs(topic, a.FieldID, a.SensorID, "event/advisory/")
	if fieldID == "" || sensorID == "" {
		return CommonEvent{}, errors.New("advisory: missing field/sensor")
	}
	sev := a.Severity
	if sev == "" {
		sev = "info"
	}
	return CommonEvent{
		EventType:     "advisory.decision",
		SourceService: "advisory",
		FieldID:       fieldID,
		SensorID:      sensorID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"kind":            a.Kind,
			"stress_score":    a.StressScore,
			"et0_mm":          a.ET0MM,
			"rain_mm":         a.RainMM,
			"remaining_today": a.RemainingToday,
		},
		Timestamp: a.Timestamp,
	}, nil
}

// alertNotice mirrors the payload the alert service publishes on
// event/alert/{field}/{sensor} when a ticket is dispatched.
type alertNotice struct {
	FieldID     string    `json:"field_id"`
	SensorID    string    `json:"sensor_id"`
	TicketID    string    `json:"ticket_id"`
	Kind        string    `json:"kind"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	MetricValue float64   `json:"metric_value"`
	Timestamp   time.Time `json:"timestamp"`
}

func decodeAlertNotice(topic string, payload []byte) (CommonEvent, error) {
	var n alertNotice
	if err := json.Unmarshal(payload, &n); err != nil {
		return CommonEvent{}, err
	}
	fieldID, sensorID := pickIDs(topic, n.FieldID, n.SensorID, "event/alert/")
	if fieldID == "" || sensorID == "" {
		return CommonEvent{}, errors.New("alert: missing field/sensor")
	}
	sev := n.Severity
	if sev == "" {
		sev = "info"
	}
	return CommonEvent{
		EventType:     "alert.dispatched",
		SourceService: "alert-service",
		FieldID:       fieldID,
		SensorID:      sensorID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"ticket_id":    n.TicketID,
			"kind":         n.Kind,
			"message":      n.Message,
			"metric_value": n.MetricValue,
		},
		Timestamp: n.Timestamp,
	}, nil
}

func decodeAlertResult(topic string, payload []byte) (CommonEvent, error) {
	var r msg.AlertResultEvent
	if err := json.Unmarshal(payload, &r); err != nil {
		return CommonEvent{}, err
	}
	fieldID, sensorID := pickIDs(topic, r.FieldID, r.SensorID, "event/alertResult/")
	if fieldID == "" || sensorID == "" {
		return CommonEvent{}, errors.New("alertResult: missing field/sensor")
	}
	sev := "info"
	if strings.EqualFold(r.Status, "FAILED") {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "alert.result",
		SourceService: "alert-service",
		FieldID:       fieldID,
		SensorID:      sensorID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"ticket_id": r.TicketID,
			"status":    r.Status,
			"reason":    r.Reason,
		},
		Timestamp: r.Timestamp,
	}, nil
}

// pickIDs uses the payload ids, or the topic "prefix/{field}/{sensor}".
func pickIDs(topic, fieldID, sensorID, prefix string) (string, string) {
	if strings.TrimSpace(fieldID) != "" && strings.TrimSpace(sensorID) != "" {
		return fieldID, sensorID
	}
	suffix := strings.TrimPrefix(topic, prefix)
	parts := strings.Split(suffix, "/")
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return fieldID, sensorID
}
