// Package alert delivers advisory notifications to a field's channel
// (the MQTT alert topic a display or relay subscribes to) and reports
// the outcome of every ticket.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	pb "github.com/agri-ai/portal/grpc/gen/go/alert"
	"github.com/agri-ai/portal/internal/model"
	"github.com/agri-ai/portal/internal/model/messages"
	"github.com/agri-ai/portal/pkg/mqtt"
)

const (
	StatusDelivered = "DELIVERED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// alertNotice is the payload published on the alert topic.
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

// GrpcHandler implements AlertService: it publishes the notice, then
// confirms delivery against the sensor's heartbeat before reporting.
type GrpcHandler struct {
	pb.UnimplementedAlertServiceServer

	makePublisher mqtt.PublisherFactory
	fields        map[string]model.Field

	alertTopicTmpl  string // "event/alert/{field}/{sensor}"
	resultTopicTmpl string // "event/alertResult/{field}/{sensor}"

	// liveness from the sensor reading stream, key = field|sensor
	livenessTTL  time.Duration
	offlineGrace time.Duration
	lastSeen     sync.Map

	// in-flight tickets that CancelAlert may abort
	ticketMu sync.Mutex
	tickets  map[string]chan struct{}
}

func NewGrpcHandler(factory mqtt.PublisherFactory, alertTopicTmpl string, fields map[string]model.Field) *GrpcHandler {
	return &GrpcHandler{
		makePublisher:   factory,
		fields:          fields,
		alertTopicTmpl:  firstNonEmpty(alertTopicTmpl, "event/alert/{field}/{sensor}"),
		resultTopicTmpl: "event/alertResult/{field}/{sensor}",
		livenessTTL:     60 * time.Second,
		offlineGrace:    5 * time.Second,
		tickets:         make(map[string]chan struct{}),
	}
}

func (h *GrpcHandler) SetResultTopicTemplate(t string) {
	if strings.TrimSpace(t) != "" {
		h.resultTopicTmpl = t
	}
}

func (h *GrpcHandler) SetLiveness(ttl, grace time.Duration) {
	if ttl > 0 {
		h.livenessTTL = ttl
	}
	if grace > 0 {
		h.offlineGrace = grace
	}
}

// DispatchAlert publishes the notice and spawns the confirmation step.
func (h *GrpcHandler) DispatchAlert(_ context.Context, req *pb.DispatchRequest) (*pb.DispatchResponse, error) {
	fid, sid := strings.TrimSpace(req.GetFieldId()), strings.TrimSpace(req.GetSensorId())

	if _, ok := h.lookupSensor(fid, sid); !ok {
		return &pb.DispatchResponse{Success: false, Message: fmt.Sprintf("unknown field/sensor %s/%s", fid, sid)}, nil
	}

	ticket := uuid.New().String()
	started := time.Now()

	notice := alertNotice{
		FieldID:     fid,
		SensorID:    sid,
		TicketID:    ticket,
		Kind:        req.GetKind(),
		Severity:    req.GetSeverity(),
		Message:     req.GetMessage(),
		MetricValue: req.GetMetricValue(),
		Timestamp:   started.UTC(),
	}
	b, _ := json.Marshal(notice)
	topic := formatTopic(h.alertTopicTmpl, fid, sid)
	if err := h.makePublisher(topic).PublishMessageQos(1, false, string(b)); err != nil {
		return &pb.DispatchResponse{Success: false, Message: "publish alert failed"}, err
	}

	cancelCh := make(chan struct{})
	h.ticketMu.Lock()
	h.tickets[ticket] = cancelCh
	h.ticketMu.Unlock()

	go h.confirmDelivery(fid, sid, ticket, started, cancelCh)

	return &pb.DispatchResponse{
		Success:  true,
		Message:  fmt.Sprintf("alert dispatched for %s/%s", fid, sid),
		TicketId: ticket,
	}, nil
}

// CancelAlert aborts an in-flight ticket. Unknown or already-settled
// tickets are reported as failures without an error.
func (h *GrpcHandler) CancelAlert(_ context.Context, req *pb.CancelRequest) (*pb.DispatchResponse, error) {
	ticket := strings.TrimSpace(req.GetTicketId())

	h.ticketMu.Lock()
	ch, ok := h.tickets[ticket]
	if ok {
		delete(h.tickets, ticket)
	}
	h.ticketMu.Unlock()

	if !ok {
		return &pb.DispatchResponse{Success: false, Message: fmt.Sprintf("unknown ticket %s", ticket)}, nil
	}
	close(ch)
	return &pb.DispatchResponse{Success: true, Message: "alert cancelled", TicketId: ticket}, nil
}

// confirmDelivery settles the ticket: CANCELLED if aborted, DELIVERED
// once the sensor heartbeat proves the field endpoint is alive, FAILED
// when the liveness window closes without one.
func (h *GrpcHandler) confirmDelivery(fid, sid, ticket string, started time.Time, cancelCh chan struct{}) {
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	deadline := time.Now().Add(h.livenessTTL + h.offlineGrace)
	for {
		select {
		case <-cancelCh:
			h.publishResult(messages.AlertResultEvent{
				FieldID:   fid,
				SensorID:  sid,
				TicketID:  ticket,
				Status:    StatusCancelled,
				Reason:    "cancelled by caller",
				StartedAt: started,
				Timestamp: time.Now(),
			})
			return
		case <-tick.C:
			if h.isLive(fid, sid) {
				h.settleTicket(ticket)
				h.publishResult(messages.AlertResultEvent{
					FieldID:   fid,
					SensorID:  sid,
					TicketID:  ticket,
					Status:    StatusDelivered,
					Reason:    "endpoint alive",
					StartedAt: started,
					Timestamp: time.Now(),
				})
				return
			}
			if time.Now().After(deadline) {
				h.settleTicket(ticket)
				h.publishResult(messages.AlertResultEvent{
					FieldID:   fid,
					SensorID:  sid,
					TicketID:  ticket,
					Status:    StatusFailed,
					Reason:    "offline",
					StartedAt: started,
					Timestamp: time.Now(),
				})
				return
			}
		}
	}
}

func (h *GrpcHandler) settleTicket(ticket string) {
	h.ticketMu.Lock()
	delete(h.tickets, ticket)
	h.ticketMu.Unlock()
}

// OnSensorData records the implicit heartbeat carried by the reading
// stream (sensor/reading/{field}/{sensor}).
func (h *GrpcHandler) OnSensorData(_ string, m pahomqtt.Message) error {
	parts := strings.Split(m.Topic(), "/")
	if len(parts) >= 4 {
		h.lastSeen.Store(parts[2]+"|"+parts[3], time.Now())
	}
	return nil
}

func (h *GrpcHandler) isLive(fieldID, sensorID string) bool {
	if v, ok := h.lastSeen.Load(fieldID + "|" + sensorID); ok {
		return time.Since(v.(time.Time)) < h.livenessTTL
	}
	return false
}

func (h *GrpcHandler) publishResult(evt messages.AlertResultEvent) {
	topic := strings.NewReplacer("{field}", evt.FieldID, "{sensor}", evt.SensorID).
		Replace(h.resultTopicTmpl)
	payload, _ := json.Marshal(evt)
	_ = h.makePublisher(topic).PublishMessageQos(1, false, string(payload))
}

func (h *GrpcHandler) lookupSensor(fieldID, sensorID string) (model.Sensor, bool) {
	f, ok := h.fields[fieldID]
	if !ok {
		return model.Sensor{}, false
	}
	for _, s := range f.Sensors {
		if s.ID == sensorID {
			return s, true
		}
	}
	return model.Sensor{}, false
}

func formatTopic(tmpl, fieldID, sensorID string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = "event/alert/{field}/{sensor}"
	}
	return strings.NewReplacer("{field}", fieldID, "{sensor}", sensorID).Replace(tmpl)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
