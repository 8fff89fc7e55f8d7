package messages

import "time"

// AlertResultEvent reports the outcome of a dispatched alert ticket.
// Published on event/alertResult/{field}/{sensor}.
type AlertResultEvent struct {
	FieldID   string    `json:"field_id"`
	SensorID  string    `json:"sensor_id"`
	TicketID  string    `json:"ticket_id"`
	Status    string    `json:"status"` // DELIVERED | FAILED | CANCELLED
	Reason    string    `json:"reason"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}
