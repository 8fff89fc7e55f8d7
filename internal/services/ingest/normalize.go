package ingest

import (
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	msg "github.com/agri-ai/portal/internal/model/messages"
)

// ReadingToPoint normalizes a SensorReading into a *write.Point for the
// "field_reading" measurement.
func ReadingToPoint(r msg.SensorReading) *write.Point {
	tags := map[string]string{
		"field_id":   r.FieldID,
		"sensor_id":  r.SensorID,
		"aggregated": strconv.FormatBool(r.Aggregated),
	}
	fields := map[string]interface{}{
		"temperature_c": r.TemperatureC,
		"humidity_pct":  r.HumidityPct,
		"moisture_pct":  r.MoisturePct,
	}
	return influxdb2.NewPoint("field_reading", tags, fields, r.Timestamp)
}

// EventToPoint normalizes a CommonEvent into a *write.Point for the single
// "portal_event" measurement.
func EventToPoint(evt CommonEvent) *write.Point {
	tags := map[string]string{
		"event_type":     evt.EventType,
		"source_service": evt.SourceService,
		"severity":       evt.Severity,
	}
	if evt.FieldID != "" {
		tags["field_id"] = evt.FieldID
	}
	if evt.SensorID != "" {
		tags["sensor_id"] = evt.SensorID
	}

	fields := map[string]interface{}{}
	for k, v := range evt.Fields {
		fields[k] = v
	}
	// keep at least one field so the point is writable
	if _, ok := fields["count"]; !ok {
		fields["count"] = int64(1)
	}

	return influxdb2.NewPoint("portal_event", tags, fields, evt.Timestamp)
}
