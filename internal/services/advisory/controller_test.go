package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/agri-ai/portal/grpc/gen/go/alert"
	"github.com/agri-ai/portal/internal/model"
	"github.com/agri-ai/portal/pkg/mqtt"
)

// ---------- fakes ----------

type fakeMessage struct{ payload []byte }

func (f *fakeMessage) Duplicate() bool   { return false }
func (f *fakeMessage) Qos() byte         { return 1 }
func (f *fakeMessage) Retained() bool    { return false }
func (f *fakeMessage) Topic() string     { return "sensor/aggregated/field1/s1" }
func (f *fakeMessage) MessageID() uint16 { return 1 }
func (f *fakeMessage) Payload() []byte   { return f.payload }
func (f *fakeMessage) Ack()              {}

type fakeConsumer struct {
	handler func(topic string, message pahomqtt.Message) error
}

func (f *fakeConsumer) ConsumeMessage(_ context.Context) {}
func (f *fakeConsumer) SetHandler(h func(topic string, message pahomqtt.Message) error) {
	f.handler = h
}

type published struct {
	topic   string
	qos     byte
	message string
}

type fakePublisher struct {
	topic string
	sink  *[]published
}

func (f *fakePublisher) PublishMessage(message string) error {
	return f.PublishMessageQos(0, false, message)
}
func (f *fakePublisher) PublishMessageQos(qos byte, _ bool, message string) error {
	*f.sink = append(*f.sink, published{topic: f.topic, qos: qos, message: message})
	return nil
}
func (f *fakePublisher) Close() {}

type fakeAlertClient struct {
	dispatched []*pb.DispatchRequest
	success    bool
}

func (f *fakeAlertClient) DispatchAlert(_ context.Context, req *pb.DispatchRequest, _ ...grpc.CallOption) (*pb.DispatchResponse, error) {
	f.dispatched = append(f.dispatched, req)
	return &pb.DispatchResponse{Success: f.success, TicketId: "t-1"}, nil
}
func (f *fakeAlertClient) CancelAlert(_ context.Context, _ *pb.CancelRequest, _ ...grpc.CallOption) (*pb.DispatchResponse, error) {
	return &pb.DispatchResponse{Success: true}, nil
}

type fakeRouter struct{ cli *fakeAlertClient }

func (f *fakeRouter) Get(_ string) (pb.AlertServiceClient, bool) { return f.cli, f.cli != nil }
func (f *fakeRouter) Close()                                     {}

type fakeWeather struct {
	et0, rain float64
	err       error
}

func (f *fakeWeather) GetDailyET0AndRain(_ context.Context, _, _ float64, _ time.Time) (float64, float64, error) {
	return f.et0, f.rain, f.err
}

// ---------- helpers ----------

func testFields() map[string]model.Field {
	return map[string]model.Field{
		"field1": {
			ID:       "field1",
			CropType: "paddy",
			District: "Ernakulam",
			Sensors:  []model.Sensor{{ID: "s1", FieldID: "field1", Kind: model.KindSoil}},
		},
	}
}

func testPolicies() map[string]model.CropPolicy {
	return map[string]model.CropPolicy{
		"paddy": {
			Crop:                  "paddy",
			MoistureFloorPct:      35,
			TemperatureCeilC:      38,
			HumidityDiseaseMinPct: 85,
			HumidityDiseaseMaxPct: 95,
			DailyAlertBudget:      5,
		},
	}
}

type harness struct {
	ctrl      *Controller
	consumer  *fakeConsumer
	cli       *fakeAlertClient
	published *[]published
}

func newHarness(t *testing.T, w WeatherClient) *harness {
	t.Helper()
	sink := &[]published{}
	consumer := &fakeConsumer{}
	cli := &fakeAlertClient{success: true}
	factory := func(topic string) mqtt.IPublisher {
		return &fakePublisher{topic: topic, sink: sink}
	}

	ctrl, err := NewController(consumer, factory, &fakeRouter{cli: cli}, w,
		testFields(), testPolicies(), Options{TZName: "Asia/Kolkata"}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, consumer.handler)
	return &harness{ctrl: ctrl, consumer: consumer, cli: cli, published: sink}
}

func reading(moisture, temp, humidity float64, aggregated bool, at time.Time) []byte {
	b, _ := json.Marshal(model.SensorReading{
		FieldID:      "field1",
		SensorID:     "s1",
		TemperatureC: temp,
		HumidityPct:  humidity,
		MoisturePct:  moisture,
		Aggregated:   aggregated,
		Timestamp:    at,
	})
	return b
}

// ---------- tests ----------

func TestWaterStressDispatchesAndPublishes(t *testing.T) {
	h := newHarness(t, &fakeWeather{et0: 6, rain: 0})

	payload := reading(30, 30, 60, true, time.Now().UTC())
	require.NoError(t, h.consumer.handler("sensor/aggregated/field1/s1", &fakeMessage{payload: payload}))

	require.Len(t, h.cli.dispatched, 1)
	req := h.cli.dispatched[0]
	assert.Equal(t, KindWaterStress, req.Kind)
	assert.Equal(t, 30.0, req.MetricValue)
	// base 5 + 0.5*(6-0) = 8 -> critical
	assert.Equal(t, SeverityCritical, req.Severity)

	require.Len(t, *h.published, 1)
	p := (*h.published)[0]
	assert.Equal(t, "event/advisory/field1/s1", p.topic)
	assert.Equal(t, byte(1), p.qos)

	var evt model.AdvisoryEvent
	require.NoError(t, json.Unmarshal([]byte(p.message), &evt))
	assert.Equal(t, KindWaterStress, evt.Kind)
	assert.InDelta(t, 8.0, evt.StressScore, 1e-9)
	// daily budget 5 + 0.5*6 = 8, fully spent by this dispatch
	assert.Equal(t, 0.0, evt.RemainingToday)
}

func TestNonAggregatedReadingsIgnored(t *testing.T) {
	h := newHarness(t, &fakeWeather{et0: 4, rain: 0})

	payload := reading(10, 45, 90, false, time.Now().UTC())
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: payload}))
	assert.Empty(t, h.cli.dispatched)
	assert.Empty(t, *h.published)
}

func TestBudgetExhaustionSkipsDispatchButStillPublishes(t *testing.T) {
	h := newHarness(t, &fakeWeather{et0: 6, rain: 0})

	first := reading(30, 30, 60, true, time.Now().UTC())
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: first}))
	require.Len(t, h.cli.dispatched, 1)

	// different payload so dedup lets it through; budget is already spent
	second := reading(29, 30, 60, true, time.Now().UTC().Add(time.Minute))
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: second}))

	assert.Len(t, h.cli.dispatched, 1, "no budget left, dispatch must be skipped")
	require.Len(t, *h.published, 2, "advisory events are still published")

	var evt model.AdvisoryEvent
	require.NoError(t, json.Unmarshal([]byte((*h.published)[1].message), &evt))
	assert.Equal(t, 0.0, evt.RemainingToday)
}

func TestDuplicatePayloadDeduplicated(t *testing.T) {
	h := newHarness(t, &fakeWeather{et0: 6, rain: 0})

	payload := reading(30, 30, 60, true, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: payload}))
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: payload}))

	assert.Len(t, h.cli.dispatched, 1)
	assert.Len(t, *h.published, 1)
}

func TestHeavyRainSuppressesEtoTerm(t *testing.T) {
	h := newHarness(t, &fakeWeather{et0: 3, rain: 10})

	payload := reading(33, 30, 60, true, time.Now().UTC())
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: payload}))

	require.Len(t, *h.published, 1)
	var evt model.AdvisoryEvent
	require.NoError(t, json.Unmarshal([]byte((*h.published)[0].message), &evt))
	// deficit 2, rain covers ET0 entirely -> score stays at the base
	assert.InDelta(t, 2.0, evt.StressScore, 1e-9)
	assert.Equal(t, SeverityInfo, evt.Severity)
}

func TestMultipleStressKindsInOneReading(t *testing.T) {
	h := newHarness(t, &fakeWeather{et0: 4, rain: 4})

	// below moisture floor, above temperature ceiling, inside disease band
	payload := reading(20, 40, 90, true, time.Now().UTC())
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: payload}))

	require.Len(t, *h.published, 3)
	kinds := map[string]bool{}
	for _, p := range *h.published {
		var evt model.AdvisoryEvent
		require.NoError(t, json.Unmarshal([]byte(p.message), &evt))
		kinds[evt.Kind] = true
	}
	assert.True(t, kinds[KindWaterStress])
	assert.True(t, kinds[KindHeatStress])
	assert.True(t, kinds[KindDiseaseRisk])
}

func TestWeatherFailureFallsBackToDefaults(t *testing.T) {
	h := newHarness(t, &fakeWeather{err: errors.New("openweather down")})

	payload := reading(30, 30, 60, true, time.Now().UTC())
	require.NoError(t, h.consumer.handler("", &fakeMessage{payload: payload}))

	// defaults ET0 4mm / rain 0: score 5 + 0.5*4 = 7, budget 5 + 0.5*4 = 7
	require.Len(t, h.cli.dispatched, 1, "a decision is still produced without weather")
	assert.Equal(t, SeverityWarning, h.cli.dispatched[0].Severity)

	require.Len(t, *h.published, 1)
	var evt model.AdvisoryEvent
	require.NoError(t, json.Unmarshal([]byte((*h.published)[0].message), &evt))
	assert.Equal(t, 4.0, evt.ET0MM)
	assert.Equal(t, 0.0, evt.RainMM)
	assert.InDelta(t, 7.0, evt.StressScore, 1e-9)
	assert.Equal(t, 0.0, evt.RemainingToday)
}

func TestDailyBudgetResetsAtLocalMidnight(t *testing.T) {
	sink := &[]published{}
	consumer := &fakeConsumer{}
	cli := &fakeAlertClient{success: true}
	factory := func(topic string) mqtt.IPublisher {
		return &fakePublisher{topic: topic, sink: sink}
	}
	ctrl, err := NewController(consumer, factory, &fakeRouter{cli: cli}, &fakeWeather{et0: 6, rain: 0},
		testFields(), testPolicies(), Options{TZName: "Asia/Kolkata", Cooldown: time.Nanosecond}, zap.NewNop())
	require.NoError(t, err)

	// score 8 spends the whole 5 + 0.5*6 budget
	require.NoError(t, consumer.handler("", &fakeMessage{payload: reading(30, 30, 60, true, time.Now().UTC())}))
	require.Len(t, cli.dispatched, 1)

	require.NoError(t, consumer.handler("", &fakeMessage{payload: reading(30, 30, 60, true, time.Now().UTC().Add(time.Minute))}))
	assert.Len(t, cli.dispatched, 1, "same day, budget spent, no dispatch")

	// pretend the budget was set yesterday
	k := key("field1", "s1")
	ctrl.dailyMu.Lock()
	ctrl.dailyDay[k] = ctrl.dailyDay[k].AddDate(0, 0, -1)
	ctrl.dailyMu.Unlock()

	require.NoError(t, consumer.handler("", &fakeMessage{payload: reading(30, 30, 60, true, time.Now().UTC().Add(2 * time.Minute))}))
	assert.Len(t, cli.dispatched, 2, "new local day restores the budget")

	var evt model.AdvisoryEvent
	require.NoError(t, json.Unmarshal([]byte((*sink)[len(*sink)-1].message), &evt))
	assert.Equal(t, 0.0, evt.RemainingToday, "fresh budget is spent again by the same score")
}

func TestEvaluateGuards(t *testing.T) {
	p := testPolicies()["paddy"]

	t.Run("healthy reading", func(t *testing.T) {
		r := model.SensorReading{MoisturePct: 50, TemperatureC: 30, HumidityPct: 70}
		assert.Empty(t, evaluate(r, p))
	})

	t.Run("water stress deficit", func(t *testing.T) {
		r := model.SensorReading{MoisturePct: 25, TemperatureC: 30, HumidityPct: 70}
		out := evaluate(r, p)
		require.Len(t, out, 1)
		assert.Equal(t, KindWaterStress, out[0].kind)
		assert.InDelta(t, 10.0, out[0].base, 1e-9)
	})

	t.Run("humidity band edges inclusive", func(t *testing.T) {
		r := model.SensorReading{MoisturePct: 50, TemperatureC: 30, HumidityPct: 85}
		require.Len(t, evaluate(r, p), 1)
		r.HumidityPct = 95
		require.Len(t, evaluate(r, p), 1)
		r.HumidityPct = 96
		assert.Empty(t, evaluate(r, p))
	})
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityInfo, severityFor(3.9))
	assert.Equal(t, SeverityWarning, severityFor(4))
	assert.Equal(t, SeverityWarning, severityFor(7.9))
	assert.Equal(t, SeverityCritical, severityFor(8))
}
