// Package advisory turns aggregated sensor readings into crop stress
// events. Each detected condition is published for downstream consumers
// and, budget permitting, dispatched to the field's alert service.
package advisory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	pb "github.com/agri-ai/portal/grpc/gen/go/alert"
	"github.com/agri-ai/portal/internal/model"
	"github.com/agri-ai/portal/pkg/dedup"
	"github.com/agri-ai/portal/pkg/mqtt"
)

const (
	KindWaterStress = "water_stress"
	KindHeatStress  = "heat_stress"
	KindDiseaseRisk = "disease_risk"

	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

const (
	defaultTZ       = "Asia/Kolkata"
	defaultEtoCoeff = 0.5

	warningScoreAt  = 4.0
	criticalScoreAt = 8.0
)

// AlertRouter exposes one gRPC client per field.
type AlertRouter interface {
	Get(field string) (pb.AlertServiceClient, bool)
	Close()
}

// WeatherClient returns daily ET0 and rain (mm) for lat/lon/date.
type WeatherClient interface {
	GetDailyET0AndRain(ctx context.Context, lat, lon float64, day time.Time) (etoMM, rainMM float64, err error)
}

// stress is one detected condition for a reading.
type stress struct {
	kind   string
	base   float64 // how far past the guard the metric is
	metric float64 // the offending metric value
}

type Controller struct {
	consumer   mqtt.IConsumer[model.SensorReading]
	pubFactory mqtt.PublisherFactory
	router     AlertRouter
	wclient    WeatherClient
	fields     map[string]model.Field
	policies   map[string]model.CropPolicy

	etoCoeff          float64
	advisoryTopicTmpl string
	cooldown          time.Duration

	// suppression of repeat dispatches, key = field|sensor|kind
	suppressMu    sync.Mutex
	suppressUntil map[string]time.Time

	// daily stress-weight budget tracking, key = field|sensor
	tz             *time.Location
	dailyMu        sync.Mutex
	dailyDay       map[string]time.Time
	dailyBudget    map[string]float64
	dailyRemaining map[string]float64

	deduper *dedup.Deduper
	log     *zap.Logger
}

type Options struct {
	TZName            string
	EtoCoeff          float64
	AdvisoryTopicTmpl string
	Cooldown          time.Duration
}

func NewController(
	c mqtt.IConsumer[model.SensorReading],
	pf mqtt.PublisherFactory,
	router AlertRouter,
	wc WeatherClient,
	fields map[string]model.Field,
	policies map[string]model.CropPolicy,
	opts Options,
	log *zap.Logger,
) (*Controller, error) {
	if router == nil {
		return nil, errors.New("alert router is nil")
	}
	if wc == nil {
		return nil, errors.New("weather client is nil")
	}
	if len(fields) == 0 {
		return nil, errors.New("no fields configured")
	}

	tzName := strings.TrimSpace(opts.TZName)
	if tzName == "" {
		tzName = defaultTZ
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Warn("invalid TZ, falling back to local", zap.String("tz", tzName), zap.Error(err))
		loc = time.Local
	}

	etoCoeff := opts.EtoCoeff
	if etoCoeff <= 0 {
		etoCoeff = defaultEtoCoeff
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = time.Hour
	}

	ctrl := &Controller{
		consumer:          c,
		pubFactory:        pf,
		router:            router,
		wclient:           wc,
		fields:            fields,
		policies:          policies,
		etoCoeff:          etoCoeff,
		advisoryTopicTmpl: firstNonEmpty(opts.AdvisoryTopicTmpl, "event/advisory/{field}/{sensor}"),
		cooldown:          cooldown,
		suppressUntil:     make(map[string]time.Time),
		tz:                loc,
		dailyDay:          make(map[string]time.Time),
		dailyBudget:       make(map[string]float64),
		dailyRemaining:    make(map[string]float64),
		deduper:           dedup.New(10*time.Minute, 20000),
		log:               log,
	}
	c.SetHandler(ctrl.handleAggregated)
	return ctrl, nil
}

func (c *Controller) Start(ctx context.Context) {
	go c.consumer.ConsumeMessage(ctx)
	<-ctx.Done()
}

func (c *Controller) handleAggregated(_ string, msg pahomqtt.Message) error {
	// drop identical QoS1 redeliveries before unmarshalling
	h := sha256.Sum256(msg.Payload())
	if c.deduper != nil && !c.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var r model.SensorReading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		c.log.Warn("advisory: bad payload", zap.Error(err))
		return nil
	}
	if !r.Aggregated {
		return nil
	}

	field, ok := c.fields[r.FieldID]
	if !ok {
		c.log.Warn("advisory: unknown field", zap.String("field", r.FieldID))
		return nil
	}
	sensor := field.GetSensor(r.SensorID)
	if sensor == nil {
		c.log.Warn("advisory: unknown sensor",
			zap.String("field", r.FieldID), zap.String("sensor", r.SensorID))
		return nil
	}
	policy, ok := c.policies[field.CropType]
	if !ok {
		c.log.Warn("advisory: no policy for crop",
			zap.String("field", r.FieldID), zap.String("crop", field.CropType))
		return nil
	}

	dayStart := midnightLocal(time.Now(), c.tz)
	et0, rain, rem := c.ensureDailyBudget(context.Background(), *sensor, policy, dayStart)

	stresses := evaluate(r, policy)
	if len(stresses) == 0 {
		return nil
	}

	for _, st := range stresses {
		score := st.base + c.etoCoeff*math.Max(0, et0-rain)
		severity := severityFor(score)

		evt := model.AdvisoryEvent{
			FieldID:        r.FieldID,
			SensorID:       r.SensorID,
			Kind:           st.kind,
			Severity:       severity,
			StressScore:    round2(score),
			ET0MM:          round2(et0),
			RainMM:         round2(rain),
			RemainingToday: round2(rem),
			Timestamp:      time.Now().UTC(),
		}

		rem = c.maybeDispatch(r.FieldID, r.SensorID, st, evt, dayStart)
		evt.RemainingToday = round2(rem)

		if err := c.publishAdvisory(evt); err != nil {
			c.log.Warn("advisory: publish failed", zap.Error(err))
		}
	}
	return nil
}

// evaluate applies the crop policy guards to one aggregated reading.
func evaluate(r model.SensorReading, p model.CropPolicy) []stress {
	var out []stress
	if p.MoistureFloorPct > 0 && r.MoisturePct < p.MoistureFloorPct {
		out = append(out, stress{
			kind:   KindWaterStress,
			base:   p.MoistureFloorPct - r.MoisturePct,
			metric: r.MoisturePct,
		})
	}
	if p.TemperatureCeilC > 0 && r.TemperatureC > p.TemperatureCeilC {
		out = append(out, stress{
			kind:   KindHeatStress,
			base:   r.TemperatureC - p.TemperatureCeilC,
			metric: r.TemperatureC,
		})
	}
	if p.HumidityDiseaseMaxPct > p.HumidityDiseaseMinPct &&
		r.HumidityPct >= p.HumidityDiseaseMinPct && r.HumidityPct <= p.HumidityDiseaseMaxPct {
		out = append(out, stress{
			kind:   KindDiseaseRisk,
			base:   3, // band membership carries a fixed weight
			metric: r.HumidityPct,
		})
	}
	return out
}

func severityFor(score float64) string {
	switch {
	case score >= criticalScoreAt:
		return SeverityCritical
	case score >= warningScoreAt:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// maybeDispatch forwards the event to the field's alert service unless
// the kind is in cooldown or the daily budget is spent. Returns the
// remaining budget after any deduction.
func (c *Controller) maybeDispatch(fieldID, sensorID string, st stress, evt model.AdvisoryEvent, dayStart time.Time) float64 {
	k := key(fieldID, sensorID)

	c.dailyMu.Lock()
	rem := c.dailyRemaining[k]
	c.dailyMu.Unlock()

	if rem < evt.StressScore {
		c.log.Info("advisory: budget exhausted, skipping dispatch",
			zap.String("field", fieldID), zap.String("sensor", sensorID),
			zap.String("kind", st.kind), zap.Float64("remaining", rem))
		return rem
	}

	sk := k + "|" + st.kind
	now := time.Now()
	c.suppressMu.Lock()
	until, have := c.suppressUntil[sk]
	if have && now.Before(until) {
		c.suppressMu.Unlock()
		c.log.Info("advisory: kind in cooldown, skipping dispatch",
			zap.String("field", fieldID), zap.String("sensor", sensorID),
			zap.String("kind", st.kind), zap.Time("until", until))
		return rem
	}
	c.suppressMu.Unlock()

	device, ok := c.router.Get(fieldID)
	if !ok {
		c.log.Warn("advisory: no alert client for field", zap.String("field", fieldID))
		return rem
	}

	req := &pb.DispatchRequest{
		FieldId:     fieldID,
		SensorId:    sensorID,
		Kind:        st.kind,
		Severity:    evt.Severity,
		Message:     describeStress(st),
		MetricValue: st.metric,
	}
	rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rcancel()

	resp, err := device.DispatchAlert(rctx, req)
	if err != nil {
		c.log.Warn("advisory: dispatch error", zap.Error(err))
		return rem
	}
	if !resp.GetSuccess() {
		c.log.Warn("advisory: dispatch refused", zap.String("message", resp.GetMessage()))
		return rem
	}

	c.suppressMu.Lock()
	if prev, ok := c.suppressUntil[sk]; !ok || now.Add(c.cooldown).After(prev) {
		c.suppressUntil[sk] = now.Add(c.cooldown)
	}
	c.suppressMu.Unlock()

	rem = c.deductBudget(k, dayStart, evt.StressScore)
	c.log.Info("advisory: alert dispatched",
		zap.String("field", fieldID), zap.String("sensor", sensorID),
		zap.String("kind", st.kind), zap.String("severity", evt.Severity),
		zap.String("ticket", resp.GetTicketId()), zap.Float64("remaining", rem))
	return rem
}

func describeStress(st stress) string {
	switch st.kind {
	case KindWaterStress:
		return fmt.Sprintf("soil moisture %.1f%% is %.1f points below the crop floor", st.metric, st.base)
	case KindHeatStress:
		return fmt.Sprintf("canopy temperature %.1fC is %.1fC above the crop ceiling", st.metric, st.base)
	case KindDiseaseRisk:
		return fmt.Sprintf("humidity %.1f%% is inside the fungal disease band", st.metric)
	default:
		return st.kind
	}
}

// ensureDailyBudget computes the day's stress-weight budget once per
// sensor per local day: policy base topped up with the ET0 surplus.
func (c *Controller) ensureDailyBudget(ctx context.Context, s model.Sensor, p model.CropPolicy, dayStart time.Time) (et0, rain, remaining float64) {
	k := key(s.FieldID, s.ID)

	c.dailyMu.Lock()
	day, have := c.dailyDay[k]
	if have && day.Equal(dayStart) {
		rem := c.dailyRemaining[k]
		c.dailyMu.Unlock()
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		et0, rain, err := c.wclient.GetDailyET0AndRain(wctx, s.Latitude, s.Longitude, time.Now().UTC())
		if err != nil {
			et0, rain = 4.0, 0.0
		}
		return et0, rain, rem
	}
	c.dailyMu.Unlock()

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	et0, rain, err := c.wclient.GetDailyET0AndRain(wctx, s.Latitude, s.Longitude,
		time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		c.log.Warn("advisory: weather error, using defaults",
			zap.String("field", s.FieldID), zap.String("sensor", s.ID), zap.Error(err))
		et0, rain = 4.0, 0.0
	}

	budget := p.DailyAlertBudget + c.etoCoeff*math.Max(0, et0-rain)
	if budget < 0 {
		budget = 0
	}

	c.dailyMu.Lock()
	c.dailyDay[k] = dayStart
	c.dailyBudget[k] = budget
	c.dailyRemaining[k] = budget
	c.dailyMu.Unlock()

	c.log.Info("advisory: daily budget set",
		zap.String("field", s.FieldID), zap.String("sensor", s.ID),
		zap.String("day", dayStart.Format("2006-01-02")),
		zap.Float64("et0", et0), zap.Float64("rain", rain), zap.Float64("budget", budget))
	return et0, rain, budget
}

func (c *Controller) deductBudget(k string, dayStart time.Time, applied float64) float64 {
	c.dailyMu.Lock()
	defer c.dailyMu.Unlock()

	day := c.dailyDay[k]
	if !day.Equal(dayStart) {
		c.dailyDay[k] = dayStart
		c.dailyBudget[k] = 0
		c.dailyRemaining[k] = 0
	}

	rem := c.dailyRemaining[k] - applied
	if rem < 0 {
		rem = 0
	}
	c.dailyRemaining[k] = rem
	return rem
}

func (c *Controller) publishAdvisory(evt model.AdvisoryEvent) error {
	b, _ := json.Marshal(evt)
	topic := strings.NewReplacer("{field}", evt.FieldID, "{sensor}", evt.SensorID).
		Replace(c.advisoryTopicTmpl)
	pub := c.pubFactory(topic)
	defer pub.Close()
	return pub.PublishMessageQos(1, false, string(b))
}

func key(fid, sid string) string { return fid + "|" + sid }

func midnightLocal(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
