package sensor_simulator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/model"
	pkgmqtt "github.com/agri-ai/portal/pkg/mqtt"
)

const defaultReadingTopicTmpl = "sensor/reading/{field}/{sensor}"

// Simulator drives one DataGenerator per configured sensor and publishes
// readings on a fixed tick.
type Simulator struct {
	sensors       []model.Sensor
	generators    map[string]*DataGenerator // key field|sensor
	makePublisher pkgmqtt.PublisherFactory
	topicTmpl     string
	interval      time.Duration
	log           *zap.Logger
}

func NewSimulator(sensors []model.Sensor, makePublisher pkgmqtt.PublisherFactory, topicTmpl string, interval time.Duration, log *zap.Logger) *Simulator {
	if strings.TrimSpace(topicTmpl) == "" {
		topicTmpl = defaultReadingTopicTmpl
	}
	if log == nil {
		log = zap.NewNop()
	}
	gens := make(map[string]*DataGenerator, len(sensors))
	for i, s := range sensors {
		gens[s.FieldID+"|"+s.ID] = NewDataGenerator(defaultDecayPerMin, time.Now().UnixNano()+int64(i))
	}
	return &Simulator{
		sensors:       sensors,
		generators:    gens,
		makePublisher: makePublisher,
		topicTmpl:     topicTmpl,
		interval:      interval,
		log:           log,
	}
}

// Run seeds each generator once, then publishes until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	for i := range s.sensors {
		sensor := &s.sensors[i]
		seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		s.generators[sensor.FieldID+"|"+sensor.ID].SeedFromSoilGrids(seedCtx, sensor)
		cancel()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishAll()
		}
	}
}

func (s *Simulator) publishAll() {
	for i := range s.sensors {
		sensor := &s.sensors[i]
		gen := s.generators[sensor.FieldID+"|"+sensor.ID]
		reading, err := gen.Next(sensor)
		if err != nil {
			s.log.Error("generate reading", zap.String("sensor", sensor.ID), zap.Error(err))
			continue
		}
		b, err := json.Marshal(reading)
		if err != nil {
			s.log.Error("marshal reading", zap.Error(err))
			continue
		}
		topic := strings.NewReplacer("{field}", sensor.FieldID, "{sensor}", sensor.ID).Replace(s.topicTmpl)
		if err := s.makePublisher(topic).PublishMessage(string(b)); err != nil {
			s.log.Error("publish reading", zap.String("topic", topic), zap.Error(err))
		}
	}
}
