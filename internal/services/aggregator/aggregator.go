// Package aggregator buffers raw sensor readings and republishes a
// windowed average per sensor, smoothing DHT11 jitter before the
// advisory service sees the data.
package aggregator

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/model/messages"
	pkgmqtt "github.com/agri-ai/portal/pkg/mqtt"
)

const defaultAggTopicTmpl = "sensor/aggregated/{field}/{sensor}"

type Service struct {
	consumer      pkgmqtt.IConsumer[messages.SensorReading]
	makePublisher pkgmqtt.PublisherFactory
	topicTmpl     string
	interval      time.Duration
	log           *zap.Logger

	mutex  sync.Mutex
	buffer map[string][]messages.SensorReading // key is SensorID
}

func New(consumer pkgmqtt.IConsumer[messages.SensorReading], makePublisher pkgmqtt.PublisherFactory, topicTmpl string, interval time.Duration, log *zap.Logger) *Service {
	if strings.TrimSpace(topicTmpl) == "" {
		topicTmpl = defaultAggTopicTmpl
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		consumer:      consumer,
		makePublisher: makePublisher,
		topicTmpl:     topicTmpl,
		interval:      interval,
		log:           log,
		buffer:        make(map[string][]messages.SensorReading),
	}
}

func (s *Service) messageHandler(_ string, message mqtt.Message) error {
	var reading messages.SensorReading
	if err := json.Unmarshal(message.Payload(), &reading); err != nil {
		s.log.Error("unmarshal sensor reading", zap.Error(err))
		return err
	}
	if reading.Aggregated {
		return nil // never re-aggregate our own output
	}

	s.mutex.Lock()
	s.buffer[reading.SensorID] = append(s.buffer[reading.SensorID], reading)
	s.mutex.Unlock()

	s.log.Debug("buffered reading", zap.String("sensor", reading.SensorID))
	return nil
}

// Start runs the consume loop and the aggregation ticker until ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.messageHandler)

	// run the consumer in background; the ticker owns this goroutine
	go s.consumer.ConsumeMessage(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.AggregateAndPublish()
		}
	}
}

// AggregateAndPublish averages each sensor's buffered readings and
// publishes the result at QoS 1.
func (s *Service) AggregateAndPublish() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for sensorID, readings := range s.buffer {
		if len(readings) == 0 {
			continue
		}
		var sumT, sumH, sumM float64
		for _, r := range readings {
			sumT += r.TemperatureC
			sumH += r.HumidityPct
			sumM += r.MoisturePct
		}
		n := float64(len(readings))

		out := messages.SensorReading{
			SensorID:     sensorID,
			FieldID:      readings[0].FieldID,
			TemperatureC: sumT / n,
			HumidityPct:  sumH / n,
			MoisturePct:  sumM / n,
			Aggregated:   true,
			Timestamp:    time.Now().UTC(),
		}

		b, err := json.Marshal(out)
		if err != nil {
			s.log.Error("marshal aggregate", zap.Error(err))
			continue
		}
		topic := strings.NewReplacer("{field}", out.FieldID, "{sensor}", out.SensorID).Replace(s.topicTmpl)
		if err := s.makePublisher(topic).PublishMessageQos(1, false, string(b)); err != nil {
			s.log.Error("publish aggregate", zap.String("topic", topic), zap.Error(err))
		} else {
			s.log.Info("published aggregate",
				zap.String("sensor", sensorID),
				zap.Int("samples", len(readings)),
				zap.Float64("moisture_pct", out.MoisturePct))
		}

		s.buffer[sensorID] = readings[:0]
	}
}
