// Package mqtt wraps the shared broker connection plus the consumer and
// publisher primitives used by every service in the pipeline.
package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string
}

// NewConn establishes the shared MQTT connection, retrying with
// exponential backoff. The connection is closed when ctx is cancelled.
func NewConn(ctx context.Context, cfg *Config, log *zap.Logger) (mqtt.Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	addr := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(addr)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	maxRetries := 5

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warn("mqtt connect failed", zap.String("broker", addr), zap.Error(token.Error()))
			return token.Error()
		}
		return nil
	}, backoff.WithMaxRetries(bo, uint64(maxRetries-1)))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	log.Info("connected to MQTT broker", zap.String("broker", addr))

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
		log.Info("mqtt connection closed")
	}()

	return client, nil
}

func CloseConn(client mqtt.Client, log *zap.Logger) {
	if client.IsConnected() {
		client.Disconnect(250)
		if log != nil {
			log.Info("mqtt connection closed")
		}
	}
}
