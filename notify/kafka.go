// Package notify forwards raised alerts to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"water-quality-monitor/models"
)

// AlertPublisher is what the HTTP layer publishes alerts through.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *models.Alert) error
	Close() error
}

// Envelope is the message value written for each alert.
type Envelope struct {
	EventID     string        `json:"event_id"`
	Alert       *models.Alert `json:"alert"`
	PublishedAt time.Time     `json:"published_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes one message per alert, keyed by parameter id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewKafkaPublisher returns a Nop publisher when no brokers are configured.
func NewKafkaPublisher(cfg KafkaConfig, logger *zap.Logger) (AlertPublisher, error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("Alert publishing disabled, no Kafka brokers configured")
		return Nop{}, nil
	}
	if cfg.Topic == "" {
		return nil, errors.New("alerts topic must not be empty")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	logger.Info("Alert publishing enabled",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return newKafkaPublisher(w, cfg.Topic, logger), nil
}

func newKafkaPublisher(w messageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

func (p *KafkaPublisher) PublishAlert(ctx context.Context, alert *models.Alert) error {
	if alert == nil {
		return nil
	}
	env := Envelope{
		EventID:     p.newID(),
		Alert:       alert,
		PublishedAt: p.now().UTC(),
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal alert envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(alert.Parameter),
		Value: value,
		Time:  env.PublishedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish alert to %s: %w", p.topic, err)
	}
	p.logger.Debug("Alert published",
		zap.String("event_id", env.EventID),
		zap.String("parameter", string(alert.Parameter)),
		zap.String("level", alert.Level),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards alerts.
type Nop struct{}

func (Nop) PublishAlert(context.Context, *models.Alert) error { return nil }
func (Nop) Close() error                                       { return nil }
