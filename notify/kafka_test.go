package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"water-quality-monitor/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_PublishAlert(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "water-quality-alerts", zap.NewNop())
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }
	p.newID = func() string { return "evt-1" }

	alert := &models.Alert{Parameter: models.PH, CurrentValue: 9.8, Level: "critical", Message: "pH too high"}
	require.NoError(t, p.PublishAlert(context.Background(), alert))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ph", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "evt-1", env.EventID)
	assert.Equal(t, at, env.PublishedAt)
	assert.Equal(t, "critical", env.Alert.Level)
	assert.Equal(t, 9.8, env.Alert.CurrentValue)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_NilAlert(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "t", zap.NewNop())
	require.NoError(t, p.PublishAlert(context.Background(), nil))
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newKafkaPublisher(w, "t", zap.NewNop())
	err := p.PublishAlert(context.Background(), &models.Alert{Parameter: models.Temperature})
	assert.ErrorContains(t, err, "leader not available")
}

func TestNewKafkaPublisher_DisabledWithoutBrokers(t *testing.T) {
	p, err := NewKafkaPublisher(KafkaConfig{Topic: "t"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.PublishAlert(context.Background(), &models.Alert{}))
}

func TestNewKafkaPublisher_RequiresTopic(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}}, zap.NewNop())
	assert.Error(t, err)
}
