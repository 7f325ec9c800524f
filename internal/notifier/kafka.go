package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEndpoint publishes alerts to a topic, keyed by title.
type KafkaEndpoint struct {
	name   string
	topic  string
	writer messageWriter
	now    func() time.Time
}

// alertRecord is the JSON value written for each alert.
type alertRecord struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// NewKafkaEndpoint creates a synchronous writer. Delivery retries are left to the notifier.
func NewKafkaEndpoint(name string, brokers []string, topic string, timeout time.Duration) (*KafkaEndpoint, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka endpoint %s: brokers are required", name)
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka endpoint %s: topic is required", name)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  1,
		WriteTimeout: timeout,
		ReadTimeout:  timeout,
	}
	return newKafkaEndpoint(name, topic, writer), nil
}

func newKafkaEndpoint(name, topic string, w messageWriter) *KafkaEndpoint {
	return &KafkaEndpoint{name: name, topic: topic, writer: w, now: time.Now}
}

func (k *KafkaEndpoint) Name() string { return k.name }

func (k *KafkaEndpoint) Target() string { return "kafka topic " + k.topic }

func (k *KafkaEndpoint) Send(ctx context.Context, title, body string) error {
	value, err := json.Marshal(alertRecord{Title: title, Body: body, SentAt: k.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(title), Value: value}); err != nil {
		return fmt.Errorf("write to %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaEndpoint) Close() error {
	return k.writer.Close()
}
