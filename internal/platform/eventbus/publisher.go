package eventbus

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers domain events at-least-once to a topic-addressed
// bus. Errors surface synchronously; retry policy belongs to the caller.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error
}

// KafkaPublisher wraps one shared writer for the whole process: created
// at startup, reused by every publish, closed on shutdown.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if err := p.writer.WriteMessages(ctx, buildMessage(topic, key, payload, headers)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(topic, key string, payload []byte, headers map[string]string) kafka.Message {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return msg
}
