package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/vbonduro/fieldtech/internal/events"
)

// Producer mirrors change events onto a Kafka topic keyed by record id.
type Producer struct {
	l     *slog.Logger
	w     *kafka.Writer
	topic string
}

func NewProducer(l *slog.Logger, brokers []string, topic string) *Producer {
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		Logger:                 &infoLogger{l: l},
		ErrorLogger:            &errorLogger{l: l},
		AllowAutoTopicCreation: true,
	}

	return &Producer{l: l, w: w, topic: topic}
}

func (p *Producer) Publish(ctx context.Context, e events.Event) {
	msg, err := p.message(e)
	if err != nil {
		p.l.Error(fmt.Sprintf("marshal event: %s", err))
		return
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.l.Error(fmt.Sprintf("write kafka message: %s", err))
	}
}

func (p *Producer) message(e events.Event) (kafka.Message, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.ID.String()),
		Value: b,
		Topic: p.topic,
		Headers: []kafka.Header{
			{Key: "collection", Value: []byte(e.Collection)},
			{Key: "action", Value: []byte(e.Action)},
		},
	}, nil
}

func (p *Producer) Close() {
	if err := p.w.Close(); err != nil {
		p.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}

type infoLogger struct {
	l *slog.Logger
}

func (l *infoLogger) Printf(format string, v ...any) {
	l.l.Debug(fmt.Sprintf(format, v...))
}

type errorLogger struct {
	l *slog.Logger
}

func (l *errorLogger) Printf(format string, v ...any) {
	l.l.Error(fmt.Sprintf(format, v...))
}
