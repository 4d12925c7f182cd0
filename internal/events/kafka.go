package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"piazza-qa/internal/config"
)

// TranscriptEvent announces that a transcript was stored and is ready
// for chunking and indexing.
type TranscriptEvent struct {
	ClassName string `json:"class_name"`
	Professor string `json:"professor"`
	Semester  string `json:"semester"`
	URL       string `json:"url"`
}

// Publisher writes transcript events to the transcript-events topic.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(cfg *config.KafkaConfig) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.BootstrapServers),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish emits one event, keyed by URL so per-lecture ordering holds.
func (p *Publisher) Publish(ctx context.Context, ev TranscriptEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.URL),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Consumer reads transcript events as part of the processor group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(cfg *config.KafkaConfig) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{cfg.BootstrapServers},
			Topic:   cfg.Topic,
			GroupID: cfg.GroupID,
		}),
	}
}

// Next blocks until an event arrives or the context is cancelled.
func (c *Consumer) Next(ctx context.Context) (*TranscriptEvent, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading event: %w", err)
	}

	var ev TranscriptEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}

	return &ev, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
