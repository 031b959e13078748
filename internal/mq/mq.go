package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codecoach/client/config"
)

// Message is one delivery, whichever broker carried it.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. A non-nil error asks the broker to deliver
// it again.
type Handler func(ctx context.Context, msg Message) error

// Backend is the broker side of the results feed.
type Backend interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	// Subscribe blocks until ctx is done or the broker gives up.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

var errTopicRequired = errors.New("topic is required")

// MQ guards a Backend against empty topics and names the broker in errors.
type MQ struct {
	backend Backend
	name    string
}

func New(backend Backend) *MQ {
	return &MQ{backend: backend, name: "mq"}
}

// Open connects the broker selected by cfg.MQBackend. It returns nil, nil
// when no feed is configured.
func Open(ctx context.Context, cfg config.JournalConfig) (*MQ, error) {
	var (
		backend Backend
		err     error
	)
	name := strings.ToLower(strings.TrimSpace(cfg.MQBackend))
	switch name {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err = newRabbitMQBackend(cfg.RabbitMQ)
	case "pubsub":
		backend, err = newPubSubBackend(ctx, cfg.PubSub)
	case "sqs":
		backend, err = newSQSBackend(ctx, cfg.SQS)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	return &MQ{backend: backend, name: name}, nil
}

func (m *MQ) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("%s publish: %w", m.name, errTopicRequired)
	}
	return m.backend.Publish(ctx, topic, data, attrs)
}

func (m *MQ) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("%s subscribe: %w", m.name, errTopicRequired)
	}
	return m.backend.Subscribe(ctx, topic, handler)
}

func (m *MQ) Close() error {
	return m.backend.Close()
}
