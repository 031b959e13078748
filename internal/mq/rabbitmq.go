package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codecoach/client/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// rabbitMQBackend fans the results feed out through an exchange named after
// the topic, so every follower sees every entry. A named Queue turns
// followers into competing consumers instead.
type rabbitMQBackend struct {
	conn     *amqp.Connection
	durable  bool
	queue    string
	prefetch int

	mu      sync.Mutex
	pub     *amqp.Channel
	ensured map[string]bool
}

func newRabbitMQBackend(cfg config.RabbitMQConfig) (*rabbitMQBackend, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &rabbitMQBackend{
		conn:     conn,
		durable:  cfg.Durable,
		queue:    strings.TrimSpace(cfg.Queue),
		prefetch: cfg.PrefetchCount,
		pub:      pub,
		ensured:  map[string]bool{},
	}, nil
}

func (r *rabbitMQBackend) declareExchange(ch *amqp.Channel, topic string) error {
	return ch.ExchangeDeclare(topic, amqp.ExchangeFanout, r.durable, false, false, false, nil)
}

// Publish returns the generated message id. Entries are persistent when the
// exchange is durable.
func (r *rabbitMQBackend) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ensured[topic] {
		if err := r.declareExchange(r.pub, topic); err != nil {
			return "", fmt.Errorf("declare exchange %s: %w", topic, err)
		}
		r.ensured[topic] = true
	}

	headers := make(amqp.Table, len(attrs))
	for k, v := range attrs {
		headers[k] = v
	}
	mode := amqp.Transient
	if r.durable {
		mode = amqp.Persistent
	}
	id := uuid.NewString()
	err := r.pub.PublishWithContext(ctx, topic, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: mode,
		MessageId:    id,
		Timestamp:    time.Now().UTC(),
		Type:         attrs["kind"],
		Headers:      headers,
		Body:         data,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Subscribe opens its own channel so a follower and a publisher can share
// the connection.
func (r *rabbitMQBackend) Subscribe(ctx context.Context, topic string, handler Handler) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if r.prefetch > 0 {
		if err := ch.Qos(r.prefetch, 0, false); err != nil {
			return err
		}
	}
	if err := r.declareExchange(ch, topic); err != nil {
		return fmt.Errorf("declare exchange %s: %w", topic, err)
	}

	// Private followers get a server-named queue that dies with the channel.
	var q amqp.Queue
	if r.queue != "" {
		q, err = ch.QueueDeclare(r.queue, r.durable, false, false, false, nil)
	} else {
		q, err = ch.QueueDeclare("", false, true, true, false, nil)
	}
	if err != nil {
		return err
	}
	if err := ch.QueueBind(q.Name, "", topic, false, nil); err != nil {
		return fmt.Errorf("bind %s to %s: %w", q.Name, topic, err)
	}

	tag := "codecoach-feed-" + uuid.NewString()
	deliveries, err := ch.Consume(q.Name, tag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Cancel(tag, false) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			msg := Message{ID: d.MessageId, Data: d.Body, Attributes: tableToAttrs(d.Headers)}
			if err := handler(ctx, msg); err != nil {
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (r *rabbitMQBackend) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pub != nil {
		_ = r.pub.Close()
	}
	return r.conn.Close()
}

func tableToAttrs(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for k, v := range headers {
		if b, ok := v.([]byte); ok {
			attrs[k] = string(b)
			continue
		}
		attrs[k] = fmt.Sprint(v)
	}
	return attrs
}
