package mq

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/codecoach/client/config"
	"google.golang.org/api/option"
)

// pubSubBackend carries the results feed over a Pub/Sub topic. Entries of
// one problem share an ordering key, so a follower sees them in order.
type pubSubBackend struct {
	client       *pubsub.Client
	subscription string

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func newPubSubBackend(ctx context.Context, cfg config.PubSubConfig) (*pubSubBackend, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	return &pubSubBackend{
		client:       client,
		subscription: strings.TrimSpace(cfg.Subscription),
		topics:       map[string]*pubsub.Topic{},
	}, nil
}

// topic returns a cached handle, creating the topic on first use.
func (p *pubSubBackend) topic(ctx context.Context, name string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[name]; ok {
		return t, nil
	}

	t := p.client.Topic(name)
	exists, err := t.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		if t, err = p.client.CreateTopic(ctx, name); err != nil {
			return nil, fmt.Errorf("create topic %s: %w", name, err)
		}
	}
	t.EnableMessageOrdering = true
	p.topics[name] = t
	return t, nil
}

// Publish blocks for the server-assigned id.
func (p *pubSubBackend) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	t, err := p.topic(ctx, topic)
	if err != nil {
		return "", err
	}
	id, err := t.Publish(ctx, &pubsub.Message{
		Data:        data,
		Attributes:  attrs,
		OrderingKey: attrs["problem_id"],
	}).Get(ctx)
	if err != nil && attrs["problem_id"] != "" {
		// A failed ordered publish pauses its key until resumed.
		t.ResumePublish(attrs["problem_id"])
	}
	return id, err
}

func (p *pubSubBackend) Subscribe(ctx context.Context, topic string, handler Handler) error {
	t, err := p.topic(ctx, topic)
	if err != nil {
		return err
	}

	name := p.subscriptionName(topic)
	sub := p.client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		sub, err = p.client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{
			Topic:                 t,
			EnableMessageOrdering: true,
		})
		if err != nil {
			return fmt.Errorf("create subscription %s: %w", name, err)
		}
	}

	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if err := handler(ctx, Message{ID: m.ID, Data: m.Data, Attributes: m.Attributes}); err != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
}

// subscriptionName defaults to one subscription per host, so followers on
// different machines each see the whole feed.
func (p *pubSubBackend) subscriptionName(topic string) string {
	if p.subscription != "" {
		return p.subscription
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return strings.NewReplacer(".", "-", "_", "-").Replace(topic + "-" + strings.ToLower(host))
}

func (p *pubSubBackend) Close() error {
	p.mu.Lock()
	for _, t := range p.topics {
		t.Stop()
	}
	p.mu.Unlock()
	return p.client.Close()
}
