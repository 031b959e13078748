package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codecoach/client/types"
)

// ErrMalformedEntry is passed to the Follow error callback for messages
// whose body is not a journal entry. Such messages are acknowledged.
var ErrMalformedEntry = errors.New("malformed journal entry")

// Feed publishes journal entries on one topic and follows it.
type Feed struct {
	mq    *MQ
	topic string
}

func NewFeed(m *MQ, topic string) *Feed {
	return &Feed{mq: m, topic: topic}
}

func (f *Feed) Topic() string {
	return f.topic
}

// PublishEntry sends entry as JSON. Kind, problem and verdict are copied to
// message attributes so consumers can filter without decoding.
func (f *Feed) PublishEntry(ctx context.Context, entry types.JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		"entry_id":   entry.ID.String(),
		"kind":       string(entry.Kind),
		"problem_id": entry.ProblemID,
	}
	if entry.Verdict != "" {
		attrs["verdict"] = string(entry.Verdict)
	}
	if _, err := f.mq.Publish(ctx, f.topic, data, attrs); err != nil {
		return fmt.Errorf("publish to %s: %w", f.topic, err)
	}
	return nil
}

// Follow delivers every entry published on the topic to fn until ctx is
// done. onError, when non-nil, sees undecodable messages.
func (f *Feed) Follow(ctx context.Context, fn func(context.Context, types.JournalEntry) error, onError func(Message, error)) error {
	return f.mq.Subscribe(ctx, f.topic, func(ctx context.Context, msg Message) error {
		entry, err := DecodeEntry(msg.Data)
		if err != nil {
			if onError != nil {
				onError(msg, err)
			}
			return nil
		}
		return fn(ctx, entry)
	})
}

func DecodeEntry(data []byte) (types.JournalEntry, error) {
	var entry types.JournalEntry
	if len(strings.TrimSpace(string(data))) == 0 {
		return entry, ErrMalformedEntry
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	return entry, nil
}
