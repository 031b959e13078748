package mq

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/codecoach/client/config"
)

const (
	sqsMaxMessages = 10
	sqsWaitSeconds = 5
)

// sqsBackend carries the results feed over one SQS queue. The topic
// is sent as the "topic" attribute; SQS has no topics of its own.
type sqsBackend struct {
	client   *sqs.Client
	queueURL string
}

func newSQSBackend(ctx context.Context, cfg config.SQSConfig) (*sqsBackend, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, errors.New("sqs queue url is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return &sqsBackend{
		client:   sqs.NewFromConfig(awsCfg),
		queueURL: cfg.QueueURL,
	}, nil
}

func (s *sqsBackend) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	msgAttrs := make(map[string]sqstypes.MessageAttributeValue, len(attrs)+1)
	for key, value := range attrs {
		if value == "" {
			continue
		}
		msgAttrs[key] = stringAttribute(value)
	}
	if topic != "" {
		msgAttrs["topic"] = stringAttribute(topic)
	}

	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(data)),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// Subscribe long-polls the queue. Messages tagged with another topic are
// left for their own readers; handled messages are deleted.
func (s *sqsBackend) Subscribe(ctx context.Context, topic string, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(s.queueURL),
			MaxNumberOfMessages:   sqsMaxMessages,
			WaitTimeSeconds:       sqsWaitSeconds,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for _, msg := range out.Messages {
			attrs := make(map[string]string, len(msg.MessageAttributes))
			for key, value := range msg.MessageAttributes {
				attrs[key] = aws.ToString(value.StringValue)
			}
			if tagged, ok := attrs["topic"]; ok && tagged != topic {
				continue
			}

			message := Message{
				ID:         aws.ToString(msg.MessageId),
				Data:       []byte(aws.ToString(msg.Body)),
				Attributes: attrs,
			}
			if err := handler(ctx, message); err != nil {
				// Left in the queue; redelivered after the visibility timeout.
				continue
			}
			if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(s.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				return err
			}
		}
	}
}

func (s *sqsBackend) Close() error {
	return nil
}

func stringAttribute(value string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(value),
	}
}
