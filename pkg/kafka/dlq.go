package kafka

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix prefixes every dead-letter topic.
const DLQTopicPrefix = TopicPrefix + ".dlq"

// DLQTopic returns the dead-letter topic for originalTopic.
func DLQTopic(originalTopic string) string {
	return DLQTopicPrefix + "." + originalTopic
}

// DeadLetterQueue republishes messages a consumer gave up on, with headers
// recording where they came from and why they failed.
type DeadLetterQueue struct {
	producer *Producer
	logger   *slog.Logger
}

// NewDeadLetterQueue publishes dead letters through producer.
func NewDeadLetterQueue(producer *Producer, logger *slog.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{producer: producer, logger: logger}
}

// Publish sends original to its dead-letter topic.
func (d *DeadLetterQueue) Publish(ctx context.Context, original kafka.Message, cause error, consumerGroup string) error {
	headers := make([]kafka.Header, 0, len(original.Headers)+5)
	headers = append(headers, original.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(original.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(original.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(original.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(consumerGroup)},
	)
	if cause != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(cause.Error())})
	}

	msg := kafka.Message{
		Topic:   DLQTopic(original.Topic),
		Key:     original.Key,
		Value:   original.Value,
		Headers: headers,
	}
	if err := d.producer.PublishMessage(ctx, msg); err != nil {
		return err
	}

	d.logger.WarnContext(ctx, "message sent to DLQ",
		slog.String("dlq_topic", msg.Topic),
		slog.String("original_topic", original.Topic),
		slog.Int("partition", original.Partition),
		slog.Int64("offset", original.Offset),
		slog.String("consumer_group", consumerGroup),
	)
	return nil
}
