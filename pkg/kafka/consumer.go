// Package kafka consumes and publishes grovi events over Kafka.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rizzani/grovi-sub000/pkg/logger"
)

const tracerName = "github.com/rizzani/grovi-sub000/pkg/kafka"

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying: the consumer dead-letters the
// message after the first failed attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// deadLetterPublisher receives messages the consumer gives up on.
type deadLetterPublisher interface {
	Publish(ctx context.Context, original kafka.Message, cause error, consumerGroup string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
	// MaxRetries is the number of handler attempts per message. Defaults to 3.
	MaxRetries int
	// RetryBackoff is multiplied by the attempt number between attempts.
	// Defaults to 100ms.
	RetryBackoff time.Duration
}

func (c *ConsumerConfig) applyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetterQueue sends undecodable messages and messages that exhaust
// their retries to dlq before they are committed.
func WithDeadLetterQueue(dlq *DeadLetterQueue) ConsumerOption {
	return func(c *Consumer) {
		if dlq != nil {
			c.dlq = dlq
		}
	}
}

// WithIdempotencyStore skips events whose id was already processed.
func WithIdempotencyStore(store IdempotencyStore) ConsumerOption {
	return func(c *Consumer) { c.store = store }
}

// Consumer reads one topic in a consumer group and hands each event to a
// Handler. Messages are committed once handled, dead-lettered or found
// undecodable, so a poison message never blocks its partition.
type Consumer struct {
	reader    messageReader
	cfg       ConsumerConfig
	handler   Handler
	logger    *slog.Logger
	dlq       deadLetterPublisher
	store     IdempotencyStore
	tracer    trace.Tracer
	closeOnce sync.Once
}

// NewConsumer creates a consumer for cfg.Topic in group cfg.GroupID.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return newConsumer(r, cfg, handler, logger, opts...)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	cfg.applyDefaults()
	c := &Consumer{
		reader:  r,
		cfg:     cfg,
		handler: handler,
		logger:  logger.With(slog.String("topic", cfg.Topic), slog.String("group", cfg.GroupID)),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Topic returns the consumed topic.
func (c *Consumer) Topic() string {
	return c.cfg.Topic
}

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping")
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			if !sleep(ctx, c.cfg.RetryBackoff) {
				return c.Close()
			}
			continue
		}

		if !c.process(ctx, msg) {
			c.logger.Info("consumer stopping")
			return c.Close()
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles msg and reports whether it may be committed. It returns
// false only when ctx is canceled before the message was settled.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	start := time.Now()
	defer func() {
		handleDuration.WithLabelValues(c.cfg.Topic, c.cfg.GroupID).Observe(time.Since(start).Seconds())
	}()

	ctx = ExtractTraceContext(ctx, &msg)
	ctx, span := c.tracer.Start(ctx, "consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.String("messaging.kafka.consumer.group", c.cfg.GroupID),
			attribute.Int("messaging.kafka.destination.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
	defer span.End()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.settled(outcomeUndecodable)
		span.SetStatus(codes.Error, "undecodable message")
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
		return true
	}

	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}
	span.SetAttributes(
		attribute.String("event.type", event.EventType),
		attribute.String("event.id", event.EventID),
	)

	if c.seen(ctx, event) {
		c.settled(outcomeDuplicate)
		c.logger.DebugContext(ctx, "skipping duplicate event",
			slog.String("event_id", event.EventID),
			slog.String("event_type", event.EventType),
		)
		return true
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}
		c.logger.WarnContext(ctx, "handler failed",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.cfg.MaxRetries),
			slog.String("error", lastErr.Error()),
		)
		if IsPermanent(lastErr) {
			break
		}
		if attempt < c.cfg.MaxRetries && !sleep(ctx, time.Duration(attempt)*c.cfg.RetryBackoff) {
			return false
		}
	}

	if lastErr != nil {
		c.settled(outcomeFailed)
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		c.logger.ErrorContext(ctx, "handler failed after all retries, skipping message",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
		return true
	}

	c.settled(outcomeProcessed)
	c.remember(ctx, event)
	return true
}

// seen reports whether event was already processed. Store errors count as
// not seen so the event is still handled.
func (c *Consumer) seen(ctx context.Context, event *Event) bool {
	if c.store == nil || event.EventID == "" {
		return false
	}
	ok, err := c.store.Contains(ctx, event.EventID)
	if err != nil {
		c.logger.WarnContext(ctx, "idempotency lookup failed, processing anyway",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return ok
}

func (c *Consumer) remember(ctx context.Context, event *Event) {
	if c.store == nil || event.EventID == "" {
		return
	}
	if err := c.store.Add(ctx, event.EventID); err != nil {
		c.logger.WarnContext(ctx, "failed to record processed event",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.cfg.GroupID); err != nil {
		c.logger.ErrorContext(ctx, "failed to dead-letter message",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return
	}
	deadLettered.WithLabelValues(c.cfg.Topic, c.cfg.GroupID).Inc()
}

// Close closes the reader. It is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
