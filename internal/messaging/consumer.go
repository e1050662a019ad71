package messaging

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/bizops-backend/internal/config"
)

var consumerTracer = otel.Tracer("messaging/consumer")

// HandlerFunc processes one message payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	topic   string
	groupID string
	logger  zerolog.Logger

	maxAttempts    uint64
	initialBackoff time.Duration
}

type ConsumerOption func(*Consumer, *kafka.ReaderConfig)

func WithStartOffset(offset int64) ConsumerOption {
	return func(_ *Consumer, cfg *kafka.ReaderConfig) {
		cfg.StartOffset = offset
	}
}

// WithRetry sets how many times a failing message is handled before Consume
// gives up on it.
func WithRetry(attempts uint64, initial time.Duration) ConsumerOption {
	return func(c *Consumer, _ *kafka.ReaderConfig) {
		c.maxAttempts = attempts
		c.initialBackoff = initial
	}
}

func NewConsumer(cfg config.KafkaConfig, logger zerolog.Logger, opts ...ConsumerOption) *Consumer {
	readerCfg := kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.OrderTopic,
		GroupID: cfg.GroupID,
	}

	c := &Consumer{
		topic:          cfg.OrderTopic,
		groupID:        cfg.GroupID,
		logger:         logger,
		maxAttempts:    3,
		initialBackoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c, &readerCfg)
	}
	c.reader = kafka.NewReader(readerCfg)

	return c
}

// Consume fetches messages until ctx is done. A message is committed only
// after handler succeeds. A handler that keeps failing past the retry budget
// stops the loop with its error and the message is redelivered on restart.
func (c *Consumer) Consume(ctx context.Context, handler HandlerFunc) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if err := c.processWithRetry(ctx, msg, handler); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (c *Consumer) processWithRetry(ctx context.Context, msg kafka.Message, handler HandlerFunc) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff

	var policy backoff.BackOff = b
	if c.maxAttempts > 0 {
		policy = backoff.WithMaxRetries(b, c.maxAttempts-1)
	}

	return backoff.RetryNotify(
		func() error { return c.processMessage(ctx, msg, handler) },
		backoff.WithContext(policy, ctx),
		func(err error, wait time.Duration) {
			c.logger.Warn().Err(err).
				Int64("offset", msg.Offset).
				Int("partition", msg.Partition).
				Dur("retry_in", wait).
				Msg("message handler failed, retrying")
		},
	)
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message, handler HandlerFunc) error {
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, headerCarrier{msg: &msg})

	spanCtx, span := consumerTracer.Start(parentCtx, "process "+c.topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("process"),
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(c.topic),
			semconv.MessagingKafkaConsumerGroup(c.groupID),
			semconv.MessagingKafkaMessageOffset(int(msg.Offset)),
			semconv.MessagingDestinationPartitionID(strconv.Itoa(msg.Partition)),
			semconv.MessagingKafkaMessageKey(string(msg.Key)),
		),
	)
	defer span.End()

	if err := handler(spanCtx, msg.Value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
