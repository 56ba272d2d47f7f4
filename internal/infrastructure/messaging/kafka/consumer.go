package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// TaskHandler processes one archive task.  A nil return commits the message;
// an error leaves redelivery to the retry policy in Run.
type TaskHandler func(ctx context.Context, task ArchiveTask) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads archive tasks from the task topic and dispatches them to a
// handler.  Failed tasks are re-published with an incremented attempt count
// until maxRetries, then parked on the DLQ.
type Consumer struct {
	reader     ReaderInterface
	producer   *Producer
	maxRetries int
	logger     logging.Logger
}

// NewConsumer builds a Consumer in the configured consumer group.
func NewConsumer(cfg config.KafkaConfig, workerCfg config.WorkerConfig, producer *Producer, logger logging.Logger) *Consumer {
	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       TopicArchiveTasks,
		StartOffset: startOffset,
	})
	return &Consumer{
		reader:     reader,
		producer:   producer,
		maxRetries: workerCfg.MaxRetries,
		logger:     logger.Named("consumer"),
	}
}

// NewConsumerFromReader wires an explicit reader.  Used by tests.
func NewConsumerFromReader(reader ReaderInterface, producer *Producer, maxRetries int, logger logging.Logger) *Consumer {
	return &Consumer{reader: reader, producer: producer, maxRetries: maxRetries, logger: logger}
}

// Run consumes until ctx is cancelled.  It returns nil on cancellation and an
// error only when the underlying reader fails irrecoverably.
func (c *Consumer) Run(ctx context.Context, handler TaskHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to fetch archive task")
		}

		c.handleMessage(ctx, handler, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to commit archive task")
		}
	}
}

// handleMessage runs the handler and routes failures.  The message is always
// committed afterwards: retries travel as new messages, never as redelivery.
func (c *Consumer) handleMessage(ctx context.Context, handler TaskHandler, msg kafka.Message) {
	task, err := DecodeArchiveTask(msg.Value)
	if err != nil {
		// Undecodable payloads can never succeed; drop with a log line.
		c.logger.Error("discarding malformed archive task", logging.Err(err))
		return
	}

	if err := handler(ctx, task); err == nil {
		return
	} else if task.Attempt >= c.maxRetries {
		c.logger.Error("archive task exhausted retries",
			logging.String("url", task.URL),
			logging.Int("attempt", task.Attempt),
			logging.Err(err),
		)
		if dlqErr := c.producer.PublishToDLQ(ctx, task); dlqErr != nil {
			c.logger.Error("failed to park task on dlq", logging.String("url", task.URL), logging.Err(dlqErr))
		}
	} else {
		c.logger.Warn("archive task failed, requeueing",
			logging.String("url", task.URL),
			logging.Int("attempt", task.Attempt),
			logging.Err(err),
		)
		retry := task
		retry.Attempt++
		if pubErr := c.producer.PublishTask(ctx, retry); pubErr != nil {
			c.logger.Error("failed to requeue task", logging.String("url", task.URL), logging.Err(pubErr))
		}
	}
}

// Close shuts the reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
