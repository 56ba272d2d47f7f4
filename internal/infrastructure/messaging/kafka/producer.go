package kafka

import (
	"context"
	"sync/atomic"

	"github.com/segmentio/kafka-go"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes archive tasks.  It holds one writer per topic (task
// topic and DLQ) and is safe for concurrent use.
type Producer struct {
	tasks  WriterInterface
	dlq    WriterInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a Producer against the configured brokers.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			MaxAttempts:  cfg.ProducerRetries + 1,
			BatchTimeout: cfg.BatchTimeout,
			RequiredAcks: kafka.RequireAll,
		}
	}
	return &Producer{
		tasks:  newWriter(TopicArchiveTasks),
		dlq:    newWriter(TopicArchiveTasksDLQ),
		logger: logger.Named("producer"),
	}
}

// NewProducerFromWriters wires explicit writers.  Used by tests.
func NewProducerFromWriters(tasks, dlq WriterInterface, logger logging.Logger) *Producer {
	return &Producer{tasks: tasks, dlq: dlq, logger: logger}
}

func (p *Producer) publish(ctx context.Context, w WriterInterface, task ArchiveTask) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeTaskPublishFailed, "producer is closed")
	}

	payload, err := task.Encode()
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(task.URL),
		Value: payload,
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeTaskPublishFailed, "failed to publish archive task").WithDetail(task.URL)
	}
	return nil
}

// PublishTask enqueues one archive for ingestion.
func (p *Producer) PublishTask(ctx context.Context, task ArchiveTask) error {
	if err := p.publish(ctx, p.tasks, task); err != nil {
		return err
	}
	p.logger.Debug("archive task published",
		logging.String("url", task.URL),
		logging.Int("attempt", task.Attempt),
	)
	return nil
}

// PublishToDLQ parks a task that exhausted its retries.
func (p *Producer) PublishToDLQ(ctx context.Context, task ArchiveTask) error {
	if err := p.publish(ctx, p.dlq, task); err != nil {
		return err
	}
	p.logger.Warn("archive task sent to dlq",
		logging.String("url", task.URL),
		logging.Int("attempt", task.Attempt),
	)
	return nil
}

// Close flushes and closes both writers.  Safe to call more than once.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.tasks.Close(); err != nil {
		return err
	}
	return p.dlq.Close()
}
