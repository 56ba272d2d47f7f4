package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
)

// fakeReader replays a fixed message sequence, then cancels the context so
// Run returns.
type fakeReader struct {
	cancel    context.CancelFunc
	messages  []kafkago.Message
	committed []kafkago.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		return kafkago.Message{}, context.Canceled
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func mustEncode(t *testing.T, task ArchiveTask) []byte {
	t.Helper()
	payload, err := task.Encode()
	require.NoError(t, err)
	return payload
}

func runConsumer(t *testing.T, tasks []ArchiveTask, maxRetries int, handler TaskHandler) (*fakeReader, *fakeWriter, *fakeWriter) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel}
	for _, task := range tasks {
		reader.messages = append(reader.messages, kafkago.Message{Value: mustEncode(t, task)})
	}

	taskWriter := &fakeWriter{}
	dlqWriter := &fakeWriter{}
	producer := NewProducerFromWriters(taskWriter, dlqWriter, logging.NewNopLogger())
	consumer := NewConsumerFromReader(reader, producer, maxRetries, logging.NewNopLogger())

	require.NoError(t, consumer.Run(ctx, handler))
	return reader, taskWriter, dlqWriter
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	var handled []string
	reader, taskWriter, dlqWriter := runConsumer(t,
		[]ArchiveTask{{URL: "a", Attempt: 1}, {URL: "b", Attempt: 1}},
		3,
		func(ctx context.Context, task ArchiveTask) error {
			handled = append(handled, task.URL)
			return nil
		})

	assert.Equal(t, []string{"a", "b"}, handled)
	assert.Len(t, reader.committed, 2)
	assert.Empty(t, taskWriter.messages)
	assert.Empty(t, dlqWriter.messages)
}

func TestConsumer_RequeuesFailureWithBumpedAttempt(t *testing.T) {
	_, taskWriter, dlqWriter := runConsumer(t,
		[]ArchiveTask{{URL: "a", Attempt: 1}},
		3,
		func(ctx context.Context, task ArchiveTask) error {
			return assert.AnError
		})

	require.Len(t, taskWriter.messages, 1)
	assert.Empty(t, dlqWriter.messages)

	requeued, err := DecodeArchiveTask(taskWriter.messages[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 2, requeued.Attempt)
}

func TestConsumer_ParksExhaustedTaskOnDLQ(t *testing.T) {
	_, taskWriter, dlqWriter := runConsumer(t,
		[]ArchiveTask{{URL: "a", Attempt: 3}},
		3,
		func(ctx context.Context, task ArchiveTask) error {
			return assert.AnError
		})

	assert.Empty(t, taskWriter.messages)
	require.Len(t, dlqWriter.messages, 1)

	parked, err := DecodeArchiveTask(dlqWriter.messages[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 3, parked.Attempt)
}

func TestConsumer_DropsMalformedPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel:   cancel,
		messages: []kafkago.Message{{Value: []byte("{not json")}},
	}
	producer := NewProducerFromWriters(&fakeWriter{}, &fakeWriter{}, logging.NewNopLogger())
	consumer := NewConsumerFromReader(reader, producer, 3, logging.NewNopLogger())

	require.NoError(t, consumer.Run(ctx, func(ctx context.Context, task ArchiveTask) error {
		t.Fatal("handler must not run for malformed payloads")
		return nil
	}))

	// Malformed payloads are still committed so they never block the group.
	assert.Len(t, reader.committed, 1)
}
