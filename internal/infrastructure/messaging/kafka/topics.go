// Package kafka carries archive-ingestion tasks between the sync scheduler
// and the worker fleet.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/openipdata/grantfeed/pkg/errors"
)

// Topic names.  The DLQ receives tasks that exhausted their retries.
const (
	TopicArchiveTasks    = "grant.archive.process"
	TopicArchiveTasksDLQ = "grant.archive.process.dlq"
)

// ArchiveTask asks a worker to ingest one bulk archive.
type ArchiveTask struct {
	// URL is the absolute download URL of the archive; it is also the
	// ledger key and the message key, so retries of the same archive stay
	// on one partition.
	URL string `json:"url"`

	// Year is the grant year the archive was listed under.
	Year string `json:"year"`

	// Attempt counts deliveries, starting at 1.
	Attempt int `json:"attempt"`

	// EnqueuedAt is when the task was produced.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Encode serializes the task for the wire.
func (t ArchiveTask) Encode() ([]byte, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode archive task")
	}
	return b, nil
}

// DecodeArchiveTask parses a wire payload back into an ArchiveTask.
func DecodeArchiveTask(payload []byte) (ArchiveTask, error) {
	var t ArchiveTask
	if err := json.Unmarshal(payload, &t); err != nil {
		return ArchiveTask{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode archive task")
	}
	if t.URL == "" {
		return ArchiveTask{}, errors.New(errors.ErrCodeValidation, "archive task has no url")
	}
	return t, nil
}
