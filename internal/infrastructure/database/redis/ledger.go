package redis

import (
	"context"
	"time"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// SyncLedger records which bulk archives have already been ingested so that
// repeated sync runs skip completed work.  Membership is keyed by the archive
// URL; an entry is added only after every record of the archive has been
// persisted, which keeps re-runs idempotent.
//
// Layout:
//
//	<prefix>:ledger:archives        SET of completed archive URLs
//	<prefix>:ledger:failed          HASH archive URL → last error text
type SyncLedger struct {
	client    *Client
	keyPrefix string
	logger    logging.Logger
}

// NewSyncLedger builds a SyncLedger on top of an established client.
func NewSyncLedger(client *Client, keyPrefix string, logger logging.Logger) *SyncLedger {
	if keyPrefix == "" {
		keyPrefix = "grantfeed"
	}
	return &SyncLedger{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.Named("ledger"),
	}
}

func (l *SyncLedger) archivesKey() string { return l.keyPrefix + ":ledger:archives" }
func (l *SyncLedger) failedKey() string   { return l.keyPrefix + ":ledger:failed" }

// IsDone reports whether the archive at url has already been fully ingested.
func (l *SyncLedger) IsDone(ctx context.Context, url string) (bool, error) {
	done, err := l.client.Redis().SIsMember(ctx, l.archivesKey(), url).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "ledger membership check failed")
	}
	return done, nil
}

// MarkDone records the archive at url as fully ingested and clears any prior
// failure note for it.
func (l *SyncLedger) MarkDone(ctx context.Context, url string) error {
	if err := l.client.Redis().SAdd(ctx, l.archivesKey(), url).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "ledger mark failed")
	}
	if err := l.client.Redis().HDel(ctx, l.failedKey(), url).Err(); err != nil {
		// The completion mark is already durable; a stale failure note is
		// cosmetic, so log and move on.
		l.logger.Warn("failed to clear failure note", logging.String("url", url), logging.Err(err))
	}
	l.logger.Debug("archive marked done", logging.String("url", url))
	return nil
}

// MarkFailed records the most recent ingestion error for the archive at url.
// Failed archives stay out of the done set and are retried on the next run.
func (l *SyncLedger) MarkFailed(ctx context.Context, url string, cause error) error {
	note := time.Now().UTC().Format(time.RFC3339) + " " + cause.Error()
	if err := l.client.Redis().HSet(ctx, l.failedKey(), url, note).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "ledger failure note failed")
	}
	return nil
}

// DoneCount returns the number of archives recorded as fully ingested.
func (l *SyncLedger) DoneCount(ctx context.Context) (int64, error) {
	n, err := l.client.Redis().SCard(ctx, l.archivesKey()).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "ledger count failed")
	}
	return n, nil
}

// Failures returns the recorded failure notes keyed by archive URL.
func (l *SyncLedger) Failures(ctx context.Context) (map[string]string, error) {
	m, err := l.client.Redis().HGetAll(ctx, l.failedKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "ledger failure listing failed")
	}
	return m, nil
}

// Reset forgets all completion marks and failure notes.  Used by full
// re-ingestion runs.
func (l *SyncLedger) Reset(ctx context.Context) error {
	if err := l.client.Redis().Del(ctx, l.archivesKey(), l.failedKey()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "ledger reset failed")
	}
	l.logger.Info("ledger reset")
	return nil
}
