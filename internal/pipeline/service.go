package pipeline

import (
	"context"
	"time"

	"github.com/openipdata/grantfeed/internal/extraction"
	"github.com/openipdata/grantfeed/internal/infrastructure/messaging/kafka"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/prometheus"
	"github.com/openipdata/grantfeed/pkg/errors"
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// Ledger tracks which archives have been fully ingested.
type Ledger interface {
	IsDone(ctx context.Context, url string) (bool, error)
	MarkDone(ctx context.Context, url string) error
	MarkFailed(ctx context.Context, url string, cause error) error
}

// RecordSink persists extracted records.
type RecordSink interface {
	SaveBatch(ctx context.Context, records []patent.StorageRecord) error
}

// ArchiveSink keeps raw archive entries for replay.
type ArchiveSink interface {
	Put(ctx context.Context, year, entryName string, blob []byte) error
}

// TaskPublisher enqueues archive tasks for the worker fleet.
type TaskPublisher interface {
	PublishTask(ctx context.Context, task kafka.ArchiveTask) error
}

// Lister discovers the weekly archives of one grant year.
type Lister interface {
	ListYear(ctx context.Context, year string) ([]Archive, error)
}

// EntryFetcher downloads and unpacks one archive.
type EntryFetcher interface {
	FetchEntries(ctx context.Context, archiveURL string) ([]Entry, error)
}

// Service orchestrates archive ingestion.  The scheduler half (EnqueueYear)
// runs in the API server; the worker half (ProcessArchive) runs in the
// worker fleet.  Both consult the same ledger, so work is never repeated.
type Service struct {
	discovery Lister
	fetcher   EntryFetcher
	ledger    Ledger
	records   RecordSink
	archives  ArchiveSink
	publisher TaskPublisher
	metrics   *prometheus.Metrics
	logger    logging.Logger
}

// ServiceDeps carries the collaborators for NewService.  Archives and
// Publisher may be nil: a nil Publisher limits the service to inline
// processing, a nil Archives skips raw-entry retention.
type ServiceDeps struct {
	Discovery Lister
	Fetcher   EntryFetcher
	Ledger    Ledger
	Records   RecordSink
	Archives  ArchiveSink
	Publisher TaskPublisher
	Metrics   *prometheus.Metrics
	Logger    logging.Logger
}

// NewService wires a Service from its dependencies.
func NewService(deps ServiceDeps) *Service {
	return &Service{
		discovery: deps.Discovery,
		fetcher:   deps.Fetcher,
		ledger:    deps.Ledger,
		records:   deps.Records,
		archives:  deps.Archives,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger.Named("pipeline"),
	}
}

// EnqueueYear discovers one year's archives and publishes a task for every
// archive the ledger has not seen.  It returns the number of tasks published.
func (s *Service) EnqueueYear(ctx context.Context, year string) (int, error) {
	if s.publisher == nil {
		return 0, errors.New(errors.ErrCodeInternal, "no task publisher configured")
	}

	archives, err := s.discovery.ListYear(ctx, year)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, archive := range archives {
		done, err := s.ledger.IsDone(ctx, archive.URL)
		if err != nil {
			return published, err
		}
		if done {
			s.metrics.LedgerSkips.Inc()
			continue
		}

		task := kafka.ArchiveTask{
			URL:        archive.URL,
			Year:       archive.Year,
			Attempt:    1,
			EnqueuedAt: time.Now().UTC(),
		}
		if err := s.publisher.PublishTask(ctx, task); err != nil {
			return published, err
		}
		s.metrics.TasksPublished.Inc()
		published++
	}

	s.logger.Info("year enqueued",
		logging.String("year", year),
		logging.Int("discovered", len(archives)),
		logging.Int("published", published),
	)
	return published, nil
}

// ProcessArchive ingests one archive end to end: download, unpack, extract
// every entry, persist the records, retain the raw entries, and mark the
// ledger.  A ledger hit returns immediately with no work done.
func (s *Service) ProcessArchive(ctx context.Context, task kafka.ArchiveTask) error {
	done, err := s.ledger.IsDone(ctx, task.URL)
	if err != nil {
		return err
	}
	if done {
		s.metrics.LedgerSkips.Inc()
		s.metrics.ArchivesProcessed.WithLabelValues(prometheus.OutcomeSkipped).Inc()
		s.logger.Debug("archive already ingested", logging.String("url", task.URL))
		return nil
	}

	start := time.Now()
	entries, err := s.fetcher.FetchEntries(ctx, task.URL)
	if err != nil {
		s.failArchive(ctx, task.URL, err)
		return err
	}
	s.metrics.FetchSeconds.WithLabelValues(task.Year).Observe(time.Since(start).Seconds())

	total := 0
	for _, entry := range entries {
		emitted, err := s.processEntry(ctx, task.Year, entry)
		if err != nil {
			s.failArchive(ctx, task.URL, err)
			return err
		}
		total += emitted
	}

	if err := s.ledger.MarkDone(ctx, task.URL); err != nil {
		return err
	}
	s.metrics.ArchivesProcessed.WithLabelValues(prometheus.OutcomeOK).Inc()

	s.logger.Info("archive ingested",
		logging.String("url", task.URL),
		logging.Int("entries", len(entries)),
		logging.Int("records", total),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// processEntry runs extraction over one unpacked data file and persists the
// results.  It returns the number of records emitted.
func (s *Service) processEntry(ctx context.Context, year string, entry Entry) (int, error) {
	dialect, err := extraction.DialectForFileName(entry.Name)
	if err != nil {
		// Unrecognized data files ride along in some weekly zips; they are
		// not part of any dialect era and carry no records.
		s.logger.Warn("skipping entry with unknown naming scheme", logging.String("entry", entry.Name))
		return 0, nil
	}

	start := time.Now()
	records, stats, err := extraction.ExtractWithStats(dialect, entry.Data, entry.Name)
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveExtraction(dialect.String(), len(records), stats.Discarded, time.Since(start))

	if len(records) > 0 {
		rows := make([]patent.StorageRecord, len(records))
		for i, rec := range records {
			rows[i] = extraction.ToStorage(rec)
		}
		if err := s.records.SaveBatch(ctx, rows); err != nil {
			return 0, err
		}
	}

	if s.archives != nil {
		if err := s.archives.Put(ctx, year, entry.Name, entry.Data); err != nil {
			return 0, err
		}
	}

	s.logger.Debug("entry extracted",
		logging.String("entry", entry.Name),
		logging.String("dialect", dialect.String()),
		logging.Int("sections", stats.Sections),
		logging.Int("emitted", len(records)),
		logging.Int("discarded", stats.Discarded),
	)
	return len(records), nil
}

// failArchive records the failure in the ledger and metrics.  Ledger errors
// here are logged, not returned: the original failure wins.
func (s *Service) failArchive(ctx context.Context, url string, cause error) {
	s.metrics.ArchivesProcessed.WithLabelValues(prometheus.OutcomeFailed).Inc()
	if err := s.ledger.MarkFailed(ctx, url, cause); err != nil {
		s.logger.Error("failed to record archive failure", logging.String("url", url), logging.Err(err))
	}
}
