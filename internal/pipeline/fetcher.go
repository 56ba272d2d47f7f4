package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// Entry is one data file unpacked from a weekly archive zip.
type Entry struct {
	// Name is the entry's base file name inside the zip.
	Name string

	// Data is the raw entry content.
	Data []byte
}

// Fetcher downloads weekly archives and unpacks their data entries.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     logging.Logger
}

// NewFetcher builds a Fetcher with the configured timeout.
func NewFetcher(cfg config.SourceConfig, logger logging.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		userAgent:  cfg.UserAgent,
		logger:     logger.Named("fetcher"),
	}
}

// Fetch downloads the archive and returns its raw bytes.
func (f *Fetcher) Fetch(ctx context.Context, archiveURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveFetchFailed, "failed to build archive request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveFetchFailed, "failed to download archive").WithDetail(archiveURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeArchiveFetchFailed,
			fmt.Sprintf("archive download returned status %d", resp.StatusCode)).WithDetail(archiveURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveFetchFailed, "failed to read archive body").WithDetail(archiveURL)
	}

	f.logger.Debug("archive downloaded",
		logging.String("url", archiveURL),
		logging.Int("bytes", len(data)),
	)
	return data, nil
}

// dataEntry reports whether a zip member carries grant data.  Weekly zips
// bundle one .xml or .txt data file with checksums, images, and directory
// entries that extraction never reads.
func dataEntry(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xml") || strings.HasSuffix(lower, ".txt")
}

// Unzip unpacks the archive's data entries.  Entry order follows the zip
// directory, which keeps record order deterministic across runs.
func Unzip(archive []byte) ([]Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveUnzipFailed, "failed to open archive zip")
	}

	var entries []Entry
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || !dataEntry(file.Name) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeArchiveUnzipFailed, "failed to open archive entry").WithDetail(file.Name)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeArchiveUnzipFailed, "failed to read archive entry").WithDetail(file.Name)
		}

		entries = append(entries, Entry{Name: baseName(file.Name), Data: data})
	}

	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeArchiveUnzipFailed, "archive contains no data entries")
	}
	return entries, nil
}

// baseName strips any directory prefix a zip member may carry.  Zip names
// always use forward slashes.
func baseName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// FetchEntries downloads and unpacks an archive in one step.
func (f *Fetcher) FetchEntries(ctx context.Context, archiveURL string) ([]Entry, error) {
	blob, err := f.Fetch(ctx, archiveURL)
	if err != nil {
		return nil, err
	}
	return Unzip(blob)
}
