package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// buildZip assembles an in-memory zip from name → content pairs.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.SourceConfig{FetchTimeout: 5 * time.Second, UserAgent: "grantfeed-test"}
	return NewFetcher(cfg, logging.NewNopLogger()), server
}

func TestFetcher_Fetch(t *testing.T) {
	fetcher, server := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive-bytes"))
	})

	data, err := fetcher.Fetch(context.Background(), server.URL+"/2024/ipg240102.zip")

	require.NoError(t, err)
	assert.Equal(t, []byte("archive-bytes"), data)
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	fetcher, server := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := fetcher.Fetch(context.Background(), server.URL+"/x.zip")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArchiveFetchFailed))
}

func TestUnzip_KeepsOnlyDataEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"ipg240102.xml":   "<doc/>",
		"checksums.md5":   "abc",
		"images/fig1.tif": "binary",
	})

	entries, err := Unzip(archive)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ipg240102.xml", entries[0].Name)
	assert.Equal(t, []byte("<doc/>"), entries[0].Data)
}

func TestUnzip_StripsDirectories(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"project/pftaps19900101_wk01.txt": "PATN\n",
	})

	entries, err := Unzip(archive)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pftaps19900101_wk01.txt", entries[0].Name)
}

func TestUnzip_RejectsCorruptArchive(t *testing.T) {
	_, err := Unzip([]byte("not a zip"))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArchiveUnzipFailed))
}

func TestUnzip_RejectsEmptyArchive(t *testing.T) {
	archive := buildZip(t, map[string]string{"checksums.md5": "abc"})

	_, err := Unzip(archive)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArchiveUnzipFailed))
}

func TestFetcher_FetchEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{"ipg240102.xml": "<doc/>"})
	fetcher, server := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	entries, err := fetcher.FetchEntries(context.Background(), server.URL+"/ipg240102.zip")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ipg240102.xml", entries[0].Name)
}
