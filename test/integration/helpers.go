// Shared infrastructure for the end-to-end ingestion tests: a stub bulk-data
// site served over httptest, a deterministic zip builder, in-memory stand-ins
// for the persistence backends, and canned weekly-file fixtures covering the
// current XML and legacy text eras. All ingestion flow tests depend on this
// file.
package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/messaging/kafka"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/prometheus"
	"github.com/openipdata/grantfeed/internal/pipeline"
	"github.com/openipdata/grantfeed/pkg/types/patent"

	prom "github.com/prometheus/client_golang/prometheus"
)

// ---------------------------------------------------------------------------
// Weekly-file fixtures
// ---------------------------------------------------------------------------

// iceWeekXML is a current-format data file holding two concatenated grant
// documents, the way real weekly files carry thousands.
const iceWeekXML = `<?xml version="1.0" encoding="UTF-8"?>
<us-patent-grant lang="EN" country="US" status="B2" date-produced="20170103" date-publ="20170117" dtd-version="v4.5 2014-04-03" file="US09540001-20170117.XML">
<us-bibliographic-data-grant>
<application-reference appl-type="utility">
<document-id><country>US</country><doc-number>14700001</doc-number></document-id>
</application-reference>
<invention-title id="d0e51">Collapsible shipping crate</invention-title>
</us-bibliographic-data-grant>
<claims id="claims">
<claim id="CLM-00001" num="00001">
<claim-text>1. A crate comprising foldable walls.</claim-text>
</claim>
<claim id="CLM-00002" num="00002">
<claim-text>2. The crate of claim 1, wherein the walls interlock.</claim-text>
</claim>
</claims>
</us-patent-grant>
<?xml version="1.0" encoding="UTF-8"?>
<us-patent-grant lang="EN" country="US" status="S1" date-produced="20170103" date-publ="20170117" dtd-version="v4.5 2014-04-03" file="USD0776543-20170117.XML">
<us-bibliographic-data-grant>
<application-reference appl-type="design">
<document-id><country>US</country><doc-number>29500002</doc-number></document-id>
</application-reference>
<invention-title id="d0e47">Lamp base</invention-title>
</us-bibliographic-data-grant>
<claims id="claims">
<claim id="CLM-00001" num="00001">
<claim-text>The ornamental design for a lamp base, as shown.</claim-text>
</claim>
</claims>
</us-patent-grant>
`

// apsWeekText is a legacy fixed-field data file holding a utility grant with
// two claims and a design grant, each introduced by its PATN marker line.
const apsWeekText = "HHHHHT  900102\r\n" +
	"PATN\r\n" +
	"WKU  048900011\r\n" +
	"PNO  07123456\r\n" +
	"APD  19890315\r\n" +
	"ISD  19900102\r\n" +
	"TTL  Collapsible shipping crate\r\n" +
	"CLMS\r\n" +
	"STM  What is claimed is:\r\n" +
	"NUM  1.\r\n" +
	"PA1  A crate comprising foldable walls.\r\n" +
	"NUM  2.\r\n" +
	"PA1  The crate of claim 1 wherein the walls interlock.\r\n" +
	"PATN\r\n" +
	"WKU  D30612340\r\n" +
	"PNO  07123457\r\n" +
	"ISD  19900102\r\n" +
	"TTL  Lamp base\r\n" +
	"DCLM\r\n" +
	"PAR  The ornamental design for a lamp base, as shown.\r\n"

// ---------------------------------------------------------------------------
// Stub bulk-data site
// ---------------------------------------------------------------------------

// zipEntry is one member of a fixture archive.
type zipEntry struct {
	Name string
	Data []byte
}

// archiveFixture is one weekly archive the stub site serves.
type archiveFixture struct {
	Name    string
	Entries []zipEntry
}

// buildZip packs the entries into an in-memory zip in the given order.
func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			t.Fatalf("write zip entry %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// newBulkSite serves per-year listing pages and archive downloads the way the
// grant data site does. Listing pages link every archive twice and carry a
// checksums file that discovery must ignore.
func newBulkSite(t *testing.T, years map[string][]archiveFixture) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for year, archives := range years {
		year, archives := year, archives

		var listing strings.Builder
		listing.WriteString("<html><body><table>\n")
		for _, a := range archives {
			fmt.Fprintf(&listing, `<tr><td><a href="%s">%s</a></td><td><a href="%s">[zip]</a></td></tr>%s`,
				a.Name, a.Name, a.Name, "\n")
		}
		listing.WriteString(`<tr><td><a href="checksums.txt">checksums.txt</a></td></tr>` + "\n")
		listing.WriteString("</table></body></html>\n")

		mux.HandleFunc("/"+year+"/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(listing.String()))
		})
		for _, a := range archives {
			blob := buildZip(t, a.Entries)
			mux.HandleFunc("/"+year+"/"+a.Name, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/zip")
				_, _ = w.Write(blob)
			})
		}
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// In-memory backend stand-ins
// ---------------------------------------------------------------------------

type memLedger struct {
	mu     sync.Mutex
	done   map[string]bool
	failed map[string]string
}

func newMemLedger() *memLedger {
	return &memLedger{done: map[string]bool{}, failed: map[string]string{}}
}

func (l *memLedger) IsDone(_ context.Context, url string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done[url], nil
}

func (l *memLedger) MarkDone(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[url] = true
	delete(l.failed, url)
	return nil
}

func (l *memLedger) MarkFailed(_ context.Context, url string, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed[url] = cause.Error()
	return nil
}

type memRecordSink struct {
	mu   sync.Mutex
	rows []patent.StorageRecord
}

func (s *memRecordSink) SaveBatch(_ context.Context, records []patent.StorageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, records...)
	return nil
}

func (s *memRecordSink) Rows() []patent.StorageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]patent.StorageRecord, len(s.rows))
	copy(out, s.rows)
	return out
}

type memArchiveSink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemArchiveSink() *memArchiveSink {
	return &memArchiveSink{objects: map[string][]byte{}}
}

func (s *memArchiveSink) Put(_ context.Context, year, entryName string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[year+"/"+entryName] = blob
	return nil
}

type memPublisher struct {
	mu    sync.Mutex
	tasks []kafka.ArchiveTask
}

func (p *memPublisher) PublishTask(_ context.Context, task kafka.ArchiveTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return nil
}

func (p *memPublisher) Tasks() []kafka.ArchiveTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kafka.ArchiveTask, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// ---------------------------------------------------------------------------
// Service wiring
// ---------------------------------------------------------------------------

// ingestEnv wires a pipeline service with real discovery, real fetching and
// real extraction against the stub site, backed by the in-memory stand-ins.
type ingestEnv struct {
	Service  *pipeline.Service
	Ledger   *memLedger
	Records  *memRecordSink
	Archives *memArchiveSink
	Pub      *memPublisher
	Metrics  *prometheus.Metrics
}

func newIngestEnv(t *testing.T, site *httptest.Server) *ingestEnv {
	t.Helper()
	srcCfg := config.SourceConfig{
		BaseURL:      site.URL,
		FetchTimeout: 10 * time.Second,
		UserAgent:    "grantfeed-test/0",
	}
	logger := logging.NewNopLogger()

	env := &ingestEnv{
		Ledger:   newMemLedger(),
		Records:  &memRecordSink{},
		Archives: newMemArchiveSink(),
		Pub:      &memPublisher{},
		Metrics:  prometheus.NewMetrics(prom.NewRegistry()),
	}
	env.Service = pipeline.NewService(pipeline.ServiceDeps{
		Discovery: pipeline.NewDiscovery(srcCfg, logger),
		Fetcher:   pipeline.NewFetcher(srcCfg, logger),
		Ledger:    env.Ledger,
		Records:   env.Records,
		Archives:  env.Archives,
		Publisher: env.Pub,
		Metrics:   env.Metrics,
		Logger:    logger,
	})
	return env
}

// deref reads an optional string field, failing the test when it is absent.
func deref(t *testing.T, field string, v *string) string {
	t.Helper()
	if v == nil {
		t.Fatalf("expected field %s to be present", field)
	}
	return *v
}
