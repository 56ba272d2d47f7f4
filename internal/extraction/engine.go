package extraction

import (
	"unicode/utf8"

	"github.com/openipdata/grantfeed/pkg/errors"
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// Extract runs one full extraction pass over a decompressed bulk-archive
// entry: blob → per-record substrings → dialect-specific field extraction →
// normalization.  Output records appear in the same relative order as their
// source substrings; the pass is idempotent and holds no state across calls.
//
// The only pass-level failure is an input that cannot be read as text at
// all; every other corruption is absorbed as absent fields or dropped
// records, so a partially corrupt archive yields fewer records, never an
// error.
func Extract(d Dialect, blob []byte, fileNameHint string) ([]patent.NormalizedRecord, error) {
	records, _, err := ExtractWithStats(d, blob, fileNameHint)
	return records, err
}

// Stats summarizes one extraction pass.
type Stats struct {
	// Sections is the number of record substrings the splitter found.
	Sections int

	// Discarded is the number of sections dropped as all-absent.
	Discarded int
}

// ExtractWithStats is Extract plus pass statistics for monitoring.
func ExtractWithStats(d Dialect, blob []byte, fileNameHint string) ([]patent.NormalizedRecord, Stats, error) {
	if !utf8.Valid(blob) {
		return nil, Stats{}, errors.New(errors.ErrCodeBlobUnreadable,
			"archive entry is not valid text").WithDetail("file=" + fileNameHint)
	}

	sections := splitRecords(d, string(blob))
	records := make([]patent.NormalizedRecord, 0, len(sections))
	for _, section := range sections {
		var rec patent.NormalizedRecord
		switch d {
		case DialectICE:
			rec = extractICE(section, fileNameHint)
		case DialectPG25:
			rec = extractPG25(section, fileNameHint)
		case DialectAPS:
			rec = extractAPS(section, fileNameHint)
		default:
			continue
		}
		if normalized, ok := normalize(rec); ok {
			records = append(records, normalized)
		}
	}

	stats := Stats{Sections: len(sections), Discarded: len(sections) - len(records)}
	return records, stats, nil
}

// ExtractICE extracts records from a current-format (us-patent-grant) blob.
func ExtractICE(blob []byte, fileNameHint string) ([]patent.NormalizedRecord, error) {
	return Extract(DialectICE, blob, fileNameHint)
}

// ExtractPG25 extracts records from an older-format (PATDOC v2.5) blob.
func ExtractPG25(blob []byte, fileNameHint string) ([]patent.NormalizedRecord, error) {
	return Extract(DialectPG25, blob, fileNameHint)
}

// ExtractAPS extracts records from a legacy fixed-field text blob.
func ExtractAPS(blob []byte, fileNameHint string) ([]patent.NormalizedRecord, error) {
	return Extract(DialectAPS, blob, fileNameHint)
}
