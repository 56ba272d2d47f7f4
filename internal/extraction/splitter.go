package extraction

import "regexp"

// Record delimiter rules, one per dialect.
//
// The XML rules match non-overlapping spans from an opening root-element tag
// bearing attributes to its closing tag, case-insensitively and across
// newlines.  A truncated trailing record with no closing tag yields no span
// and is silently dropped; that is accepted lossy behaviour, not an error.
var (
	iceRecordRe = regexp.MustCompile(`(?is)<us-patent-grant\s[^>]*>.*?</us-patent-grant>`)
	pgRecordRe  = regexp.MustCompile(`(?is)<patdoc\s[^>]*>.*?</patdoc>`)

	// APS records are introduced by a PATN marker line.  The marker itself
	// is consumed by the split and never appears in an emitted substring.
	apsRecordRe = regexp.MustCompile(`(?m)^PATN\r?\n`)
)

// splitRecords slices one bulk blob into per-record raw substrings in source
// order.  An empty result is a valid outcome (empty blob, or no recognisable
// records), never an error.
func splitRecords(d Dialect, blob string) []string {
	switch d {
	case DialectICE:
		return iceRecordRe.FindAllString(blob, -1)
	case DialectPG25:
		return pgRecordRe.FindAllString(blob, -1)
	case DialectAPS:
		parts := apsRecordRe.Split(blob, -1)
		if len(parts) <= 1 {
			return nil
		}
		// The first slice is whatever precedes the first marker (the file
		// header); it is not a record.
		return parts[1:]
	default:
		return nil
	}
}
