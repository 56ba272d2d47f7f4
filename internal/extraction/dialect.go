// Package extraction implements the multi-dialect patent-grant record
// extraction engine.  Given one decompressed bulk-archive entry (a single
// text blob spanning a year or batch in one of three incompatible dialects
// accumulated since 1980), it produces a sequence of normalized patent
// records, tolerating per-field and per-record corruption without aborting
// the batch.
//
// The engine is a pure, single-threaded, synchronous transformation: it
// performs no I/O, holds no state across invocations, and may be invoked
// concurrently on independent blobs.
package extraction

import (
	"strings"

	"github.com/openipdata/grantfeed/pkg/errors"
)

// Dialect identifies one of the three bulk-file record formats.  It is a
// closed enumeration selected once by the caller from the archive entry's
// file name; extractors are never dispatched polymorphically.
type Dialect int

const (
	// DialectICE is the current grant XML format (us-patent-grant root
	// element, ICE DTDs, 2005–present).  Archive entries carry the "ipg"
	// file-name prefix.
	DialectICE Dialect = iota

	// DialectPG25 is the older grant XML format (PATDOC root element,
	// version 2.5 DTDs, 2002–2004).  Archive entries carry the "pg" prefix.
	DialectPG25

	// DialectAPS is the legacy fixed-field text format (APS, 1976–2001).
	// Archive entries carry the "pftaps" prefix.
	DialectAPS
)

// String returns the dialect's short name for logs and metric labels.
func (d Dialect) String() string {
	switch d {
	case DialectICE:
		return "ice"
	case DialectPG25:
		return "pg25"
	case DialectAPS:
		return "aps"
	default:
		return "unknown"
	}
}

// DialectForFileName selects the dialect from an archive entry's file-name
// prefix.  The "ipg" check must precede the "pg" check since "ipg…" also
// matches the shorter prefix.  Unknown prefixes are an error; the caller
// decides whether to skip or fail the archive.
func DialectForFileName(name string) (Dialect, error) {
	base := strings.ToLower(name)
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	switch {
	case strings.HasPrefix(base, "ipg"):
		return DialectICE, nil
	case strings.HasPrefix(base, "pftaps"):
		return DialectAPS, nil
	case strings.HasPrefix(base, "pg"):
		return DialectPG25, nil
	default:
		return 0, errors.New(errors.ErrCodeDialectUnknown,
			"no dialect for file name").WithDetail("name=" + name)
	}
}
