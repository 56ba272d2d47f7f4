// Package patent defines the normalized patent-grant record schema shared by
// the extraction engine, the persistence layer, and the HTTP interface.
// Every bulk-file dialect converges on NormalizedRecord; no dialect-specific
// types escape internal/extraction.
package patent

import "encoding/json"

// RecordType values derivable from source records.
const (
	TypeDesign  = "design"
	TypeUtility = "utility"
)

// NormalizedRecord is the single output schema of the extraction engine, one
// per patent grant.  Every field is independently optional: a nil pointer (or
// nil claims slice) means the source record did not yield the field, which is
// distinct from an empty string — extractors never emit present-but-empty
// values.
type NormalizedRecord struct {
	// ApplicationNumber is the primary identifier; its location in the source
	// differs per dialect.
	ApplicationNumber *string `json:"application_number,omitempty"`

	// RecordType is "design" or "utility" when derivable, else absent.
	RecordType *string `json:"record_type,omitempty"`

	// Language and Country describe the filer locale; present only in the
	// current XML dialect.
	Language *string `json:"language,omitempty"`
	Country  *string `json:"country,omitempty"`

	// DateProduced and DatePublished are calendar dates carried as raw source
	// strings; the token format is not normalized across dialects.
	DateProduced  *string `json:"date_produced,omitempty"`
	DatePublished *string `json:"date_published,omitempty"`

	// DTDVersion is the structural version marker of the source record,
	// present only where the dialect exposes it.
	DTDVersion *string `json:"dtd_version,omitempty"`

	// FileName identifies the originating archive entry.  It is supplied by
	// the caller except where the dialect embeds it in the record itself.
	FileName *string `json:"file_name,omitempty"`

	PatentStatus *string `json:"patent_status,omitempty"`

	// Claims holds one entry per claim in source order.  Claim numbering from
	// the source is not retained; only ordering is.
	Claims []string `json:"claims,omitempty"`

	InventionTitle *string `json:"invention_title,omitempty"`
	InventionID    *string `json:"invention_id,omitempty"`
}

// IsEmpty reports whether every field of the record is absent.  Such a record
// carries no information and must not be forwarded downstream; the record
// normalizer is the sole culling point.
func (r *NormalizedRecord) IsEmpty() bool {
	return r.ApplicationNumber == nil &&
		r.RecordType == nil &&
		r.Language == nil &&
		r.Country == nil &&
		r.DateProduced == nil &&
		r.DatePublished == nil &&
		r.DTDVersion == nil &&
		r.FileName == nil &&
		r.PatentStatus == nil &&
		r.Claims == nil &&
		r.InventionTitle == nil &&
		r.InventionID == nil
}

// ClaimsSerialized returns the storage representation of the claims
// collection: a JSON array string when claims are present, nil when absent.
// The persisted schema stores claims as one opaque string rather than a list.
func (r *NormalizedRecord) ClaimsSerialized() *string {
	if r.Claims == nil {
		return nil
	}
	data, err := json.Marshal(r.Claims)
	if err != nil {
		// []string cannot fail to marshal; guard kept for the interface.
		return nil
	}
	s := string(data)
	return &s
}

// String returns an optional-string pointer for a non-empty value, nil
// otherwise.  Extractors use it to collapse "located but empty" into absent.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
