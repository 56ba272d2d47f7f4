package extraction

import (
	"time"

	"github.com/google/uuid"

	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// normalize finalizes one candidate record.  It reports false for a record
// whose every field is absent: an empty shell carries no information and must
// not be forwarded.  This is the sole point in the engine where records are
// culled; no earlier stage drops them.
func normalize(rec patent.NormalizedRecord) (patent.NormalizedRecord, bool) {
	if rec.IsEmpty() {
		return rec, false
	}
	return rec, true
}

// ToStorage converts a normalized record into its persisted shape, assigning
// a fresh row identifier and serializing the claims collection to its opaque
// string form.
func ToStorage(rec patent.NormalizedRecord) patent.StorageRecord {
	return patent.StorageRecord{
		ID:                uuid.NewString(),
		ApplicationNumber: rec.ApplicationNumber,
		RecordType:        rec.RecordType,
		Language:          rec.Language,
		Country:           rec.Country,
		DateProduced:      rec.DateProduced,
		DatePublished:     rec.DatePublished,
		DTDVersion:        rec.DTDVersion,
		FileName:          rec.FileName,
		PatentStatus:      rec.PatentStatus,
		Claims:            rec.ClaimsSerialized(),
		InventionTitle:    rec.InventionTitle,
		InventionID:       rec.InventionID,
		IngestedAt:        time.Now().UTC(),
	}
}
