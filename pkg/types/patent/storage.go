package patent

import "time"

// StorageRecord is the persisted shape of a normalized record.  Eleven of the
// twelve normalized fields are written verbatim; the claims collection is
// written as one serialized string (nil maps to SQL NULL) rather than a list,
// since claims are stored, not individually queryable.
type StorageRecord struct {
	ID                string
	ApplicationNumber *string
	RecordType        *string
	Language          *string
	Country           *string
	DateProduced      *string
	DatePublished     *string
	DTDVersion        *string
	FileName          *string
	PatentStatus      *string
	Claims            *string
	InventionTitle    *string
	InventionID       *string
	IngestedAt        time.Time
}
