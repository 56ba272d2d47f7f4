package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openipdata/grantfeed/pkg/types/patent"
)

func TestInsertArgs_OrderMatchesColumns(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	rec := patent.StorageRecord{
		ID:                "abc-123",
		ApplicationNumber: patent.String("09876543"),
		RecordType:        patent.String("utility"),
		Language:          patent.String("EN"),
		Country:           patent.String("US"),
		DateProduced:      patent.String("20240102"),
		DatePublished:     patent.String("20240105"),
		DTDVersion:        patent.String("v4.5"),
		FileName:          patent.String("ipg240102.xml"),
		PatentStatus:      patent.String("B2"),
		Claims:            patent.String(`["claim one"]`),
		InventionTitle:    patent.String("A Widget"),
		InventionID:       patent.String("US12345678"),
		IngestedAt:        now,
	}

	args := insertArgs(rec)

	require.Len(t, args, len(recordColumns))
	assert.Equal(t, "abc-123", args[0])
	assert.Equal(t, patent.String("09876543"), args[1])
	assert.Equal(t, patent.String("utility"), args[2])
	assert.Equal(t, patent.String(`["claim one"]`), args[10])
	assert.Equal(t, patent.String("US12345678"), args[12])
	assert.Equal(t, now, args[13])
}

func TestInsertArgs_AbsentFieldsAreNil(t *testing.T) {
	rec := patent.StorageRecord{ID: "only-id"}

	args := insertArgs(rec)

	require.Len(t, args, len(recordColumns))
	// Every optional column carries a typed nil so the driver writes NULL.
	for i := 1; i < len(args)-1; i++ {
		assert.Nil(t, args[i], recordColumns[i])
	}
}

func TestRecordColumns_MatchInsertStatement(t *testing.T) {
	for _, col := range recordColumns {
		assert.Contains(t, insertRecordSQL, col)
		assert.Contains(t, selectRecordSQL, col)
	}
}
