package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// RecordReader is the read-only record access the API needs.
type RecordReader interface {
	FindByID(ctx context.Context, id string) (patent.StorageRecord, error)
	List(ctx context.Context, limit, offset int) ([]patent.StorageRecord, error)
}

// RecordHandler serves the extracted-record endpoints.
type RecordHandler struct {
	records RecordReader
	logger  logging.Logger
}

// NewRecordHandler builds a RecordHandler.
func NewRecordHandler(records RecordReader, logger logging.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

// recordView is the JSON shape of one record.  Absent fields are omitted
// rather than rendered as null, mirroring how extraction treats absence.
type recordView struct {
	ID                string   `json:"id"`
	ApplicationNumber *string  `json:"application_number,omitempty"`
	RecordType        *string  `json:"record_type,omitempty"`
	Language          *string  `json:"language,omitempty"`
	Country           *string  `json:"country,omitempty"`
	DateProduced      *string  `json:"date_produced,omitempty"`
	DatePublished     *string  `json:"date_published,omitempty"`
	DTDVersion        *string  `json:"dtd_version,omitempty"`
	FileName          *string  `json:"file_name,omitempty"`
	PatentStatus      *string  `json:"patent_status,omitempty"`
	Claims            *string  `json:"claims,omitempty"`
	InventionTitle    *string  `json:"invention_title,omitempty"`
	InventionID       *string  `json:"invention_id,omitempty"`
	IngestedAt        string   `json:"ingested_at"`
}

func toView(rec patent.StorageRecord) recordView {
	return recordView{
		ID:                rec.ID,
		ApplicationNumber: rec.ApplicationNumber,
		RecordType:        rec.RecordType,
		Language:          rec.Language,
		Country:           rec.Country,
		DateProduced:      rec.DateProduced,
		DatePublished:     rec.DatePublished,
		DTDVersion:        rec.DTDVersion,
		FileName:          rec.FileName,
		PatentStatus:      rec.PatentStatus,
		Claims:            rec.Claims,
		InventionTitle:    rec.InventionTitle,
		InventionID:       rec.InventionID,
		IngestedAt:        rec.IngestedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List serves GET /api/v1/records?limit=&offset=.
func (h *RecordHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.records.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("record listing failed", logging.Err(err))
		respondError(c, err)
		return
	}

	views := make([]recordView, len(records))
	for i, rec := range records {
		views[i] = toView(rec)
	}
	c.JSON(http.StatusOK, gin.H{"records": views, "count": len(views)})
}

// Get serves GET /api/v1/records/:id.
func (h *RecordHandler) Get(c *gin.Context) {
	rec, err := h.records.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(rec))
}
