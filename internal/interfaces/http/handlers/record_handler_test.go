package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

type fakeRecordReader struct {
	records []patent.StorageRecord
	listErr error
}

func (f *fakeRecordReader) FindByID(ctx context.Context, id string) (patent.StorageRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return patent.StorageRecord{}, errors.New(errors.ErrCodeRecordNotFound, "record not found").WithDetail(id)
}

func (f *fakeRecordReader) List(ctx context.Context, limit, offset int) ([]patent.StorageRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func sampleRecord() patent.StorageRecord {
	return patent.StorageRecord{
		ID:                "rec-1",
		ApplicationNumber: patent.String("09876543"),
		RecordType:        patent.String("utility"),
		InventionTitle:    patent.String("A Widget"),
		IngestedAt:        time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
}

func newRecordRouter(reader RecordReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRecordHandler(reader, logging.NewNopLogger())
	router := gin.New()
	router.GET("/api/v1/records", handler.List)
	router.GET("/api/v1/records/:id", handler.Get)
	return router
}

func TestRecordHandler_List(t *testing.T) {
	router := newRecordRouter(&fakeRecordReader{records: []patent.StorageRecord{sampleRecord()}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Records []map[string]any `json:"records"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "A Widget", body.Records[0]["invention_title"])

	// Absent fields are omitted, not null.
	_, present := body.Records[0]["language"]
	assert.False(t, present)
}

func TestRecordHandler_Get(t *testing.T) {
	router := newRecordRouter(&fakeRecordReader{records: []patent.StorageRecord{sampleRecord()}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records/rec-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"application_number":"09876543"`)
}

func TestRecordHandler_Get_NotFound(t *testing.T) {
	router := newRecordRouter(&fakeRecordReader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records/absent", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.ErrCodeRecordNotFound))
}

func TestRecordHandler_List_Error(t *testing.T) {
	router := newRecordRouter(&fakeRecordReader{
		listErr: errors.New(errors.ErrCodeDatabaseError, "connection lost"),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
