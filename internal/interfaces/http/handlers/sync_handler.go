package handlers

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// Enqueuer schedules one grant year for ingestion.
type Enqueuer interface {
	EnqueueYear(ctx context.Context, year string) (int, error)
}

// LedgerStats exposes ledger counters for the stats endpoint.
type LedgerStats interface {
	DoneCount(ctx context.Context) (int64, error)
	Failures(ctx context.Context) (map[string]string, error)
}

// RecordCounter exposes record counts for the stats endpoint.
type RecordCounter interface {
	CountByType(ctx context.Context) (map[string]int64, error)
}

// SyncHandler serves the sync scheduling and statistics endpoints.
type SyncHandler struct {
	enqueuer Enqueuer
	ledger   LedgerStats
	counter  RecordCounter
	logger   logging.Logger
}

// NewSyncHandler builds a SyncHandler.
func NewSyncHandler(enqueuer Enqueuer, ledger LedgerStats, counter RecordCounter, logger logging.Logger) *SyncHandler {
	return &SyncHandler{enqueuer: enqueuer, ledger: ledger, counter: counter, logger: logger}
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// Enqueue serves POST /api/v1/sync/:year.
func (h *SyncHandler) Enqueue(c *gin.Context) {
	year := c.Param("year")
	if !yearRe.MatchString(year) {
		respondError(c, errors.InvalidParam("year must be a four-digit number").WithDetail(year))
		return
	}

	published, err := h.enqueuer.EnqueueYear(c.Request.Context(), year)
	if err != nil {
		h.logger.Error("year enqueue failed", logging.String("year", year), logging.Err(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"year": year, "published": published})
}

// Stats serves GET /api/v1/stats.
func (h *SyncHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.counter.CountByType(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	done, err := h.ledger.DoneCount(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	failures, err := h.ledger.Failures(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records_by_type":   counts,
		"archives_ingested": done,
		"archives_failed":   failures,
	})
}
