// Package repositories provides PostgreSQL-backed persistence for normalized
// grant records.
package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openipdata/grantfeed/pkg/errors"
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// recordColumns lists the patent_records columns in insert order.
var recordColumns = []string{
	"id",
	"application_number",
	"record_type",
	"language",
	"country",
	"date_produced",
	"date_published",
	"dtd_version",
	"file_name",
	"patent_status",
	"claims",
	"invention_title",
	"invention_id",
	"ingested_at",
}

const insertRecordSQL = `
	INSERT INTO patent_records (
		id, application_number, record_type, language, country,
		date_produced, date_published, dtd_version, file_name,
		patent_status, claims, invention_title, invention_id, ingested_at
	) VALUES (
		$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
	)`

const selectRecordSQL = `
	SELECT id, application_number, record_type, language, country,
	       date_produced, date_published, dtd_version, file_name,
	       patent_status, claims, invention_title, invention_id, ingested_at
	FROM patent_records`

// insertArgs flattens a StorageRecord into the insert parameter list.
// Nil pointers surface as SQL NULLs.
func insertArgs(rec patent.StorageRecord) []any {
	return []any{
		rec.ID,
		rec.ApplicationNumber,
		rec.RecordType,
		rec.Language,
		rec.Country,
		rec.DateProduced,
		rec.DatePublished,
		rec.DTDVersion,
		rec.FileName,
		rec.PatentStatus,
		rec.Claims,
		rec.InventionTitle,
		rec.InventionID,
		rec.IngestedAt,
	}
}

func scanRecord(row pgx.Row) (patent.StorageRecord, error) {
	var rec patent.StorageRecord
	err := row.Scan(
		&rec.ID,
		&rec.ApplicationNumber,
		&rec.RecordType,
		&rec.Language,
		&rec.Country,
		&rec.DateProduced,
		&rec.DatePublished,
		&rec.DTDVersion,
		&rec.FileName,
		&rec.PatentStatus,
		&rec.Claims,
		&rec.InventionTitle,
		&rec.InventionID,
		&rec.IngestedAt,
	)
	return rec, err
}

// RecordRepository persists normalized grant records.
type RecordRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRecordRepository constructs a ready-to-use RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool, logger logging.Logger) *RecordRepository {
	return &RecordRepository{pool: pool, logger: logger.Named("record_repo")}
}

// SaveBatch inserts all records in a single transaction using a pgx batch.
// One archive entry's records land atomically: either the whole batch is
// visible or none of it.
func (r *RecordRepository) SaveBatch(ctx context.Context, records []patent.StorageRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeRecordPersistFailed, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertRecordSQL, insertArgs(rec)...)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return appErrors.Wrap(err, appErrors.ErrCodeRecordPersistFailed, "failed to insert record batch")
		}
	}
	if err := results.Close(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeRecordPersistFailed, "failed to close record batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeRecordPersistFailed, "failed to commit record batch")
	}

	r.logger.Debug("record batch persisted", logging.Int("count", len(records)))
	return nil
}

// FindByID returns one record by its identifier.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (patent.StorageRecord, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, selectRecordSQL+" WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return patent.StorageRecord{}, appErrors.New(appErrors.ErrCodeRecordNotFound, "record not found").WithDetail(id)
		}
		return patent.StorageRecord{}, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query record")
	}
	return rec, nil
}

// List returns records page by page, newest first.
func (r *RecordRepository) List(ctx context.Context, limit, offset int) ([]patent.StorageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, selectRecordSQL+" ORDER BY ingested_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list records")
	}
	defer rows.Close()

	var records []patent.StorageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan record")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate records")
	}
	return records, nil
}

// CountByType returns record counts grouped by record_type.  Records with an
// absent type are grouped under the empty string.
func (r *RecordRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT COALESCE(record_type, ''), COUNT(*) FROM patent_records GROUP BY 1`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count records")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan count row")
		}
		counts[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate count rows")
	}
	return counts, nil
}
