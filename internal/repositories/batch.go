package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/vidshelf/internal/models"
)

var _ models.BatchStore = (*BatchRepository)(nil)

// BatchRepository implements [models.BatchStore] on the import_batches table.
type BatchRepository struct {
	db *sql.DB
}

// NewBatchRepository creates a new BatchRepository with the given database connection
func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Record inserts a finished batch
func (r *BatchRepository) Record(batch *models.ImportBatch) error {
	if batch.ID == "" {
		return fmt.Errorf("validation failed: batch id is required")
	}

	query := `
		INSERT INTO import_batches (id, total, imported, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		batch.ID,
		batch.Total,
		batch.Imported,
		batch.Failed,
		batch.StartedAt,
		batch.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import batch: %w", err)
	}

	return nil
}

// Recent returns up to limit batches, newest first
func (r *BatchRepository) Recent(limit int) ([]*models.ImportBatch, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, total, imported, failed, started_at, finished_at
		FROM import_batches
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.ImportBatch
	for rows.Next() {
		var (
			b          models.ImportBatch
			startedAt  time.Time
			finishedAt time.Time
		)
		if err := rows.Scan(&b.ID, &b.Total, &b.Imported, &b.Failed, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		b.StartedAt = startedAt
		b.FinishedAt = finishedAt
		batches = append(batches, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return batches, nil
}
