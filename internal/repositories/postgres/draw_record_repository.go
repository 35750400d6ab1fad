package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	"github.com/lib/pq"
)

const (
	insertRecordSQL = `INSERT INTO draw_records (id, round, tier, tier_label, names, pool_before, drawn_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectRecordsSQL = `SELECT id, round, tier, tier_label, names, pool_before, drawn_at
FROM draw_records ORDER BY drawn_at DESC`
)

// DrawRecordRepository implements the repositories.DrawRecordRepository interface
type DrawRecordRepository struct {
	db *sql.DB
}

// NewDrawRecordRepository creates a new DrawRecordRepository
func NewDrawRecordRepository(db *sql.DB) repositories.DrawRecordRepository {
	return &DrawRecordRepository{db: db}
}

func (r *DrawRecordRepository) Create(ctx context.Context, record *models.DrawRecord) error {
	_, err := r.db.ExecContext(ctx, insertRecordSQL,
		record.ID, record.Round, record.Tier, record.TierLabel,
		pq.Array(record.Names), record.PoolBefore, record.DrawnAt)
	if err != nil {
		return fmt.Errorf("failed to insert draw record: %w", err)
	}
	return nil
}

func (r *DrawRecordRepository) FindRecent(ctx context.Context, limit int) ([]*models.DrawRecord, error) {
	query := selectRecordsSQL
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw records: %w", err)
	}
	defer rows.Close()

	records := []*models.DrawRecord{}
	for rows.Next() {
		var (
			rec   models.DrawRecord
			names pq.StringArray
		)
		if err := rows.Scan(&rec.ID, &rec.Round, &rec.Tier, &rec.TierLabel, &names, &rec.PoolBefore, &rec.DrawnAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw record: %w", err)
		}
		rec.Names = []string(names)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read draw records: %w", err)
	}
	return records, nil
}
