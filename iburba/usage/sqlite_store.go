package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	sqliteCreateTable = `
	CREATE TABLE IF NOT EXISTS usage_records (
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		cost REAL NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
		PRIMARY KEY (user_id, day)
	);
	CREATE INDEX IF NOT EXISTS idx_usage_records_day ON usage_records(day);
	`

	sqliteIncrement = `
		INSERT INTO usage_records (user_id, day, count, cost)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, day)
		DO UPDATE SET
			count = count + 1,
			cost = cost + excluded.cost,
			updated_at = unixepoch()
	`

	sqliteCount = `SELECT count FROM usage_records WHERE user_id = ? AND day = ?`

	sqliteTotalCost = `SELECT COALESCE(SUM(cost), 0) FROM usage_records WHERE day = ?`

	sqliteHistory = `
		SELECT user_id, day, count, cost
		FROM usage_records
		WHERE user_id = ? AND day >= ?
		ORDER BY day ASC
	`
)

// implements Store on a local sqlite database
type SQLiteStore struct {
	db *sql.DB
}

// creates a new sqlite usage store
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteCreateTable); err != nil {
		return fmt.Errorf("init usage schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Increment(ctx context.Context, userID, day string, cost float64) error {
	_, err := s.db.ExecContext(ctx, sqliteIncrement, userID, day, cost)
	return err
}

func (s *SQLiteStore) Count(ctx context.Context, userID, day string) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx, sqliteCount, userID, day).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	return count, err
}

func (s *SQLiteStore) TotalCost(ctx context.Context, day string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, sqliteTotalCost, day).Scan(&total)
	return total, err
}

func (s *SQLiteStore) History(ctx context.Context, userID, since string) ([]UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx, sqliteHistory, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var records []UsageRecord

	for rows.Next() {
		var r UsageRecord
		if err := rows.Scan(&r.UserID, &r.Day, &r.Count, &r.Cost); err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
