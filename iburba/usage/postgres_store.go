package usage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store using PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL usage store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the required tables if they don't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	_, err := s.db.Exec(ctx, queryCreateTable)
	return err
}

func (s *PostgresStore) Increment(ctx context.Context, userID, day string, cost float64) error {
	_, err := s.db.Exec(ctx, queryIncrement, userID, day, cost)
	return err
}

func (s *PostgresStore) Count(ctx context.Context, userID, day string) (int, error) {
	var count int

	err := s.db.QueryRow(ctx, queryCount, userID, day).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}

	return count, err
}

func (s *PostgresStore) TotalCost(ctx context.Context, day string) (float64, error) {
	var total float64
	err := s.db.QueryRow(ctx, queryTotalCost, day).Scan(&total)
	return total, err
}

func (s *PostgresStore) History(ctx context.Context, userID, since string) ([]UsageRecord, error) {
	rows, err := s.db.Query(ctx, queryHistory, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
