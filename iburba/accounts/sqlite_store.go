package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	sqliteCreateTable = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		created_at INTEGER NOT NULL,
		last_login_at INTEGER
	);
	`

	sqliteInsert = `
		INSERT INTO accounts (id, email, password_hash, plan, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	sqliteFindByID = `
		SELECT id, email, password_hash, plan, created_at, last_login_at
		FROM accounts
		WHERE id = ?
	`

	sqliteFindByEmail = `
		SELECT id, email, password_hash, plan, created_at, last_login_at
		FROM accounts
		WHERE email = ?
	`

	sqliteTouchLogin = `UPDATE accounts SET last_login_at = ? WHERE id = ?`
)

// implements Store on a local sqlite database
type SQLiteStore struct {
	db *sql.DB
}

// creates a new sqlite account store
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteCreateTable); err != nil {
		return fmt.Errorf("init accounts schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, email, passwordHash string, plan Plan) (*Account, error) {
	account := &Account{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Plan:         plan,
		CreatedAt:    time.Unix(time.Now().UTC().Unix(), 0).UTC(),
	}

	_, err := s.db.ExecContext(ctx, sqliteInsert,
		account.ID,
		account.Email,
		account.PasswordHash,
		string(account.Plan),
		account.CreatedAt.Unix(),
	)

	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.findOne(ctx, sqliteFindByID, id)
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, sqliteFindByEmail, NormalizeEmail(email))
}

func (s *SQLiteStore) TouchLogin(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, sqliteTouchLogin, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) findOne(ctx context.Context, query, arg string) (*Account, error) {
	var (
		account   Account
		plan      string
		createdAt int64
		lastLogin sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&plan,
		&createdAt,
		&lastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	account.Plan = Plan(plan)
	account.CreatedAt = time.Unix(createdAt, 0).UTC()

	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0).UTC()
		account.LastLoginAt = &t
	}

	return &account, nil
}
