package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// creates a new account repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// creates the accounts table if it doesn't exist
func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.db.Exec(ctx, queryCreateTable)
	return err
}

// inserts a new account with a fresh id
func (r *Repository) Create(ctx context.Context, email, passwordHash string, plan Plan) (*Account, error) {
	row := r.db.QueryRow(ctx, queryCreate, uuid.NewString(), NormalizeEmail(email), passwordHash, string(plan))

	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// finds an account by its ID
func (r *Repository) FindByID(ctx context.Context, id string) (*Account, error) {
	return r.findOne(ctx, queryFindByID, id)
}

// finds an account by email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findOne(ctx, queryFindByEmail, NormalizeEmail(email))
}

// records a successful login
func (r *Repository) TouchLogin(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, queryTouchLogin, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) findOne(ctx context.Context, query string, arg string) (*Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	var plan string

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&plan,
		&account.CreatedAt,
		&account.LastLoginAt,
	)

	if err != nil {
		return nil, err
	}

	account.Plan = Plan(plan)
	return &account, nil
}
