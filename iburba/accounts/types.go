package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
)

// usage class of an account
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// represents a registered account
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Plan         Plan       `json:"plan"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// persistence contract shared by every account backend
type Store interface {
	Initialize(ctx context.Context) error
	Create(ctx context.Context, email, passwordHash string, plan Plan) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	TouchLogin(ctx context.Context, id string) error
}

// describes a plan for the pricing page and the try-on quality settings
type PlanInfo struct {
	Plan         Plan     `json:"plan"`
	Name         string   `json:"name"`
	MonthlyPrice float64  `json:"monthly_price"`
	Quality      string   `json:"quality"`
	MaxHeight    int      `json:"max_height"`
	Mode         string   `json:"mode"`
	Features     []string `json:"features"`
}

// handles account database operations on postgres
type Repository struct {
	db *pgxpool.Pool
}
