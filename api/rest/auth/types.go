package auth

import (
	"context"

	"codeberg.org/iburba/server/iburba/accounts"
)

// account operations the auth endpoints need
type AccountStore interface {
	Create(ctx context.Context, email, passwordHash string, plan accounts.Plan) (*accounts.Account, error)
	FindByID(ctx context.Context, id string) (*accounts.Account, error)
	FindByEmail(ctx context.Context, email string) (*accounts.Account, error)
	TouchLogin(ctx context.Context, id string) error
}

// issues bearer tokens
type TokenIssuer interface {
	Generate(userID, email string) (string, error)
}

// reads today's usage for an account
type UsageReader interface {
	DailyUsage(ctx context.Context, userID string) (int, error)
	Remaining(ctx context.Context, userID string, plan accounts.Plan) (int, error)
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Plan     string `json:"plan" binding:"omitempty,oneof=free pro business"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse returned after register and login
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	Plan        accounts.Plan `json:"plan"`
	DailyUsage  int           `json:"daily_usage"`
}

// MeResponse wraps the account with today's usage
type MeResponse struct {
	Account        *accounts.Account `json:"account"`
	DailyUsage     int               `json:"daily_usage"`
	RemainingUsage int               `json:"remaining_usage"`
}
