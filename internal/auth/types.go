package auth

import (
	"errors"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// token signing settings
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// resolved caller of a request
type Identity struct {
	UserID string
	Email  string
	Plan   accounts.Plan
}
