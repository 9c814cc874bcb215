package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/iburba/server/iburba/accounts"
	apierrors "codeberg.org/iburba/server/internal/errors"
)

// looks up the account behind a token subject
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*accounts.Account, error)
}

// resolves a bearer credential to an identity
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

// validates credentials against the token manager and the account store
type Gate struct {
	tokens   *TokenManager
	accounts AccountFinder
}

// creates a new auth gate
func NewGate(tokens *TokenManager, finder AccountFinder) *Gate {
	return &Gate{tokens: tokens, accounts: finder}
}

// resolves credential to the current account, the result is never cached
func (g *Gate) Resolve(ctx context.Context, credential string) (*Identity, error) {
	token, ok := ExtractBearer(credential)
	if !ok {
		return nil, fmt.Errorf("%w: missing or malformed credential", ErrUnauthenticated)
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	// account ids are uuids, anything else cannot name a stored account
	if !apierrors.IsValidUUID(claims.UserID) {
		return nil, fmt.Errorf("%w: malformed subject", ErrUnauthenticated)
	}

	account, err := g.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
		}

		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return &Identity{
		UserID: account.ID,
		Email:  account.Email,
		Plan:   account.Plan,
	}, nil
}

// returns the token from an Authorization value
// accepts "Bearer <token>" and a bare token
func ExtractBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.Fields(header)

	switch len(parts) {
	case 1:
		if strings.EqualFold(parts[0], "bearer") {
			return "", false
		}

		return parts[0], true
	case 2:
		if !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}

		return parts[1], true
	default:
		return "", false
	}
}
