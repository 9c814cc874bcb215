package accounts

import (
	"context"
	"os"
	"testing"

	"codeberg.org/iburba/server/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integration test against a real postgres, skipped unless TEST_DATABASE_URL is set
func TestRepository_Postgres(t *testing.T) {
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := storage.NewPostgresPool(ctx, connString)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	require.NoError(t, repo.Initialize(ctx))

	email := "pg-" + uuid.NewString() + "@example.com"

	created, err := repo.Create(ctx, email, "hash", PlanPro)
	require.NoError(t, err)

	_, err = repo.Create(ctx, email, "hash", PlanPro)
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, repo.TouchLogin(ctx, created.ID))

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
