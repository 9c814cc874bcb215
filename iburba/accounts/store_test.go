package accounts

import (
	"context"
	"testing"

	"codeberg.org/iburba/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runs the same contract against every local backend
func backends(t *testing.T) map[string]Store {
	t.Helper()

	db, err := storage.OpenSQLite(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(db),
	}
}

func TestStore_CreateAndFind(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Initialize(ctx))

			created, err := store.Create(ctx, " Alice@Example.com ", "hash", PlanPro)
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "alice@example.com", created.Email)
			assert.Equal(t, PlanPro, created.Plan)

			byID, err := store.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Email, byID.Email)
			assert.Equal(t, "hash", byID.PasswordHash)
			assert.Nil(t, byID.LastLoginAt)

			byEmail, err := store.FindByEmail(ctx, "ALICE@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byEmail.ID)
		})
	}
}

func TestStore_DuplicateEmail(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Initialize(ctx))

			_, err := store.Create(ctx, "bob@example.com", "hash", PlanFree)
			require.NoError(t, err)

			_, err = store.Create(ctx, "Bob@Example.com", "hash", PlanFree)
			assert.ErrorIs(t, err, ErrEmailTaken)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Initialize(ctx))

			_, err := store.FindByID(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = store.FindByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, store.TouchLogin(ctx, "missing"), ErrNotFound)
		})
	}
}

func TestStore_TouchLogin(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Initialize(ctx))

			created, err := store.Create(ctx, "carol@example.com", "hash", PlanBusiness)
			require.NoError(t, err)

			require.NoError(t, store.TouchLogin(ctx, created.ID))

			found, err := store.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.NotNil(t, found.LastLoginAt)
		})
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, "dave@example.com", "hash", PlanFree)
	require.NoError(t, err)

	store.Delete(ctx, created.ID)

	_, err = store.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// email is free again
	_, err = store.Create(ctx, "dave@example.com", "hash", PlanFree)
	assert.NoError(t, err)
}
