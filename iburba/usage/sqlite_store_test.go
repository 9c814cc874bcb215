package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/iburba/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := storage.OpenSQLite(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewSQLiteStore(db)
	require.NoError(t, store.Initialize(context.Background()))

	return store
}

func TestSQLiteStore_IncrementUpserts(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	count, err := store.Count(ctx, "u", "2025-07-30")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.Increment(ctx, "u", "2025-07-30", 0.075))
	require.NoError(t, store.Increment(ctx, "u", "2025-07-30", 0.075))
	require.NoError(t, store.Increment(ctx, "v", "2025-07-30", 0.075))
	require.NoError(t, store.Increment(ctx, "u", "2025-07-31", 0.075))

	count, err = store.Count(ctx, "u", "2025-07-30")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	total, err := store.TotalCost(ctx, "2025-07-30")
	require.NoError(t, err)
	assert.InDelta(t, 0.225, total, 1e-9)

	history, err := store.History(ctx, "u", "2025-07-01")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-07-30", history[0].Day)
	assert.Equal(t, 2, history[0].Count)
	assert.InDelta(t, 0.15, history[0].Cost, 1e-9)
}

func TestSQLiteStore_TotalCostEmptyDay(t *testing.T) {
	total, err := newSQLiteStore(t).TotalCost(context.Background(), "2025-01-01")

	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSQLiteStore_ConcurrentLedger(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(newSQLiteStore(t), Config{Limits: defaultLimits, SystemDailyCost: 1e9})
	l.now = func() time.Time { return time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC) }

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.RecordUsage(ctx, "u", 0.075))
		}()
	}
	wg.Wait()

	count, err := l.DailyUsage(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}
