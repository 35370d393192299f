package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shainyguy/followercity/internal/roster"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReplaceAllAndLoad(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	sample := roster.Sample()
	require.NoError(t, db.ReplaceAll(ctx, sample))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(sample))
	assert.Equal(t, sample[0].ID, got[0].ID)
	assert.True(t, sample[0].JoinedAt.Equal(got[0].JoinedAt))

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sample), n)

	replaced, err := db.GetMeta("replaced_at")
	require.NoError(t, err)
	assert.NotEmpty(t, replaced)
}

func TestUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	f := roster.Follower{ID: "a", Username: "alice", JoinedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Upsert(ctx, f))
	f.Username = "alice2"
	require.NoError(t, db.Upsert(ctx, f))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice2", got[0].Username)

	require.NoError(t, db.Remove(ctx, "a"))
	require.NoError(t, db.Remove(ctx, "missing"))
	got, err = db.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, db.Upsert(ctx, roster.Follower{ID: "b"}))
}

func TestReplaceAllRejectsDuplicates(t *testing.T) {
	db := openTemp(t)
	now := time.Now()
	err := db.ReplaceAll(context.Background(), []roster.Follower{
		{ID: "x", Username: "a", JoinedAt: now},
		{ID: "x", Username: "b", JoinedAt: now},
	})
	assert.True(t, errors.Is(err, roster.ErrDuplicateID))
}

func TestMetaMissingKey(t *testing.T) {
	db := openTemp(t)
	v, err := db.GetMeta("nope")
	require.NoError(t, err)
	assert.Empty(t, v)
	require.NoError(t, db.SaveMeta("k", "v"))
	v, err = db.GetMeta("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
