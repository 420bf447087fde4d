package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	key := BuildFeedKey("sup_a", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), "cjenik.csv")
	assert.Equal(t, "feeds/sup_a/2026-08-15/cjenik.csv", key)

	content := []byte("sifra;cijena\nA1;12,50\n")
	meta := &Metadata{
		ContentType:  "text/csv",
		OriginalName: "cjenik.csv",
		SupplierID:   "sup_a",
		IngestedAt:   time.Now().UTC(),
	}
	require.NoError(t, local.Put(ctx, key, content, meta))

	got, err := local.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	loaded, err := local.GetMetadata(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "sup_a", loaded.SupplierID)
	assert.Equal(t, "text/csv", loaded.ContentType)

	exists, err := local.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalGetMissingKey(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = local.Get(ctx, "feeds/nobody/2026-01-01/missing.csv")
	assert.Error(t, err)

	exists, err := local.Exists(ctx, "feeds/nobody/2026-01-01/missing.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	meta, err := local.GetMetadata(ctx, "feeds/nobody/2026-01-01/missing.csv")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestLocalListByPrefix(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, local.Put(ctx, BuildFeedKey("sup_a", day, "a.csv"), []byte("a"), &Metadata{SupplierID: "sup_a"}))
	require.NoError(t, local.Put(ctx, BuildFeedKey("sup_a", day.AddDate(0, 0, 1), "b.csv"), []byte("b"), nil))
	require.NoError(t, local.Put(ctx, BuildFeedKey("sup_b", day, "c.csv"), []byte("c"), nil))

	keys, err := local.List(ctx, "feeds/sup_a/")
	require.NoError(t, err)
	assert.Len(t, keys, 2, "sidecar .meta files are not listed")

	keys, err = local.List(ctx, "feeds/")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestLocalDeleteRemovesSidecar(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	key := "feeds/sup_a/2026-08-15/a.csv"
	require.NoError(t, local.Put(ctx, key, []byte("a"), &Metadata{SupplierID: "sup_a"}))
	require.NoError(t, local.Delete(ctx, key))

	exists, err := local.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	meta, err := local.GetMetadata(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, meta)
}
