package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

type snapshot struct {
	Items     []string `json:"items"`
	ItemCount int      `json:"itemCount"`
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	repo := NewSnapshotRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "cart-storage:s1", snapshot{Items: []string{"a"}, ItemCount: 1}))

	var got snapshot
	ok, err := repo.Load(ctx, "cart-storage:s1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, snapshot{Items: []string{"a"}, ItemCount: 1}, got)
}

func TestSnapshotRepository_LoadMissing(t *testing.T) {
	repo := NewSnapshotRepository(0)
	var got snapshot
	ok, err := repo.Load(context.Background(), "nope", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotRepository_StoresCopies(t *testing.T) {
	repo := NewSnapshotRepository(0)
	ctx := context.Background()
	s := snapshot{Items: []string{"a"}}
	require.NoError(t, repo.Save(ctx, "k", s))
	s.Items[0] = "changed"

	var got snapshot
	_, err := repo.Load(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Items[0])
}

func TestSnapshotRepository_Quota(t *testing.T) {
	repo := NewSnapshotRepository(40)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "k", snapshot{Items: []string{"a"}}))
	err := repo.Save(ctx, "k2", snapshot{Items: []string{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}})
	assert.ErrorIs(t, err, repository.ErrQuotaExceeded)
	assert.Equal(t, 1, repo.Len())

	// Overwriting the same key reuses its space.
	require.NoError(t, repo.Save(ctx, "k", snapshot{Items: []string{"b"}}))
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo := NewSnapshotRepository(0)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "k", snapshot{}))
	require.NoError(t, repo.Delete(ctx, "k"))
	require.NoError(t, repo.Delete(ctx, "k"))
	assert.Zero(t, repo.Len())
}

func TestSnapshotRepository_UnmarshalError(t *testing.T) {
	repo := NewSnapshotRepository(0)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "k", map[string]string{"items": "not-a-list"}))

	var got snapshot
	_, err := repo.Load(ctx, "k", &got)
	assert.Error(t, err)
}

func TestCatalogRepository_ListReturnsCopies(t *testing.T) {
	src := []domain.Product{{ID: "1", Name: "A", Tags: []string{"x"}}}
	repo := NewCatalogRepository(src)
	src[0].Name = "mutated"

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)

	got[0].Tags[0] = "y"
	again, _ := repo.List(context.Background())
	assert.Equal(t, "x", again[0].Tags[0])
}

func TestCatalogRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCatalogRepository(nil).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
