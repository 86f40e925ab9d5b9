package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteRepository {
	repo, err := NewSQLiteRepository(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test repository: %v", err)
	}

	if err := repo.RunMigrations("./migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return repo
}

func TestSQLiteRepository_LoadReturnsSeededProducts(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	products, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 5)

	assert.Equal(t, "e43638ce-6aa0-4b85-b27f-e1d07eb678c6", products[0].ID)
	assert.Equal(t, int64(1090), products[0].PriceCents)
	assert.Equal(t, 4.5, products[0].Rating.Stars)
	assert.Equal(t, 87, products[0].Rating.Count)
}

func TestSQLiteRepository_MatchesStaticCatalog(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	fromDB, err := repo.Load(context.Background())
	require.NoError(t, err)
	static, err := NewStaticLoader().Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, static, fromDB)
}

func TestSQLiteRepository_MigrationsAreIdempotent(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	require.NoError(t, repo.RunMigrations("./migrations"))
}

func TestSQLiteRepository_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	cancel()

	_, err := repo.Load(ctx)
	require.ErrorContains(t, err, "context canceled")
}
