package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a file-backed sqlite database with every catalog table migrated
func setupTestDB(t *testing.T) (*gorm.DB, Tables) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	tables := NewTables("test")
	require.NoError(t, Migrate(db, tables))
	return db, tables
}

func newTestPostgresRepository(t *testing.T) *PostgresCatalogRepository {
	db, tables := setupTestDB(t)
	repo := NewPostgresCatalogRepository(db, tables)
	repo.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return repo
}

func TestPostgresVerifyTables(t *testing.T) {
	t.Run("all tables present", func(t *testing.T) {
		repo := newTestPostgresRepository(t)

		assert.NoError(t, repo.VerifyTables(context.Background()))
	})

	t.Run("missing sku table", func(t *testing.T) {
		db, tables := setupTestDB(t)
		require.NoError(t, db.Migrator().DropTable(tables.Sku))

		err := NewPostgresCatalogRepository(db, tables).VerifyTables(context.Background())

		require.ErrorIs(t, err, ErrTableMissing)
		assert.Contains(t, err.Error(), "Sku-test-NONE")
	})
}

func TestPostgresFindBrandByName(t *testing.T) {
	repo := newTestPostgresRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateBrand(ctx, &models.Brand{ID: "b1", Typename: models.TypenameBrand, Name: "Acme"}))

	found, err := repo.FindBrandByName(ctx, "Acme")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "b1", found.ID)

	missing, err := repo.FindBrandByName(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgresCreateSkuReplacesExistingItem(t *testing.T) {
	repo := newTestPostgresRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSku(ctx, &models.Sku{ID: "S1", Version: 0, Value: "10.00", ValueType: models.ValueTypeRRP}))
	require.NoError(t, repo.CreateSku(ctx, &models.Sku{ID: "S1", Version: 0, Value: "12.50", ValueType: models.ValueTypeRRP}))

	var count int64
	require.NoError(t, repo.db.Table(repo.tables.Sku).Where("id = ?", "S1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := repo.FindSku(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "12.50", stored.Value)
}

func TestPostgresFindProductByDefaultSku(t *testing.T) {
	repo := newTestPostgresRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateProduct(ctx, &models.Product{
		ID:           "p1",
		Version:      0,
		Typename:     models.TypenameProduct,
		Name:         "Case",
		DefaultSkuID: "ABC123",
		Revisions:    models.InitialRevisions,
	}))

	found, err := repo.FindProductByDefaultSku(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "p1", found.ID)
	assert.Equal(t, "Case", found.Name)

	missing, err := repo.FindProductByDefaultSku(ctx, "XYZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgresIncrementProductRevisions(t *testing.T) {
	repo := newTestPostgresRepository(t)
	ctx := context.Background()
	product := &models.Product{ID: "p1", Version: 0, DefaultSkuID: "ABC123", Revisions: models.InitialRevisions}
	require.NoError(t, repo.CreateProduct(ctx, product))

	update, err := repo.IncrementProductRevisions(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, 0, update.Version)
	assert.Equal(t, "1", update.Revisions)

	stored, err := repo.FindProductByDefaultSku(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "1", stored.Revisions)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", stored.UpdatedAt)
}

func TestPostgresIncrementProductRevisionsVersionMismatch(t *testing.T) {
	repo := newTestPostgresRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateProduct(ctx, &models.Product{ID: "p1", Version: 0, DefaultSkuID: "ABC123", Revisions: "3"}))

	_, err := repo.IncrementProductRevisions(ctx, &models.Product{ID: "p1", Version: 7, Revisions: "3"})

	assert.ErrorIs(t, err, ErrConditionFailed)
	stored, err := repo.FindProductByDefaultSku(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "3", stored.Revisions)
}
