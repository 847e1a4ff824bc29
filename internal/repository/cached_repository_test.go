package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache mimics the shared cache layer: values are stored as JSON and
// loader errors are returned without caching anything.
type mapCache struct {
	values  map[string][]byte
	loads   int
	failGet error
}

func newMapCache() *mapCache {
	return &mapCache{values: map[string][]byte{}}
}

func (c *mapCache) GetOrSetJSON(ctx context.Context, key string, dest any, ttl time.Duration, fn func() (any, error)) error {
	if c.failGet != nil {
		return c.failGet
	}
	if raw, ok := c.values[key]; ok {
		return json.Unmarshal(raw, dest)
	}
	c.loads++
	v, err := fn()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestCachedRepositoryReadsThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryCatalogRepository()
	require.NoError(t, inner.CreateBrand(ctx, &models.Brand{ID: "b1", Name: "Acme"}))

	c := newMapCache()
	repo := newCachedCatalogRepository(inner, c, NewTables("k"), time.Minute, quietLogger())

	for i := 0; i < 3; i++ {
		brand, err := repo.FindBrandByName(ctx, "Acme")
		require.NoError(t, err)
		require.NotNil(t, brand)
		assert.Equal(t, "b1", brand.ID)
	}
	assert.Equal(t, 1, c.loads)
	assert.Contains(t, c.values, "brand:Brand-k-NONE:Acme")
}

func TestCachedRepositoryNeverCachesAbsence(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryCatalogRepository()
	c := newMapCache()
	repo := newCachedCatalogRepository(inner, c, NewTables("k"), time.Minute, quietLogger())

	brand, err := repo.FindBrandByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Nil(t, brand)
	assert.Empty(t, c.values)

	require.NoError(t, repo.CreateBrand(ctx, &models.Brand{ID: "b1", Name: "Acme"}))

	brand, err = repo.FindBrandByName(ctx, "Acme")
	require.NoError(t, err)
	require.NotNil(t, brand)
	assert.Equal(t, "b1", brand.ID)
}

func TestCachedRepositoryFallsBackOnCacheError(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryCatalogRepository()
	require.NoError(t, inner.CreateBrand(ctx, &models.Brand{ID: "b1", Name: "Acme"}))

	c := newMapCache()
	c.failGet = errors.New("connection refused")
	repo := newCachedCatalogRepository(inner, c, NewTables("k"), time.Minute, quietLogger())

	brand, err := repo.FindBrandByName(ctx, "Acme")
	require.NoError(t, err)
	require.NotNil(t, brand)
	assert.Equal(t, "b1", brand.ID)
}

func TestThrottledRepositoryDelegates(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryCatalogRepository()
	repo := NewThrottledCatalogRepository(inner, 1000)

	require.NoError(t, repo.CreateBrand(ctx, &models.Brand{ID: "b1", Name: "Acme"}))
	brand, err := repo.FindBrandByName(ctx, "Acme")

	require.NoError(t, err)
	require.NotNil(t, brand)
	assert.Len(t, inner.Brands(), 1)
}

func TestThrottledRepositoryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := NewMemoryCatalogRepository()
	repo := NewThrottledCatalogRepository(inner, 1)

	err := repo.CreateSku(ctx, &models.Sku{ID: "S1"})

	assert.Error(t, err)
	assert.Empty(t, inner.Skus())
}
