package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// BrandCacheTTL is the default lifetime of a cached brand lookup
const BrandCacheTTL = 30 * time.Minute

// JSONCache is the subset of the shared cache layer used for brand lookups
type JSONCache interface {
	GetOrSetJSON(ctx context.Context, key string, dest any, ttl time.Duration, fn func() (any, error)) error
	Delete(ctx context.Context, keys ...string) error
}

var errBrandAbsent = errors.New("brand absent")

// CachedCatalogRepository reads brands through a cache and delegates everything else.
// A brand that does not exist is never cached, and cache failures fall back to the store.
type CachedCatalogRepository struct {
	CatalogRepository
	cache  JSONCache
	table  string
	ttl    time.Duration
	logger *logrus.Entry
}

// NewCachedCatalogRepository builds the decorator on top of a Redis client
func NewCachedCatalogRepository(inner CatalogRepository, client *redis.Client, tables Tables, ttl time.Duration, logger *logrus.Logger) *CachedCatalogRepository {
	if ttl <= 0 {
		ttl = BrandCacheTTL
	}
	layer := cache.NewCacheLayerFromClient(client, cache.CacheConfig{
		L1Enabled:  true,
		L1MaxItems: 1000,
		L1TTL:      30 * time.Second,
		DefaultTTL: ttl,
		KeyPrefix:  "catalog:",
	})
	return newCachedCatalogRepository(inner, layer, tables, ttl, logger.WithField("component", "brand-cache"))
}

func newCachedCatalogRepository(inner CatalogRepository, c JSONCache, tables Tables, ttl time.Duration, logger *logrus.Entry) *CachedCatalogRepository {
	return &CachedCatalogRepository{
		CatalogRepository: inner,
		cache:             c,
		table:             tables.Brand,
		ttl:               ttl,
		logger:            logger,
	}
}

func (r *CachedCatalogRepository) brandKey(name string) string {
	return fmt.Sprintf("brand:%s:%s", r.table, name)
}

func (r *CachedCatalogRepository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var storeErr error
	var brand models.Brand
	err := r.cache.GetOrSetJSON(ctx, r.brandKey(name), &brand, r.ttl, func() (any, error) {
		found, err := r.CatalogRepository.FindBrandByName(ctx, name)
		if err != nil {
			storeErr = err
			return nil, err
		}
		if found == nil {
			return nil, errBrandAbsent
		}
		return found, nil
	})
	switch {
	case err == nil:
		return &brand, nil
	case storeErr != nil:
		return nil, storeErr
	case errors.Is(err, errBrandAbsent):
		return nil, nil
	}

	r.logger.WithError(err).WithField("brand", name).Warn("Brand cache unavailable, reading from store")
	return r.CatalogRepository.FindBrandByName(ctx, name)
}

func (r *CachedCatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := r.CatalogRepository.CreateBrand(ctx, brand); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, r.brandKey(brand.Name)); err != nil {
		r.logger.WithError(err).WithField("brand", brand.Name).Warn("Failed to invalidate brand cache")
	}
	return nil
}
