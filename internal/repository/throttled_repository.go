package repository

import (
	"context"

	"catalog-sync-service/internal/models"
	"golang.org/x/time/rate"
)

// ThrottledCatalogRepository waits on a token bucket before every store call
type ThrottledCatalogRepository struct {
	inner   CatalogRepository
	limiter *rate.Limiter
}

// NewThrottledCatalogRepository allows perSecond calls per second with a burst of one
func NewThrottledCatalogRepository(inner CatalogRepository, perSecond float64) *ThrottledCatalogRepository {
	return &ThrottledCatalogRepository{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (r *ThrottledCatalogRepository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindBrandByName(ctx, name)
}

func (r *ThrottledCatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateBrand(ctx, brand)
}

func (r *ThrottledCatalogRepository) FindProductByDefaultSku(ctx context.Context, defaultSku string) (*models.Product, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindProductByDefaultSku(ctx, defaultSku)
}

func (r *ThrottledCatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateProduct(ctx, product)
}

func (r *ThrottledCatalogRepository) IncrementProductRevisions(ctx context.Context, existing *models.Product) (*models.RevisionUpdate, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.IncrementProductRevisions(ctx, existing)
}

func (r *ThrottledCatalogRepository) CreateVariation(ctx context.Context, variation *models.Variation) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateVariation(ctx, variation)
}

func (r *ThrottledCatalogRepository) CreateProductOption(ctx context.Context, option *models.ProductOption) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateProductOption(ctx, option)
}

func (r *ThrottledCatalogRepository) FindSku(ctx context.Context, id string) (*models.Sku, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FindSku(ctx, id)
}

func (r *ThrottledCatalogRepository) CreateSku(ctx context.Context, sku *models.Sku) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateSku(ctx, sku)
}

func (r *ThrottledCatalogRepository) CreateProductOptionSku(ctx context.Context, link *models.ProductOptionSku) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateProductOptionSku(ctx, link)
}

// VerifyTables is not throttled
func (r *ThrottledCatalogRepository) VerifyTables(ctx context.Context) error {
	return r.inner.VerifyTables(ctx)
}
