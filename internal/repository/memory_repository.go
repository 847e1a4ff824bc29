package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"catalog-sync-service/internal/models"
)

// MemoryCatalogRepository keeps the catalog graph in process memory.
// It backs validate-only runs and behavioural tests.
type MemoryCatalogRepository struct {
	mu sync.RWMutex

	brands            []*models.Brand
	products          []*models.Product
	variations        []*models.Variation
	options           []*models.ProductOption
	skus              []*models.Sku
	productOptionSkus []*models.ProductOptionSku
}

func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{}
}

func (r *MemoryCatalogRepository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.brands {
		if b.Name == name {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryCatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *brand
	r.mu.Lock()
	r.brands = append(r.brands, &copied)
	r.mu.Unlock()
	return nil
}

func (r *MemoryCatalogRepository) FindProductByDefaultSku(ctx context.Context, defaultSku string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.DefaultSkuID == defaultSku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryCatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *product
	r.mu.Lock()
	r.products = append(r.products, &copied)
	r.mu.Unlock()
	return nil
}

func (r *MemoryCatalogRepository) IncrementProductRevisions(ctx context.Context, existing *models.Product) (*models.RevisionUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == existing.ID && p.Version == existing.Version {
			p.Revisions = strconv.Itoa(existing.RevisionCount() + 1)
			return &models.RevisionUpdate{Version: p.Version, Revisions: p.Revisions}, nil
		}
	}
	return nil, fmt.Errorf("product %s version %d: %w", existing.ID, existing.Version, ErrConditionFailed)
}

func (r *MemoryCatalogRepository) CreateVariation(ctx context.Context, variation *models.Variation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *variation
	r.mu.Lock()
	r.variations = append(r.variations, &copied)
	r.mu.Unlock()
	return nil
}

func (r *MemoryCatalogRepository) CreateProductOption(ctx context.Context, option *models.ProductOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *option
	r.mu.Lock()
	r.options = append(r.options, &copied)
	r.mu.Unlock()
	return nil
}

func (r *MemoryCatalogRepository) FindSku(ctx context.Context, id string) (*models.Sku, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.skus {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

// CreateSku overwrites an existing item with the same id, matching put semantics
func (r *MemoryCatalogRepository) CreateSku(ctx context.Context, sku *models.Sku) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *sku
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.skus {
		if s.ID == sku.ID && s.Version == sku.Version {
			r.skus[i] = &copied
			return nil
		}
	}
	r.skus = append(r.skus, &copied)
	return nil
}

func (r *MemoryCatalogRepository) CreateProductOptionSku(ctx context.Context, link *models.ProductOptionSku) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *link
	r.mu.Lock()
	r.productOptionSkus = append(r.productOptionSkus, &copied)
	r.mu.Unlock()
	return nil
}

func (r *MemoryCatalogRepository) VerifyTables(ctx context.Context) error {
	return ctx.Err()
}

// Brands returns a snapshot of stored brands in insertion order
func (r *MemoryCatalogRepository) Brands() []models.Brand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Brand, len(r.brands))
	for i, b := range r.brands {
		out[i] = *b
	}
	return out
}

func (r *MemoryCatalogRepository) Products() []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Product, len(r.products))
	for i, p := range r.products {
		out[i] = *p
	}
	return out
}

func (r *MemoryCatalogRepository) Variations() []models.Variation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Variation, len(r.variations))
	for i, v := range r.variations {
		out[i] = *v
	}
	return out
}

func (r *MemoryCatalogRepository) ProductOptions() []models.ProductOption {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ProductOption, len(r.options))
	for i, o := range r.options {
		out[i] = *o
	}
	return out
}

func (r *MemoryCatalogRepository) Skus() []models.Sku {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Sku, len(r.skus))
	for i, s := range r.skus {
		out[i] = *s
	}
	return out
}

func (r *MemoryCatalogRepository) ProductOptionSkus() []models.ProductOptionSku {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ProductOptionSku, len(r.productOptionSkus))
	for i, l := range r.productOptionSkus {
		out[i] = *l
	}
	return out
}
