package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync-service/internal/models"
)

var (
	// ErrTableMissing is returned by VerifyTables when a catalog table does not exist
	ErrTableMissing = errors.New("catalog table missing")
	// ErrConditionFailed is returned when a keyed update matched no item
	ErrConditionFailed = errors.New("conditional update matched no item")
)

// Store index names
const (
	IndexByName       = "byName"
	IndexByDefaultSku = "byDefaultSku"
)

// CatalogRepository is the remote store boundary used by the synchronizer.
// Lookups return (nil, nil) when nothing matches.
type CatalogRepository interface {
	FindBrandByName(ctx context.Context, name string) (*models.Brand, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error

	FindProductByDefaultSku(ctx context.Context, defaultSku string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	// IncrementProductRevisions bumps revisions on the item keyed by {id, version}
	// and returns the stored values after the update.
	IncrementProductRevisions(ctx context.Context, existing *models.Product) (*models.RevisionUpdate, error)

	CreateVariation(ctx context.Context, variation *models.Variation) error
	CreateProductOption(ctx context.Context, option *models.ProductOption) error

	FindSku(ctx context.Context, id string) (*models.Sku, error)
	CreateSku(ctx context.Context, sku *models.Sku) error
	CreateProductOptionSku(ctx context.Context, link *models.ProductOptionSku) error

	// VerifyTables fails with ErrTableMissing naming the first absent table
	VerifyTables(ctx context.Context) error
}

// Tables holds the physical table names for one deployment
type Tables struct {
	Brand            string
	Product          string
	Variation        string
	ProductOption    string
	Sku              string
	ProductOptionSku string
}

// NewTables derives table names of the form <Type>-<tableKey>-NONE
func NewTables(tableKey string) Tables {
	name := func(typename string) string {
		return fmt.Sprintf("%s-%s-NONE", typename, tableKey)
	}
	return Tables{
		Brand:            name(models.TypenameBrand),
		Product:          name(models.TypenameProduct),
		Variation:        name(models.TypenameVariation),
		ProductOption:    name(models.TypenameProductOption),
		Sku:              name(models.TypenameSku),
		ProductOptionSku: name(models.TypenameProductOptionSku),
	}
}

// All returns every table name in dependency order
func (t Tables) All() []string {
	return []string{t.Brand, t.Product, t.Variation, t.ProductOption, t.Sku, t.ProductOptionSku}
}

func missingTable(name string) error {
	return fmt.Errorf("%w: %s", ErrTableMissing, name)
}
