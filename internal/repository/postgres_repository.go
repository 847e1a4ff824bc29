package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catalog-sync-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresCatalogRepository stores the catalog graph in relational tables that
// carry the same names as the key-value store tables.
type PostgresCatalogRepository struct {
	db     *gorm.DB
	tables Tables
	now    func() time.Time
}

func NewPostgresCatalogRepository(db *gorm.DB, tables Tables) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db:     db,
		tables: tables,
		now:    time.Now,
	}
}

// Migrate creates or updates every catalog table.
// Existing columns are never dropped.
func Migrate(db *gorm.DB, tables Tables) error {
	schema := []struct {
		table string
		model interface{}
	}{
		{tables.Brand, &models.Brand{}},
		{tables.Product, &models.Product{}},
		{tables.Variation, &models.Variation{}},
		{tables.ProductOption, &models.ProductOption{}},
		{tables.Sku, &models.Sku{}},
		{tables.ProductOptionSku, &models.ProductOptionSku{}},
	}
	for _, s := range schema {
		if err := db.Table(s.table).AutoMigrate(s.model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", s.table, err)
		}
	}
	return nil
}

// put writes item by primary key, replacing any row already stored under that key
func (r *PostgresCatalogRepository) put(ctx context.Context, table string, item interface{}) error {
	err := r.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to put item into %s: %w", table, err)
	}
	return nil
}

func (r *PostgresCatalogRepository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).Table(r.tables.Brand).Where("name = ?", name).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find brand %q: %w", name, err)
	}
	return &brand, nil
}

func (r *PostgresCatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.put(ctx, r.tables.Brand, brand)
}

func (r *PostgresCatalogRepository) FindProductByDefaultSku(ctx context.Context, defaultSku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Table(r.tables.Product).
		Where("default_sku_id = ?", defaultSku).
		Order("version DESC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by default sku %q: %w", defaultSku, err)
	}
	return &product, nil
}

func (r *PostgresCatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.put(ctx, r.tables.Product, product)
}

func (r *PostgresCatalogRepository) IncrementProductRevisions(ctx context.Context, existing *models.Product) (*models.RevisionUpdate, error) {
	next := strconv.Itoa(existing.RevisionCount() + 1)

	result := r.db.WithContext(ctx).Table(r.tables.Product).
		Where("id = ? AND version = ?", existing.ID, existing.Version).
		Updates(map[string]interface{}{
			"revisions":  next,
			"updated_at": models.Timestamp(r.now()),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", existing.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("product %s version %d: %w", existing.ID, existing.Version, ErrConditionFailed)
	}

	var update models.RevisionUpdate
	if err := r.db.WithContext(ctx).Table(r.tables.Product).
		Select("version", "revisions").
		Where("id = ? AND version = ?", existing.ID, existing.Version).
		Take(&update).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product %s: %w", existing.ID, err)
	}
	return &update, nil
}

func (r *PostgresCatalogRepository) CreateVariation(ctx context.Context, variation *models.Variation) error {
	return r.put(ctx, r.tables.Variation, variation)
}

func (r *PostgresCatalogRepository) CreateProductOption(ctx context.Context, option *models.ProductOption) error {
	return r.put(ctx, r.tables.ProductOption, option)
}

func (r *PostgresCatalogRepository) FindSku(ctx context.Context, id string) (*models.Sku, error) {
	var sku models.Sku
	err := r.db.WithContext(ctx).Table(r.tables.Sku).Where("id = ?", id).First(&sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sku %q: %w", id, err)
	}
	return &sku, nil
}

func (r *PostgresCatalogRepository) CreateSku(ctx context.Context, sku *models.Sku) error {
	return r.put(ctx, r.tables.Sku, sku)
}

func (r *PostgresCatalogRepository) CreateProductOptionSku(ctx context.Context, link *models.ProductOptionSku) error {
	return r.put(ctx, r.tables.ProductOptionSku, link)
}

func (r *PostgresCatalogRepository) VerifyTables(ctx context.Context) error {
	migrator := r.db.WithContext(ctx).Migrator()
	for _, table := range r.tables.All() {
		if !migrator.HasTable(table) {
			return missingTable(table)
		}
	}
	return nil
}
