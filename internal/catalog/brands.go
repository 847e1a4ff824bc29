package catalog

import (
	"context"
	"fmt"
	"time"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BrandMap maps a brand name to its stored identifier
type BrandMap map[string]string

// Lookup returns the identifier for name, if resolved
func (m BrandMap) Lookup(name string) (string, bool) {
	id, ok := m[name]
	return id, ok && id != ""
}

// BrandResolution is the outcome of resolving every brand of a run
type BrandResolution struct {
	IDs      BrandMap
	Created  []string
	Existing []string
}

type BrandResolver struct {
	repo   repository.CatalogRepository
	logger *logrus.Entry
	now    func() time.Time
	newID  func() string
}

func NewBrandResolver(repo repository.CatalogRepository, logger *logrus.Entry) *BrandResolver {
	return &BrandResolver{
		repo:   repo,
		logger: logger.WithField("component", "brand-resolver"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Resolve looks each name up by exact match and creates the brands that are missing.
// Empty and repeated names are ignored.
func (r *BrandResolver) Resolve(ctx context.Context, names []string) (*BrandResolution, error) {
	result := &BrandResolution{IDs: make(BrandMap, len(names))}

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, done := result.IDs[name]; done {
			continue
		}

		existing, err := r.repo.FindBrandByName(ctx, name)
		if err != nil {
			return result, fmt.Errorf("failed to look up brand %q: %w", name, err)
		}
		if existing != nil {
			r.logger.WithField("brand", name).Debug("Brand already exists")
			result.IDs[name] = existing.ID
			result.Existing = append(result.Existing, name)
			continue
		}

		ts := models.Timestamp(r.now())
		brand := &models.Brand{
			ID:        r.newID(),
			Typename:  models.TypenameBrand,
			Name:      name,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		if err := r.repo.CreateBrand(ctx, brand); err != nil {
			return result, fmt.Errorf("failed to create brand %q: %w", name, err)
		}
		r.logger.WithFields(logrus.Fields{"brand": name, "brandId": brand.ID}).Info("Brand created")
		result.IDs[name] = brand.ID
		result.Created = append(result.Created, name)
	}

	return result, nil
}
