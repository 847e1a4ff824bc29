package catalog

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// ProductOutcome says how a pending product was reconciled with the store
type ProductOutcome string

const (
	ProductCreated  ProductOutcome = "created"
	ProductRevised  ProductOutcome = "revised"
	ProductUnlinked ProductOutcome = "unlinked"
)

type ProductSynchronizer struct {
	repo   repository.CatalogRepository
	logger *logrus.Entry
}

func NewProductSynchronizer(repo repository.CatalogRepository, logger *logrus.Entry) *ProductSynchronizer {
	return &ProductSynchronizer{
		repo:   repo,
		logger: logger.WithField("component", "product-sync"),
	}
}

// Sync creates the group's product or bumps the revisions of the stored one.
// The group's draft is updated in place so downstream records link to the stored identity.
func (s *ProductSynchronizer) Sync(ctx context.Context, group *PendingProduct, brands BrandMap) (ProductOutcome, error) {
	draft := group.Product
	log := s.logger.WithFields(logrus.Fields{
		"brand":      group.BrandName,
		"defaultSku": group.Key,
		"product":    draft.Name,
	})

	// an empty key cannot be queried on the byDefaultSku index
	if draft.DefaultSkuID == "" {
		log.Warn("Rows have no DefaultSku, product left unlinked")
		return ProductUnlinked, nil
	}

	existing, err := s.repo.FindProductByDefaultSku(ctx, draft.DefaultSkuID)
	if err != nil {
		return "", fmt.Errorf("failed to look up product %q: %w", draft.DefaultSkuID, err)
	}

	if existing != nil {
		update, err := s.repo.IncrementProductRevisions(ctx, existing)
		if err != nil {
			return "", fmt.Errorf("failed to revise product %q: %w", draft.DefaultSkuID, err)
		}
		draft.ID = existing.ID
		draft.Version = update.Version
		draft.Revisions = update.Revisions
		draft.BrandProductsID = existing.BrandProductsID
		draft.CreatedAt = existing.CreatedAt
		log.WithField("revisions", update.Revisions).Info("Product already exists, revisions updated")
		return ProductRevised, nil
	}

	brandID, ok := brands.Lookup(group.BrandName)
	if !ok {
		log.Warn("Brand not resolved, product left unlinked")
		return ProductUnlinked, nil
	}

	draft.BrandProductsID = brandID
	if err := s.repo.CreateProduct(ctx, draft); err != nil {
		return "", fmt.Errorf("failed to create product %q: %w", draft.DefaultSkuID, err)
	}
	log.WithField("productId", draft.ID).Info("Product created")
	return ProductCreated, nil
}
