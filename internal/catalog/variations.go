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

// OptionKey identifies an option by variation name and value
type OptionKey struct {
	Variation string
	Value     string
}

// OptionIndex resolves (variation, value) pairs to ProductOption identifiers for one product
type OptionIndex map[OptionKey]string

func (idx OptionIndex) Lookup(variation, value string) (string, bool) {
	id, ok := idx[OptionKey{Variation: variation, Value: value}]
	return id, ok
}

// Expansion holds the records created for one product's variations
type Expansion struct {
	Index      OptionIndex
	Variations []*models.Variation
	Options    []*models.ProductOption
}

type OptionExpander struct {
	repo   repository.CatalogRepository
	logger *logrus.Entry
	now    func() time.Time
	newID  func() string
}

func NewOptionExpander(repo repository.CatalogRepository, logger *logrus.Entry) *OptionExpander {
	return &OptionExpander{
		repo:   repo,
		logger: logger.WithField("component", "option-expander"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Expand creates a Variation per draft and a ProductOption per distinct value,
// or the no-option sentinel for a variation without values.
func (e *OptionExpander) Expand(ctx context.Context, product *models.Product, drafts []*VariationDraft) (*Expansion, error) {
	result := &Expansion{Index: make(OptionIndex)}

	for _, draft := range drafts {
		ts := models.Timestamp(e.now())
		variation := &models.Variation{
			ID:                       e.newID(),
			Typename:                 models.TypenameVariation,
			Name:                     draft.Name,
			DisplayType:              models.DefaultDisplayType,
			Type:                     models.VariationTypeCustom,
			ProductVariationsID:      product.ID,
			ProductVariationsVersion: product.Version,
			CreatedAt:                ts,
			UpdatedAt:                ts,
		}
		if err := e.repo.CreateVariation(ctx, variation); err != nil {
			return result, fmt.Errorf("failed to create variation %q: %w", draft.Name, err)
		}
		result.Variations = append(result.Variations, variation)

		values := draft.Values
		if len(values) == 0 {
			values = []string{models.NoOption}
		}
		for _, value := range values {
			option := &models.ProductOption{
				ID:                        e.newID(),
				Typename:                  models.TypenameProductOption,
				Name:                      value,
				ProductVariationOptionsID: variation.ID,
				CreatedAt:                 ts,
				UpdatedAt:                 ts,
			}
			if err := e.repo.CreateProductOption(ctx, option); err != nil {
				return result, fmt.Errorf("failed to create option %q of variation %q: %w", value, draft.Name, err)
			}
			result.Options = append(result.Options, option)
			result.Index[OptionKey{Variation: draft.Name, Value: value}] = option.ID
		}

		e.logger.WithFields(logrus.Fields{
			"variation": draft.Name,
			"options":   len(values),
			"productId": product.ID,
		}).Debug("Variation created")
	}

	return result, nil
}
