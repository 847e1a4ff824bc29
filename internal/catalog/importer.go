package catalog

import (
	"context"
	"fmt"
	"time"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// EventPublisher announces synchronized products
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *models.Product) error
	PublishProductRevised(ctx context.Context, product *models.Product) error
}

// Options controls one synchronization run
type Options struct {
	VerifySkus   bool
	LinkImages   bool
	ValidateOnly bool
}

// Importer runs the whole pipeline: brands once, then product, variations and SKUs per group
type Importer struct {
	aggregator *Aggregator
	brands     *BrandResolver
	products   *ProductSynchronizer
	expander   *OptionExpander
	skus       *SkuSynchronizer
	publisher  EventPublisher
	opts       Options
	logger     *logrus.Entry
}

// NewImporter wires the pipeline against repo. uploader and publisher may be nil.
func NewImporter(repo repository.CatalogRepository, uploader ImageUploader, publisher EventPublisher, opts Options, logger *logrus.Logger) *Importer {
	entry := logrus.NewEntry(logger)
	return &Importer{
		aggregator: NewAggregator(),
		brands:     NewBrandResolver(repo, entry),
		products:   NewProductSynchronizer(repo, entry),
		expander:   NewOptionExpander(repo, entry),
		skus: NewSkuSynchronizer(repo, uploader, SkuOptions{
			VerifyExisting: opts.VerifySkus,
			LinkImages:     opts.LinkImages,
		}, entry),
		publisher: publisher,
		opts:      opts,
		logger:    entry.WithField("component", "importer"),
	}
}

// Run synchronizes rows into the store. The report is returned even when the run
// aborts so callers can see how far it got.
func (i *Importer) Run(ctx context.Context, rows []Row) (*models.SyncReport, error) {
	start := time.Now()
	report := &models.SyncReport{ValidateOnly: i.opts.ValidateOnly}

	err := i.run(ctx, rows, report)
	report.ProcessingMs = time.Since(start).Milliseconds()
	if err != nil {
		report.Error = err.Error()
		i.logger.WithError(err).Error("Catalog import aborted")
		return report, err
	}

	report.Success = true
	i.logger.WithFields(logrus.Fields{
		"groups":          report.Groups,
		"productsCreated": report.ProductsCreated,
		"productsRevised": report.ProductsRevised,
		"skusCreated":     report.SkusCreated,
		"links":           report.LinksCreated,
		"skippedLinks":    len(report.SkippedLinks),
		"processingMs":    report.ProcessingMs,
	}).Info("Catalog import completed")
	return report, nil
}

func (i *Importer) run(ctx context.Context, rows []Row, report *models.SyncReport) error {
	agg := i.aggregator.Aggregate(rows)
	report.TotalRows = agg.TotalRows
	report.EmptyRows = agg.EmptyRows
	report.Groups = len(agg.Groups)
	report.Diagnostics = append(report.Diagnostics, ValidateRows(rows)...)

	brands, err := i.brands.Resolve(ctx, agg.BrandNames)
	if brands != nil {
		report.BrandsCreated = len(brands.Created)
		report.BrandsExisting = len(brands.Existing)
	}
	if err != nil {
		return err
	}

	for _, group := range agg.Groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.syncGroup(ctx, group, brands.IDs, report); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) syncGroup(ctx context.Context, group *PendingProduct, brands BrandMap, report *models.SyncReport) error {
	outcome, err := i.products.Sync(ctx, group, brands)
	if err != nil {
		return err
	}

	line := 0
	if len(group.Rows) > 0 {
		line = group.Rows[0].Line
	}
	switch outcome {
	case ProductCreated:
		report.ProductsCreated++
		report.CreatedIDs = append(report.CreatedIDs, group.Product.ID)
		i.publish(ctx, outcome, group.Product)
	case ProductRevised:
		report.ProductsRevised++
		report.UpdatedIDs = append(report.UpdatedIDs, group.Product.ID)
		i.publish(ctx, outcome, group.Product)
	case ProductUnlinked:
		report.ProductsUnlinked++
		// rows without a DefaultSku are already reported by ValidateRows
		if group.Key != "" {
			report.AddDiagnostic(line, models.ColumnBrand, models.DiagBrandUnresolved,
				fmt.Sprintf("brand %q could not be resolved; product %q was not created", group.BrandName, group.Key))
		}
	}

	expansion, err := i.expander.Expand(ctx, group.Product, group.Variations)
	if expansion != nil {
		report.Variations += len(expansion.Variations)
		report.Options += len(expansion.Options)
	}
	if err != nil {
		return err
	}

	result, err := i.skus.Sync(ctx, group.Product, group.Variations, expansion.Index, group.Rows)
	if result != nil {
		report.SkusCreated += len(result.Created)
		report.SkusExisting += len(result.Existing)
		report.SkusSkipped += result.SkippedRows
		report.LinksCreated += len(result.Links)
		report.ImageFailures += result.ImageFailures
		report.SkippedLinks = append(report.SkippedLinks, result.Skipped...)
		report.Diagnostics = append(report.Diagnostics, result.Diagnostics...)
	}
	return err
}

func (i *Importer) publish(ctx context.Context, outcome ProductOutcome, product *models.Product) {
	if i.publisher == nil || i.opts.ValidateOnly {
		return
	}
	var err error
	if outcome == ProductCreated {
		err = i.publisher.PublishProductCreated(ctx, product)
	} else {
		err = i.publisher.PublishProductRevised(ctx, product)
	}
	if err != nil {
		i.logger.WithError(err).WithField("defaultSku", product.DefaultSkuID).Warn("Failed to publish product event")
	}
}
