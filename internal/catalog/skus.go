package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ImageUploader transfers the images referenced by one source row
type ImageUploader interface {
	Upload(ctx context.Context, batch models.ImageBatch) error
}

// SkuOptions controls the optional steps of SKU synchronization
type SkuOptions struct {
	// VerifyExisting looks each SKU up before writing it and leaves existing ones untouched
	VerifyExisting bool
	// LinkImages uploads the row's images before the SKU is written
	LinkImages bool
}

// SkuResult collects what SKU synchronization did for one product
type SkuResult struct {
	Created       []*models.Sku
	Existing      []string
	Links         []*models.ProductOptionSku
	Skipped       []models.SkippedLink
	SkippedRows   int
	ImageFailures int
	Diagnostics   []models.ImportRowError
}

type SkuSynchronizer struct {
	repo     repository.CatalogRepository
	uploader ImageUploader
	opts     SkuOptions
	logger   *logrus.Entry
	now      func() time.Time
	newID    func() string
}

// NewSkuSynchronizer builds the synchronizer. uploader may be nil when images are not linked.
func NewSkuSynchronizer(repo repository.CatalogRepository, uploader ImageUploader, opts SkuOptions, logger *logrus.Entry) *SkuSynchronizer {
	return &SkuSynchronizer{
		repo:     repo,
		uploader: uploader,
		opts:     opts,
		logger:   logger.WithField("component", "sku-sync"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Sync writes one Sku per row and links it to the options its variation values resolve to.
// Any store error aborts the remaining rows.
func (s *SkuSynchronizer) Sync(ctx context.Context, product *models.Product, variations []*VariationDraft, index OptionIndex, rows []Row) (*SkuResult, error) {
	result := &SkuResult{}

	for _, row := range rows {
		if err := s.syncRow(ctx, product, variations, index, row, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *SkuSynchronizer) syncRow(ctx context.Context, product *models.Product, variations []*VariationDraft, index OptionIndex, row Row, result *SkuResult) error {
	skuID := row.Get(models.ColumnSKU)
	log := s.logger.WithFields(logrus.Fields{
		"defaultSku": product.DefaultSkuID,
		"sku":        skuID,
		"row":        row.Line,
	})
	if skuID == "" {
		log.Warn("Row has no SKU, skipped")
		result.SkippedRows++
		result.Diagnostics = append(result.Diagnostics, models.ImportRowError{
			Row:     row.Line,
			Column:  models.ColumnSKU,
			Code:    models.DiagMissingSku,
			Message: "row has no SKU and was not written",
		})
		return nil
	}

	ts := models.Timestamp(s.now())
	sku := &models.Sku{
		ID:                 skuID,
		Version:            0,
		Typename:           models.TypenameSku,
		Class:              models.DefaultProductClass,
		Type:               product.Type,
		PaymentType:        product.PaymentType,
		Image:              row.Get(models.ColumnFileName),
		ProductSkusID:      product.ID,
		ProductSkusVersion: product.Version,
		Value:              row.Get(models.ColumnRRP),
		ValueType:          models.ValueTypeRRP,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}

	write := true
	if s.opts.VerifyExisting {
		existing, err := s.repo.FindSku(ctx, sku.ID)
		if err != nil {
			return fmt.Errorf("failed to look up sku %q: %w", sku.ID, err)
		}
		if existing != nil {
			log.Info("Sku already exists, not rewritten")
			result.Existing = append(result.Existing, sku.ID)
			result.Diagnostics = append(result.Diagnostics, models.ImportRowError{
				Row:     row.Line,
				Column:  models.ColumnSKU,
				Code:    models.DiagSkuExists,
				Message: fmt.Sprintf("sku %s already exists", sku.ID),
			})
			sku.Version = existing.Version
			write = false
		}
	}
	if write {
		if err := s.uploadImages(ctx, sku, row, result, log); err != nil {
			return err
		}
		if err := s.repo.CreateSku(ctx, sku); err != nil {
			return fmt.Errorf("failed to create sku %q: %w", sku.ID, err)
		}
		result.Created = append(result.Created, sku)
		log.Debug("Sku created")
	}

	for _, optionID := range s.resolveOptions(sku.ID, variations, index, row, result) {
		link := &models.ProductOptionSku{
			ID:              s.newID(),
			Typename:        models.TypenameProductOptionSku,
			ProductOptionID: optionID,
			SkuID:           sku.ID,
			SkuVersion:      sku.Version,
			CreatedAt:       ts,
			UpdatedAt:       ts,
		}
		if err := s.repo.CreateProductOptionSku(ctx, link); err != nil {
			return fmt.Errorf("failed to link sku %q to option %s: %w", sku.ID, optionID, err)
		}
		result.Links = append(result.Links, link)
	}
	return nil
}

// uploadImages runs the row's image batch. Only cancellation is returned; upload failures
// become diagnostics.
func (s *SkuSynchronizer) uploadImages(ctx context.Context, sku *models.Sku, row Row, result *SkuResult, log *logrus.Entry) error {
	if !s.opts.LinkImages || sku.Image == "" || s.uploader == nil {
		return nil
	}
	if err := s.uploader.Upload(ctx, imageBatch(sku.ID, row)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).WithField("image", sku.Image).Warn("Image upload failed")
		result.ImageFailures++
		result.Diagnostics = append(result.Diagnostics, models.ImportRowError{
			Row:     row.Line,
			Column:  models.ColumnFileName,
			Code:    models.DiagImageUpload,
			Message: err.Error(),
		})
	}
	return nil
}

// resolveOptions maps the row's variation values to option ids. Rows without any
// variation value resolve to the no-option sentinel when the product carries it.
func (s *SkuSynchronizer) resolveOptions(skuID string, variations []*VariationDraft, index OptionIndex, row Row, result *SkuResult) []string {
	var ids []string
	hasValues := row.HasVariationValues()

	for _, v := range variations {
		value := models.NoOption
		if !v.IsSentinel() {
			value = row.VariationValue(v.Name)
		} else if hasValues {
			continue
		}
		if value == "" {
			continue
		}

		id, ok := index.Lookup(v.Name, value)
		if !ok {
			s.logger.WithFields(logrus.Fields{
				"sku":       skuID,
				"variation": v.Name,
				"option":    value,
			}).Warn("Product option not found, link skipped")
			result.Skipped = append(result.Skipped, models.SkippedLink{
				Row:       row.Line,
				SkuID:     skuID,
				Variation: v.Name,
				Value:     value,
			})
			result.Diagnostics = append(result.Diagnostics, models.ImportRowError{
				Row:     row.Line,
				Column:  models.VariationColumnPrefix + v.Name,
				Code:    models.DiagOptionUnresolved,
				Message: fmt.Sprintf("no option %q for variation %q", value, v.Name),
			})
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func imageBatch(skuID string, row Row) models.ImageBatch {
	var files []string
	for _, name := range strings.Split(row.Get(models.ColumnFileName), ",") {
		if name = strings.TrimSpace(name); name != "" {
			files = append(files, name)
		}
	}
	return models.ImageBatch{
		SKU:       skuID,
		FileNames: files,
		Brand:     row.Get(models.ColumnImageBrand),
		Model:     row.Get(models.ColumnImageModel),
	}
}

