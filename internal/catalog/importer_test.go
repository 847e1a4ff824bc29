package catalog

import (
	"context"
	"errors"
	"io"
	"testing"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type MockImageUploader struct {
	mock.Mock
}

var _ ImageUploader = (*MockImageUploader)(nil)

func (m *MockImageUploader) Upload(ctx context.Context, batch models.ImageBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

var _ EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) PublishProductCreated(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishProductRevised(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// failingRepository fails every CreateSku call after the first n
type failingRepository struct {
	*repository.MemoryCatalogRepository
	allowed int
	err     error
}

func (r *failingRepository) CreateSku(ctx context.Context, sku *models.Sku) error {
	if r.allowed <= 0 {
		return r.err
	}
	r.allowed--
	return r.MemoryCatalogRepository.CreateSku(ctx, sku)
}

func optionByID(options []models.ProductOption, id string) models.ProductOption {
	for _, o := range options {
		if o.ID == id {
			return o
		}
	}
	return models.ProductOption{}
}

func TestImporterTwoColourScenario(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "ABC123", "S1", "Case", "10", "Red"},
		[]string{"Acme", "ABC123", "S2", "Case", "10", "Blue"},
	)

	report, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	assert.True(t, report.Success)

	products := repo.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "ABC123", products[0].DefaultSkuID)

	brands := repo.Brands()
	require.Len(t, brands, 1)
	assert.Equal(t, brands[0].ID, products[0].BrandProductsID)

	variations := repo.Variations()
	require.Len(t, variations, 1)
	assert.Equal(t, "Color", variations[0].Name)
	assert.Equal(t, products[0].ID, variations[0].ProductVariationsID)
	assert.Equal(t, models.DefaultDisplayType, variations[0].DisplayType)
	assert.Equal(t, models.VariationTypeCustom, variations[0].Type)

	options := repo.ProductOptions()
	require.Len(t, options, 2)
	assert.Equal(t, "Red", options[0].Name)
	assert.Equal(t, "Blue", options[1].Name)

	skus := repo.Skus()
	require.Len(t, skus, 2)
	assert.Equal(t, "S1", skus[0].ID)
	assert.Equal(t, "S2", skus[1].ID)
	assert.Equal(t, products[0].ID, skus[0].ProductSkusID)
	assert.Equal(t, "10", skus[0].Value)

	links := repo.ProductOptionSkus()
	require.Len(t, links, 2)
	assert.Equal(t, "S1", links[0].SkuID)
	assert.Equal(t, "Red", optionByID(options, links[0].ProductOptionID).Name)
	assert.Equal(t, "S2", links[1].SkuID)
	assert.Equal(t, "Blue", optionByID(options, links[1].ProductOptionID).Name)

	assert.Equal(t, 1, report.Groups)
	assert.Equal(t, 1, report.BrandsCreated)
	assert.Equal(t, 1, report.ProductsCreated)
	assert.Equal(t, 2, report.SkusCreated)
	assert.Equal(t, 2, report.LinksCreated)
	assert.Empty(t, report.SkippedLinks)
}

func TestImporterNoVariationScenario(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom([]string{"Brand", "DefaultSku", "SKU", "Product Name", "RRP"},
		[]string{"Acme", "P1", "S1", "Cable", "5"},
		[]string{"Acme", "P1", "S2", "Cable", "5"},
	)

	_, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)
	require.NoError(t, err)

	variations := repo.Variations()
	require.Len(t, variations, 1)
	assert.Equal(t, models.NoVariation, variations[0].Name)

	options := repo.ProductOptions()
	require.Len(t, options, 1)
	assert.Equal(t, models.NoOption, options[0].Name)

	links := repo.ProductOptionSkus()
	require.Len(t, links, 2)
	for _, link := range links {
		assert.Equal(t, options[0].ID, link.ProductOptionID)
	}
}

func TestImporterSecondRunRevisesProduct(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "ABC123", "S1", "Case", "10", "Red"},
	)

	first, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ProductsCreated)
	created := repo.Products()[0]
	assert.Equal(t, "0", created.Revisions)

	second, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)
	require.NoError(t, err)

	assert.Len(t, repo.Brands(), 1)
	products := repo.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "1", products[0].Revisions)
	assert.Equal(t, created.Version, products[0].Version)

	assert.Equal(t, 0, second.BrandsCreated)
	assert.Equal(t, 1, second.BrandsExisting)
	assert.Equal(t, 0, second.ProductsCreated)
	assert.Equal(t, 1, second.ProductsRevised)
	assert.Equal(t, []string{created.ID}, second.UpdatedIDs)

	// New variations from the second run attach to the stored product
	for _, v := range repo.Variations() {
		assert.Equal(t, created.ID, v.ProductVariationsID)
	}
}

func TestImporterUnresolvedBrandLeavesProductUnlinked(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom(colorHeader,
		[]string{"", "P1", "S1", "Case", "10", "Red"},
	)

	report, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	assert.Empty(t, repo.Products())
	assert.Equal(t, 1, report.ProductsUnlinked)
	assert.Len(t, repo.Skus(), 1, "processing continues with the unpersisted draft")
	require.NotEmpty(t, report.Diagnostics)
	assert.Equal(t, models.DiagBrandUnresolved, report.Diagnostics[len(report.Diagnostics)-1].Code)
}

func TestImporterVerifySkusSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	require.NoError(t, repo.CreateSku(ctx, &models.Sku{ID: "S1", Value: "old"}))
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "ABC123", "S1", "Case", "10", "Red"},
		[]string{"Acme", "ABC123", "S2", "Case", "10", "Blue"},
	)

	report, err := NewImporter(repo, nil, nil, Options{VerifySkus: true}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	assert.Equal(t, 1, report.SkusCreated)
	assert.Equal(t, 1, report.SkusExisting)
	assert.Equal(t, 2, report.LinksCreated, "existing skus still get their option links")

	skus := repo.Skus()
	require.Len(t, skus, 2)
	assert.Equal(t, "old", skus[0].Value)
}

func TestImporterSkipsRowsWithoutSku(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "ABC123", "", "Case", "10", "Red"},
	)

	report, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	assert.Empty(t, repo.Skus())
	assert.Empty(t, repo.ProductOptionSkus())
	assert.Equal(t, 1, report.SkusSkipped)
}

func TestImporterImageFailureIsDiagnosticOnly(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	header := []string{"Brand", "DefaultSku", "SKU", "Product Name", "fileName", "imageBrand", "imageModel"}
	rows := rowsFrom(header,
		[]string{"Acme", "P1", "S1", "Case", "front.png, back.gif", "Acme", "Case-X"},
	)

	uploader := new(MockImageUploader)
	uploader.On("Upload", ctx, models.ImageBatch{
		SKU:       "S1",
		FileNames: []string{"front.png", "back.gif"},
		Brand:     "Acme",
		Model:     "Case-X",
	}).Return(errors.New("invalid image type: back.gif"))

	report, err := NewImporter(repo, uploader, nil, Options{LinkImages: true}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	uploader.AssertExpectations(t)
	assert.Equal(t, 1, report.ImageFailures)
	require.Len(t, repo.Skus(), 1)
	assert.Equal(t, "front.png, back.gif", repo.Skus()[0].Image)
}

func TestImporterDoesNotUploadWhenLinkingDisabled(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom([]string{"Brand", "DefaultSku", "SKU", "fileName"},
		[]string{"Acme", "P1", "S1", "front.png"},
	)

	uploader := new(MockImageUploader)
	_, err := NewImporter(repo, uploader, nil, Options{}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestImporterStoreErrorAbortsRun(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("provisioned throughput exceeded")
	repo := &failingRepository{MemoryCatalogRepository: repository.NewMemoryCatalogRepository(), allowed: 1, err: boom}
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "P1", "S1", "Case", "10", "Red"},
		[]string{"Acme", "P1", "S2", "Case", "10", "Blue"},
		[]string{"Acme", "P2", "S3", "Strap", "10", "Red"},
	)

	report, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)

	require.ErrorIs(t, err, boom)
	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "S2")
	assert.Equal(t, 1, report.SkusCreated)
	assert.Len(t, repo.Products(), 1, "later groups are not processed")
}

func TestImporterStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom(colorHeader, []string{"Acme", "P1", "S1", "Case", "10", "Red"})

	_, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.Brands())
}

func TestImporterPublishesProductEvents(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	rows := rowsFrom(colorHeader, []string{"Acme", "P1", "S1", "Case", "10", "Red"})

	publisher := new(MockEventPublisher)
	publisher.On("PublishProductCreated", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	publisher.On("PublishProductRevised", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	_, err := NewImporter(repo, nil, publisher, Options{}, quietLogger()).Run(ctx, rows)
	require.NoError(t, err)
	_, err = NewImporter(repo, nil, publisher, Options{}, quietLogger()).Run(ctx, rows)
	require.NoError(t, err)

	publisher.AssertExpectations(t)
}

func TestSkuSynchronizerReportsSkippedLinks(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	product := &models.Product{ID: "p1", DefaultSkuID: "P1", Type: "accessory"}
	drafts := []*VariationDraft{{Name: "Color", Values: []string{"Red"}}}
	index := OptionIndex{{Variation: "Color", Value: "Red"}: "opt-red"}
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "P1", "S1", "Case", "10", "Red"},
		[]string{"Acme", "P1", "S2", "Case", "10", "Green"},
	)

	syncer := NewSkuSynchronizer(repo, nil, SkuOptions{}, logrus.NewEntry(quietLogger()))
	result, err := syncer.Sync(ctx, product, drafts, index, rows)

	require.NoError(t, err)
	require.Len(t, result.Links, 1)
	assert.Equal(t, "opt-red", result.Links[0].ProductOptionID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, models.SkippedLink{Row: 3, SkuID: "S2", Variation: "Color", Value: "Green"}, result.Skipped[0])
}

func TestOptionIndexKeysCannotCollide(t *testing.T) {
	index := OptionIndex{
		{Variation: "a:b", Value: "c"}: "one",
		{Variation: "a", Value: "b:c"}: "two",
	}

	id, ok := index.Lookup("a:b", "c")
	assert.True(t, ok)
	assert.Equal(t, "one", id)

	id, ok = index.Lookup("a", "b:c")
	assert.True(t, ok)
	assert.Equal(t, "two", id)
}

func TestBrandResolverIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	resolver := NewBrandResolver(repo, logrus.NewEntry(quietLogger()))

	first, err := resolver.Resolve(ctx, []string{"Acme", "Globex", "Acme", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, first.Created)

	second, err := resolver.Resolve(ctx, []string{"Acme", "Globex"})
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, first.IDs, second.IDs)
	assert.Len(t, repo.Brands(), 2)
}

func TestImporterVerifySkusDoesNotUploadImagesOfExistingSkus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalogRepository()
	require.NoError(t, repo.CreateSku(ctx, &models.Sku{ID: "S1", Image: "front.png"}))
	header := []string{"Brand", "DefaultSku", "SKU", "fileName", "imageBrand", "imageModel"}
	rows := rowsFrom(header,
		[]string{"Acme", "P1", "S1", "front.png", "Acme", "Case-X"},
		[]string{"Acme", "P1", "S2", "back.png", "Acme", "Case-X"},
	)

	newBatch := models.ImageBatch{SKU: "S2", FileNames: []string{"back.png"}, Brand: "Acme", Model: "Case-X"}
	uploader := new(MockImageUploader)
	uploader.On("Upload", ctx, newBatch).Return(nil).Once()

	report, err := NewImporter(repo, uploader, nil, Options{VerifySkus: true, LinkImages: true}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	uploader.AssertExpectations(t)
	uploader.AssertNumberOfCalls(t, "Upload", 1)
	assert.Equal(t, 1, report.SkusExisting)
	assert.Equal(t, 1, report.SkusCreated)
}

// strictKeyRepository rejects empty index keys the way DynamoDB does
type strictKeyRepository struct {
	*repository.MemoryCatalogRepository
}

func (r strictKeyRepository) FindProductByDefaultSku(ctx context.Context, defaultSku string) (*models.Product, error) {
	if defaultSku == "" {
		return nil, errors.New("ValidationException: one or more parameter values are not valid")
	}
	return r.MemoryCatalogRepository.FindProductByDefaultSku(ctx, defaultSku)
}

func TestImporterRowsWithoutDefaultSkuAreUnlinked(t *testing.T) {
	ctx := context.Background()
	repo := strictKeyRepository{repository.NewMemoryCatalogRepository()}
	rows := rowsFrom(colorHeader,
		[]string{"Acme", "", "S1", "Case", "10", "Red"},
		[]string{"Acme", "P2", "S2", "Strap", "10", "Blue"},
	)

	report, err := NewImporter(repo, nil, nil, Options{}, quietLogger()).Run(ctx, rows)

	require.NoError(t, err)
	assert.Equal(t, 1, report.ProductsUnlinked)
	assert.Equal(t, 1, report.ProductsCreated)
	require.Len(t, repo.Products(), 1)
	assert.Equal(t, "P2", repo.Products()[0].DefaultSkuID)

	var codes []string
	for _, d := range report.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, models.DiagMissingDefaultSku)
	assert.NotContains(t, codes, models.DiagBrandUnresolved)
}
