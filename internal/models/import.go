package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// Recognized source columns
const (
	ColumnBrand       = "Brand"
	ColumnDefaultSku  = "DefaultSku"
	ColumnSKU         = "SKU"
	ColumnProductName = "Product Name"
	ColumnClass       = "Class"
	ColumnType        = "Type"
	ColumnPaymentType = "Payment Type"
	ColumnRRP         = "RRP"
	ColumnDescription = "Description"
	ColumnFileName    = "fileName"
	ColumnImageBrand  = "imageBrand"
	ColumnImageModel  = "imageModel"

	// VariationColumnPrefix marks a variation dimension column, e.g. "Variation:Color"
	VariationColumnPrefix = "Variation:"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRowError represents a diagnostic for a specific source row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Diagnostic codes reported in SyncReport.Diagnostics
const (
	DiagMissingDefaultSku = "MISSING_DEFAULT_SKU"
	DiagMissingSku        = "MISSING_SKU"
	DiagInvalidRRP        = "INVALID_RRP"
	DiagBrandUnresolved   = "BRAND_UNRESOLVED"
	DiagOptionUnresolved  = "OPTION_UNRESOLVED"
	DiagImageUpload       = "IMAGE_UPLOAD_FAILED"
	DiagSkuExists         = "SKU_EXISTS"
)

// SkippedLink records a (SKU, variation value) pairing whose option could not be resolved
type SkippedLink struct {
	Row       int    `json:"row"`
	SkuID     string `json:"skuId"`
	Variation string `json:"variation"`
	Value     string `json:"value"`
}

// ImportRequest represents run options
type ImportRequest struct {
	ValidateOnly bool `json:"validateOnly"` // dry run against an in-memory store
	VerifySkus   bool `json:"verifySkus"`   // look up each SKU before writing it
	LinkImages   bool `json:"linkImages"`   // upload row images before writing the SKU
}

// SyncReport summarizes one synchronization run
type SyncReport struct {
	Success          bool             `json:"success"`
	ValidateOnly     bool             `json:"validateOnly"`
	TotalRows        int              `json:"totalRows"`
	EmptyRows        int              `json:"emptyRows"`
	Groups           int              `json:"groups"`
	BrandsCreated    int              `json:"brandsCreated"`
	BrandsExisting   int              `json:"brandsExisting"`
	ProductsCreated  int              `json:"productsCreated"`
	ProductsRevised  int              `json:"productsRevised"`
	ProductsUnlinked int              `json:"productsUnlinked"`
	Variations       int              `json:"variations"`
	Options          int              `json:"options"`
	SkusCreated      int              `json:"skusCreated"`
	SkusExisting     int              `json:"skusExisting"`
	SkusSkipped      int              `json:"skusSkipped"`
	LinksCreated     int              `json:"linksCreated"`
	ImageFailures    int              `json:"imageFailures"`
	SkippedLinks     []SkippedLink    `json:"skippedLinks,omitempty"`
	Diagnostics      []ImportRowError `json:"diagnostics,omitempty"`
	CreatedIDs       []string         `json:"createdIds,omitempty"`
	UpdatedIDs       []string         `json:"updatedIds,omitempty"`
	Error            string           `json:"error,omitempty"`
	ProcessingMs     int64            `json:"processingMs"`
}

// AddDiagnostic appends a row-level diagnostic
func (r *SyncReport) AddDiagnostic(row int, column, code, message string) {
	r.Diagnostics = append(r.Diagnostics, ImportRowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	})
}

// CatalogImportColumns returns the column definitions for a catalog import
func CatalogImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: ColumnBrand, Description: "Brand name - created if it does not exist", Required: true, Type: "string", Example: "Acme"},
		{Name: ColumnDefaultSku, Description: "Default SKU - rows sharing it form one product", Required: true, Type: "string", Example: "ABC123"},
		{Name: ColumnSKU, Description: "SKU code of this sellable unit", Required: true, Type: "string", Example: "ABC123-RED"},
		{Name: ColumnProductName, Description: "Product name", Required: true, Type: "string", Example: "Phone Case"},
		{Name: ColumnClass, Description: "Product class (default: product)", Required: false, Type: "string", Example: "product"},
		{Name: ColumnType, Description: "Product type (default: accessory)", Required: false, Type: "string", Example: "accessory"},
		{Name: ColumnPaymentType, Description: "Payment type", Required: false, Type: "string", Example: "once"},
		{Name: ColumnRRP, Description: "Recommended retail price", Required: false, Type: "number", Example: "29.99"},
		{Name: ColumnDescription, Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: ColumnFileName, Description: "Comma-separated image files (jpeg, jpg, png)", Required: false, Type: "string", Example: "front.png,back.png"},
		{Name: ColumnImageBrand, Description: "Image folder brand segment", Required: false, Type: "string", Example: "acme"},
		{Name: ColumnImageModel, Description: "Image folder model segment", Required: false, Type: "string", Example: "case-x"},
		{Name: VariationColumnPrefix + "Color", Description: "Any number of Variation:<name> columns", Required: false, Type: "string", Example: "Red"},
	}
}

// CatalogImportTemplate returns the template definition for catalog imports
func CatalogImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "catalog",
		Version: "1.0",
		Columns: CatalogImportColumns(),
	}
}
