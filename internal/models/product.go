package models

import (
	"strconv"
	"time"
)

// Type tags written to the __typename discriminator of every catalog item
const (
	TypenameBrand            = "Brand"
	TypenameProduct          = "Product"
	TypenameVariation        = "ProductVariation"
	TypenameProductOption    = "ProductOption"
	TypenameSku              = "Sku"
	TypenameProductOptionSku = "ProductOptionSku"
)

// Defaults applied to drafts when the source row leaves a field empty
const (
	DefaultProductClass = "product"
	DefaultProductType  = "accessory"
	DefaultDisplayType  = "dropdown"
	VariationTypeCustom = "custom"
	ValueTypeRRP        = "RRP"
	NoVariation         = "no-variation"
	NoOption            = "no-option"
	InitialRevisions    = "0"
	timestampLayout     = "2006-01-02T15:04:05.000Z"
)

// Timestamp formats t the way catalog items store createdAt/updatedAt (UTC, millisecond precision)
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Brand represents a brand item. Brands are unique by name through the byName index.
type Brand struct {
	ID        string `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Typename  string `json:"__typename" dynamodbav:"__typename" gorm:"column:typename"`
	Name      string `json:"name" dynamodbav:"name" gorm:"column:name;not null;index"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

// Product represents a product item keyed by {id, version}.
// Revisions is stored as a string-encoded integer.
type Product struct {
	ID              string `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Version         int    `json:"version" dynamodbav:"version" gorm:"column:version;primaryKey;autoIncrement:false"`
	Typename        string `json:"__typename" dynamodbav:"__typename" gorm:"column:typename"`
	Name            string `json:"name" dynamodbav:"name" gorm:"column:name"`
	Class           string `json:"class" dynamodbav:"class" gorm:"column:class"`
	Type            string `json:"type" dynamodbav:"type" gorm:"column:type"`
	DefaultSkuID    string `json:"defaultSkuId" dynamodbav:"defaultSkuId" gorm:"column:default_sku_id;not null;index"`
	DisplayPrice    string `json:"displayPrice" dynamodbav:"displayPrice" gorm:"column:display_price"`
	Description     string `json:"description" dynamodbav:"description" gorm:"column:description"`
	PaymentType     string `json:"paymentType" dynamodbav:"paymentType" gorm:"column:payment_type"`
	ValueType       string `json:"valueType" dynamodbav:"valueType" gorm:"column:value_type"`
	BrandProductsID string `json:"brandProductsId,omitempty" dynamodbav:"brandProductsId,omitempty" gorm:"column:brand_products_id;index"`
	Revisions       string `json:"revisions" dynamodbav:"revisions" gorm:"column:revisions"`
	CreatedAt       string `json:"createdAt" dynamodbav:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt       string `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

// RevisionCount parses Revisions, treating anything unparsable as zero
func (p *Product) RevisionCount() int {
	n, err := strconv.Atoi(p.Revisions)
	if err != nil {
		return 0
	}
	return n
}

// Key returns the composite primary key used for optimistic updates
func (p *Product) Key() ProductKey {
	return ProductKey{ID: p.ID, Version: p.Version}
}

// ProductKey is the composite {id, version} key of a product item
type ProductKey struct {
	ID      string `json:"id" dynamodbav:"id"`
	Version int    `json:"version" dynamodbav:"version"`
}

// RevisionUpdate holds the values returned by a revision bump
type RevisionUpdate struct {
	Version   int    `json:"version" dynamodbav:"version"`
	Revisions string `json:"revisions" dynamodbav:"revisions"`
}

// Variation represents a ProductVariation item, scoped to one product
type Variation struct {
	ID                       string `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Typename                 string `json:"__typename" dynamodbav:"__typename" gorm:"column:typename"`
	Name                     string `json:"name" dynamodbav:"name" gorm:"column:name"`
	DisplayType              string `json:"displayType" dynamodbav:"displayType" gorm:"column:display_type"`
	Type                     string `json:"type" dynamodbav:"type" gorm:"column:type"`
	ProductVariationsID      string `json:"productVariationsId" dynamodbav:"productVariationsId" gorm:"column:product_variations_id;index"`
	ProductVariationsVersion int    `json:"productVariationsVersion" dynamodbav:"productVariationsVersion" gorm:"column:product_variations_version"`
	CreatedAt                string `json:"createdAt" dynamodbav:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt                string `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

// ProductOption represents one value of a variation
type ProductOption struct {
	ID                        string `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Typename                  string `json:"__typename" dynamodbav:"__typename" gorm:"column:typename"`
	Name                      string `json:"name" dynamodbav:"name" gorm:"column:name"`
	ProductVariationOptionsID string `json:"productVariationOptionsId" dynamodbav:"productVariationOptionsId" gorm:"column:product_variation_options_id;index"`
	CreatedAt                 string `json:"createdAt" dynamodbav:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt                 string `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

// Sku represents a sellable unit. Its ID is the natural SKU code from the source file.
type Sku struct {
	ID                 string `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Version            int    `json:"version" dynamodbav:"version" gorm:"column:version;primaryKey;autoIncrement:false"`
	Typename           string `json:"__typename" dynamodbav:"__typename" gorm:"column:typename"`
	Class              string `json:"class" dynamodbav:"class" gorm:"column:class"`
	Type               string `json:"type" dynamodbav:"type" gorm:"column:type"`
	PaymentType        string `json:"paymentType" dynamodbav:"paymentType" gorm:"column:payment_type"`
	Image              string `json:"image" dynamodbav:"image" gorm:"column:image"`
	ProductSkusID      string `json:"productSkusId" dynamodbav:"productSkusId" gorm:"column:product_skus_id;index"`
	ProductSkusVersion int    `json:"productSkusVersion" dynamodbav:"productSkusVersion" gorm:"column:product_skus_version"`
	Value              string `json:"value" dynamodbav:"value" gorm:"column:value"`
	ValueType          string `json:"valueType" dynamodbav:"valueType" gorm:"column:value_type"`
	CreatedAt          string `json:"createdAt" dynamodbav:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt          string `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

// ProductOptionSku joins a Sku to one of its resolved options
type ProductOptionSku struct {
	ID              string `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Typename        string `json:"__typename" dynamodbav:"__typename" gorm:"column:typename"`
	ProductOptionID string `json:"productOptionId" dynamodbav:"productOptionId" gorm:"column:product_option_id;index"`
	SkuID           string `json:"skuId" dynamodbav:"skuId" gorm:"column:sku_id;index"`
	SkuVersion      int    `json:"skuversion" dynamodbav:"skuversion" gorm:"column:sku_version"`
	CreatedAt       string `json:"createdAt" dynamodbav:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt       string `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

// ImageBatch describes the image files referenced by one source row
type ImageBatch struct {
	SKU       string
	FileNames []string
	Brand     string
	Model     string
}
