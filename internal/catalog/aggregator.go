package catalog

import (
	"time"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
)

// VariationDraft is one variation dimension of a pending product with its distinct values
type VariationDraft struct {
	Name   string
	Values []string
}

func (v *VariationDraft) addValue(value string) {
	for _, existing := range v.Values {
		if existing == value {
			return
		}
	}
	v.Values = append(v.Values, value)
}

// IsSentinel reports whether this is the placeholder used for products without variations
func (v *VariationDraft) IsSentinel() bool {
	return v.Name == models.NoVariation
}

// PendingProduct groups every row that shares a DefaultSku
type PendingProduct struct {
	Key        string
	BrandName  string
	Product    *models.Product
	Variations []*VariationDraft
	Rows       []Row
}

func (p *PendingProduct) variation(name string) *VariationDraft {
	for _, v := range p.Variations {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Aggregation is the result of grouping a whole source file
type Aggregation struct {
	Groups []*PendingProduct
	// BrandNames holds every distinct non-empty brand name in first-seen order
	BrandNames []string
	TotalRows  int
	EmptyRows  int
}

type Aggregator struct {
	now   func() time.Time
	newID func() string
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Aggregate collapses flat rows into pending products, in order of first appearance
func (a *Aggregator) Aggregate(rows []Row) *Aggregation {
	result := &Aggregation{TotalRows: len(rows)}
	byKey := make(map[string]*PendingProduct)
	seenBrands := make(map[string]bool)

	for _, row := range rows {
		if row.IsEmpty() {
			result.EmptyRows++
			continue
		}

		if brand := row.Get(models.ColumnBrand); brand != "" && !seenBrands[brand] {
			seenBrands[brand] = true
			result.BrandNames = append(result.BrandNames, brand)
		}

		key := row.Get(models.ColumnDefaultSku)
		group, ok := byKey[key]
		if !ok {
			group = a.seed(key, row)
			byKey[key] = group
			result.Groups = append(result.Groups, group)
			continue
		}

		group.Rows = append(group.Rows, row)
		for _, cell := range row.VariationCells() {
			if cell.Value == "" {
				continue
			}
			if v := group.variation(cell.Name); v != nil {
				v.addValue(cell.Value)
			} else {
				group.Variations = append(group.Variations, &VariationDraft{Name: cell.Name, Values: []string{cell.Value}})
			}
		}
	}

	return result
}

func (a *Aggregator) seed(key string, row Row) *PendingProduct {
	ts := models.Timestamp(a.now())
	product := &models.Product{
		ID:           a.newID(),
		Version:      0,
		Typename:     models.TypenameProduct,
		Name:         row.Get(models.ColumnProductName),
		Class:        valueOr(row.Get(models.ColumnClass), models.DefaultProductClass),
		Type:         valueOr(row.Get(models.ColumnType), models.DefaultProductType),
		DefaultSkuID: key,
		DisplayPrice: row.Get(models.ColumnRRP),
		Description:  row.Get(models.ColumnDescription),
		PaymentType:  row.Get(models.ColumnPaymentType),
		ValueType:    models.ValueTypeRRP,
		Revisions:    models.InitialRevisions,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	group := &PendingProduct{
		Key:       key,
		BrandName: row.Get(models.ColumnBrand),
		Product:   product,
		Rows:      []Row{row},
	}
	for _, cell := range row.VariationCells() {
		if cell.Value == "" {
			continue
		}
		if v := group.variation(cell.Name); v != nil {
			v.addValue(cell.Value)
			continue
		}
		group.Variations = append(group.Variations, &VariationDraft{Name: cell.Name, Values: []string{cell.Value}})
	}
	if len(group.Variations) == 0 {
		group.Variations = []*VariationDraft{{Name: models.NoVariation, Values: []string{models.NoOption}}}
	}
	return group
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
