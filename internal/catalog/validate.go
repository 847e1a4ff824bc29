package catalog

import (
	"fmt"

	"catalog-sync-service/internal/models"
	"github.com/shopspring/decimal"
)

// ValidateRows reports shape problems that do not stop a run
func ValidateRows(rows []Row) []models.ImportRowError {
	var diags []models.ImportRowError
	for _, row := range rows {
		if row.IsEmpty() {
			continue
		}
		if row.Get(models.ColumnDefaultSku) == "" {
			diags = append(diags, models.ImportRowError{
				Row:     row.Line,
				Column:  models.ColumnDefaultSku,
				Code:    models.DiagMissingDefaultSku,
				Message: "DefaultSku is empty; row is grouped under the empty key",
			})
		}
		if rrp := row.Get(models.ColumnRRP); rrp != "" {
			if _, err := decimal.NewFromString(rrp); err != nil {
				diags = append(diags, models.ImportRowError{
					Row:     row.Line,
					Column:  models.ColumnRRP,
					Code:    models.DiagInvalidRRP,
					Message: fmt.Sprintf("RRP %q is not a decimal number", rrp),
				})
			}
		}
	}
	return diags
}
