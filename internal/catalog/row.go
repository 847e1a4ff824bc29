package catalog

import (
	"strings"

	"catalog-sync-service/internal/models"
)

// Row is one parsed source record. Values are keyed by header name and already trimmed.
type Row struct {
	Line   int
	Header []string
	Values map[string]string
}

// VariationCell is one Variation:<name> column of a row
type VariationCell struct {
	Name  string
	Value string
}

// NewRow pairs a record with its header. Missing trailing fields read as empty.
func NewRow(line int, header, record []string) Row {
	values := make(map[string]string, len(header))
	for i, column := range header {
		if i < len(record) {
			values[column] = strings.TrimSpace(record[i])
		} else {
			values[column] = ""
		}
	}
	return Row{Line: line, Header: header, Values: values}
}

// Get returns the trimmed value of column, or "" when the column is absent
func (r Row) Get(column string) string {
	return r.Values[column]
}

// IsEmpty reports whether every field trims to the empty string
func (r Row) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// VariationCells returns the row's Variation:<name> columns in header order.
// Columns whose name suffix is blank are ignored.
func (r Row) VariationCells() []VariationCell {
	var cells []VariationCell
	for _, column := range r.Header {
		name, ok := VariationName(column)
		if !ok {
			continue
		}
		cells = append(cells, VariationCell{Name: name, Value: r.Values[column]})
	}
	return cells
}

// HasVariationValues reports whether any variation column carries a value
func (r Row) HasVariationValues() bool {
	for _, cell := range r.VariationCells() {
		if cell.Value != "" {
			return true
		}
	}
	return false
}

// VariationValue returns the row's value for the named variation dimension
func (r Row) VariationValue(name string) string {
	for _, cell := range r.VariationCells() {
		if cell.Name == name {
			return cell.Value
		}
	}
	return ""
}

// VariationName extracts the dimension name from a Variation:<name> header
func VariationName(column string) (string, bool) {
	if !strings.HasPrefix(column, models.VariationColumnPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(column, models.VariationColumnPrefix))
	if name == "" {
		return "", false
	}
	return name, true
}
