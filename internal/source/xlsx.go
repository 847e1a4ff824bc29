package source

import (
	"fmt"
	"io"
	"strings"

	"catalog-sync-service/internal/catalog"
	"github.com/xuri/excelize/v2"
)

// ProductsSheet is preferred over the first sheet when a workbook has it
const ProductsSheet = "Products"

// ReadXLSX parses the Products sheet of a workbook, or its first sheet
func ReadXLSX(r io.Reader) ([]catalog.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, ProductsSheet) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(excelRows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheetName)
	}

	header := normalizeHeader(excelRows[0])
	rows := make([]catalog.Row, 0, len(excelRows)-1)
	for i, record := range excelRows[1:] {
		rows = append(rows, catalog.NewRow(i+2, header, record))
	}
	return rows, nil
}
