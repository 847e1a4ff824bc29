package source

import (
	"bytes"
	"strings"
	"testing"

	"catalog-sync-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSVStripsBOMAndTrims(t *testing.T) {
	input := "\xEF\xBB\xBFBrand,DefaultSku,SKU,Variation:Color\n Acme ,ABC123, S1 ,Red\n"

	rows, err := ReadCSV(strings.NewReader(input), "")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Brand", rows[0].Header[0])
	assert.Equal(t, "Acme", rows[0].Get(models.ColumnBrand))
	assert.Equal(t, "S1", rows[0].Get(models.ColumnSKU))
	assert.Equal(t, 2, rows[0].Line)
}

func TestReadCSVHandlesQuotesAndRaggedRows(t *testing.T) {
	input := "DefaultSku,SKU,Description,RRP\n" +
		"P1,S1,\"Hard case, black\n2 pack\",10\n" +
		"P1,S2\n"

	rows, err := ReadCSV(strings.NewReader(input), EncodingUTF8)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Hard case, black\n2 pack", rows[0].Get(models.ColumnDescription))
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[1].Get(models.ColumnRRP))
}

func TestReadCSVDecodesWindows1252(t *testing.T) {
	input := []byte("Brand,DefaultSku\nCaf\xE9,P1\n")

	rows, err := ReadCSV(bytes.NewReader(input), EncodingWindows1252)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café", rows[0].Get(models.ColumnBrand))
}

func TestReadCSVRejectsUnknownEncoding(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a\n"), "ebcdic")
	assert.Error(t, err)
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "")
	assert.Error(t, err)
}

func TestReadCSVStripsTemplateRequiredMarker(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("Brand *,DefaultSku *\nAcme,P1\n"), "")

	require.NoError(t, err)
	assert.Equal(t, "Acme", rows[0].Get(models.ColumnBrand))
	assert.Equal(t, "P1", rows[0].Get(models.ColumnDefaultSku))
}

func TestReadXLSXPrefersProductsSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Products")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"Ignored"}))
	require.NoError(t, f.SetSheetRow("Products", "A1", &[]string{"Brand", "DefaultSku", "SKU", "Variation:Color"}))
	require.NoError(t, f.SetSheetRow("Products", "A2", &[]string{"Acme", "ABC123", "S1", "Red"}))
	require.NoError(t, f.SetSheetRow("Products", "A3", &[]string{"Acme", "ABC123", "S2"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := ReadXLSX(&buf)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "S1", rows[0].Get(models.ColumnSKU))
	assert.Equal(t, "Red", rows[0].VariationValue("Color"))
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "", rows[1].VariationValue("Color"))
}

func TestFormatFromFilename(t *testing.T) {
	format, err := FormatFromFilename("catalog.CSV")
	require.NoError(t, err)
	assert.Equal(t, models.ImportFormatCSV, format)

	format, err = FormatFromFilename("catalog.xlsx")
	require.NoError(t, err)
	assert.Equal(t, models.ImportFormatXLSX, format)

	_, err = FormatFromFilename("catalog.json")
	assert.Error(t, err)
}
