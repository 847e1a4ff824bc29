package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/models"
)

// FormatFromFilename picks the reader for a file by its extension
func FormatFromFilename(filename string) (models.ImportFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return models.ImportFormatCSV, nil
	case ".xlsx":
		return models.ImportFormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported file %q: only CSV and XLSX files are supported", filename)
}

// ReadRows parses r according to format. encoding only applies to CSV.
func ReadRows(r io.Reader, format models.ImportFormat, encoding string) ([]catalog.Row, error) {
	switch format {
	case models.ImportFormatCSV:
		return ReadCSV(r, encoding)
	case models.ImportFormatXLSX:
		return ReadXLSX(r)
	}
	return nil, fmt.Errorf("unsupported import format %q", format)
}

// normalizeHeader trims header cells and drops the " *" required marker written by the template
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		h = strings.TrimSpace(strings.TrimSuffix(h, " *"))
		out[i] = h
	}
	return out
}
