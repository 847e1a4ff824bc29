package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"catalog-sync-service/internal/catalog"
	"golang.org/x/text/encoding/charmap"
)

// Supported source encodings
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeReader wraps r so it yields UTF-8
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		br := bufio.NewReader(r)
		if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
			if _, err := br.Discard(len(utf8BOM)); err != nil {
				return nil, err
			}
		}
		return br, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	case EncodingISO88591, "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	}
	return nil, fmt.Errorf("unsupported source encoding %q", encoding)
}

// ReadCSV parses a CSV file with a header row
func ReadCSV(r io.Reader, encoding string) ([]catalog.Row, error) {
	decoded, err := decodeReader(r, encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("CSV file is empty")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = normalizeHeader(header)

	var rows []catalog.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, catalog.NewRow(line, header, record))
	}

	return rows, nil
}
