package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns data as a UTF-8 reader, decoding with fallback when the
// bytes are not already valid UTF-8.
func decodeText(data []byte, fallback string) (io.Reader, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) || fallback == "" {
		return bytes.NewReader(data), nil
	}
	enc, err := htmlindex.Get(fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encoding %q: %w", fallback, err)
	}
	log.WithField("encoding", fallback).Debug("Decoding non UTF-8 input")
	return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), nil
}

// loadCSV produces a single sheet named "sheet1". The delimiter is sniffed
// from the first line among comma, semicolon and tab.
func loadCSV(data []byte, fallback string) (*Workbook, error) {
	r, err := decodeText(data, fallback)
	if err != nil {
		return nil, err
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return &Workbook{Sheets: []Sheet{{Name: "sheet1", Grid: NewGrid(rows)}}}, nil
}

func sniffDelimiter(text []byte) rune {
	line := string(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
