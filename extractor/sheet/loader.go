// Package sheet loads statement files into in-memory string grids and reads
// rectangular ranges out of them.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Options tunes how files are decoded.
type Options struct {
	// CSVEncoding is the charset tried when a CSV file is not valid UTF-8.
	CSVEncoding string
}

func DefaultOptions() Options {
	return Options{CSVEncoding: "windows-1258"}
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	pdfMagic = []byte("%PDF")
)

// Load reads the file at path. ext may carry a leading dot; when empty it is
// taken from the path.
func Load(path, ext string, opts Options) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if ext == "" {
		ext = filepath.Ext(path)
	}
	return LoadBytes(data, ext, opts)
}

// LoadReader buffers r and loads it as LoadBytes does.
func LoadReader(r io.Reader, ext string, opts Options) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return LoadBytes(data, ext, opts)
}

// LoadBytes picks a decoder from the extension, correcting it when the
// content is plainly another spreadsheet container (banks often ship xlsx
// files named .xls).
func LoadBytes(data []byte, ext string, opts Options) (*Workbook, error) {
	kind := normaliseExt(ext)
	switch {
	case bytes.HasPrefix(data, zipMagic) && (kind == "xls" || kind == "xlsx" || kind == "xlsm"):
		kind = "xlsx"
	case bytes.HasPrefix(data, oleMagic) && (kind == "xls" || kind == "xlsx"):
		kind = "xls"
	case bytes.HasPrefix(data, pdfMagic):
		kind = "pdf"
	}

	var (
		wb  *Workbook
		err error
	)
	switch kind {
	case "xlsx", "xlsm":
		wb, err = loadXLSX(data)
	case "xls":
		wb, err = loadXLS(data)
	case "csv":
		wb, err = loadCSV(data, opts.CSVEncoding)
	case "txt", "mt940":
		wb, err = loadText(data, opts.CSVEncoding)
	case "pdf":
		wb, err = loadPDF(data)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"format": kind, "sheets": len(wb.Sheets)}).Debug("Loaded workbook")
	return wb, nil
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
