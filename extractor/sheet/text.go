package sheet

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// loadText turns a plain text file into a one-column sheet, one line per row.
func loadText(data []byte, fallback string) (*Workbook, error) {
	r, err := decodeText(data, fallback)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rows = append(rows, []string{strings.TrimRight(scanner.Text(), "\r")})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	return &Workbook{Sheets: []Sheet{{Name: "sheet1", Grid: NewGrid(rows)}}}, nil
}

// loadPDF extracts text rows from every page into a one-column sheet.
func loadPDF(data []byte) (*Workbook, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := r.NumPage()
	rows := make([][]string, 0, numPages*50)
	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			continue
		}
		textRows, err := page.GetTextByRow()
		if err != nil {
			log.WithError(err).WithField("page", no).Warn("Could not read text from page")
			continue
		}

		for _, row := range textRows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				rows = append(rows, []string{builder.String()})
			}
		}
	}
	return &Workbook{Sheets: []Sheet{{Name: "sheet1", Grid: NewGrid(rows)}}}, nil
}
