package parser

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVParser handles CSV files. Every cell is treated like a table cell:
// rows are walked in order, cells left to right.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var lines []string
	for _, row := range records {
		for _, cell := range row {
			lines = appendLines(lines, cell)
		}
	}
	return lines, nil
}
