package report

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dgallion1/docfields/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the export.
const SheetName = "Extracted Content"

const maxColumnWidth = 50

// WriteXLSX writes the results as a single-sheet workbook. Column widths
// fit the longest cell plus padding, capped at maxColumnWidth.
func WriteXLSX(w io.Writer, results []pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := append([][]string{Header}, Rows(results)...)
	widths := make([]int, len(Header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
			widths[j] = max(widths[j], utf8.RuneCountInString(v))
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for j, n := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(min(n+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
