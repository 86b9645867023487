package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docfields/internal/pipeline"
)

// utf8BOM lets spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// WriteCSV writes the header and one row per result.
func WriteCSV(w io.Writer, results []pipeline.Result) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(results)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
