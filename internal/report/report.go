// Package report tabulates batch results into rows and serializes them as
// CSV or XLSX.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfields/internal/fields"
	"github.com/dgallion1/docfields/internal/pipeline"
)

// Header is the first row of every export.
var Header = append([]string{"Filename"}, fields.FieldNames...)

// Rows returns one row per result, in result order, without the header.
// Failed documents carry the failure marker in every field column.
func Rows(results []pipeline.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, append([]string{r.Filename}, r.Fields().Values()...))
	}
	return rows
}

// Filename returns the default export name for n documents.
func Filename(n int, ext string) string {
	return fmt.Sprintf("extracted_content_%d_files.%s", n, ext)
}

// Summary counts how many documents succeeded and which fields were found.
type Summary struct {
	Total              int `json:"total"`
	Succeeded          int `json:"succeeded"`
	Failed             int `json:"failed"`
	WithTitle          int `json:"with_title"`
	WithDescription    int `json:"with_description"`
	WithHeading1       int `json:"with_heading_1"`
	WithProductSection int `json:"with_product_section"`
}

// Summarize computes the summary of results. Failed documents count toward
// no field.
func Summarize(results []pipeline.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.Record.Title != "" {
			s.WithTitle++
		}
		if r.Record.Description != "" {
			s.WithDescription++
		}
		if r.Record.Heading1 != "" {
			s.WithHeading1++
		}
		if r.Record.ProductSection != "" {
			s.WithProductSection++
		}
	}
	return s
}

// Entry is the JSON form of one result.
type Entry struct {
	Filename    string            `json:"filename"`
	ContentHash string            `json:"content_hash"`
	Fields      map[string]string `json:"fields"`
	Error       string            `json:"error,omitempty"`
}

// Entries converts results to their JSON form.
func Entries(results []pipeline.Result) []Entry {
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		e := Entry{
			Filename:    r.Filename,
			ContentHash: r.ContentHash,
			Fields:      r.Fields().Map(),
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		out = append(out, e)
	}
	return out
}

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates s. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, csv or xlsx)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// Write encodes results in format f.
func Write(w io.Writer, f Format, results []pipeline.Result) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatXLSX:
		return WriteXLSX(w, results)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"summary": Summarize(results),
			"results": Entries(results),
		})
	}
	return fmt.Errorf("unknown report format %q", f)
}
