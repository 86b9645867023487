// Package fields locates labeled values in a flattened document line
// sequence. Every function here is a pure, read-only scan: the same lines
// always produce the same record.
package fields

import (
	"strings"
	"unicode"
)

// Field names as they appear in reports.
const (
	FieldTitle          = "Title"
	FieldDescription    = "Description"
	FieldHeading1       = "Heading 1"
	FieldProductSection = "Product Section"
)

// FieldNames lists the record keys in report column order.
var FieldNames = []string{FieldTitle, FieldDescription, FieldHeading1, FieldProductSection}

// Record holds the extracted fields of one document. Missing fields are
// empty strings.
type Record struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Heading1       string `json:"heading_1"`
	ProductSection string `json:"product_section"`
}

// Map returns the record keyed by report field name. All four keys are
// always present.
func (r Record) Map() map[string]string {
	return map[string]string{
		FieldTitle:          r.Title,
		FieldDescription:    r.Description,
		FieldHeading1:       r.Heading1,
		FieldProductSection: r.ProductSection,
	}
}

// Values returns the field values in FieldNames order.
func (r Record) Values() []string {
	return []string{r.Title, r.Description, r.Heading1, r.ProductSection}
}

// FailedRecord marks every field of an unreadable document.
func FailedRecord(err error) Record {
	marker := FailureMarker(err)
	return Record{Title: marker, Description: marker, Heading1: marker, ProductSection: marker}
}

// FailureMarker is the text placed in fields of a document that could not
// be read. It never collides with an empty (missing) field.
func FailureMarker(err error) string {
	return "Error: " + err.Error()
}

// headingLabels are tried in order for the Heading 1 field.
var headingLabels = []Label{LabelH1, LabelHeading1}

// Extract builds the field record for a line sequence.
func Extract(lines []string) Record {
	var heading string
	for _, l := range headingLabels {
		if heading = Value(lines, l); heading != "" {
			break
		}
	}
	return Record{
		Title:          Value(lines, LabelTitle),
		Description:    Value(lines, LabelDescription),
		Heading1:       heading,
		ProductSection: Section(lines),
	}
}

// Value returns the value of the first line labeled l. The value is the
// remainder of that line after the label and any ":", "：" or whitespace
// separators, or the following line when nothing remains. It returns ""
// when no line carries the label.
func Value(lines []string, l Label) string {
	for i, line := range lines {
		rest, ok := l.Match(line)
		if !ok {
			continue
		}
		if v := strings.TrimSpace(trimSeparators(rest)); v != "" {
			return v
		}
		if i+1 < len(lines) {
			return strings.TrimSpace(lines[i+1])
		}
	}
	return ""
}

func trimSeparators(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return r == ':' || r == '：' || unicode.IsSpace(r)
	})
}

// Section returns the body following the first Product Section marker,
// up to the next labeled line or the end of input.
func Section(lines []string) string {
	start := -1
	for i, line := range lines {
		if sectionMarker.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	var part []string
	for _, line := range lines[start:] {
		if isBoundary(line) {
			break
		}
		part = append(part, line)
	}
	return strings.TrimSpace(strings.Join(part, "\n"))
}
