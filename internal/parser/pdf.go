package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

var errNoPDFText = errors.New("no extractable text")

// PDFParser flattens PDF pages into lines, page by page. Pages are read
// with ledongthuc/pdf. When that fails or yields no text and Fallback is
// set, pdftotext is tried on the same file.
type PDFParser struct {
	Fallback bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]string, error) {
	path, cleanup, err := spoolTemp(r, "docfields-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	lines, err := pdfLines(path)
	if err != nil && p.Fallback {
		if alt, altErr := pdftotextLines(path); altErr == nil {
			return alt, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return lines, nil
}

// spoolTemp copies r into a temp file for libraries that need random
// access. cleanup removes the file.
func spoolTemp(r io.Reader, pattern string) (path string, cleanup func(), err error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup = func() { os.Remove(tmp.Name()) }

	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

func pdfLines(path string) ([]string, error) {
	f, doc, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	for n := range doc.NumPage() {
		page := doc.Page(n + 1)
		if page.V.IsNull() {
			continue
		}
		// A damaged page should not hide the rest of the document.
		if text, err := pageText(page); err == nil {
			lines = appendLines(lines, text)
		}
	}
	if len(lines) == 0 {
		return nil, errNoPDFText
	}
	return lines, nil
}

// pageText rebuilds the lines of a page from its text rows, since
// GetPlainText drops line breaks for many producers.
func pageText(page pdflib.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return page.GetPlainText(nil)
	}
	var buf strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			buf.WriteString(word.S)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func pdftotextLines(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", "-enc", "UTF-8", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return appendLines(nil, string(out)), nil
}
