package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]string, error) {
	// go-docx needs a ReaderAt and the archive size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	return docxLines(doc.Document.Body.Items), nil
}

// docxLines flattens body items: every table first, row by row and cell by
// cell, then every top-level paragraph.
func docxLines(items []interface{}) []string {
	var lines []string
	for _, item := range items {
		tbl, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		for _, row := range tbl.TableRows {
			for _, cell := range row.TableCells {
				for _, para := range cell.Paragraphs {
					lines = appendLines(lines, docxParagraphText(para))
				}
			}
		}
	}
	for _, item := range items {
		if para, ok := item.(*docx.Paragraph); ok {
			lines = appendLines(lines, docxParagraphText(para))
		}
	}
	return lines
}

// docxParagraphText renders a paragraph the way Word shows it: soft breaks
// become newlines, tabs become tabs and hyperlinks contribute their text.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeDocxRun(&buf, c)
		case *docx.Hyperlink:
			writeDocxRun(&buf, &c.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeDocxRun(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			buf.WriteString(c.Text)
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		case *docx.Tab:
			buf.WriteByte('\t')
		}
	}
}
