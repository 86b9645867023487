package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/docfields/internal/pipeline"
	"github.com/dgallion1/docfields/internal/report"
)

// Run executes the extract command. Unreadable documents become failed
// rows; only output errors fail the command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	docs := make([]pipeline.Document, 0, len(c.Files))
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		docs = append(docs, pipeline.Document{
			Filename: filepath.Base(path),
			Data:     data,
			Err:      err,
		})
	}

	results := pipeline.Run(deps.Ctx, deps.Worker, docs, c.Concurrency, func(done, total int, r pipeline.Result) {
		deps.Log.Debug("document done", "filename", r.Filename, "done", done, "total", total, "ms", r.Duration.Milliseconds())
	})

	dest := c.Output
	if dest == "" && format == report.FormatXLSX {
		dest = report.Filename(len(results), string(format))
	}
	if err := writeReport(deps.Stdout, dest, format, results); err != nil {
		return err
	}

	s := report.Summarize(results)
	fmt.Fprintf(deps.Stderr, "Extracted %d documents (%d failed)\n", s.Total, s.Failed)
	fmt.Fprintf(deps.Stderr, "  Title: %d  Description: %d  Heading 1: %d  Product Section: %d\n",
		s.WithTitle, s.WithDescription, s.WithHeading1, s.WithProductSection)
	if dest != "" && dest != "-" {
		fmt.Fprintf(deps.Stderr, "Report written to %s\n", dest)
	}
	return nil
}

func writeReport(stdout io.Writer, dest string, format report.Format, results []pipeline.Result) error {
	if dest == "" || dest == "-" {
		return report.Write(stdout, format, results)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, format, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
