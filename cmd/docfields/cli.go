package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/dgallion1/docfields/internal/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Log    *slog.Logger
	Worker *pipeline.Worker
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log per-document progress"`

	Extract ExtractCmd `cmd:"" help:"Extract fields from documents into a report"`
	Lines   LinesCmd   `cmd:"" help:"Print the flattened line sequence of a document"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Files       []string `arg:"" help:"Documents to extract (.docx, .html, .md, .pdf, .txt, .csv)"`
	Format      string   `short:"f" enum:"json,csv,xlsx" default:"json" help:"Report format (json, csv, xlsx)"`
	Output      string   `short:"o" help:"Output path; '-' for stdout. Defaults to stdout, or extracted_content_<n>_files.xlsx for xlsx"`
	Concurrency int      `short:"c" default:"4" help:"Documents processed in parallel"`
}

// LinesCmd is the "lines" subcommand.
type LinesCmd struct {
	File     string `arg:"" help:"Document to flatten"`
	Numbered bool   `short:"n" help:"Prefix each line with its index"`
}
