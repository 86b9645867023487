package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docfields/internal/fields"
	"github.com/dgallion1/docfields/internal/parser"
)

// Worker extracts the field record of single documents. It holds no
// per-document state and may be shared between goroutines.
type Worker struct {
	log   *slog.Logger
	opts  parser.Options
	stats *LatencyStats
}

// NewWorker returns a worker. stats may be nil.
func NewWorker(log *slog.Logger, opts parser.Options, stats *LatencyStats) *Worker {
	return &Worker{log: log, opts: opts, stats: stats}
}

// Process flattens doc into lines and extracts its fields. Failures are
// returned inside the Result as a *DocumentError.
func (w *Worker) Process(ctx context.Context, doc Document) (res Result) {
	start := time.Now()
	log := w.log.With("filename", doc.Filename)

	res = Result{
		Filename:    doc.Filename,
		ContentHash: ContentHashHex(doc.Data),
	}
	defer func() {
		res.Duration = time.Since(start)
		if w.stats != nil {
			w.stats.Observe(res)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = &DocumentError{Filename: doc.Filename, Err: err}
		return res
	}
	if doc.Err != nil {
		log.Warn("document rejected", "error", doc.Err)
		res.Err = &DocumentError{Filename: doc.Filename, Err: doc.Err}
		return res
	}

	lines, err := w.Lines(doc)
	if err != nil {
		log.Warn("document unreadable", "error", err)
		res.Err = err
		return res
	}

	res.Lines = len(lines)
	res.Record = fields.Extract(lines)
	log.Debug("extracted fields",
		"lines", len(lines),
		"has_title", res.Record.Title != "",
		"has_product_section", res.Record.ProductSection != "",
	)
	return res
}

// Lines returns the flattened line sequence of doc.
func (w *Worker) Lines(doc Document) ([]string, error) {
	p, err := parser.ForFile(doc.Filename, w.opts)
	if err != nil {
		return nil, &DocumentError{Filename: doc.Filename, Err: err}
	}
	lines, err := p.Parse(bytes.NewReader(doc.Data), doc.Filename)
	if err != nil {
		return nil, &DocumentError{Filename: doc.Filename, Err: err}
	}
	return lines, nil
}
