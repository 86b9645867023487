package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docfields/internal/fields"
	"github.com/dgallion1/docfields/internal/parser"
)

func testWorker() *Worker {
	return NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), parser.Options{}, nil)
}

func TestWorker_Process(t *testing.T) {
	w := testWorker()
	doc := Document{
		Filename: "shoes.txt",
		Data:     []byte("Title: Red Shoes\nH1\nBest Shoes Ever\n--- Product Section ---\nDurable sole.\n"),
	}

	r := w.Process(context.Background(), doc)
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if r.Record.Title != "Red Shoes" || r.Record.Heading1 != "Best Shoes Ever" {
		t.Errorf("unexpected record %+v", r.Record)
	}
	if r.Record.ProductSection != "Durable sole." {
		t.Errorf("expected product section %q, got %q", "Durable sole.", r.Record.ProductSection)
	}
	if r.Lines != 5 {
		t.Errorf("expected 5 lines, got %d", r.Lines)
	}
	if r.ContentHash != ContentHashHex(doc.Data) {
		t.Errorf("expected content hash of input, got %q", r.ContentHash)
	}
}

func TestWorker_ProcessUnreadable(t *testing.T) {
	w := testWorker()

	tests := []struct {
		doc  Document
		want error
	}{
		{Document{Filename: "legacy.doc", Data: []byte("x")}, parser.ErrUnsupportedFormat},
		{Document{Filename: "broken.docx", Data: []byte("not a zip")}, nil},
	}
	for _, tt := range tests {
		r := w.Process(context.Background(), tt.doc)
		var de *DocumentError
		if !errors.As(r.Err, &de) {
			t.Fatalf("%s: expected *DocumentError, got %v", tt.doc.Filename, r.Err)
		}
		if de.Filename != tt.doc.Filename {
			t.Errorf("expected filename %q, got %q", tt.doc.Filename, de.Filename)
		}
		if tt.want != nil && !errors.Is(r.Err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.doc.Filename, tt.want, r.Err)
		}
		if r.Record != (fields.Record{}) {
			t.Errorf("%s: expected empty record on failure, got %+v", tt.doc.Filename, r.Record)
		}
	}
}

func TestWorker_ProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := testWorker().Process(ctx, Document{Filename: "a.txt", Data: []byte("Title: x")})
	if !errors.Is(r.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", r.Err)
	}
}

func TestWorker_RecordsStats(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	w := NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), parser.Options{}, stats)
	w.Process(context.Background(), Document{Filename: "a.txt", Data: []byte("Title: x")})
	w.Process(context.Background(), Document{Filename: "b.doc"})

	snap := stats.Snapshot()
	if snap.Documents != 2 || snap.Failed != 1 {
		t.Errorf("expected 2 documents with 1 failure, got %+v", snap)
	}
}

func TestRun_PreservesInputOrder(t *testing.T) {
	var docs []Document
	for i := range 20 {
		docs = append(docs, Document{
			Filename: fmt.Sprintf("doc-%02d.txt", i),
			Data:     []byte(fmt.Sprintf("Title: Document %d\n", i)),
		})
	}

	results := Run(context.Background(), testWorker(), docs, 4, nil)
	if len(results) != len(docs) {
		t.Fatalf("expected %d results, got %d", len(docs), len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d: expected index %d, got %d", i, i, r.Index)
		}
		if r.Filename != docs[i].Filename {
			t.Errorf("result %d: expected filename %q, got %q", i, docs[i].Filename, r.Filename)
		}
		if want := fmt.Sprintf("Document %d", i); r.Record.Title != want {
			t.Errorf("result %d: expected title %q, got %q", i, want, r.Record.Title)
		}
	}
}

func TestRun_FailureDoesNotAbortBatch(t *testing.T) {
	docs := []Document{
		{Filename: "a.txt", Data: []byte("Title: A")},
		{Filename: "b.docx", Data: []byte("garbage")},
		{Filename: "c.txt", Data: []byte("Title: C")},
	}

	var mu sync.Mutex
	var calls []int
	results := Run(context.Background(), testWorker(), docs, 2, func(done, total int, r Result) {
		mu.Lock()
		defer mu.Unlock()
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		calls = append(calls, done)
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("expected healthy documents to succeed, got %v / %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("expected corrupt docx to fail")
	}
	if results[0].Record.Title != "A" || results[2].Record.Title != "C" {
		t.Errorf("unexpected titles %q / %q", results[0].Record.Title, results[2].Record.Title)
	}
	if len(calls) != 3 || calls[0] != 1 || calls[2] != 3 {
		t.Errorf("expected progress 1..3, got %v", calls)
	}
}

func TestRun_Empty(t *testing.T) {
	if results := Run(context.Background(), testWorker(), nil, 0, nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestWorker_ProcessRejectedDocument(t *testing.T) {
	errRead := errors.New("permission denied")
	r := testWorker().Process(context.Background(), Document{
		Filename: "a.txt",
		Data:     []byte("Title: ignored"),
		Err:      errRead,
	})

	if !errors.Is(r.Err, errRead) {
		t.Fatalf("expected read error, got %v", r.Err)
	}
	if r.Record != (fields.Record{}) {
		t.Errorf("expected no extracted record, got %+v", r.Record)
	}
	if got := r.Fields().Title; got != "Error: permission denied" {
		t.Errorf("expected failure marker, got %q", got)
	}
}

func TestWorker_ProcessRecordsDuration(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	w := NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), parser.Options{}, stats)

	docs := []Document{
		{Filename: "a.txt", Data: []byte("Title: A\nDescription: B")},
		{Filename: "legacy.doc", Data: []byte("x")},
	}
	for _, doc := range docs {
		r := w.Process(context.Background(), doc)
		if r.Duration <= 0 {
			t.Errorf("%s: expected positive duration, got %v", doc.Filename, r.Duration)
		}
	}
	if got := stats.Snapshot().Documents; got != 2 {
		t.Errorf("expected 2 observed documents, got %d", got)
	}
}
