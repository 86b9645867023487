package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docfields/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:       2,
		MaxQueueSize:      4,
		MaxConcurrentDocs: 2,
		JobTTL:            time.Hour,
		StatsWindow:       time.Hour,
	}
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_RunsJob(t *testing.T) {
	o := NewOrchestrator(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob([]Document{
		{Filename: "a.txt", Data: []byte("Title: A\nDescription: first")},
		{Filename: "b.docx", Data: []byte("corrupt")},
		{Filename: "c.md", Data: []byte("Title: C\n")},
	})
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected job to be registered")
	}

	snap := waitDone(t, job)
	if snap.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, snap.Status)
	}
	if snap.Progress.Processed != 3 || snap.Progress.Failed != 1 {
		t.Errorf("expected 3 processed / 1 failed, got %+v", snap.Progress)
	}

	results := job.Results()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Record.Description != "first" || results[2].Record.Title != "C" {
		t.Errorf("unexpected results %+v", results)
	}
	if got := o.Stats().Snapshot().Documents; got != 3 {
		t.Errorf("expected stats for 3 documents, got %d", got)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer o.Stop()

	if err := o.Submit(NewJob(nil)); err != nil {
		t.Fatalf("unexpected error for first job: %v", err)
	}
	rejected := NewJob(nil)
	err := o.Submit(rejected)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if rejected.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be marked failed, got %q", rejected.Snapshot().Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob([]Document{{Filename: "a.txt", Data: []byte("Title: A")}})
	err := o.Submit(job)
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected job to be marked failed, got %q", job.Snapshot().Status)
	}
}
