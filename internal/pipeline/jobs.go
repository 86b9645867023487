package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/docfields/internal/fields"
	"github.com/google/uuid"
)

// JobStatus represents the state of a batch extraction job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Document is one input file of a batch.
type Document struct {
	Filename string
	Data     []byte

	// Err is set when the document could not be read. Process reports it
	// as the document's failure without parsing Data.
	Err error
}

// DocumentError reports a document that could not be flattened into lines.
type DocumentError struct {
	Filename string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Result is the outcome of one document. Index is the document's position
// in its batch.
type Result struct {
	Index       int
	Filename    string
	ContentHash string
	Lines       int
	Record      fields.Record
	Err         error
	Duration    time.Duration
}

// Fields returns the record to report for r: the extracted record, or one
// carrying the failure marker in every field.
func (r Result) Fields() fields.Record {
	if r.Err == nil {
		return r.Record
	}
	cause := r.Err
	var de *DocumentError
	if errors.As(r.Err, &de) {
		cause = de.Err
	}
	return fields.FailedRecord(cause)
}

// Job tracks the state of one asynchronous batch.
type Job struct {
	mu sync.Mutex

	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	docs    []Document
	results []Result
}

// Progress tracks processing progress.
type Progress struct {
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Current   string `json:"current,omitempty"`
}

// NewJob creates a queued job for docs.
func NewJob(docs []Document) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Progress:  Progress{Total: len(docs)},
		CreatedAt: now,
		UpdatedAt: now,
		docs:      docs,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Documents returns the job's input documents.
func (j *Job) Documents() []Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.docs
}

// Observe records one finished document.
func (j *Job) Observe(r Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Processed++
	if r.Err != nil {
		j.Progress.Failed++
	}
	j.Progress.Current = r.Filename
	j.UpdatedAt = time.Now()
}

// Finish stores the batch results, sets the final status and releases the
// raw document bytes.
func (j *Job) Finish(results []Result, status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.docs = nil
	j.Status = status
	j.Progress.Current = ""
	j.UpdatedAt = time.Now()
}

// Results returns a copy of the batch results, in input order. It is empty
// until the job finishes.
func (j *Job) Results() []Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.results)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Progress:  j.Progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
