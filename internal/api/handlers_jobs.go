package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/docfields/internal/pipeline"
	"github.com/dgallion1/docfields/internal/report"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	uploads, ok := s.readUploads(w, r)
	if !ok {
		return
	}

	// Rejected files are reported now and kept out of the job.
	var docs []pipeline.Document
	rejected := []map[string]string{}
	for _, doc := range uploads {
		if doc.Err != nil {
			rejected = append(rejected, map[string]string{
				"filename": doc.Filename,
				"error":    doc.Err.Error(),
			})
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "no acceptable files",
			"rejected": rejected,
		})
		return
	}

	job := pipeline.NewJob(docs)
	if err := s.orchestrator.Submit(job); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) || errors.Is(err, pipeline.ErrStopped) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"documents":  len(docs),
		"rejected":   rejected,
		"poll_url":   fmt.Sprintf("/api/jobs/%s", job.ID),
		"report_url": fmt.Sprintf("/api/jobs/%s/report", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":     snap.ID,
		"status":     snap.Status,
		"progress":   snap.Progress,
		"created_at": snap.CreatedAt,
		"updated_at": snap.UpdatedAt,
	}
	if snap.Status.Done() {
		resp["summary"] = report.Summarize(job.Results())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if snap := job.Snapshot(); !snap.Status.Done() {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}

	writeReport(w, format, job.Results())
}
