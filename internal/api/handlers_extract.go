package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docfields/internal/parser"
	"github.com/dgallion1/docfields/internal/pipeline"
	"github.com/dgallion1/docfields/internal/report"
)

var errTooLarge = errors.New("file exceeds max upload size")

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if errors.Is(err, errTooLarge) {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	res := s.orchestrator.Worker().Process(r.Context(), pipeline.Document{Filename: filename, Data: data})

	status := http.StatusOK
	if res.Err != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, report.Entries([]pipeline.Result{res})[0])
}

func (s *Server) handleExtractBatch(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	docs, ok := s.readUploads(w, r)
	if !ok {
		return
	}

	results := pipeline.Run(r.Context(), s.orchestrator.Worker(), docs, s.cfg.MaxConcurrentDocs, nil)
	s.log.Info("batch extracted", "documents", len(results), "format", format)
	writeReport(w, format, results)
}

// readUploads parses the multipart "files" field into one document per
// file. Rejected files carry their reason in Document.Err. On failure it
// writes the error response and returns false.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]pipeline.Document, bool) {
	maxFiles := int64(s.cfg.MaxBatchFiles)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxFiles+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return nil, false
	}
	if len(files) > s.cfg.MaxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", s.cfg.MaxBatchFiles), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	docs := make([]pipeline.Document, 0, len(files))
	for _, fh := range files {
		docs = append(docs, s.readUpload(fh))
	}
	return docs, true
}

func (s *Server) readUpload(fh *multipart.FileHeader) pipeline.Document {
	doc := pipeline.Document{Filename: sanitizeFilename(fh.Filename)}
	if !parser.IsSupportedExtension(doc.Filename) {
		doc.Err = fmt.Errorf("%w: %q", parser.ErrUnsupportedFormat, filepath.Ext(doc.Filename))
		return doc
	}

	f, err := fh.Open()
	if err != nil {
		doc.Err = fmt.Errorf("open upload: %w", err)
		return doc
	}
	defer f.Close()

	doc.Data, doc.Err = readLimited(f, s.cfg.MaxUploadBytes)
	return doc
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

// writeReport renders results in format. The body is buffered so encoding
// errors can still produce a clean 500.
func writeReport(w http.ResponseWriter, format report.Format, results []pipeline.Result) {
	var buf bytes.Buffer
	if err := report.Write(&buf, format, results); err != nil {
		jsonError(w, "encode report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if format != report.FormatJSON {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", report.Filename(len(results), string(format))))
	}
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
