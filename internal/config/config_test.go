package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "WORKER_COUNT", "MAX_UPLOAD_BYTES", "JOB_TTL", "LOG_LEVEL", "DOCFIELDS_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxUploadBytes != 20971520 {
		t.Errorf("expected 20MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %s", cfg.JobTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_CONCURRENT_DOCS", "8")
	t.Setenv("JOB_TTL", "5m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port %q, got %q", "9000", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected invalid worker count to fall back to 2, got %d", cfg.WorkerCount)
	}
	if cfg.MaxConcurrentDocs != 8 {
		t.Errorf("expected 8 concurrent docs, got %d", cfg.MaxConcurrentDocs)
	}
	if cfg.JobTTL != 5*time.Minute {
		t.Errorf("expected 5m TTL, got %s", cfg.JobTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.LogLevel)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback to be disabled")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Registers restoration, then leaves the variable unset so .env applies.
	t.Setenv("MAX_BATCH_FILES", "")
	os.Unsetenv("MAX_BATCH_FILES")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MAX_BATCH_FILES=7\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := Load()
	if cfg.MaxBatchFiles != 7 {
		t.Errorf("expected .env to set MAX_BATCH_FILES=7, got %d", cfg.MaxBatchFiles)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Port: "8090"}, false},
		{"port not numeric", Config{Port: "http"}, true},
		{"port out of range", Config{Port: "70000"}, true},
		{"short api key", Config{Port: "8090", APIKey: "short"}, true},
		{"long api key", Config{Port: "8090", APIKey: "0123456789abcdef"}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
