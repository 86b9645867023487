package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dgallion1/docfields/internal/config"
	"github.com/dgallion1/docfields/internal/parser"
	"github.com/dgallion1/docfields/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config is loaded from the environment when nil. Set before calling Run().
	Config *config.Config
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	kp, err := kong.New(cli,
		kong.Name("docfields"),
		kong.Description("Extract Title, Description, Heading 1 and Product Section fields from documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = kp.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docfields --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = kp.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := kp.Parse(args)
	if err != nil {
		return err
	}

	cfg := m.Config
	if cfg == nil {
		loaded := config.Load()
		cfg = &loaded
	}

	level := cfg.LogLevel
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Worker = pipeline.NewWorker(deps.Log, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, nil)

	return kongCtx.Run(deps)
}
