package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docfields/internal/pipeline"
)

// Run executes the lines command.
func (c *LinesCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	lines, err := deps.Worker.Lines(pipeline.Document{Filename: filepath.Base(c.File), Data: data})
	if err != nil {
		return err
	}

	for i, line := range lines {
		if c.Numbered {
			fmt.Fprintf(deps.Stdout, "%4d  %s\n", i, line)
			continue
		}
		fmt.Fprintln(deps.Stdout, line)
	}
	return nil
}
