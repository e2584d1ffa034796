// Package commands provides CLI command handlers for oasmerge.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/erraggy/oasmerge"
	"github.com/erraggy/oasmerge/internal/cliutil"
	"github.com/erraggy/oasmerge/internal/config"
	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
)

// StdoutPath is the output path meaning "write to stdout".
const StdoutPath = "-"

// LoadConfig loads the host configuration from path (optional) and the
// environment, then applies the non-empty flag overrides.
func LoadConfig(path, output, format string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if output != "" {
		cfg.Output.Path = output
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if cfg.Output.Path == StdoutPath {
		cfg.Output.Path = ""
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the CLI logger: a charmbracelet/log handler on w at the
// configured level. Quiet raises the level to errors only.
func NewLogger(w io.Writer, cfg config.Config, quiet bool) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if quiet && level < slog.LevelError {
		level = slog.LevelError
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          "oasmerge",
		Level:           log.Level(level),
		ReportTimestamp: true,
	})
	return slog.New(handler)
}

// NewRegistry creates a registry from cfg that logs to logger.
func NewRegistry(cfg config.Config, logger *slog.Logger) (*merge.Registry, error) {
	return merge.New(cfg.MergeOptions(merge.WithSlog(logger))...)
}

// UniqueLabels derives a contribution label for every input file: the base
// name, or the full path when two inputs share a base name.
func UniqueLabels(paths []string) []string {
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		counts[filepath.Base(p)]++
	}
	labels := make([]string, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		if counts[base] > 1 {
			labels[i] = filepath.ToSlash(filepath.Clean(p))
			continue
		}
		labels[i] = base
	}
	return labels
}

// WriteSnapshot renders snap and writes it to path, or to stdout when path
// is empty. It returns the path written, or "<stdout>".
func WriteSnapshot(snap *merge.Snapshot, format oas.Format, path string) (string, error) {
	data, err := snap.Marshal(format)
	if err != nil {
		return "", fmt.Errorf("marshaling master document: %w", err)
	}
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return "", fmt.Errorf("writing master document to stdout: %w", err)
		}
		return "<stdout>", nil
	}
	written, err := cliutil.WriteFile(path, data)
	if err != nil {
		return "", fmt.Errorf("writing output file: %w", err)
	}
	return written, nil
}

// OutputAddReport writes the renames and warnings of one add to w, grouped
// by category.
func OutputAddReport(w io.Writer, res *merge.AddResult) {
	if res.Renames.Len() == 0 && len(res.Warnings) == 0 {
		cliutil.Writef(w, "%s: merged without conflicts\n", res.Label)
		return
	}
	cliutil.Writef(w, "%s:\n", res.Label)
	current := merge.Category(-1)
	for _, r := range res.Renames.Entries() {
		if r.Category != current {
			current = r.Category
			cliutil.Writef(w, "  %s renamed:\n", current.DisplayName())
		}
		cliutil.Writef(w, "    %s -> %s\n", r.From, r.To)
	}
	var other merge.MergeWarnings
	for _, warning := range res.Warnings {
		switch warning.Category {
		case merge.WarnTagRenamed, merge.WarnComponentRenamed, merge.WarnOperationIDRenamed:
			continue
		}
		other = append(other, warning)
	}
	if len(other) > 0 {
		cliutil.Writef(w, "  Warnings (%d):\n", len(other))
		for _, warning := range other {
			cliutil.Writef(w, "    - [%s] %s\n", warning.Severity, warning.Message)
		}
	}
}

// OutputStats writes the master document statistics to w.
func OutputStats(w io.Writer, snap *merge.Snapshot) {
	cliutil.Writef(w, "oasmerge version: %s\n", oasmerge.Version())
	cliutil.Writef(w, "Contributions: %d\n", len(snap.Contributions))
	cliutil.Writef(w, "Generation: %d\n", snap.Generation)
	cliutil.Writef(w, "Tags: %d\n", snap.Stats.TagCount)
	cliutil.Writef(w, "Paths: %d\n", snap.Stats.PathCount)
	cliutil.Writef(w, "Operations: %d\n", snap.Stats.OperationCount)
	cliutil.Writef(w, "Schemas: %d\n", snap.Stats.SchemaCount)
	cliutil.Writef(w, "Components: %d\n", snap.Stats.ComponentCount)
}
