// Package cliutil provides utilities for CLI operations.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the file permission mode for merged documents, which
// may describe internal APIs (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// SanitizeOutputPath validates and cleans an output file path.
// It resolves ".." components via filepath.Clean + filepath.Abs and
// rejects paths that resolve to symlinks. New files in existing
// directories are accepted. Returns the cleaned absolute path.
func SanitizeOutputPath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("cliutil: cannot resolve absolute path: %w", err)
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("cliutil: refusing to write to symlink: %s", abs)
		}
		if info.IsDir() {
			return "", fmt.Errorf("cliutil: output path is a directory: %s", abs)
		}
	case os.IsNotExist(err):
		// New file.
	default:
		return "", fmt.Errorf("cliutil: cannot stat path: %w", err)
	}
	return abs, nil
}

// ValidateOutputPath rejects an output path that would overwrite one of the
// inputs.
func ValidateOutputPath(outputPath string, inputPaths []string) error {
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	for _, input := range inputPaths {
		absInput, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", input, err)
		}
		if absOutput == absInput {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, input)
		}
	}
	return nil
}

// WriteFile sanitises path and replaces its content with data through a
// temporary file in the same directory, so readers never see a partial
// document. The file is created with OwnerReadWrite permissions. It returns
// the absolute path written.
func WriteFile(path string, data []byte) (string, error) {
	abs, err := SanitizeOutputPath(path)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("cliutil: create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("cliutil: write %s: %w", abs, err)
	}
	if err := tmp.Chmod(OwnerReadWrite); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("cliutil: chmod %s: %w", abs, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("cliutil: close %s: %w", abs, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		cleanup()
		return "", fmt.Errorf("cliutil: replace %s: %w", abs, err)
	}
	return abs, nil
}
