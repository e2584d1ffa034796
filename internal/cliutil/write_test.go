package cliutil

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritef(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"single arg", "Hello, %s!", []any{"World"}, "Hello, World!"},
		{"no args", "Simple message", nil, "Simple message"},
		{"multiple args", "%s: %d items, %v active", []any{"Status", 42, true}, "Status: 42 items, true active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Writef(&buf, tt.format, tt.args...)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// errorWriter is a writer that always returns an error
type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, os.ErrClosed
}

func TestWritef_WriteError(t *testing.T) {
	assert.NotPanics(t, func() { Writef(errorWriter{}, "This will fail") })
}

func TestSanitizeOutputPath(t *testing.T) {
	dir := t.TempDir()

	got, err := SanitizeOutputPath(filepath.Join(dir, "sub", "..", "out.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.yaml"), got)

	_, err = SanitizeOutputPath(dir)
	assert.ErrorContains(t, err, "directory")

	if runtime.GOOS != "windows" {
		target := filepath.Join(dir, "target.yaml")
		require.NoError(t, os.WriteFile(target, nil, 0o600))
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.Symlink(target, link))
		_, err = SanitizeOutputPath(link)
		assert.ErrorContains(t, err, "symlink")
	}
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")

	assert.NoError(t, ValidateOutputPath(filepath.Join(dir, "out.yaml"), []string{in}))
	assert.Error(t, ValidateOutputPath(in, []string{in}))
	assert.Error(t, ValidateOutputPath(filepath.Join(dir, ".", "in.yaml"), []string{in}))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merged.yaml")

	abs, err := WriteFile(path, []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, path, abs)

	abs, err = WriteFile(path, []byte("second"))
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(abs)
		require.NoError(t, err)
		assert.Equal(t, OwnerReadWrite, info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestWriteFileMissingDirectory(t *testing.T) {
	_, err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.yaml"), []byte("x"))
	assert.Error(t, err)
}
