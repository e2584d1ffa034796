package oasmerge

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVersion verifies Version is "dev" from source or a v-prefixed release.
func TestVersion(t *testing.T) {
	result := Version()
	assert.NotEmpty(t, result)
	assert.True(t, result == "dev" || strings.HasPrefix(result, "v"),
		"Version() should be 'dev' or start with 'v', got: %s", result)
}

func TestCommit(t *testing.T) {
	result := Commit()
	assert.NotEmpty(t, result)
	if result == "unknown" {
		return
	}
	assert.GreaterOrEqual(t, len(result), 7, "short git hash expected, got: %s", result)
	for _, ch := range result {
		assert.True(t, (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f'),
			"Commit() should contain only hex characters, got: %s", result)
	}
}

func TestBuildTime(t *testing.T) {
	result := BuildTime()
	assert.NotEmpty(t, result)
	if result != "unknown" {
		assert.Contains(t, result, "T", "RFC3339 expected, got: %s", result)
	}
}

func TestGoVersion(t *testing.T) {
	assert.Equal(t, runtime.Version(), GoVersion())
}

func TestUserAgent(t *testing.T) {
	userAgent := UserAgent()
	assert.Equal(t, "oasmerge/"+Version(), userAgent)
	assert.NotContains(t, userAgent, " ")
	assert.NotContains(t, userAgent, "\n")
}

func TestBuildInfo(t *testing.T) {
	result := BuildInfo()
	for _, label := range []string{"Version:", "Commit:", "Build Time:", "Go Version:"} {
		assert.Contains(t, result, label)
	}
	assert.Contains(t, result, Version())
	assert.Contains(t, result, GoVersion())
}
