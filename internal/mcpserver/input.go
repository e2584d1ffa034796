package mcpserver

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/erraggy/oasmerge/oas"
)

// documentInput represents the three ways a contribution document can be
// provided to a tool. Exactly one of File, URL, or Content must be set.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OpenAPI 3.x document on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OpenAPI 3.x document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OpenAPI 3.x document content (JSON or YAML)"`
}

// validate checks that exactly one source is set and within limits.
func (in documentInput) validate(cfg *serverConfig) error {
	count := 0
	for _, v := range []string{in.File, in.URL, in.Content} {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}
	if in.Content != "" && int64(len(in.Content)) > cfg.MaxInlineSize {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASMERGE_MCP_MAX_INLINE_SIZE to increase",
			len(in.Content), cfg.MaxInlineSize)
	}
	if in.File != "" && !cfg.AllowFiles {
		return fmt.Errorf("file inputs are disabled; set OASMERGE_MCP_ALLOW_FILES=true to enable")
	}
	return nil
}

// defaultLabel derives a label from the input's source name, or "" for
// inline content.
func (in documentInput) defaultLabel() string {
	switch {
	case in.File != "":
		return filepath.Base(in.File)
	case in.URL != "":
		if u, err := url.Parse(in.URL); err == nil && u.Path != "" && u.Path != "/" {
			return path.Base(u.Path)
		}
		return in.URL
	}
	return ""
}

// resolve reads and parses the document. Every call returns a fresh
// document, since merging mutates it.
func (s *Server) resolve(ctx context.Context, in documentInput) (*oas.Document, error) {
	if err := in.validate(s.cfg); err != nil {
		return nil, err
	}
	var data []byte
	switch {
	case in.File != "":
		b, err := os.ReadFile(in.File) //nolint:gosec // G304: file inputs are an explicit, configurable capability
		if err != nil {
			return nil, err
		}
		data = b
	case in.URL != "":
		ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
		b, err := fetch(ctx, s.client, in.URL, s.cfg.MaxFetchSize)
		if err != nil {
			return nil, err
		}
		data = b
	default:
		data = []byte(in.Content)
	}
	return oas.Parse(data)
}
