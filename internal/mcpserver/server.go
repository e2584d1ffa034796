// Package mcpserver implements an MCP (Model Context Protocol) server that
// exposes a live merge registry as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasmerge"
	"github.com/erraggy/oasmerge/merge"
)

const serverInstructions = `oasmerge MCP server: maintains one master OpenAPI 3.x document aggregated from many contributions.

Workflow: add_contribution for each module document, get_merged to read the result, remove_contribution when a module goes away. Conflicting names are renamed with numeric suffixes (Pet, Pet1, ...) and the contribution's references are rewritten; the renames and warnings are returned by add_contribution. Paths are never renamed: a conflicting path is skipped and reported.

Configuration via OASMERGE_MCP_* environment variables:
- OASMERGE_MCP_MAX_INLINE_SIZE (default: 10MiB): maximum inline content size
- OASMERGE_MCP_MAX_FETCH_SIZE (default: 10MiB): maximum size of URL documents
- OASMERGE_MCP_FETCH_TIMEOUT (default: 30s): URL fetch timeout
- OASMERGE_MCP_ALLOW_PRIVATE_IPS (default: false): allow URLs resolving to private addresses
- OASMERGE_MCP_ALLOW_FILES (default: true): allow file inputs
- OASMERGE_MCP_FORMAT (default: yaml): default get_merged format`

// Server serves one registry over MCP.
type Server struct {
	reg    *merge.Registry
	cfg    *serverConfig
	client *http.Client
	logger *slog.Logger

	// mu makes label checks and registry mutations atomic per tool call.
	mu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for tool activity.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient replaces the URL fetch client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		if c != nil {
			s.client = c
		}
	}
}

// New creates a Server for reg. Limits come from OASMERGE_MCP_* variables.
func New(reg *merge.Registry, opts ...Option) *Server {
	cfg := loadConfig()
	s := &Server{
		reg:    reg,
		cfg:    cfg,
		logger: slog.Default(),
	}
	if cfg.AllowPrivateIPs {
		s.client = &http.Client{Timeout: cfg.FetchTimeout}
	} else {
		s.client = newSafeHTTPClient(cfg.FetchTimeout)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves over stdio and blocks until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) mcpServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasmerge", Version: oasmerge.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	s.registerAllTools(server)
	return server
}

func (s *Server) registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contribution",
		Description: "Merge an OpenAPI 3.x document into the master document as a new contribution. Provide exactly one of spec.file, spec.url or spec.content. The label identifies the contribution for later removal and defaults to the file or URL base name. Returns the renames applied to the contribution (e.g. schema Pet renamed to Pet1), skipped-path and other warnings, and statistics of the master document.",
	}, s.handleAdd)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_contribution",
		Description: "Remove a contribution by label. Items it shared with other contributions stay; items only it provided are deleted from the master document. Names chosen for other contributions never change.",
	}, s.handleRemove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_merged",
		Description: "Return the current master document as YAML or JSON together with its generation number, which increases with every add and remove. Use output to write the document to a file instead of returning it inline.",
	}, s.handleGetMerged)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contributions",
		Description: "List the live contributions in the order they were added, with the number of master-document items and operation identifiers each one relies on.",
	}, s.handleList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect_contribution",
		Description: "Show the master-document keys (tags/..., paths/..., components/<category>/...) and operation identifiers a contribution owns, with the reference count of each key.",
	}, s.handleInspect)
}

// pathPattern matches absolute filesystem paths in error messages.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}
