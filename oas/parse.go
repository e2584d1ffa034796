package oas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmerge/oaserrors"
)

// Format is a serialization format for documents.
type Format string

const (
	// FormatYAML renders documents as YAML
	FormatYAML Format = "yaml"
	// FormatJSON renders documents as indented JSON
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", &oaserrors.ConfigError{Option: "format", Value: s, Message: "must be yaml or json"}
}

// DetectFormat guesses the format of raw document bytes.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes an OpenAPI 3.x document from YAML or JSON. JSON input may
// carry comments and trailing commas.
func Parse(data []byte) (*Document, error) {
	return parse(data, "")
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to read file", Cause: err}
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &oaserrors.ParseError{Path: path, Message: "document is empty"}
	}
	if DetectFormat(data) == FormatJSON {
		data = jsonc.ToJSON(data)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to decode document", Cause: err}
	}
	stringKeys(&root)
	var doc Document
	if err := root.Decode(&doc); err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to decode document", Cause: err}
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return nil, &oaserrors.ParseError{
			Path:    path,
			Message: fmt.Sprintf("unsupported openapi version %q (only 3.x is supported)", doc.OpenAPI),
		}
	}
	return &doc, nil
}

// stringKeys retags scalar mapping keys as strings, so untyped values such as
// `x-codes: {200: ok}` decode into map[string]any like every other mapping.
func stringKeys(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				continue
			}
			switch k.ShortTag() {
			case "!!str", "!!merge":
			default:
				k.Tag = "!!str"
			}
		}
	}
	for _, child := range n.Content {
		stringKeys(child)
	}
}

// Marshal renders doc in the given format.
func Marshal(doc *Document, format Format) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("oas: cannot marshal nil document")
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("oas: failed to marshal document: %w", err)
	}
	if format != FormatJSON {
		return out, nil
	}

	// Inline extension maps are only understood by the YAML encoder, so JSON
	// is produced from the generic YAML tree.
	var generic any
	if err := yaml.Unmarshal(out, &generic); err != nil {
		return nil, fmt.Errorf("oas: failed to re-read document: %w", err)
	}
	js, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("oas: failed to marshal JSON: %w", err)
	}
	return append(js, '\n'), nil
}
