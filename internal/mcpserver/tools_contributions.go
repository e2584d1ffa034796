package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasmerge/internal/cliutil"
	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
)

type addInput struct {
	Spec  documentInput `json:"spec"            jsonschema:"The OAS 3.x document to contribute"`
	Label string        `json:"label,omitempty" jsonschema:"Label identifying the contribution. Defaults to the file or URL base name, or a random UUID for inline content."`
}

type renameEntry struct {
	Category string `json:"category"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type warningEntry struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Key      string `json:"key,omitempty"`
	Message  string `json:"message"`
}

type statsOutput struct {
	PathCount      int `json:"path_count"`
	OperationCount int `json:"operation_count"`
	SchemaCount    int `json:"schema_count"`
	ComponentCount int `json:"component_count"`
	TagCount       int `json:"tag_count"`
}

func newStatsOutput(s oas.DocumentStats) statsOutput {
	return statsOutput{
		PathCount:      s.PathCount,
		OperationCount: s.OperationCount,
		SchemaCount:    s.SchemaCount,
		ComponentCount: s.ComponentCount,
		TagCount:       s.TagCount,
	}
}

type addOutput struct {
	Label      string         `json:"label"`
	Generation uint64         `json:"generation"`
	KeyCount   int            `json:"key_count"`
	Renames    []renameEntry  `json:"renames,omitempty"`
	Warnings   []warningEntry `json:"warnings,omitempty"`
	Stats      statsOutput    `json:"stats"`
	Summary    string         `json:"summary"`
}

func (s *Server) handleAdd(ctx context.Context, _ *mcp.CallToolRequest, input addInput) (*mcp.CallToolResult, addOutput, error) {
	doc, err := s.resolve(ctx, input.Spec)
	if err != nil {
		return errResult(err), addOutput{}, nil
	}
	label := input.Label
	if label == "" {
		label = input.Spec.defaultLabel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if label != "" {
		if _, exists := s.reg.Contribution(label); exists {
			return errResult(fmt.Errorf("contribution %q already exists; remove it first or choose another label", label)), addOutput{}, nil
		}
	}
	res, err := s.reg.Add(merge.NewContribution(label, doc))
	if err != nil {
		return errResult(err), addOutput{}, nil
	}

	renames := makeSlice[renameEntry](res.Renames.Len())
	for _, r := range res.Renames.Entries() {
		renames = append(renames, renameEntry{Category: r.Category.String(), From: r.From, To: r.To})
	}
	warnings := makeSlice[warningEntry](len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, warningEntry{
			Category: string(w.Category),
			Severity: w.Severity.String(),
			Key:      w.Key.String(),
			Message:  w.Message,
		})
	}
	s.logger.Info("mcp: contribution added", "label", res.Label, "renames", len(renames), "warnings", len(warnings))

	return nil, addOutput{
		Label:      res.Label,
		Generation: s.reg.Snapshot().Generation,
		KeyCount:   len(res.Keys),
		Renames:    renames,
		Warnings:   warnings,
		Stats:      newStatsOutput(res.Stats),
		Summary: fmt.Sprintf("Added %q: %d keys, %d renames, %d warnings. Master document has %d paths and %d schemas.",
			res.Label, len(res.Keys), len(renames), len(warnings), res.Stats.PathCount, res.Stats.SchemaCount),
	}, nil
}

type labelInput struct {
	Label string `json:"label" jsonschema:"Label of the contribution"`
}

type removeOutput struct {
	Label      string `json:"label"`
	Removed    bool   `json:"removed"`
	Generation uint64 `json:"generation"`
	Summary    string `json:"summary"`
}

func (s *Server) handleRemove(_ context.Context, _ *mcp.CallToolRequest, input labelInput) (*mcp.CallToolResult, removeOutput, error) {
	if input.Label == "" {
		return errResult(fmt.Errorf("label is required")), removeOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.reg.Contribution(input.Label)
	if !ok {
		return nil, removeOutput{
			Label:      input.Label,
			Generation: s.reg.Snapshot().Generation,
			Summary:    fmt.Sprintf("No contribution labelled %q.", input.Label),
		}, nil
	}
	if err := s.reg.Remove(c); err != nil {
		return errResult(err), removeOutput{}, nil
	}
	s.logger.Info("mcp: contribution removed", "label", input.Label)

	return nil, removeOutput{
		Label:      input.Label,
		Removed:    true,
		Generation: s.reg.Snapshot().Generation,
		Summary:    fmt.Sprintf("Removed %q.", input.Label),
	}, nil
}

type getMergedInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: yaml or json. Defaults to OASMERGE_MCP_FORMAT (yaml)."`
	Output string `json:"output,omitempty" jsonschema:"File path to write the master document to. If omitted the document is returned inline."`
}

type getMergedOutput struct {
	Generation    uint64      `json:"generation"`
	Format        string      `json:"format"`
	Contributions int         `json:"contributions"`
	Stats         statsOutput `json:"stats"`
	WrittenTo     string      `json:"written_to,omitempty"`
	Document      string      `json:"document,omitempty"`
}

func (s *Server) handleGetMerged(_ context.Context, _ *mcp.CallToolRequest, input getMergedInput) (*mcp.CallToolResult, getMergedOutput, error) {
	name := input.Format
	if name == "" {
		name = s.cfg.DefaultFormat
	}
	format, err := oas.ParseFormat(name)
	if err != nil {
		return errResult(err), getMergedOutput{}, nil
	}

	snap := s.reg.Snapshot()
	data, err := snap.Marshal(format)
	if err != nil {
		return errResult(err), getMergedOutput{}, nil
	}
	out := getMergedOutput{
		Generation:    snap.Generation,
		Format:        string(format),
		Contributions: len(snap.Contributions),
		Stats:         newStatsOutput(snap.Stats),
	}
	if input.Output != "" {
		written, err := cliutil.WriteFile(input.Output, data)
		if err != nil {
			return errResult(err), getMergedOutput{}, nil
		}
		out.WrittenTo = written
		return nil, out, nil
	}
	out.Document = string(data)
	return nil, out, nil
}

type listInput struct{}

type contributionEntry struct {
	Label        string `json:"label"`
	State        string `json:"state"`
	OwnedKeys    int    `json:"owned_keys"`
	OperationIDs int    `json:"operation_ids"`
}

type listOutput struct {
	Generation    uint64              `json:"generation"`
	Count         int                 `json:"count"`
	Contributions []contributionEntry `json:"contributions,omitempty"`
}

func (s *Server) handleList(_ context.Context, _ *mcp.CallToolRequest, _ listInput) (*mcp.CallToolResult, listOutput, error) {
	snap := s.reg.Snapshot()
	entries := makeSlice[contributionEntry](len(snap.Contributions))
	for _, info := range snap.Contributions {
		entries = append(entries, contributionEntry{
			Label:        info.Label,
			State:        info.State.String(),
			OwnedKeys:    info.OwnedKeys,
			OperationIDs: info.OperationIDs,
		})
	}
	return nil, listOutput{
		Generation:    snap.Generation,
		Count:         len(entries),
		Contributions: entries,
	}, nil
}

type keyEntry struct {
	Key      string `json:"key"`
	RefCount int    `json:"ref_count"`
	Owner    string `json:"owner"`
}

type inspectOutput struct {
	Label        string     `json:"label"`
	State        string     `json:"state"`
	Keys         []keyEntry `json:"keys,omitempty"`
	OperationIDs []string   `json:"operation_ids,omitempty"`
}

func (s *Server) handleInspect(_ context.Context, _ *mcp.CallToolRequest, input labelInput) (*mcp.CallToolResult, inspectOutput, error) {
	c, ok := s.reg.Contribution(input.Label)
	if !ok {
		return errResult(fmt.Errorf("no contribution labelled %q", input.Label)), inspectOutput{}, nil
	}
	owned := c.OwnedKeys()
	keys := makeSlice[keyEntry](len(owned))
	for _, key := range owned {
		keys = append(keys, keyEntry{
			Key:      key.String(),
			RefCount: s.reg.RefCount(key),
			Owner:    s.reg.Owner(key),
		})
	}
	return nil, inspectOutput{
		Label:        c.Label(),
		State:        c.State().String(),
		Keys:         keys,
		OperationIDs: c.OperationIDs(),
	}, nil
}
