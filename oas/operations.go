package oas

import (
	"iter"
	"maps"
	"slices"
)

// HTTP methods in the fixed order operations are visited.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
)

// Methods lists every supported method in visiting order.
var Methods = []string{
	MethodGet, MethodPut, MethodPost, MethodDelete,
	MethodOptions, MethodHead, MethodPatch, MethodTrace,
}

// Operation returns the operation for method, or nil.
func (p *PathItem) Operation(method string) *Operation {
	if p == nil {
		return nil
	}
	switch method {
	case MethodGet:
		return p.Get
	case MethodPut:
		return p.Put
	case MethodPost:
		return p.Post
	case MethodDelete:
		return p.Delete
	case MethodOptions:
		return p.Options
	case MethodHead:
		return p.Head
	case MethodPatch:
		return p.Patch
	case MethodTrace:
		return p.Trace
	}
	return nil
}

// Operations yields the defined operations of the path item in method order.
func (p *PathItem) Operations() iter.Seq2[string, *Operation] {
	return func(yield func(string, *Operation) bool) {
		for _, method := range Methods {
			op := p.Operation(method)
			if op == nil {
				continue
			}
			if !yield(method, op) {
				return
			}
		}
	}
}

// AllOperations yields the operations of p and then, depth first, the
// operations of the path items reachable through their callbacks. A path item
// reached twice is visited once.
func (p *PathItem) AllOperations() iter.Seq2[string, *Operation] {
	return func(yield func(string, *Operation) bool) {
		walkOperations(p, make(map[*PathItem]struct{}), yield)
	}
}

// AllOperations yields every operation under the callback's expressions in
// sorted expression order, including nested callbacks.
func (c *Callback) AllOperations() iter.Seq2[string, *Operation] {
	return func(yield func(string, *Operation) bool) {
		if c == nil {
			return
		}
		seen := make(map[*PathItem]struct{})
		for _, expr := range slices.Sorted(maps.Keys(c.Expressions)) {
			if !walkOperations(c.Expressions[expr], seen, yield) {
				return
			}
		}
	}
}

func walkOperations(p *PathItem, seen map[*PathItem]struct{}, yield func(string, *Operation) bool) bool {
	if p == nil {
		return true
	}
	if _, ok := seen[p]; ok {
		return true
	}
	seen[p] = struct{}{}
	for method, op := range p.Operations() {
		if !yield(method, op) {
			return false
		}
	}
	for _, op := range p.Operations() {
		for _, name := range slices.Sorted(maps.Keys(op.Callbacks)) {
			cb := op.Callbacks[name]
			if cb == nil {
				continue
			}
			for _, expr := range slices.Sorted(maps.Keys(cb.Expressions)) {
				if !walkOperations(cb.Expressions[expr], seen, yield) {
					return false
				}
			}
		}
	}
	return true
}

// DocumentStats contains statistical information about a document
type DocumentStats struct {
	PathCount      int // Number of paths defined
	OperationCount int // Total number of operations across all paths
	SchemaCount    int // Number of component schemas
	ComponentCount int // Number of components across all categories, schemas included
	TagCount       int // Number of top-level tags
}

// Stats returns statistics for doc. A nil document yields zero stats.
func Stats(doc *Document) DocumentStats {
	var stats DocumentStats
	if doc == nil {
		return stats
	}
	stats.PathCount = len(doc.Paths)
	for _, item := range doc.Paths {
		for range item.Operations() {
			stats.OperationCount++
		}
	}
	stats.TagCount = len(doc.Tags)
	if c := doc.Components; c != nil {
		stats.SchemaCount = len(c.Schemas)
		stats.ComponentCount = len(c.Schemas) + len(c.Responses) + len(c.Parameters) +
			len(c.Examples) + len(c.RequestBodies) + len(c.Headers) +
			len(c.SecuritySchemes) + len(c.Links) + len(c.Callbacks)
	}
	return stats
}
