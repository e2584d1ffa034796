package merge

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmerge/oas"
)

func parseDoc(t *testing.T, src string) *oas.Document {
	t.Helper()
	doc, err := oas.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	reg, err := New(opts...)
	require.NoError(t, err)
	return reg
}

func addDoc(t *testing.T, reg *Registry, label, src string) (*Contribution, *AddResult) {
	t.Helper()
	c := NewContribution(label, parseDoc(t, src))
	res, err := reg.Add(c)
	require.NoError(t, err)
	require.NotNil(t, res)
	return c, res
}

func tagNames(doc *oas.Document) []string {
	names := make([]string, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// liveOperationIDs collects every operationId in doc with its multiplicity,
// including operations of callbacks.
func liveOperationIDs(doc *oas.Document) map[string]int {
	ids := make(map[string]int)
	count := func(ops iter.Seq2[string, *oas.Operation]) {
		for _, op := range ops {
			if op.OperationID != "" {
				ids[op.OperationID]++
			}
		}
	}
	for _, item := range doc.Paths {
		count(item.AllOperations())
	}
	if doc.Components != nil {
		for _, cb := range doc.Components.Callbacks {
			count(cb.AllOperations())
		}
	}
	return ids
}

// listPetsAt returns a document with a single listPets operation at path.
func listPetsAt(path string) string {
	return `openapi: 3.0.3
info: {title: pets, version: "1"}
paths:
  ` + path + `:
    get:
      operationId: listPets
      responses:
        "200": {description: ok}
`
}

func petTagDoc(description, path string) string {
	return `openapi: 3.0.3
info:
  title: pets
  version: 1.0.0
tags:
  - name: Pets
    description: ` + description + `
paths:
  ` + path + `:
    get:
      tags: [Pets]
      responses:
        "200":
          description: ok
`
}
