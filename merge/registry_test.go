package merge

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmerge/oas"
	"github.com/erraggy/oasmerge/oaserrors"
)

const minimalDoc = `openapi: 3.0.3
info: {title: m, version: "1"}
paths:
  /ping:
    get:
      operationId: ping
      responses:
        "200": {description: ok}
`

func TestNewDefaults(t *testing.T) {
	reg := newTestRegistry(t)

	snap := reg.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, "3.0.3", snap.Document.OpenAPI)
	assert.Equal(t, "Merged API", snap.Document.Info.Title)
	assert.Equal(t, "1.0.0", snap.Document.Info.Version)
	assert.Empty(t, snap.Document.Paths)
	assert.Empty(t, snap.Contributions)
	assert.Equal(t, DefaultMaxRenameAttempts, reg.Config().MaxRenameAttempts)
}

func TestNewOptions(t *testing.T) {
	reg := newTestRegistry(t,
		WithInfo(&oas.Info{Title: "Gateway", Version: "2.0.0"}),
		WithOpenAPIVersion("3.1.0"),
		WithMaxRenameAttempts(10),
	)
	doc := reg.Snapshot().Document
	assert.Equal(t, "Gateway", doc.Info.Title)
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Equal(t, 10, reg.Config().MaxRenameAttempts)
}

func TestNewInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero rename attempts", WithMaxRenameAttempts(0)},
		{"swagger version", WithOpenAPIVersion("2.0")},
		{"nil info", WithInfo(nil)},
		{"invalid config", WithConfig(Config{OpenAPIVersion: "3.0.3"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := New(tt.opt)
			require.Error(t, err)
			assert.Nil(t, reg)
			assert.True(t, errors.Is(err, oaserrors.ErrConfig))
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(WithMaxRenameAttempts(-1)) })
	assert.NotPanics(t, func() { MustNew() })
}

func TestAddPreconditions(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Add(nil)
	assert.ErrorIs(t, err, oaserrors.ErrPrecondition)

	_, err = reg.Add(NewContribution("empty", nil))
	assert.ErrorIs(t, err, oaserrors.ErrPrecondition)
	var pe *oaserrors.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "add", pe.Op)
	assert.Equal(t, "empty", pe.Contribution)

	c, _ := addDoc(t, reg, "ping", minimalDoc)
	_, err = reg.Add(c)
	assert.ErrorIs(t, err, oaserrors.ErrPrecondition)
	assert.Equal(t, StateActive, c.State())
	assert.Len(t, reg.Contributions(), 1)
}

func TestRemovePreconditions(t *testing.T) {
	reg := newTestRegistry(t)

	assert.ErrorIs(t, reg.Remove(nil), oaserrors.ErrPrecondition)

	unknown := NewContribution("unknown", parseDoc(t, minimalDoc))
	assert.NoError(t, reg.Remove(unknown))
	assert.Equal(t, StateAbsent, unknown.State())

	c, _ := addDoc(t, reg, "ping", minimalDoc)
	require.NoError(t, reg.Remove(c))
	assert.NoError(t, reg.Remove(c), "second remove is a no-op")
}

func TestContributionLifecycle(t *testing.T) {
	reg := newTestRegistry(t)
	c := NewContribution("ping", parseDoc(t, minimalDoc))
	assert.Equal(t, StateAbsent, c.State())

	_, err := reg.Add(c)
	require.NoError(t, err)
	assert.Equal(t, StateActive, c.State())
	assert.True(t, c.Owns(PathKey("/ping")))
	assert.Equal(t, []string{"ping"}, c.OperationIDs())

	require.NoError(t, reg.Remove(c))
	assert.Equal(t, StateAbsent, c.State())
	assert.Empty(t, c.OwnedKeys())
	assert.Empty(t, c.OperationIDs())

	// A removed contribution can be added again.
	_, err = reg.Add(c)
	require.NoError(t, err)
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, 1, reg.RefCount(PathKey("/ping")))
}

func TestContributionDefaultLabel(t *testing.T) {
	c := NewContribution("", &oas.Document{OpenAPI: "3.0.3"})
	_, err := uuid.Parse(c.Label())
	assert.NoError(t, err)
}

func TestSnapshotGenerations(t *testing.T) {
	reg := newTestRegistry(t)
	first := reg.Snapshot()

	c, _ := addDoc(t, reg, "ping", minimalDoc)
	afterAdd := reg.Snapshot()
	assert.Equal(t, first.Generation+1, afterAdd.Generation)
	assert.Contains(t, afterAdd.Document.Paths, "/ping")
	assert.NotContains(t, first.Document.Paths, "/ping", "old snapshots are immutable")
	require.Len(t, afterAdd.Contributions, 1)
	assert.Equal(t, ContributionInfo{Label: "ping", State: StateActive, OwnedKeys: 1, OperationIDs: 1}, afterAdd.Contributions[0])
	assert.Equal(t, 1, afterAdd.Stats.OperationCount)

	require.NoError(t, reg.Remove(c))
	afterRemove := reg.Snapshot()
	assert.Equal(t, afterAdd.Generation+1, afterRemove.Generation)
	assert.Empty(t, afterRemove.Document.Paths)
	assert.Contains(t, afterAdd.Document.Paths, "/ping")
}

func TestSnapshotWithNonStringKeys(t *testing.T) {
	reg := newTestRegistry(t)
	first := reg.Snapshot()

	_, res := addDoc(t, reg, "codes", `openapi: 3.0.3
info: {title: codes, version: "1"}
paths:
  /codes:
    get:
      operationId: listCodes
      x-codes: {200: ok, 404: missing}
      responses:
        "200": {description: ok}
x-codes:
  200: ok
  404: missing
`)
	assert.Empty(t, res.Warnings)
	snap := reg.Snapshot()
	assert.Equal(t, first.Generation+1, snap.Generation)
	require.Contains(t, snap.Document.Paths, "/codes")
	assert.Equal(t, map[string]any{"200": "ok", "404": "missing"}, snap.Document.Extra["x-codes"])

	// Documents built in code bypass parsing and may still hold such maps.
	built := &oas.Document{
		OpenAPI: "3.0.3",
		Info:    &oas.Info{Title: "built", Version: "1"},
		Paths:   oas.Paths{"/built": {Get: &oas.Operation{OperationID: "built"}}},
		Extra:   map[string]any{"x-built": map[any]any{1: "one"}},
	}
	res, err := reg.Add(NewContribution("built", built))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings.ByCategory(WarnSectionSkipped))
	next := reg.Snapshot()
	assert.Equal(t, snap.Generation+1, next.Generation)
	assert.Contains(t, next.Document.Paths, "/built")
	assert.Contains(t, next.Document.Extra, "x-built")
}

func TestSnapshotIsDetached(t *testing.T) {
	reg := newTestRegistry(t)
	c, _ := addDoc(t, reg, "ping", minimalDoc)

	c.Document().Paths["/ping"].Get.Summary = "changed after publish"
	assert.Empty(t, reg.Snapshot().Document.Paths["/ping"].Get.Summary)
}

func TestSnapshotMarshal(t *testing.T) {
	reg := newTestRegistry(t)
	addDoc(t, reg, "ping", minimalDoc)

	out, err := reg.Snapshot().Marshal(oas.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "operationId: ping")

	out, err = reg.Snapshot().Marshal(oas.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"operationId": "ping"`)
}

func TestContributionLookup(t *testing.T) {
	reg := newTestRegistry(t)
	c, _ := addDoc(t, reg, "ping", minimalDoc)

	got, ok := reg.Contribution("ping")
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = reg.Contribution("missing")
	assert.False(t, ok)
}

func TestConcurrentAddAndRead(t *testing.T) {
	reg := newTestRegistry(t)
	const n = 8

	docs := make([]*oas.Document, n)
	for i := range docs {
		docs[i] = parseDoc(t, minimalDoc)
	}

	var wg sync.WaitGroup
	for _, doc := range docs {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := reg.Add(NewContribution("", doc))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, reg.Snapshot().Document)
		}()
	}
	wg.Wait()

	assert.Len(t, reg.Contributions(), n)
	assert.Equal(t, n, reg.RefCount(PathKey("/ping")))
	assert.Equal(t, []string{"ping"}, reg.OperationIDs())
	assert.Equal(t, uint64(n+1), reg.Snapshot().Generation)
}
