package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmerge/merge"
)

func specWithPath(path, operationID string) string {
	return `openapi: 3.0.3
info: {title: ` + operationID + `, version: "1"}
paths:
  ` + path + `:
    get:
      operationId: ` + operationID + `
      responses:
        "200": {description: ok}
`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWatcher(t *testing.T, opts ...Option) (*Watcher, *merge.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	reg := merge.MustNew()
	w, err := New(reg, dir, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return w, reg, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, t.TempDir())
	assert.Error(t, err)

	_, err = New(merge.MustNew(), "")
	assert.Error(t, err)

	_, err = New(merge.MustNew(), t.TempDir(), WithPatterns("[unclosed"))
	assert.Error(t, err)
}

func TestSyncLifecycle(t *testing.T) {
	w, reg, dir := newTestWatcher(t)
	ctx := context.Background()

	writeFile(t, dir, "users.yaml", specWithPath("/users", "listUsers"))
	writeFile(t, dir, "orders.json", `{"openapi": "3.0.3", "info": {"title": "o", "version": "1"},
  // comments are allowed in JSON contributions
  "paths": {"/orders": {"get": {"operationId": "listOrders", "responses": {"200": {"description": "ok"}}}}}}`)
	writeFile(t, dir, "README.md", "# not a spec")

	res, err := w.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders.json", "users.yaml"}, res.Added)
	assert.Equal(t, []string{"orders.json", "users.yaml"}, w.Labels())
	doc := reg.Snapshot().Document
	assert.Contains(t, doc.Paths, "/users")
	assert.Contains(t, doc.Paths, "/orders")

	// Unchanged content is a no-op.
	res, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, res.Changed())

	// Changed content is removed then re-added.
	writeFile(t, dir, "users.yaml", specWithPath("/people", "listPeople"))
	res, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.yaml"}, res.Updated)
	doc = reg.Snapshot().Document
	assert.NotContains(t, doc.Paths, "/users")
	assert.Contains(t, doc.Paths, "/people")
	assert.Equal(t, []string{"listOrders", "listPeople"}, reg.OperationIDs())

	// Vanished files are removed.
	require.NoError(t, os.Remove(filepath.Join(dir, "orders.json")))
	res, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders.json"}, res.Removed)
	assert.NotContains(t, reg.Snapshot().Document.Paths, "/orders")
	assert.Len(t, reg.Contributions(), 1)
}

func TestSyncParseFailureTreatsFileAsAbsent(t *testing.T) {
	w, reg, dir := newTestWatcher(t)
	ctx := context.Background()

	writeFile(t, dir, "pets.yaml", specWithPath("/pets", "listPets"))
	_, err := w.Sync(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "pets.yaml", "openapi: [broken")
	res, err := w.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pets.yaml"}, res.Failed)
	assert.Equal(t, []string{"pets.yaml"}, res.Removed)
	assert.Empty(t, reg.Snapshot().Document.Paths)
	assert.Empty(t, w.Labels())

	writeFile(t, dir, "pets.yaml", specWithPath("/pets", "listPets"))
	res, err = w.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pets.yaml"}, res.Added)
}

func TestSyncPatterns(t *testing.T) {
	w, _, dir := newTestWatcher(t, WithPatterns("**/*.yaml"))

	writeFile(t, dir, "a.yaml", specWithPath("/a", "a"))
	writeFile(t, dir, "nested/b.yaml", specWithPath("/b", "b"))
	writeFile(t, dir, "c.json", `{"openapi": "3.0.3", "info": {"title": "c", "version": "1"}}`)

	res, err := w.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "nested/b.yaml"}, res.Added)
}

func TestSyncCountsMergeWarnings(t *testing.T) {
	w, reg, dir := newTestWatcher(t)
	writeFile(t, dir, "a.yaml", specWithPath("/shared", "first"))
	writeFile(t, dir, "b.yaml", specWithPath("/shared", "second"))

	res, err := w.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Warnings, "the second file's path conflicts")
	assert.Equal(t, "a.yaml", reg.Owner(merge.PathKey("/shared")))
}

func TestSyncMissingDirectory(t *testing.T) {
	reg := merge.MustNew()
	w, err := New(reg, filepath.Join(t.TempDir(), "missing"), WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = w.Sync(context.Background())
	assert.Error(t, err)
}

func TestSyncOnChange(t *testing.T) {
	var calls []SyncResult
	var generations []uint64
	w, _, dir := newTestWatcher(t, WithOnChange(func(_ context.Context, snap *merge.Snapshot, res SyncResult) error {
		calls = append(calls, res)
		generations = append(generations, snap.Generation)
		return nil
	}))

	_, err := w.Sync(context.Background())
	require.NoError(t, err)
	assert.Empty(t, calls, "no callback without changes")

	writeFile(t, dir, "a.yaml", specWithPath("/a", "a"))
	_, err = w.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"a.yaml"}, calls[0].Added)
	assert.Equal(t, []uint64{2}, generations)
}

func TestRunPicksUpChanges(t *testing.T) {
	changes := make(chan SyncResult, 8)
	w, reg, dir := newTestWatcher(t,
		WithDebounce(20*time.Millisecond),
		WithOnChange(func(_ context.Context, _ *merge.Snapshot, res SyncResult) error {
			changes <- res
			return nil
		}))
	writeFile(t, dir, "a.yaml", specWithPath("/a", "a"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor := func(t *testing.T, check func(SyncResult) bool) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case res := <-changes:
				if check(res) {
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for sync")
			}
		}
	}

	waitFor(t, func(res SyncResult) bool { return len(res.Added) == 1 && res.Added[0] == "a.yaml" })

	writeFile(t, dir, "b.yaml", specWithPath("/b", "b"))
	waitFor(t, func(res SyncResult) bool { return len(res.Added) == 1 && res.Added[0] == "b.yaml" })
	assert.Contains(t, reg.Snapshot().Document.Paths, "/b")

	require.NoError(t, os.Remove(filepath.Join(dir, "a.yaml")))
	waitFor(t, func(res SyncResult) bool { return len(res.Removed) == 1 && res.Removed[0] == "a.yaml" })
	assert.NotContains(t, reg.Snapshot().Document.Paths, "/a")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Error(t, w.Run(context.Background()), "second Run is rejected")
}
