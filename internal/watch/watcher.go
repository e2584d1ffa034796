// Package watch keeps a merge registry in step with a directory of OpenAPI
// documents.
//
// Every file matching the watch patterns is one contribution, labelled by its
// slash-separated path relative to the directory. New files are added,
// vanished files are removed and changed files are removed then re-added.
// Filesystem events are debounced so an editor's write-then-rename settles
// into one sync.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/erraggy/oasmerge/internal/codec"
	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
)

// DefaultDebounce is used when no positive debounce is configured.
const DefaultDebounce = 500 * time.Millisecond

// DefaultPatterns select YAML and JSON files at the top of the directory.
var DefaultPatterns = []string{"*.yaml", "*.yml", "*.json"}

// ChangeFunc is called after a sync that changed the registry.
type ChangeFunc func(ctx context.Context, snap *merge.Snapshot, result SyncResult) error

// Option configures a Watcher.
type Option func(*Watcher) error

// WithPatterns sets the doublestar patterns, relative to the directory, that
// select contribution files.
func WithPatterns(patterns ...string) Option {
	return func(w *Watcher) error {
		for _, pat := range patterns {
			if !doublestar.ValidatePattern(pat) {
				return fmt.Errorf("watch: invalid pattern %q", pat)
			}
		}
		if len(patterns) > 0 {
			w.patterns = slices.Clone(patterns)
		}
		return nil
	}
}

// WithDebounce sets the quiet period after the last event before syncing.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d > 0 {
			w.debounce = d
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) error {
		if l != nil {
			w.logger = l
		}
		return nil
	}
}

// WithOnChange sets the callback fired after every sync that changed the
// registry.
func WithOnChange(fn ChangeFunc) Option {
	return func(w *Watcher) error {
		w.onChange = fn
		return nil
	}
}

// SyncResult lists the files each sync acted on, by label.
type SyncResult struct {
	Added   []string
	Updated []string
	Removed []string
	// Failed are files that could not be read or parsed. They are treated as
	// absent until they parse again.
	Failed []string
	// Warnings counts the merge warnings raised by added files.
	Warnings int
}

// Changed reports whether the sync modified the registry.
func (r SyncResult) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Removed) > 0
}

// tracked is a file currently merged into the registry.
type tracked struct {
	contribution *merge.Contribution
	fingerprint  codec.Fingerprint
}

// Watcher mirrors a directory into a merge.Registry.
type Watcher struct {
	reg      *merge.Registry
	dir      string
	patterns []string
	debounce time.Duration
	logger   *slog.Logger
	onChange ChangeFunc

	mu      sync.Mutex
	files   map[string]*tracked
	started atomic.Bool
}

// New creates a Watcher for dir. Nothing is read until Sync or Run.
func New(reg *merge.Registry, dir string, opts ...Option) (*Watcher, error) {
	if reg == nil {
		return nil, errors.New("watch: registry is nil")
	}
	if dir == "" {
		return nil, errors.New("watch: directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve directory: %w", err)
	}
	w := &Watcher{
		reg:      reg,
		dir:      abs,
		patterns: slices.Clone(DefaultPatterns),
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		files:    make(map[string]*tracked),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Dir returns the absolute watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Labels returns the labels of the files currently merged, sorted.
func (w *Watcher) Labels() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.files))
}

// Sync scans the directory once and reconciles the registry with it. The
// error is non-nil only when the directory itself cannot be walked.
func (w *Watcher) Sync(ctx context.Context) (SyncResult, error) {
	result, err := w.sync(ctx)
	if err != nil || !result.Changed() {
		return result, err
	}
	w.logger.Info("directory synced",
		"dir", w.dir,
		"added", len(result.Added),
		"updated", len(result.Updated),
		"removed", len(result.Removed),
		"failed", len(result.Failed))
	if w.onChange != nil {
		if err := w.onChange(ctx, w.reg.Snapshot(), result); err != nil {
			w.logger.Error("change callback failed", "error", err)
		}
	}
	return result, nil
}

func (w *Watcher) sync(ctx context.Context) (SyncResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var result SyncResult
	present, err := w.scan()
	if err != nil {
		return result, err
	}

	for _, label := range slices.Sorted(maps.Keys(w.files)) {
		if _, ok := present[label]; ok {
			continue
		}
		w.remove(label)
		result.Removed = append(result.Removed, label)
	}

	for _, label := range slices.Sorted(maps.Keys(present)) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		w.syncFile(label, present[label], &result)
	}
	return result, nil
}

// syncFile brings one present file into the registry.
func (w *Watcher) syncFile(label, path string, result *SyncResult) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from walking the watched directory
	if err != nil {
		w.fail(label, err, result)
		return
	}
	sum := codec.SumBytes(data)
	prev, known := w.files[label]
	if known && prev.fingerprint == sum {
		return
	}

	doc, err := oas.Parse(data)
	if err != nil {
		w.fail(label, err, result)
		return
	}

	if known {
		w.remove(label)
	}
	c := merge.NewContribution(label, doc)
	res, err := w.reg.Add(c)
	if err != nil {
		w.fail(label, err, result)
		return
	}
	w.files[label] = &tracked{contribution: c, fingerprint: sum}
	result.Warnings += len(res.Warnings)
	for _, mw := range res.Warnings {
		w.logger.Warn("merge warning", "file", label, "category", string(mw.Category), "message", mw.Message)
	}
	if known {
		result.Updated = append(result.Updated, label)
	} else {
		result.Added = append(result.Added, label)
	}
}

// fail logs a broken file and takes it out of the registry.
func (w *Watcher) fail(label string, err error, result *SyncResult) {
	w.logger.Warn("skipping file", "file", label, "error", err)
	result.Failed = append(result.Failed, label)
	if _, known := w.files[label]; known {
		w.remove(label)
		result.Removed = append(result.Removed, label)
	}
}

func (w *Watcher) remove(label string) {
	t := w.files[label]
	delete(w.files, label)
	if err := w.reg.Remove(t.contribution); err != nil {
		w.logger.Error("remove failed", "file", label, "error", err)
	}
}

// scan returns label -> absolute path for every matching regular file.
func (w *Watcher) scan() (map[string]string, error) {
	present := make(map[string]string)
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == w.dir {
				return walkErr
			}
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(w.dir, path)
		if err != nil {
			return nil //nolint:nilerr // paths that cannot be made relative are not ours
		}
		label := filepath.ToSlash(rel)
		if w.matches(label) {
			present[label] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("watch: scan %s: %w", w.dir, err)
	}
	return present, nil
}

// matches reports whether a slash-separated relative path selects a file.
func (w *Watcher) matches(label string) bool {
	for _, pat := range w.patterns {
		if ok, err := doublestar.Match(pat, label); err == nil && ok {
			return true
		}
	}
	return false
}

// Run syncs once, then re-syncs after filesystem activity until ctx is
// cancelled. Run must be called at most once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	defer func() {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify watcher", "error", closeErr)
		}
	}()
	if err := w.addDirectories(fsw); err != nil {
		return err
	}

	if _, err := w.Sync(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(fsw, evt.Name)
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug("filesystem event", "op", evt.Op.String(), "path", evt.Name)
			timer.Reset(w.debounce)

		case <-timer.C:
			if _, err := w.Sync(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("sync failed", "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// relevant reports whether an event may change a contribution file. Removes
// and renames of unknown names still count since they may hide a directory.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return false
	}
	rel, err := filepath.Rel(w.dir, evt.Name)
	if err != nil {
		return false
	}
	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		return true
	}
	return w.matches(filepath.ToSlash(rel))
}

// addDirectories registers the directory tree with fsnotify.
func (w *Watcher) addDirectories(fsw *fsnotify.Watcher) error {
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == w.dir {
				return walkErr
			}
			return nil //nolint:nilerr // inaccessible subdirectories are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fsw.Add(path); err != nil {
		w.logger.Warn("add new directory", "path", path, "error", err)
	}
}
