package merge

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/erraggy/oasmerge/internal/codec"
	"github.com/erraggy/oasmerge/oas"
)

// Registry owns the master document, the reference-count table, the ordered
// list of live contributions and the operation-identifier set. Add and
// Remove are its only mutators and are serialised by one lock; readers use
// Snapshot, which never blocks and never observes a half-merged document.
type Registry struct {
	mu     sync.Mutex
	config Config
	logger Logger

	master        *oas.Document
	refCounts     map[Key]int
	contributions []*Contribution

	// operationIDs maps every live identifier to the path or callback
	// component that carries it.
	operationIDs    map[string]Key
	keyOperationIDs map[Key][]string

	generation uint64
	snapshot   atomic.Pointer[Snapshot]
}

// New creates an empty Registry.
func New(opts ...Option) (*Registry, error) {
	rc, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("merge: invalid options: %w", err)
	}
	r := &Registry{
		config: rc.config,
		logger: rc.logger,
		master: &oas.Document{
			OpenAPI:    rc.config.OpenAPIVersion,
			Info:       rc.info,
			Paths:      oas.Paths{},
			Components: &oas.Components{},
		},
		refCounts:       make(map[Key]int),
		operationIDs:    make(map[string]Key),
		keyOperationIDs: make(map[Key][]string),
	}
	if err := r.publish(); err != nil {
		return nil, err
	}
	return r, nil
}

// Config returns the registry configuration.
func (r *Registry) Config() Config { return r.config }

// ContributionInfo summarises one live contribution.
type ContributionInfo struct {
	Label        string
	State        State
	OwnedKeys    int
	OperationIDs int
}

// Snapshot is an immutable deep copy of the master document taken at an
// add or remove boundary.
type Snapshot struct {
	// Generation increases by one with every published snapshot.
	Generation    uint64
	Document      *oas.Document
	Contributions []ContributionInfo
	Stats         oas.DocumentStats
}

// Marshal renders the snapshot's document.
func (s *Snapshot) Marshal(format oas.Format) ([]byte, error) {
	return oas.Marshal(s.Document, format)
}

// Snapshot returns the most recently published snapshot. Callers must not
// modify it.
func (r *Registry) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// Contributions lists the live contributions in the order they were added.
func (r *Registry) Contributions() []ContributionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contributionInfos()
}

// Contribution returns the first live contribution with the given label.
func (r *Registry) Contribution(label string) (*Contribution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contributions {
		if c.label == label {
			return c, true
		}
	}
	return nil, false
}

// RefCount returns the number of live contributions relying on key.
func (r *Registry) RefCount(key Key) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refCounts[key]
}

// Owner returns the label of the first live contribution owning key, or "".
func (r *Registry) Owner(key Key) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.ownerOf(key); c != nil {
		return c.label
	}
	return ""
}

// OperationIDs returns every live operation identifier, sorted.
func (r *Registry) OperationIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.operationIDs))
	for id := range r.operationIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) contributionInfos() []ContributionInfo {
	infos := make([]ContributionInfo, 0, len(r.contributions))
	for _, c := range r.contributions {
		infos = append(infos, ContributionInfo{
			Label:        c.label,
			State:        c.State(),
			OwnedKeys:    len(c.owned),
			OperationIDs: len(c.operationIDs),
		})
	}
	return infos
}

// publish stores a new snapshot. On failure the previous snapshot stays and
// the error is returned so the caller can report it.
func (r *Registry) publish() error {
	doc, err := codec.Clone(r.master)
	if err != nil {
		r.logger.Error("failed to copy master document; keeping previous snapshot", "error", err)
		return fmt.Errorf("merge: failed to publish snapshot: %w", err)
	}
	r.generation++
	r.snapshot.Store(&Snapshot{
		Generation:    r.generation,
		Document:      doc,
		Contributions: r.contributionInfos(),
		Stats:         oas.Stats(doc),
	})
	return nil
}

// ownerOf returns the first live contribution, in registry order, whose
// owned-key set contains key.
func (r *Registry) ownerOf(key Key) *Contribution {
	for _, c := range r.contributions {
		if c.Owns(key) {
			return c
		}
	}
	return nil
}

// register records that c relies on key. It reports whether the key is new
// to the master document, i.e. its count went from 0 to 1.
func (r *Registry) register(c *Contribution, key Key) bool {
	if !c.own(key) {
		return false
	}
	r.refCounts[key]++
	return r.refCounts[key] == 1
}

// release drops one reference to key and deletes the item from the master
// document when none remain. Releasing an unknown key is a no-op.
func (r *Registry) release(key Key) {
	count, ok := r.refCounts[key]
	if !ok {
		return
	}
	if count > 1 {
		r.refCounts[key] = count - 1
		r.repoint(key)
		return
	}
	delete(r.refCounts, key)
	r.deleteFromMaster(key)
}

// lookupItem fetches the item at key from doc.
func lookupItem(doc *oas.Document, key Key) (any, bool) {
	if doc == nil {
		return nil, false
	}
	p, ok := key.parse()
	if !ok {
		return nil, false
	}
	switch {
	case p.category == CategoryTags:
		for _, t := range doc.Tags {
			if t != nil && t.Name == p.name {
				return t, true
			}
		}
	case p.category == CategoryPaths:
		item, ok := doc.Paths[p.name]
		return item, ok
	case p.category == CategoryExtensions && p.inComponents:
		if doc.Components == nil {
			return nil, false
		}
		v, ok := doc.Components.Extra[p.name]
		return v, ok
	case p.category == CategoryExtensions:
		v, ok := doc.Extra[p.name]
		return v, ok
	case p.category.IsComponent():
		return componentAccessors[p.category].get(doc.Components, p.name)
	}
	return nil, false
}

// repoint makes the master refer to the current owner's copy of a shared
// item, so it never aliases a removed contribution's document.
func (r *Registry) repoint(key Key) {
	p, ok := key.parse()
	if !ok {
		return
	}
	owner := r.ownerOf(key)
	if owner == nil {
		return
	}
	item, ok := lookupItem(owner.doc, key)
	if !ok {
		return
	}
	switch {
	case p.category == CategoryTags:
		if tag, ok := item.(*oas.Tag); ok {
			for i, t := range r.master.Tags {
				if t != nil && t.Name == p.name {
					r.master.Tags[i] = tag
				}
			}
		}
	case p.category == CategoryPaths:
		if pathItem, ok := item.(*oas.PathItem); ok {
			r.master.Paths[p.name] = pathItem
		}
	case p.category == CategoryExtensions && p.inComponents:
		comps := r.master.EnsureComponents()
		if comps.Extra == nil {
			comps.Extra = make(map[string]any)
		}
		comps.Extra[p.name] = item
	case p.category == CategoryExtensions:
		if r.master.Extra == nil {
			r.master.Extra = make(map[string]any)
		}
		r.master.Extra[p.name] = item
	case p.category.IsComponent():
		componentAccessors[p.category].place(r.master.EnsureComponents(), owner.doc.Components, p.name, p.name)
	}
}

// deleteFromMaster removes the item at key from the master document.
func (r *Registry) deleteFromMaster(key Key) {
	p, ok := key.parse()
	if !ok {
		r.logger.Debug("cannot delete malformed key", "key", key.String())
		return
	}
	switch {
	case p.category == CategoryTags:
		r.master.Tags = slices.DeleteFunc(r.master.Tags, func(t *oas.Tag) bool {
			return t != nil && t.Name == p.name
		})
	case p.category == CategoryPaths:
		delete(r.master.Paths, p.name)
	case p.category == CategoryExtensions && p.inComponents:
		if r.master.Components != nil {
			delete(r.master.Components.Extra, p.name)
		}
	case p.category == CategoryExtensions:
		delete(r.master.Extra, p.name)
	case p.category.IsComponent():
		componentAccessors[p.category].remove(r.master.Components, p.name)
	}
	for _, id := range r.keyOperationIDs[key] {
		if r.operationIDs[id] == key {
			delete(r.operationIDs, id)
		}
	}
	delete(r.keyOperationIDs, key)
	r.logger.Debug("deleted from master document", "key", key.String())
}
