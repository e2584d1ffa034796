package merge

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oasmerge/oas"
	"github.com/erraggy/oasmerge/oaserrors"
)

// AddResult describes the outcome of one Add.
type AddResult struct {
	// Label is the contribution's label.
	Label string
	// Renames holds every name that changed while merging, for diagnostics.
	Renames RenameMap
	// Warnings lists skipped, renamed and tolerated items.
	Warnings MergeWarnings
	// Keys are the keys the contribution now owns, sorted.
	Keys []Key
	// Stats describes the master document after the add.
	Stats oas.DocumentStats
}

// Add merges c into the master document.
//
// Every named item goes through rename-on-conflict: its natural name is kept
// unless a live item with different content already occupies it, in which
// case the suffixes 1, 2, ... are tried up to Config.MaxRenameAttempts.
// References inside c's document are then rewritten to the final names.
//
// Only precondition violations return an error: a nil contribution or
// document, or a contribution that is already live. Everything else is
// reported through AddResult.Warnings.
func (r *Registry) Add(c *Contribution) (*AddResult, error) {
	if c == nil {
		return nil, &oaserrors.PreconditionError{Op: "add", Message: "contribution is nil"}
	}
	if c.doc == nil {
		return nil, &oaserrors.PreconditionError{Op: "add", Contribution: c.label, Message: "document is nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if state := c.State(); state != StateAbsent {
		return nil, &oaserrors.PreconditionError{
			Op:           "add",
			Contribution: c.label,
			Message:      fmt.Sprintf("contribution is %s", state),
		}
	}
	c.setState(StateMerging)
	c.clearOwned()
	r.contributions = append(r.contributions, c)

	m := &merger{
		r:       r,
		c:       c,
		log:     r.logger.With("contribution", c.label),
		renames: RenameMap{},
		adopted: RenameMap{},
	}
	m.run()

	c.setState(StateActive)
	if err := r.publish(); err != nil {
		m.warn(newSectionSkippedWarning(c.label, "snapshot", err))
	}

	result := &AddResult{
		Label:    c.label,
		Renames:  m.renames.Clone(),
		Warnings: m.warnings,
		Keys:     c.OwnedKeys(),
		Stats:    oas.Stats(r.master),
	}
	m.log.Info("contribution added",
		"keys", len(result.Keys),
		"renames", m.renames.Len(),
		"warnings", len(m.warnings))
	return result, nil
}

// merger carries the state of one Add.
type merger struct {
	r        *Registry
	c        *Contribution
	log      Logger
	renames  RenameMap
	warnings MergeWarnings

	// placed are the paths and callback components this contribution put
	// into the master itself, as opposed to reusing another contribution's
	// identical item. Their operation identifiers are registered afterwards.
	placed []operationSite

	// adopted holds identifiers taken over from the owners of shared items.
	adopted RenameMap

	// shared are components reused from another contribution, checked again
	// once references have been rewritten.
	shared []sharedItem
}

// operationSite is a placed item whose operations carry identifiers.
type operationSite struct {
	key Key
	ops iter.Seq2[string, *oas.Operation]
}

type sharedItem struct {
	key  Key
	item any
}

func (m *merger) run() {
	m.section("servers", m.mergeServers)
	m.section("security", m.distributeSecurity)
	m.section("tags", m.mergeTags)
	for _, cat := range ComponentCategories() {
		m.section(cat.String(), func() { m.mergeComponents(componentAccessors[cat]) })
	}
	m.section("component extensions", m.mergeComponentExtensions)
	m.section("extensions", m.mergeExtensions)
	m.section("rewrite", func() { newRewriter(m.renames).document(m.c.doc) })
	m.section("shared components", m.checkSharedComponents)
	m.section("paths", m.mergePaths)
	m.section("operation ids", m.mergeOperationIDs)
}

// section runs fn and turns a panic caused by a malformed graph into a
// warning, so the remaining sections still merge.
func (m *merger) section(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			m.warn(newSectionSkippedWarning(m.c.label, name, rec))
		}
	}()
	fn()
}

func (m *merger) warn(w *MergeWarning) {
	m.warnings = append(m.warnings, w)
	logWarning(m.log, w)
}

// resolveName searches for the first candidate name that does not conflict.
// localTaken reports names used by other items of the same contribution,
// which a renamed item must not overwrite.
func (m *merger) resolveName(name string, keyOf func(string) Key, candidate func(string) any, localTaken func(string) bool) (string, bool) {
	limit := m.r.config.MaxRenameAttempts
	for attempt := 0; attempt <= limit; attempt++ {
		cand := candidateName(name, attempt)
		if attempt > 0 && localTaken(cand) {
			continue
		}
		if !m.r.hasConflict(keyOf(cand), candidate(cand)) {
			return cand, true
		}
	}
	err := &oaserrors.ResourceLimitError{
		ResourceType: "rename_attempts",
		Limit:        int64(limit),
		Subject:      keyOf(name).String(),
		Message:      "no free name found",
	}
	m.warn(newRenameExhaustedWarning(m.c.label, keyOf(name), err))
	return "", false
}

// mergeServers prepends a literal base path to the contribution's paths, or
// attaches its servers to each path item. Either way the top-level list is
// cleared.
func (m *merger) mergeServers() {
	doc := m.c.doc
	if base, ok := basePath(doc.Servers); ok {
		prefixed := make(oas.Paths, len(doc.Paths))
		for _, tpl := range slices.Sorted(maps.Keys(doc.Paths)) {
			item := doc.Paths[tpl]
			target := tpl
			if item == nil || len(item.Servers) == 0 {
				target = joinPath(base, tpl)
			}
			if _, dup := prefixed[target]; dup {
				m.warn(newPathConflictWarning(m.c.label, target, m.c.label))
				continue
			}
			prefixed[target] = item
		}
		doc.Paths = prefixed
		doc.Servers = nil
		m.log.Debug("distributed base path", "base", base, "paths", len(prefixed))
		return
	}
	if len(doc.Servers) == 0 {
		return
	}
	for _, item := range doc.Paths {
		if item != nil && len(item.Servers) == 0 {
			item.Servers = slices.Clone(doc.Servers)
		}
	}
	doc.Servers = nil
}

// basePath returns the prefix to distribute when servers is exactly one
// literal absolute path other than "/".
func basePath(servers []*oas.Server) (string, bool) {
	if len(servers) != 1 || servers[0] == nil {
		return "", false
	}
	u := servers[0].URL
	if !strings.HasPrefix(u, "/") || strings.ContainsAny(u, "{}") {
		return "", false
	}
	u = strings.TrimRight(u, "/")
	if u == "" {
		return "", false
	}
	return u, true
}

func joinPath(base, tpl string) string {
	if !strings.HasPrefix(tpl, "/") {
		tpl = "/" + tpl
	}
	return base + tpl
}

// distributeSecurity copies a non-empty top-level security list onto every
// operation that declares none, then clears it.
func (m *merger) distributeSecurity() {
	doc := m.c.doc
	if len(doc.Security) == 0 {
		return
	}
	assigned := 0
	assign := func(ops iter.Seq2[string, *oas.Operation]) {
		for _, op := range ops {
			if op.Security == nil {
				op.Security = cloneSecurity(doc.Security)
				assigned++
			}
		}
	}
	for _, item := range doc.Paths {
		assign(item.AllOperations())
	}
	if doc.Components != nil {
		for _, cb := range doc.Components.Callbacks {
			assign(cb.AllOperations())
		}
	}
	doc.Security = nil
	m.log.Debug("distributed default security", "operations", assigned)
}

func cloneSecurity(reqs []oas.SecurityRequirement) []oas.SecurityRequirement {
	out := make([]oas.SecurityRequirement, 0, len(reqs))
	for _, req := range reqs {
		cp := make(oas.SecurityRequirement, len(req))
		for name, scopes := range req {
			cp[name] = slices.Clone(scopes)
		}
		out = append(out, cp)
	}
	return out
}

// mergeTags merges the tag list in declaration order. Newly placed tags are
// appended to the master's ordered list.
func (m *merger) mergeTags() {
	doc := m.c.doc
	local := make(map[string]bool, len(doc.Tags))
	for _, tag := range doc.Tags {
		if tag != nil {
			local[tag.Name] = true
		}
	}
	kept := make(map[string]bool)

	for _, tag := range doc.Tags {
		if tag == nil {
			continue
		}
		if tag.Name == "" {
			m.warn(newMissingNameWarning(m.c.label, CategoryTags))
			continue
		}
		original := tag.Name
		final, ok := m.resolveName(original, TagKey,
			func(name string) any {
				cp := *tag
				cp.Name = name
				return &cp
			},
			func(name string) bool { return local[name] })
		if !ok {
			continue
		}
		if final == original {
			kept[original] = true
		} else {
			tag.Name = final
			local[final] = true
			if !kept[original] {
				m.renames.Record(CategoryTags, original, final)
			}
			m.warn(newRenameWarning(m.c.label, CategoryTags, original, final))
		}
		if m.r.register(m.c, TagKey(final)) {
			m.r.master.Tags = append(m.r.master.Tags, tag)
		}
	}
}

// mergeComponents merges one components category in sorted name order.
// Renamed items move to their final name inside the contribution as well.
func (m *merger) mergeComponents(acc componentAccessor) {
	comps := m.c.doc.Components
	if comps == nil {
		return
	}
	cat := acc.category()
	names := acc.names(comps)
	local := make(map[string]bool, len(names))
	for _, name := range names {
		local[name] = true
	}
	keyOf := func(name string) Key { return ComponentKey(cat, name) }

	for _, name := range names {
		item, _ := acc.get(comps, name)
		if oas.IsExtension(name) {
			m.placeExtension(keyOf(name), item, func() {
				acc.place(m.r.master.EnsureComponents(), comps, name, name)
			})
			continue
		}
		final, ok := m.resolveName(name, keyOf,
			func(string) any { return item },
			func(cand string) bool { return local[cand] })
		if !ok {
			continue
		}
		if final != name {
			acc.move(comps, name, final)
			local[final] = true
			m.renames.Record(cat, name, final)
			m.warn(newRenameWarning(m.c.label, cat, name, final))
		}
		key := keyOf(final)
		if !m.r.register(m.c, key) {
			m.shared = append(m.shared, sharedItem{key: key, item: item})
			if cb, ok := item.(*oas.Callback); ok {
				m.adoptOperationIDs(key, cb.AllOperations())
			}
			continue
		}
		acc.place(m.r.master.EnsureComponents(), comps, final, final)
		if cb, ok := item.(*oas.Callback); ok && cb != nil {
			m.placed = append(m.placed, operationSite{key: key, ops: cb.AllOperations()})
		}
	}
}

// checkSharedComponents warns about reused components whose own copy changed
// during the rewrite. The master keeps the owner's copy, which still refers
// to the owner's items rather than this contribution's renamed ones.
func (m *merger) checkSharedComponents() {
	for _, s := range m.shared {
		owner := m.r.ownerOf(s.key)
		if owner == nil || owner == m.c {
			continue
		}
		if m.r.hasConflict(s.key, s.item) {
			m.warn(newSharedReferenceWarning(m.c.label, s.key, owner.label))
		}
	}
}

// placeExtension counts a reference to an extension key and places the value
// only when the key is new. Differing values are tolerated.
func (m *merger) placeExtension(key Key, value any, place func()) {
	if m.r.hasConflict(key, value) {
		m.warn(newExtensionCollisionWarning(m.c.label, key))
	}
	if m.r.register(m.c, key) {
		place()
	}
}

func (m *merger) mergeComponentExtensions() {
	comps := m.c.doc.Components
	if comps == nil {
		return
	}
	for _, name := range slices.Sorted(maps.Keys(comps.Extra)) {
		if !oas.IsExtension(name) {
			m.log.Debug("ignoring unknown components field", "field", name)
			continue
		}
		value := comps.Extra[name]
		m.placeExtension(ComponentExtensionKey(name), value, func() {
			master := m.r.master.EnsureComponents()
			if master.Extra == nil {
				master.Extra = make(map[string]any)
			}
			master.Extra[name] = value
		})
	}
}

func (m *merger) mergeExtensions() {
	doc := m.c.doc
	for _, name := range slices.Sorted(maps.Keys(doc.Extra)) {
		if !oas.IsExtension(name) {
			m.log.Debug("ignoring unknown document field", "field", name)
			continue
		}
		value := doc.Extra[name]
		m.placeExtension(ExtensionKey(name), value, func() {
			if m.r.master.Extra == nil {
				m.r.master.Extra = make(map[string]any)
			}
			m.r.master.Extra[name] = value
		})
	}
}

// mergePaths unions the path map. Templates are never renamed: identical
// content is shared, different content under a taken template is skipped.
func (m *merger) mergePaths() {
	doc := m.c.doc
	if m.r.master.Paths == nil {
		m.r.master.Paths = oas.Paths{}
	}
	for _, tpl := range slices.Sorted(maps.Keys(doc.Paths)) {
		item := doc.Paths[tpl]
		if item == nil {
			continue
		}
		key := PathKey(tpl)
		if m.r.hasConflict(key, item) {
			owner := ""
			if o := m.r.ownerOf(key); o != nil {
				owner = o.label
			}
			m.warn(newPathConflictWarning(m.c.label, tpl, owner))
			continue
		}
		if m.r.register(m.c, key) {
			m.r.master.Paths[tpl] = item
			m.placed = append(m.placed, operationSite{key: key, ops: item.AllOperations()})
			continue
		}
		m.adoptOperationIDs(key, item.AllOperations())
	}
}

// adoptOperationIDs gives the operations of a shared item the identifiers
// the owner's copy carries, so either copy can stand in for the other.
func (m *merger) adoptOperationIDs(key Key, ops iter.Seq2[string, *oas.Operation]) {
	owner := m.r.ownerOf(key)
	if owner == nil || owner == m.c || owner.opRenames.Len() == 0 {
		return
	}
	for _, op := range ops {
		to, ok := owner.opRenames.Lookup(CategoryOperationIDs, op.OperationID)
		if !ok {
			continue
		}
		m.log.Debug("adopted operationId of shared item",
			"key", key.String(), "from", op.OperationID, "to", to)
		m.adopted.Record(CategoryOperationIDs, op.OperationID, to)
		m.recordOperationRename(op.OperationID, to)
		op.OperationID = to
	}
}

func (m *merger) recordOperationRename(from, to string) {
	if m.c.opRenames == nil {
		m.c.opRenames = RenameMap{}
	}
	m.c.opRenames.Record(CategoryOperationIDs, from, to)
}

// mergeOperationIDs makes the operation identifiers of newly placed paths
// and callbacks globally unique, then fixes links that named a renamed or
// adopted identifier.
func (m *merger) mergeOperationIDs() {
	limit := m.r.config.MaxRenameAttempts
	kept := make(map[string]bool)
	opRenames := RenameMap{}

	for _, site := range m.placed {
		for method, op := range site.ops {
			id := op.OperationID
			if id == "" {
				continue
			}
			final := ""
			for attempt := 0; attempt <= limit; attempt++ {
				cand := candidateName(id, attempt)
				if _, taken := m.r.operationIDs[cand]; !taken {
					final = cand
					break
				}
			}
			if final == "" {
				op.OperationID = ""
				m.warn(newRenameExhaustedWarning(m.c.label, site.key, &oaserrors.ResourceLimitError{
					ResourceType: "rename_attempts",
					Limit:        int64(limit),
					Subject:      fmt.Sprintf("operationId %q (%s in %s)", id, method, site.key),
					Message:      "operationId cleared",
				}))
				continue
			}

			m.r.operationIDs[final] = site.key
			m.r.keyOperationIDs[site.key] = append(m.r.keyOperationIDs[site.key], final)
			m.c.operationIDs = append(m.c.operationIDs, final)
			if final == id {
				kept[id] = true
				continue
			}
			op.OperationID = final
			if !kept[id] {
				opRenames.Record(CategoryOperationIDs, id, final)
				m.recordOperationRename(id, final)
			}
			m.warn(newRenameWarning(m.c.label, CategoryOperationIDs, id, final))
		}
	}

	for _, e := range opRenames.Entries() {
		m.renames.Record(e.Category, e.From, e.To)
	}
	links := m.adopted.Clone()
	for _, e := range opRenames.Entries() {
		links.Record(e.Category, e.From, e.To)
	}
	if links.Len() == 0 {
		return
	}
	newRewriter(links).document(m.c.doc)
}
