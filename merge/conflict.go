package merge

import (
	"github.com/erraggy/oasmerge/internal/codec"
	"github.com/erraggy/oasmerge/oas"
)

// hasConflict reports whether key is already occupied by an item whose
// content differs from candidate. Keys without a reference count are free.
// When the occupying item cannot be located the answer is false, so a
// bookkeeping defect degrades to sharing rather than aborting the merge.
//
// The owner's copy carries operation identifiers as renamed when it was
// merged, so candidate is compared as it would read after the same renames.
func (r *Registry) hasConflict(key Key, candidate any) bool {
	if r.refCounts[key] == 0 {
		return false
	}
	owner := r.ownerOf(key)
	if owner == nil {
		r.logger.Debug("no owner for counted key; treating as free", "key", key.String())
		return false
	}
	existing, ok := lookupItem(owner.doc, key)
	if !ok {
		r.logger.Debug("owner does not hold key; treating as free",
			"key", key.String(), "owner", owner.label)
		return false
	}
	return !codec.Equal(existing, r.withOperationIDs(candidate, owner.opRenames))
}

// withOperationIDs returns a copy of candidate with renames applied to the
// operation identifiers it declares or links to. Kinds that cannot name an
// operation, and candidates that cannot be copied, come back unchanged.
func (r *Registry) withOperationIDs(candidate any, renames RenameMap) any {
	if renames.Len() == 0 {
		return candidate
	}
	var (
		cp  any
		err error
	)
	switch v := candidate.(type) {
	case *oas.PathItem:
		cp, err = codec.Clone(v)
	case *oas.Callback:
		cp, err = codec.Clone(v)
	case *oas.Link:
		cp, err = codec.Clone(v)
	case *oas.Response:
		cp, err = codec.Clone(v)
	default:
		return candidate
	}
	if err != nil {
		r.logger.Debug("cannot copy candidate for comparison", "error", err)
		return candidate
	}
	w := newRewriter(renames)
	w.operationIDs = true
	w.item(cp)
	return cp
}
