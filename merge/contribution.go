package merge

import (
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/erraggy/oasmerge/oas"
)

// State is the lifecycle state of a contribution.
type State int32

const (
	// StateAbsent means the contribution is not part of the master document.
	StateAbsent State = iota
	// StateMerging means the contribution is being added.
	StateMerging
	// StateActive means the contribution's content is live in the master document.
	StateActive
	// StateRemoving means the contribution's content is being released.
	StateRemoving
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateMerging:
		return "merging"
	case StateActive:
		return "active"
	case StateRemoving:
		return "removing"
	default:
		return "unknown"
	}
}

// Contribution is one module's document together with the keys it placed
// into the master document.
//
// The document is mutated in place while merging: renamed items, rewritten
// references, distributed servers and security. It is never copied, and the
// master document shares its objects, so callers must not modify it while
// the contribution is active.
type Contribution struct {
	label string
	doc   *oas.Document

	// owned, operationIDs and opRenames are guarded by the registry lock.
	// opRenames maps original operation identifiers to the ones this
	// document now carries, whether renamed or adopted from a shared item.
	owned        map[Key]struct{}
	operationIDs []string
	opRenames    RenameMap

	state atomic.Int32
}

// NewContribution wraps doc. An empty label is replaced by a random UUID.
func NewContribution(label string, doc *oas.Document) *Contribution {
	if label == "" {
		label = uuid.New().String()
	}
	return &Contribution{
		label: label,
		doc:   doc,
		owned: make(map[Key]struct{}),
	}
}

// Label returns the stable label used in diagnostics.
func (c *Contribution) Label() string { return c.label }

// Document returns the contribution's document.
func (c *Contribution) Document() *oas.Document { return c.doc }

// State returns the current lifecycle state.
func (c *Contribution) State() State { return State(c.state.Load()) }

func (c *Contribution) setState(s State) { c.state.Store(int32(s)) }

// OwnedKeys returns the keys this contribution placed or reuses, sorted.
// It must not be called concurrently with Add or Remove of this contribution.
func (c *Contribution) OwnedKeys() []Key {
	keys := make([]Key, 0, len(c.owned))
	for k := range c.owned {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Owns reports whether key is in the owned-key set.
func (c *Contribution) Owns(key Key) bool {
	_, ok := c.owned[key]
	return ok
}

// OperationIDs returns the operation identifiers this contribution
// registered, in registration order.
func (c *Contribution) OperationIDs() []string {
	return slices.Clone(c.operationIDs)
}

func (c *Contribution) own(key Key) bool {
	if c.owned == nil {
		c.owned = make(map[Key]struct{})
	}
	if _, ok := c.owned[key]; ok {
		return false
	}
	c.owned[key] = struct{}{}
	return true
}

func (c *Contribution) clearOwned() {
	clear(c.owned)
	c.operationIDs = nil
	c.opRenames = nil
}
