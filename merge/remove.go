package merge

import (
	"slices"

	"github.com/erraggy/oasmerge/oaserrors"
)

// Remove releases every key c owns. Keys whose count drops to zero are
// deleted from the master document together with the operation identifiers
// registered under them. Names chosen for other contributions are never
// reverted.
//
// Removing a contribution that is not live is a no-op. A nil contribution is
// an error, and so is a failure to publish the resulting snapshot; the
// contribution is removed either way.
func (r *Registry) Remove(c *Contribution) error {
	if c == nil {
		return &oaserrors.PreconditionError{Op: "remove", Message: "contribution is nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.Index(r.contributions, c)
	if idx < 0 {
		r.logger.Debug("remove of unknown contribution ignored", "contribution", c.label)
		return nil
	}
	c.setState(StateRemoving)

	// Drop c from the list first so shared keys are re-pointed at the next owner.
	r.contributions = slices.Delete(r.contributions, idx, idx+1)

	keys := c.OwnedKeys()
	deleted := 0
	for _, key := range keys {
		before := len(r.refCounts)
		r.release(key)
		if len(r.refCounts) < before {
			deleted++
		}
	}
	c.clearOwned()
	c.setState(StateAbsent)
	if err := r.publish(); err != nil {
		return err
	}

	r.logger.Info("contribution removed",
		"contribution", c.label,
		"released", len(keys),
		"deleted", deleted)
	return nil
}
