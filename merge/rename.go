package merge

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
)

// RenameMap records (category, original name) -> final name for the names
// that changed while merging one contribution.
type RenameMap map[Category]map[string]string

// Rename is one entry of a RenameMap.
type Rename struct {
	Category Category
	From     string
	To       string
}

// Record stores a rename. Identity renames and originals that already have an
// entry are ignored; it reports whether the entry was stored.
func (m RenameMap) Record(c Category, from, to string) bool {
	if from == to {
		return false
	}
	names, ok := m[c]
	if !ok {
		names = make(map[string]string)
		m[c] = names
	}
	if _, exists := names[from]; exists {
		return false
	}
	names[from] = to
	return true
}

// Lookup returns the final name for from.
func (m RenameMap) Lookup(c Category, from string) (string, bool) {
	to, ok := m[c][from]
	return to, ok
}

// Len returns the number of recorded renames.
func (m RenameMap) Len() int {
	n := 0
	for _, names := range m {
		n += len(names)
	}
	return n
}

// Only returns a copy restricted to one category.
func (m RenameMap) Only(c Category) RenameMap {
	out := RenameMap{}
	if names, ok := m[c]; ok {
		out[c] = maps.Clone(names)
	}
	return out
}

// Clone returns a deep copy.
func (m RenameMap) Clone() RenameMap {
	out := make(RenameMap, len(m))
	for c, names := range m {
		out[c] = maps.Clone(names)
	}
	return out
}

// Entries returns every rename ordered by category, then original name.
func (m RenameMap) Entries() []Rename {
	entries := make([]Rename, 0, m.Len())
	for c, names := range m {
		for from, to := range names {
			entries = append(entries, Rename{Category: c, From: from, To: to})
		}
	}
	slices.SortFunc(entries, func(a, b Rename) int {
		if a.Category != b.Category {
			return cmp.Compare(a.Category, b.Category)
		}
		return cmp.Compare(a.From, b.From)
	})
	return entries
}

// candidateName returns the natural name for attempt 0 and name+attempt after.
func candidateName(name string, attempt int) string {
	if attempt == 0 {
		return name
	}
	return name + strconv.Itoa(attempt)
}
