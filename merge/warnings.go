package merge

import (
	"fmt"

	"github.com/erraggy/oasmerge/internal/severity"
)

// Severity indicates how much attention a warning needs.
type Severity = severity.Severity

const (
	// SeverityInfo marks a tolerated situation.
	SeverityInfo = severity.SeverityInfo
	// SeverityWarning marks a resolved or skipped conflict.
	SeverityWarning = severity.SeverityWarning
	// SeverityError marks content that could not be merged.
	SeverityError = severity.SeverityError
)

// WarningCategory identifies the type of warning.
type WarningCategory string

const (
	// WarnTagRenamed indicates a tag was renamed due to a conflict.
	WarnTagRenamed WarningCategory = "tag_renamed"
	// WarnComponentRenamed indicates a component was renamed due to a conflict.
	WarnComponentRenamed WarningCategory = "component_renamed"
	// WarnOperationIDRenamed indicates an operationId was suffixed to stay unique.
	WarnOperationIDRenamed WarningCategory = "operation_id_renamed"
	// WarnPathConflict indicates a path template was already taken with different content.
	WarnPathConflict WarningCategory = "path_conflict"
	// WarnRenameExhausted indicates no free name was found within the rename ceiling.
	WarnRenameExhausted WarningCategory = "rename_exhausted"
	// WarnSectionSkipped indicates a section was abandoned because of a structural defect.
	WarnSectionSkipped WarningCategory = "section_skipped"
	// WarnExtensionCollision indicates an extension was already placed by another contribution.
	WarnExtensionCollision WarningCategory = "extension_collision"
	// WarnMissingName indicates a named item had an empty name and was skipped.
	WarnMissingName WarningCategory = "missing_name"
	// WarnSharedReference indicates a reused component refers to the owner's
	// items where this contribution's own copy now refers to renamed ones.
	WarnSharedReference WarningCategory = "shared_reference"
)

// MergeWarning is a non-fatal diagnostic produced while adding a contribution.
type MergeWarning struct {
	// Category identifies the type of warning.
	Category WarningCategory
	// Key is the canonical key of the affected item, when there is one.
	Key Key
	// Message is a human-readable description.
	Message string
	// Contribution is the label of the contribution being merged.
	Contribution string
	// Severity indicates warning severity.
	Severity Severity
	// Err carries the underlying error, e.g. an oaserrors.ResourceLimitError.
	Err error
}

// String returns the formatted warning message.
func (w *MergeWarning) String() string {
	return w.Message
}

// MergeWarnings is a collection of merge warnings.
type MergeWarnings []*MergeWarning

// Strings returns the messages of all warnings.
func (ws MergeWarnings) Strings() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}

// ByCategory returns the warnings of one category.
func (ws MergeWarnings) ByCategory(c WarningCategory) MergeWarnings {
	var out MergeWarnings
	for _, w := range ws {
		if w.Category == c {
			out = append(out, w)
		}
	}
	return out
}

func newRenameWarning(label string, c Category, from, to string) *MergeWarning {
	category := WarnComponentRenamed
	switch c {
	case CategoryTags:
		category = WarnTagRenamed
	case CategoryOperationIDs:
		category = WarnOperationIDRenamed
	}
	key := ComponentKey(c, to)
	if c == CategoryTags {
		key = TagKey(to)
	}
	if c == CategoryOperationIDs {
		key = ""
	}
	return &MergeWarning{
		Category:     category,
		Key:          key,
		Message:      fmt.Sprintf("%s %q renamed to %q", c, from, to),
		Contribution: label,
		Severity:     SeverityWarning,
	}
}

func newPathConflictWarning(label, template, owner string) *MergeWarning {
	return &MergeWarning{
		Category:     WarnPathConflict,
		Key:          PathKey(template),
		Message:      fmt.Sprintf("path %q skipped: already provided by %s with different content", template, owner),
		Contribution: label,
		Severity:     SeverityWarning,
	}
}

func newSharedReferenceWarning(label string, key Key, owner string) *MergeWarning {
	return &MergeWarning{
		Category: WarnSharedReference,
		Key:      key,
		Message: fmt.Sprintf("%s reuses the copy provided by %s, which does not refer to this contribution's renamed items",
			key, owner),
		Contribution: label,
		Severity:     SeverityWarning,
	}
}

func newRenameExhaustedWarning(label string, key Key, err error) *MergeWarning {
	return &MergeWarning{
		Category:     WarnRenameExhausted,
		Key:          key,
		Message:      fmt.Sprintf("%s dropped: %v", key, err),
		Contribution: label,
		Severity:     SeverityError,
		Err:          err,
	}
}

func newSectionSkippedWarning(label, section string, cause any) *MergeWarning {
	return &MergeWarning{
		Category:     WarnSectionSkipped,
		Message:      fmt.Sprintf("section %s skipped after a structural defect: %v", section, cause),
		Contribution: label,
		Severity:     SeverityError,
	}
}

func newExtensionCollisionWarning(label string, key Key) *MergeWarning {
	return &MergeWarning{
		Category:     WarnExtensionCollision,
		Key:          key,
		Message:      fmt.Sprintf("extension %s already present with different content; keeping existing value", key),
		Contribution: label,
		Severity:     SeverityInfo,
	}
}

func newMissingNameWarning(label string, c Category) *MergeWarning {
	return &MergeWarning{
		Category:     WarnMissingName,
		Message:      fmt.Sprintf("%s entry without a name skipped", c),
		Contribution: label,
		Severity:     SeverityWarning,
	}
}
