// Package merge aggregates OpenAPI 3.x documents contributed independently by
// many modules into one master document and keeps it correct as modules come
// and go.
//
// # Overview
//
// A [Registry] owns the master document. Each module's document is wrapped in
// a [Contribution] and passed to [Registry.Add]; [Registry.Remove] takes it
// out again. Readers call [Registry.Snapshot], which returns an immutable deep
// copy published at the end of every add and remove.
//
//	reg, err := merge.New(merge.WithInfo(&oas.Info{Title: "Gateway", Version: "1.0.0"}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	doc, err := oas.ParseFile("pets.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	pets := merge.NewContribution("pets", doc)
//	result, err := reg.Add(pets)
//	if err != nil {
//		log.Fatal(err) // only precondition violations
//	}
//	for _, w := range result.Warnings {
//		fmt.Println(w)
//	}
//	out, _ := reg.Snapshot().Marshal(oas.FormatYAML)
//
// # Rename on conflict
//
// Tags and every components category are merged by name. A name already used
// in the master by an item with different content is suffixed with 1, 2, ...
// until free, bounded by [Config.MaxRenameAttempts]. Identical content under
// the same name is shared and reference counted. Renames are applied to the
// contribution's own document: its $refs, discriminator mappings, operation
// tags, security requirements and link operationIds are rewritten to the final
// names.
//
// Paths are never renamed. A template already taken with different content is
// skipped with a [WarnPathConflict] warning; the first contributor wins.
// Extensions ("x-" keys) are never renamed either: the first value is kept and
// collisions are reported at info level.
//
// Operation identifiers are globally unique. A colliding operationId on a
// newly placed path is suffixed the same way and links naming it are fixed.
//
// # Servers and security
//
// A contribution with exactly one server whose URL is a literal absolute path
// such as "/v1" has that prefix prepended to its path templates. Other server
// lists are copied onto each path item. A top-level security list is copied
// onto every operation without its own. In both cases the top-level list is
// then cleared.
//
// # Reference counting
//
// Every item a contribution placed or reused is a [Key] in its owned set and
// bumps the key's count. [Registry.Remove] decrements the counts and deletes
// items that reach zero. Names chosen for other contributions never change.
//
// # Errors
//
// Add and Remove return an error only for precondition violations
// (oaserrors.ErrPrecondition). Defects in a contributed document are reported
// as [MergeWarning] values and never abort the merge.
package merge
