// Package oasmerge aggregates OpenAPI 3.x documents contributed by many
// independently deployed modules into one conflict-free master document, and
// keeps it correct as modules come and go.
//
// # Overview
//
// The library is organised in three public packages:
//
//   - oas: a compact OpenAPI 3.x object model with Parse and Marshal
//   - merge: the contribution registry, conflict detection, rename-on-conflict
//     and reference rewriting
//   - oaserrors: structured errors usable with errors.Is and errors.As
//
// # Installation
//
//	go get github.com/erraggy/oasmerge
//
// # Quick Start
//
//	reg, err := merge.New(merge.WithInfo(&oas.Info{Title: "Gateway", Version: "1.0.0"}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, path := range []string{"users.yaml", "orders.yaml"} {
//		doc, err := oas.ParseFile(path)
//		if err != nil {
//			log.Fatal(err)
//		}
//		result, err := reg.Add(merge.NewContribution(path, doc))
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, w := range result.Warnings {
//			fmt.Println(w)
//		}
//	}
//	out, err := reg.Snapshot().Marshal(oas.FormatYAML)
//
// # Command line
//
// The oasmerge binary merges files once (oasmerge merge), mirrors a directory
// of documents into a continuously rewritten output file (oasmerge watch), or
// serves the registry to AI agents over the Model Context Protocol
// (oasmerge mcp).
package oasmerge
