// Package oas provides the OpenAPI 3.x document graph shared by contributed
// documents and the merged master document.
//
// The model is intentionally shallow: it types the parts of a document the
// merge engine has to inspect or rewrite (names, references, tags, security
// requirements, operation identifiers) and keeps everything else in the
// Extra maps so it round-trips unchanged.
//
// # Parsing
//
//	doc, err := oas.ParseFile("pets.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// JSON documents may contain // and /* */ comments and trailing commas.
//
// # References
//
// ComponentRef and ParseComponentRef build and split local references of the
// form "#/components/{section}/{name}", handling JSON pointer escaping.
package oas
