package merge_test

import (
	"fmt"
	"log"

	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
)

func mustParse(src string) *oas.Document {
	doc, err := oas.Parse([]byte(src))
	if err != nil {
		log.Fatal(err)
	}
	return doc
}

// Example shows two modules contributing a tag with the same name.
func Example() {
	reg, err := merge.New(merge.WithInfo(&oas.Info{Title: "Gateway", Version: "1.0.0"}))
	if err != nil {
		log.Fatal(err)
	}

	pets := merge.NewContribution("pets", mustParse(`openapi: 3.0.3
info: {title: pets, version: "1"}
tags:
  - name: Animals
    description: Pets for sale
paths:
  /pets:
    get:
      operationId: list
      tags: [Animals]
      responses:
        "200": {description: ok}
`))
	zoo := merge.NewContribution("zoo", mustParse(`openapi: 3.0.3
info: {title: zoo, version: "1"}
tags:
  - name: Animals
    description: Zoo residents
paths:
  /residents:
    get:
      operationId: list
      tags: [Animals]
      responses:
        "200": {description: ok}
`))

	for _, c := range []*merge.Contribution{pets, zoo} {
		result, err := reg.Add(c)
		if err != nil {
			log.Fatal(err)
		}
		for _, w := range result.Warnings {
			fmt.Printf("%s: %s\n", c.Label(), w)
		}
	}

	doc := reg.Snapshot().Document
	for _, tag := range doc.Tags {
		fmt.Println(tag.Name, "-", tag.Description)
	}
	fmt.Println(doc.Paths["/residents"].Get.OperationID, doc.Paths["/residents"].Get.Tags)

	// Output:
	// zoo: tags "Animals" renamed to "Animals1"
	// zoo: operationIds "list" renamed to "list1"
	// Animals - Pets for sale
	// Animals1 - Zoo residents
	// list1 [Animals1]
}

// ExampleRegistry_Remove shows shared content surviving until its last
// contributor is removed.
func ExampleRegistry_Remove() {
	const src = `openapi: 3.0.3
info: {title: health, version: "1"}
paths:
  /health:
    get:
      responses:
        "200": {description: ok}
`
	reg := merge.MustNew()
	a := merge.NewContribution("a", mustParse(src))
	b := merge.NewContribution("b", mustParse(src))
	for _, c := range []*merge.Contribution{a, b} {
		if _, err := reg.Add(c); err != nil {
			log.Fatal(err)
		}
	}
	key := merge.PathKey("/health")
	fmt.Println(reg.RefCount(key), reg.Owner(key))

	_ = reg.Remove(a)
	fmt.Println(reg.RefCount(key), reg.Owner(key))

	_ = reg.Remove(b)
	_, ok := reg.Snapshot().Document.Paths["/health"]
	fmt.Println(reg.RefCount(key), ok)

	// Output:
	// 2 a
	// 1 b
	// 0 false
}
