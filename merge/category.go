package merge

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erraggy/oasmerge/oas"
)

// Category identifies a section of the master document that holds named items.
type Category int

const (
	// CategoryTags is the ordered top-level tag list.
	CategoryTags Category = iota
	// CategoryPaths is the path-template map. Paths are never renamed.
	CategoryPaths
	// CategorySchemas is components/schemas.
	CategorySchemas
	// CategoryResponses is components/responses.
	CategoryResponses
	// CategoryParameters is components/parameters.
	CategoryParameters
	// CategoryExamples is components/examples.
	CategoryExamples
	// CategoryRequestBodies is components/requestBodies.
	CategoryRequestBodies
	// CategoryHeaders is components/headers.
	CategoryHeaders
	// CategorySecuritySchemes is components/securitySchemes.
	CategorySecuritySchemes
	// CategoryLinks is components/links.
	CategoryLinks
	// CategoryCallbacks is components/callbacks.
	CategoryCallbacks
	// CategoryExtensions covers top-level and per-components "x-" entries.
	CategoryExtensions
	// CategoryOperationIDs is the pseudo-category for operation identifiers.
	CategoryOperationIDs
)

var categoryNames = [...]string{
	CategoryTags:            "tags",
	CategoryPaths:           "paths",
	CategorySchemas:         oas.SectionSchemas,
	CategoryResponses:       oas.SectionResponses,
	CategoryParameters:      oas.SectionParameters,
	CategoryExamples:        oas.SectionExamples,
	CategoryRequestBodies:   oas.SectionRequestBodies,
	CategoryHeaders:         oas.SectionHeaders,
	CategorySecuritySchemes: oas.SectionSecuritySchemes,
	CategoryLinks:           oas.SectionLinks,
	CategoryCallbacks:       oas.SectionCallbacks,
	CategoryExtensions:      "extensions",
	CategoryOperationIDs:    "operationIds",
}

// String returns the document field name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// IsComponent reports whether the category is one of the components maps.
func (c Category) IsComponent() bool {
	return c >= CategorySchemas && c <= CategoryCallbacks
}

// DisplayName returns a human-readable name, e.g. "Request Bodies".
func (c Category) DisplayName() string {
	name := c.String()
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}

// ComponentCategories returns the component categories in merge order.
func ComponentCategories() []Category {
	return []Category{
		CategorySchemas, CategoryResponses, CategoryParameters, CategoryExamples,
		CategoryRequestBodies, CategoryHeaders, CategorySecuritySchemes,
		CategoryLinks, CategoryCallbacks,
	}
}

// categoryForSection maps a components section name to its category.
func categoryForSection(section string) (Category, bool) {
	for _, c := range ComponentCategories() {
		if c.String() == section {
			return c, true
		}
	}
	return 0, false
}

// componentAccessor gives typed access to one components map.
type componentAccessor interface {
	category() Category
	// names returns the item names in sorted order.
	names(c *oas.Components) []string
	get(c *oas.Components, name string) (any, bool)
	// place copies src[from] into dst[to].
	place(dst, src *oas.Components, from, to string)
	// move renames an item within one components object.
	move(c *oas.Components, from, to string)
	remove(c *oas.Components, name string)
}

type componentMap[T any] struct {
	cat   Category
	field func(*oas.Components) *map[string]T
}

func (m componentMap[T]) category() Category { return m.cat }

func (m componentMap[T]) names(c *oas.Components) []string {
	if c == nil {
		return nil
	}
	items := *m.field(c)
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (m componentMap[T]) get(c *oas.Components, name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := (*m.field(c))[name]
	return v, ok
}

func (m componentMap[T]) place(dst, src *oas.Components, from, to string) {
	v, ok := (*m.field(src))[from]
	if !ok {
		return
	}
	items := m.field(dst)
	if *items == nil {
		*items = make(map[string]T)
	}
	(*items)[to] = v
}

func (m componentMap[T]) move(c *oas.Components, from, to string) {
	items := m.field(c)
	v, ok := (*items)[from]
	if !ok {
		return
	}
	delete(*items, from)
	(*items)[to] = v
}

func (m componentMap[T]) remove(c *oas.Components, name string) {
	if c == nil {
		return
	}
	delete(*m.field(c), name)
}

var componentAccessors = map[Category]componentAccessor{
	CategorySchemas: componentMap[*oas.Schema]{CategorySchemas,
		func(c *oas.Components) *map[string]*oas.Schema { return &c.Schemas }},
	CategoryResponses: componentMap[*oas.Response]{CategoryResponses,
		func(c *oas.Components) *map[string]*oas.Response { return &c.Responses }},
	CategoryParameters: componentMap[*oas.Parameter]{CategoryParameters,
		func(c *oas.Components) *map[string]*oas.Parameter { return &c.Parameters }},
	CategoryExamples: componentMap[*oas.Example]{CategoryExamples,
		func(c *oas.Components) *map[string]*oas.Example { return &c.Examples }},
	CategoryRequestBodies: componentMap[*oas.RequestBody]{CategoryRequestBodies,
		func(c *oas.Components) *map[string]*oas.RequestBody { return &c.RequestBodies }},
	CategoryHeaders: componentMap[*oas.Header]{CategoryHeaders,
		func(c *oas.Components) *map[string]*oas.Header { return &c.Headers }},
	CategorySecuritySchemes: componentMap[*oas.SecurityScheme]{CategorySecuritySchemes,
		func(c *oas.Components) *map[string]*oas.SecurityScheme { return &c.SecuritySchemes }},
	CategoryLinks: componentMap[*oas.Link]{CategoryLinks,
		func(c *oas.Components) *map[string]*oas.Link { return &c.Links }},
	CategoryCallbacks: componentMap[*oas.Callback]{CategoryCallbacks,
		func(c *oas.Components) *map[string]*oas.Callback { return &c.Callbacks }},
}
