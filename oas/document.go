package oas

// Document represents an OpenAPI 3.x document. The same shape is used for
// contributed documents and for the merged master document.
type Document struct {
	OpenAPI      string                `yaml:"openapi"`
	Info         *Info                 `yaml:"info,omitempty"`
	Servers      []*Server             `yaml:"servers,omitempty"`
	Paths        Paths                 `yaml:"paths,omitempty"`
	Components   *Components           `yaml:"components,omitempty"`
	Security     []SecurityRequirement `yaml:"security,omitempty"`
	Tags         []*Tag                `yaml:"tags,omitempty"`
	ExternalDocs *ExternalDocs         `yaml:"externalDocs,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline"`
}

// Components holds reusable objects grouped by category.
type Components struct {
	Schemas         map[string]*Schema         `yaml:"schemas,omitempty"`
	Responses       map[string]*Response       `yaml:"responses,omitempty"`
	Parameters      map[string]*Parameter      `yaml:"parameters,omitempty"`
	Examples        map[string]*Example        `yaml:"examples,omitempty"`
	RequestBodies   map[string]*RequestBody    `yaml:"requestBodies,omitempty"`
	Headers         map[string]*Header         `yaml:"headers,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `yaml:"securitySchemes,omitempty"`
	Links           map[string]*Link           `yaml:"links,omitempty"`
	Callbacks       map[string]*Callback       `yaml:"callbacks,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline"`
}

// EnsureComponents returns the document's Components, allocating it if absent.
func (d *Document) EnsureComponents() *Components {
	if d.Components == nil {
		d.Components = &Components{}
	}
	return d.Components
}

// Info provides metadata about the API
type Info struct {
	Title          string         `yaml:"title"`
	Summary        string         `yaml:"summary,omitempty"`
	Description    string         `yaml:"description,omitempty"`
	TermsOfService string         `yaml:"termsOfService,omitempty"`
	Contact        *Contact       `yaml:"contact,omitempty"`
	License        *License       `yaml:"license,omitempty"`
	Version        string         `yaml:"version"`
	Extra          map[string]any `yaml:",inline"`
}

// Contact information for the exposed API
type Contact struct {
	Name  string         `yaml:"name,omitempty"`
	URL   string         `yaml:"url,omitempty"`
	Email string         `yaml:"email,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

// License information for the exposed API
type License struct {
	Name       string         `yaml:"name"`
	URL        string         `yaml:"url,omitempty"`
	Identifier string         `yaml:"identifier,omitempty"`
	Extra      map[string]any `yaml:",inline"`
}

// ExternalDocs allows referencing external documentation
type ExternalDocs struct {
	Description string         `yaml:"description,omitempty"`
	URL         string         `yaml:"url"`
	Extra       map[string]any `yaml:",inline"`
}

// Tag adds metadata to a single tag used by operations
type Tag struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description,omitempty"`
	ExternalDocs *ExternalDocs  `yaml:"externalDocs,omitempty"`
	Extra        map[string]any `yaml:",inline"`
}

// Server represents a Server object
type Server struct {
	URL         string                    `yaml:"url"`
	Description string                    `yaml:"description,omitempty"`
	Variables   map[string]ServerVariable `yaml:"variables,omitempty"`
	Extra       map[string]any            `yaml:",inline"`
}

// ServerVariable represents a Server Variable object
type ServerVariable struct {
	Enum        []string       `yaml:"enum,omitempty"`
	Default     string         `yaml:"default"`
	Description string         `yaml:"description,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}
