package oas

// Paths holds the relative paths to the individual endpoints
type Paths map[string]*PathItem

// PathItem describes the operations available on a single path
type PathItem struct {
	Ref         string       `yaml:"$ref,omitempty"`
	Summary     string       `yaml:"summary,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Get         *Operation   `yaml:"get,omitempty"`
	Put         *Operation   `yaml:"put,omitempty"`
	Post        *Operation   `yaml:"post,omitempty"`
	Delete      *Operation   `yaml:"delete,omitempty"`
	Options     *Operation   `yaml:"options,omitempty"`
	Head        *Operation   `yaml:"head,omitempty"`
	Patch       *Operation   `yaml:"patch,omitempty"`
	Trace       *Operation   `yaml:"trace,omitempty"`
	Servers     []*Server    `yaml:"servers,omitempty"`
	Parameters  []*Parameter `yaml:"parameters,omitempty"`
	// Extra captures specification extensions (fields starting with "x-")
	Extra map[string]any `yaml:",inline"`
}

// Operation describes a single API operation on a path
type Operation struct {
	Tags         []string             `yaml:"tags,omitempty"`
	Summary      string               `yaml:"summary,omitempty"`
	Description  string               `yaml:"description,omitempty"`
	ExternalDocs *ExternalDocs        `yaml:"externalDocs,omitempty"`
	OperationID  string               `yaml:"operationId,omitempty"`
	Parameters   []*Parameter         `yaml:"parameters,omitempty"`
	RequestBody  *RequestBody         `yaml:"requestBody,omitempty"`
	Responses    Responses            `yaml:"responses,omitempty"`
	Callbacks    map[string]*Callback `yaml:"callbacks,omitempty"`
	Deprecated   bool                 `yaml:"deprecated,omitempty"`
	// Security distinguishes nil (inherit the document default) from an
	// explicitly empty list (no security for this operation).
	Security []SecurityRequirement `yaml:"security,omitempty"`
	Servers  []*Server             `yaml:"servers,omitempty"`
	Extra    map[string]any        `yaml:",inline"`
}

// Responses maps status codes (and "default") to responses.
type Responses map[string]*Response

// Response describes a single response from an API Operation
type Response struct {
	Ref         string                `yaml:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty"`
	Headers     map[string]*Header    `yaml:"headers,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty"`
	Links       map[string]*Link      `yaml:"links,omitempty"`
	Extra       map[string]any        `yaml:",inline"`
}

// Callback is a map of runtime expressions to path items. A callback may
// also be a reference to a reusable callback component.
type Callback struct {
	Ref         string               `yaml:"$ref,omitempty"`
	Expressions map[string]*PathItem `yaml:",inline"`
}

// Link represents a possible design-time link for a response
type Link struct {
	Ref          string         `yaml:"$ref,omitempty"`
	OperationRef string         `yaml:"operationRef,omitempty"`
	OperationID  string         `yaml:"operationId,omitempty"`
	Parameters   map[string]any `yaml:"parameters,omitempty"`
	RequestBody  any            `yaml:"requestBody,omitempty"`
	Description  string         `yaml:"description,omitempty"`
	Server       *Server        `yaml:"server,omitempty"`
	Extra        map[string]any `yaml:",inline"`
}

// MediaType provides schema and examples for the media type
type MediaType struct {
	Schema   *Schema              `yaml:"schema,omitempty"`
	Example  any                  `yaml:"example,omitempty"`
	Examples map[string]*Example  `yaml:"examples,omitempty"`
	Encoding map[string]*Encoding `yaml:"encoding,omitempty"`
	Extra    map[string]any       `yaml:",inline"`
}

// Example represents an example object
type Example struct {
	Ref           string         `yaml:"$ref,omitempty"`
	Summary       string         `yaml:"summary,omitempty"`
	Description   string         `yaml:"description,omitempty"`
	Value         any            `yaml:"value,omitempty"`
	ExternalValue string         `yaml:"externalValue,omitempty"`
	Extra         map[string]any `yaml:",inline"`
}

// Encoding defines encoding for a specific property
type Encoding struct {
	ContentType   string             `yaml:"contentType,omitempty"`
	Headers       map[string]*Header `yaml:"headers,omitempty"`
	Style         string             `yaml:"style,omitempty"`
	Explode       *bool              `yaml:"explode,omitempty"`
	AllowReserved bool               `yaml:"allowReserved,omitempty"`
	Extra         map[string]any     `yaml:",inline"`
}
