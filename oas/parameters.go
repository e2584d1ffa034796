package oas

// Parameter describes a single operation parameter
type Parameter struct {
	Ref string `yaml:"$ref,omitempty"`
	// Name and In use omitempty because parameters can be defined via $ref.
	Name          string                `yaml:"name,omitempty"`
	In            string                `yaml:"in,omitempty"` // "query", "header", "path", "cookie"
	Description   string                `yaml:"description,omitempty"`
	Required      bool                  `yaml:"required,omitempty"`
	Deprecated    bool                  `yaml:"deprecated,omitempty"`
	Style         string                `yaml:"style,omitempty"`
	Explode       *bool                 `yaml:"explode,omitempty"`
	AllowReserved bool                  `yaml:"allowReserved,omitempty"`
	Schema        *Schema               `yaml:"schema,omitempty"`
	Example       any                   `yaml:"example,omitempty"`
	Examples      map[string]*Example   `yaml:"examples,omitempty"`
	Content       map[string]*MediaType `yaml:"content,omitempty"`
	Extra         map[string]any        `yaml:",inline"`
}

// RequestBody describes a single request body
type RequestBody struct {
	Ref         string                `yaml:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty"`
	Required    bool                  `yaml:"required,omitempty"`
	Extra       map[string]any        `yaml:",inline"`
}

// Header represents a header object
type Header struct {
	Ref         string                `yaml:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty"`
	Required    bool                  `yaml:"required,omitempty"`
	Deprecated  bool                  `yaml:"deprecated,omitempty"`
	Style       string                `yaml:"style,omitempty"`
	Explode     *bool                 `yaml:"explode,omitempty"`
	Schema      *Schema               `yaml:"schema,omitempty"`
	Example     any                   `yaml:"example,omitempty"`
	Examples    map[string]*Example   `yaml:"examples,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty"`
	Extra       map[string]any        `yaml:",inline"`
}
