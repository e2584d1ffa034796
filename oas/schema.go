package oas

import (
	"go.yaml.in/yaml/v4"
)

// Schema represents a JSON Schema as used by OpenAPI 3.x. Keywords the merge
// engine does not need to inspect are carried in Extra.
type Schema struct {
	// Reference
	Ref string `yaml:"$ref,omitempty"`

	// Metadata
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Example     any    `yaml:"example,omitempty"`
	Deprecated  bool   `yaml:"deprecated,omitempty"`
	ReadOnly    bool   `yaml:"readOnly,omitempty"`
	WriteOnly   bool   `yaml:"writeOnly,omitempty"`
	Nullable    bool   `yaml:"nullable,omitempty"`

	// Type and validation
	Type     any      `yaml:"type,omitempty"` // string or []string (3.1)
	Format   string   `yaml:"format,omitempty"`
	Enum     []any    `yaml:"enum,omitempty"`
	Const    any      `yaml:"const,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Required []string `yaml:"required,omitempty"`

	// Structure
	Properties           map[string]*Schema `yaml:"properties,omitempty"`
	AdditionalProperties *SchemaOrBool      `yaml:"additionalProperties,omitempty"`
	Items                *Schema            `yaml:"items,omitempty"`

	// Composition
	AllOf []*Schema `yaml:"allOf,omitempty"`
	AnyOf []*Schema `yaml:"anyOf,omitempty"`
	OneOf []*Schema `yaml:"oneOf,omitempty"`
	Not   *Schema   `yaml:"not,omitempty"`

	// JSON Schema 2020-12 subschemas (OpenAPI 3.1)
	PrefixItems           []*Schema          `yaml:"prefixItems,omitempty"`
	Contains              *Schema            `yaml:"contains,omitempty"`
	PropertyNames         *Schema            `yaml:"propertyNames,omitempty"`
	PatternProperties     map[string]*Schema `yaml:"patternProperties,omitempty"`
	DependentSchemas      map[string]*Schema `yaml:"dependentSchemas,omitempty"`
	If                    *Schema            `yaml:"if,omitempty"`
	Then                  *Schema            `yaml:"then,omitempty"`
	Else                  *Schema            `yaml:"else,omitempty"`
	UnevaluatedItems      *SchemaOrBool      `yaml:"unevaluatedItems,omitempty"`
	UnevaluatedProperties *SchemaOrBool      `yaml:"unevaluatedProperties,omitempty"`
	Defs                  map[string]*Schema `yaml:"$defs,omitempty"`

	Discriminator *Discriminator `yaml:"discriminator,omitempty"`
	ExternalDocs  *ExternalDocs  `yaml:"externalDocs,omitempty"`

	// Extra captures remaining keywords and specification extensions
	Extra map[string]any `yaml:",inline"`
}

// Discriminator represents a discriminator for polymorphism
type Discriminator struct {
	PropertyName string `yaml:"propertyName"`
	// Mapping values are either full component references or bare schema names.
	Mapping map[string]string `yaml:"mapping,omitempty"`
	Extra   map[string]any    `yaml:",inline"`
}

// SchemaOrBool holds the value of additionalProperties, which is either a
// boolean or a schema.
type SchemaOrBool struct {
	Allowed *bool
	Schema  *Schema
}

// UnmarshalYAML decodes a boolean scalar or a schema mapping.
func (s *SchemaOrBool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		s.Allowed = &b
		return nil
	}
	var schema Schema
	if err := node.Decode(&schema); err != nil {
		return err
	}
	s.Schema = &schema
	return nil
}

// MarshalYAML encodes the schema if set, otherwise the boolean.
func (s SchemaOrBool) MarshalYAML() (any, error) {
	if s.Schema != nil {
		return s.Schema, nil
	}
	if s.Allowed != nil {
		return *s.Allowed, nil
	}
	return nil, nil
}
