package oas

import "strings"

// ComponentsRefPrefix is the JSON pointer prefix of every local component reference.
const ComponentsRefPrefix = "#/components/"

// Component section names as they appear under "components" and in references.
const (
	SectionSchemas         = "schemas"
	SectionResponses       = "responses"
	SectionParameters      = "parameters"
	SectionExamples        = "examples"
	SectionRequestBodies   = "requestBodies"
	SectionHeaders         = "headers"
	SectionSecuritySchemes = "securitySchemes"
	SectionLinks           = "links"
	SectionCallbacks       = "callbacks"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// ComponentRef builds "#/components/{section}/{name}", escaping the name as a
// JSON pointer token.
func ComponentRef(section, name string) string {
	return ComponentsRefPrefix + section + "/" + pointerEscaper.Replace(name)
}

// ParseComponentRef splits a local component reference into its section and
// unescaped name. ok is false for external references and anything that does
// not have exactly the shape "#/components/{section}/{name}".
func ParseComponentRef(ref string) (section, name string, ok bool) {
	rest, found := strings.CutPrefix(ref, ComponentsRefPrefix)
	if !found {
		return "", "", false
	}
	section, token, found := strings.Cut(rest, "/")
	if !found || section == "" || token == "" || strings.Contains(token, "/") {
		return "", "", false
	}
	return section, pointerUnescaper.Replace(token), true
}

// IsExtension reports whether key names a specification extension.
func IsExtension(key string) bool {
	return strings.HasPrefix(key, "x-")
}
