package merge

import (
	"strings"

	"github.com/erraggy/oasmerge/oas"
)

// Key is a canonical, path-like identifier of one addressable location in
// the master document:
//
//	tags/<name>
//	paths/<template>
//	components/<category>/<name>
//	components/x-<name>   (components-level extension)
//	x-<name>              (top-level extension)
type Key string

const (
	tagsPrefix       = "tags/"
	pathsPrefix      = "paths/"
	componentsPrefix = "components/"
)

// TagKey returns the key of a top-level tag.
func TagKey(name string) Key { return Key(tagsPrefix + name) }

// PathKey returns the key of a path template.
func PathKey(template string) Key { return Key(pathsPrefix + template) }

// ComponentKey returns the key of a named component.
func ComponentKey(c Category, name string) Key {
	return Key(componentsPrefix + c.String() + "/" + name)
}

// ExtensionKey returns the key of a top-level extension.
func ExtensionKey(name string) Key { return Key(name) }

// ComponentExtensionKey returns the key of an extension declared directly
// under components.
func ComponentExtensionKey(name string) Key { return Key(componentsPrefix + name) }

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// keyParts is a parsed Key.
type keyParts struct {
	category Category
	name     string
	// inComponents is set for extensions declared under components.
	inComponents bool
}

// parse splits k into its category and name. ok is false for malformed keys.
func (k Key) parse() (keyParts, bool) {
	s := string(k)
	switch {
	case strings.HasPrefix(s, tagsPrefix):
		return keyParts{category: CategoryTags, name: s[len(tagsPrefix):]}, len(s) > len(tagsPrefix)
	case strings.HasPrefix(s, pathsPrefix):
		return keyParts{category: CategoryPaths, name: s[len(pathsPrefix):]}, len(s) > len(pathsPrefix)
	case strings.HasPrefix(s, componentsPrefix):
		rest := s[len(componentsPrefix):]
		if oas.IsExtension(rest) {
			return keyParts{category: CategoryExtensions, name: rest, inComponents: true}, true
		}
		section, name, found := strings.Cut(rest, "/")
		if !found || name == "" {
			return keyParts{}, false
		}
		cat, ok := categoryForSection(section)
		if !ok {
			return keyParts{}, false
		}
		return keyParts{category: cat, name: name}, true
	case oas.IsExtension(s):
		return keyParts{category: CategoryExtensions, name: s}, true
	}
	return keyParts{}, false
}

// Category returns the category of the key, or false if the key is malformed.
func (k Key) Category() (Category, bool) {
	p, ok := k.parse()
	return p.category, ok
}

// Name returns the item name within its category, or "" if the key is malformed.
func (k Key) Name() string {
	p, _ := k.parse()
	return p.name
}
