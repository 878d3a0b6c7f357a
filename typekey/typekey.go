package typekey

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultNamespace is the namespace assumed for keys written without one.
const DefaultNamespace = "core"

// partRegex validates a single key part: a lowercase identifier with
// optional underscore separators, e.g. `model_project`.
var partRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Key uniquely names a component type across a registry. The zero value is
// not a valid key; construct one with Parse or New.
type Key struct {
	Namespace string
	Name      string
}

// New builds a Key from an explicit namespace and name without validation.
func New(namespace, name string) Key {
	return Key{Namespace: namespace, Name: name}
}

// Parse creates a Key from its canonical string representation. Accepted
// forms are `namespace/name` and the shorthand `name`, which is placed in
// the default namespace.
func Parse(raw string) (Key, error) {
	if raw == "" {
		return Key{}, fmt.Errorf("component type key cannot be empty")
	}

	parts := strings.Split(raw, "/")
	var k Key
	switch len(parts) {
	case 1:
		k = Key{Namespace: DefaultNamespace, Name: parts[0]}
	case 2:
		k = Key{Namespace: parts[0], Name: parts[1]}
	default:
		return Key{}, fmt.Errorf("invalid component type key %q: expected 'namespace/name'", raw)
	}

	if !partRegex.MatchString(k.Namespace) {
		return Key{}, fmt.Errorf("invalid component type namespace %q in key %q", k.Namespace, raw)
	}
	if !partRegex.MatchString(k.Name) {
		return Key{}, fmt.Errorf("invalid component type name %q in key %q", k.Name, raw)
	}
	return k, nil
}

// MustParse is Parse for statically known keys; it panics on invalid input.
func MustParse(raw string) Key {
	k, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return k
}

// String serializes the Key into its canonical `namespace/name` form.
func (k Key) String() string {
	return k.Namespace + "/" + k.Name
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k.Namespace == "" && k.Name == ""
}
