package registry

import (
	"fmt"

	"github.com/defstack/defstack/typekey"
)

// UnknownTypeError reports a declaration whose type key has no registered
// component type.
type UnknownTypeError struct {
	Key  typekey.Key
	Path string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("component type %q declared at %q is not registered", e.Key, e.Path)
}
