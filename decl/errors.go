package decl

import "fmt"

// NotFoundError reports that a directory holds no component declaration and
// no descendant that does.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no component declarations found at %q", e.Path)
}
