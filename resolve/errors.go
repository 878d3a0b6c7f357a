package resolve

import (
	"fmt"
	"strings"
)

// ScopeError reports a field whose resolution needs scope keys that are not
// bound in the context it was resolved against.
type ScopeError struct {
	Field   string
	Missing []string
}

func (e *ScopeError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("field %q requires scope keys %s that are not in context",
		e.Field, strings.Join(quoted, ", "))
}

// TypeError reports a resolved value that cannot inhabit the declared field
// type.
type TypeError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("field %q: cannot use %s value where %s is required",
		e.Field, e.Actual, e.Expected)
}
