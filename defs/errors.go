package defs

import "fmt"

// DuplicateError reports two build units contributing the same identity to
// the same collection. It is returned by Merge and aborts the build; no
// partial composite is produced.
type DuplicateError struct {
	Kind  Kind
	Name  string
	Units [2]string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q: contributed by both %q and %q",
		e.Kind, e.Name, e.Units[0], e.Units[1])
}
