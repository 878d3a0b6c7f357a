package scope

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// MissingRoots returns the variable roots referenced by expr that are not
// bound in c, deduplicated and sorted. An empty result means the expression
// can be evaluated against the scope without an unknown-variable failure.
func MissingRoots(expr hcl.Expression, c *Context) []string {
	seen := map[string]struct{}{}
	var missing []string
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if c.Has(root) {
			continue
		}
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		missing = append(missing, root)
	}
	sort.Strings(missing)
	return missing
}
