// Package composer drives a full build: it treats every immediate child
// directory of the components root as an independent build unit, loads and
// builds the components each unit declares, and merges every contribution
// plus the externally supplied resources into one composite defs.Definitions.
//
// Units are independent, so they may build on a small worker pool; the
// merge is always a single sequential pass in unit order, which keeps the
// outcome identical to a sequential build. An optional Cache skips units
// whose files are unchanged since the last successful build. Cache entries
// are staged while building and committed only after the merge and
// validation succeed, so a failed build never caches partial state.
package composer
