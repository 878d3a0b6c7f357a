// Package defs defines the materialized output of a component build: named
// collections of assets, jobs, resources, schedules and sensors, together
// with the strict-union merge that combines per-unit results into one
// composite.
//
// A Definitions value is ephemeral: components produce one, the composer
// merges it, and the merged composite is never mutated afterwards. Merging
// never writes through to its inputs.
package defs
