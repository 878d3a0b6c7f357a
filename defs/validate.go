package defs

import (
	"fmt"
	"sort"
	"strings"
)

// Colors for the cycle-detection DFS.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// Validate checks the internal consistency of a merged composite: every
// asset dependency names a known asset, the dependency graph is acyclic,
// and every job, schedule and sensor reference resolves. Validation never
// mutates the composite.
func (d *Definitions) Validate() error {
	assets := make(map[string]*Asset, len(d.Assets))
	for _, a := range d.Assets {
		assets[a.Key] = a
	}
	for _, a := range d.Assets {
		for _, dep := range a.Deps {
			if _, ok := assets[dep]; !ok {
				return fmt.Errorf("asset %q depends on undefined asset %q", a.Key, dep)
			}
		}
	}
	if err := detectCycles(assets); err != nil {
		return err
	}

	jobs := make(map[string]*Job, len(d.Jobs))
	for _, j := range d.Jobs {
		jobs[j.Name] = j
		for _, key := range j.Assets {
			if _, ok := assets[key]; !ok {
				return fmt.Errorf("job %q selects undefined asset %q", j.Name, key)
			}
		}
	}
	for _, s := range d.Schedules {
		if _, ok := jobs[s.Job]; !ok {
			return fmt.Errorf("schedule %q targets undefined job %q", s.Name, s.Job)
		}
	}
	for _, s := range d.Sensors {
		if _, ok := jobs[s.Job]; !ok {
			return fmt.Errorf("sensor %q targets undefined job %q", s.Name, s.Job)
		}
	}
	return nil
}

// detectCycles runs a three-color DFS over the asset dependency edges and
// reports the first cycle found, listing the keys along it.
func detectCycles(assets map[string]*Asset) error {
	keys := make([]string, 0, len(assets))
	for key := range assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	colors := make(map[string]int, len(assets))
	var path []string

	var visit func(key string) error
	visit = func(key string) error {
		colors[key] = gray
		path = append(path, key)

		deps := append([]string(nil), assets[key].Deps...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch colors[dep] {
			case gray:
				start := 0
				for i, k := range path {
					if k == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string(nil), path[start:]...), dep)
				return fmt.Errorf("asset dependency cycle: %s", strings.Join(cycle, " -> "))
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		colors[key] = black
		return nil
	}

	for _, key := range keys {
		if colors[key] == white {
			if err := visit(key); err != nil {
				return err
			}
		}
	}
	return nil
}
