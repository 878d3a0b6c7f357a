package defs

// Unit attributes a Definitions value to the build unit that produced it,
// so duplicate errors can name both contributors.
type Unit struct {
	Name string
	Defs *Definitions
}

// override marks a resource value as deliberately replacing any same-named
// resource from another unit.
type override struct {
	value any
}

// Override wraps a resource value so that it wins a name collision during
// Merge instead of failing the build. A collision between two Override
// values is still an error. The wrapper is removed in the merged composite.
func Override(v any) any {
	return override{value: v}
}

// Merge combines the contributions of all units into a single composite.
// Every identity must be unique across units within its collection; the
// first collision aborts the merge with a *DuplicateError. Input units are
// never mutated, and unit order does not affect the outcome except for
// which collision is reported first.
func Merge(units ...Unit) (*Definitions, error) {
	merged := &Definitions{Resources: map[string]any{}}

	assetBy := map[string]string{}
	jobBy := map[string]string{}
	scheduleBy := map[string]string{}
	sensorBy := map[string]string{}
	resourceBy := map[string]string{}
	resourceWon := map[string]bool{}

	for _, u := range units {
		if u.Defs == nil {
			continue
		}
		for _, a := range u.Defs.Assets {
			if prev, ok := assetBy[a.Key]; ok {
				return nil, &DuplicateError{Kind: KindAsset, Name: a.Key, Units: [2]string{prev, u.Name}}
			}
			assetBy[a.Key] = u.Name
			merged.Assets = append(merged.Assets, a)
		}
		for _, j := range u.Defs.Jobs {
			if prev, ok := jobBy[j.Name]; ok {
				return nil, &DuplicateError{Kind: KindJob, Name: j.Name, Units: [2]string{prev, u.Name}}
			}
			jobBy[j.Name] = u.Name
			merged.Jobs = append(merged.Jobs, j)
		}
		for name, value := range u.Defs.Resources {
			wrapped, wins := value.(override)
			if wins {
				value = wrapped.value
			}
			prev, taken := resourceBy[name]
			switch {
			case !taken:
				resourceBy[name] = u.Name
				resourceWon[name] = wins
				merged.Resources[name] = value
			case wins && !resourceWon[name]:
				resourceBy[name] = u.Name
				resourceWon[name] = true
				merged.Resources[name] = value
			case !wins && resourceWon[name]:
				// Existing override keeps priority.
			default:
				return nil, &DuplicateError{Kind: KindResource, Name: name, Units: [2]string{prev, u.Name}}
			}
		}
		for _, s := range u.Defs.Schedules {
			if prev, ok := scheduleBy[s.Name]; ok {
				return nil, &DuplicateError{Kind: KindSchedule, Name: s.Name, Units: [2]string{prev, u.Name}}
			}
			scheduleBy[s.Name] = u.Name
			merged.Schedules = append(merged.Schedules, s)
		}
		for _, s := range u.Defs.Sensors {
			if prev, ok := sensorBy[s.Name]; ok {
				return nil, &DuplicateError{Kind: KindSensor, Name: s.Name, Units: [2]string{prev, u.Name}}
			}
			sensorBy[s.Name] = u.Name
			merged.Sensors = append(merged.Sensors, s)
		}
	}
	return merged, nil
}
