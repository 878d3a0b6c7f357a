package defs

import (
	"sort"
	"time"
)

// Kind names one of the definition collections. Kinds appear in duplicate
// errors and in user-facing summaries.
type Kind string

const (
	KindAsset    Kind = "asset"
	KindJob      Kind = "job"
	KindResource Kind = "resource"
	KindSchedule Kind = "schedule"
	KindSensor   Kind = "sensor"
)

// Asset is a node in the asset graph, identified by Key. Deps name other
// asset keys this asset is derived from; they may resolve to assets
// contributed by any unit in the same build.
type Asset struct {
	Key         string
	Description string
	Group       string
	Deps        []string
	Tags        map[string]string
	Metadata    map[string]string
}

// Job is a named selection of assets to materialize together.
type Job struct {
	Name   string
	Assets []string
	Tags   map[string]string
}

// Schedule triggers a job on a cron expression.
type Schedule struct {
	Name string
	Cron string
	Job  string
}

// Sensor polls on an interval and targets a job.
type Sensor struct {
	Name     string
	Job      string
	Interval time.Duration
}

// Definitions holds one build unit's contribution, or the merged composite
// of many units. Resource values are arbitrary: clients supply them and
// components consume them without the engine interpreting their type.
type Definitions struct {
	Assets    []*Asset
	Jobs      []*Job
	Resources map[string]any
	Schedules []*Schedule
	Sensors   []*Sensor
}

// AssetKeys returns the keys of all assets in sorted order.
func (d *Definitions) AssetKeys() []string {
	keys := make([]string, 0, len(d.Assets))
	for _, a := range d.Assets {
		keys = append(keys, a.Key)
	}
	sort.Strings(keys)
	return keys
}

// AssetByKey returns the asset with the given key, or nil.
func (d *Definitions) AssetByKey(key string) *Asset {
	for _, a := range d.Assets {
		if a.Key == key {
			return a
		}
	}
	return nil
}

// JobByName returns the job with the given name, or nil.
func (d *Definitions) JobByName(name string) *Job {
	for _, j := range d.Jobs {
		if j.Name == name {
			return j
		}
	}
	return nil
}

// IsEmpty reports whether the Definitions contributes nothing.
func (d *Definitions) IsEmpty() bool {
	return len(d.Assets) == 0 && len(d.Jobs) == 0 && len(d.Resources) == 0 &&
		len(d.Schedules) == 0 && len(d.Sensors) == 0
}
