// Package automation provides the core/automation component type: jobs over
// asset selections, plus schedules and sensors that trigger them.
package automation

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/resolve"
	"github.com/defstack/defstack/scope"
	"github.com/defstack/defstack/typekey"
)

// DefaultSensorInterval applies when a sensor block omits its interval.
const DefaultSensorInterval = 30 * time.Second

// Schema is the declaration shape of core/automation.
//
//	component "automation" {
//	  job "nightly" {
//	    assets = ["raw_orders", "orders"]
//	    tags   = { team = "data" }
//	  }
//	  schedule "nightly_at_two" {
//	    cron = "0 2 * * *"
//	    job  = "nightly"
//	  }
//	  sensor "orders_watch" {
//	    job      = "nightly"
//	    interval = "45s"
//	  }
//	}
//
// Schedules and sensors may only target jobs declared in the same component;
// cross-component job references are rejected at build time so the error
// names the declaration that caused it.
type Schema struct {
	Jobs      []JobBlock      `ds:"job,blocks"`
	Schedules []ScheduleBlock `ds:"schedule,blocks"`
	Sensors   []SensorBlock   `ds:"sensor,blocks"`
}

// JobBlock declares one job.
type JobBlock struct {
	Name   string            `ds:"name,label"`
	Assets []string          `ds:"assets"`
	Tags   map[string]string `ds:"tags,optional"`
}

// ScheduleBlock declares one cron schedule.
type ScheduleBlock struct {
	Name string `ds:"name,label"`
	Cron string `ds:"cron"`
	Job  string `ds:"job"`
}

// SensorBlock declares one polling sensor.
type SensorBlock struct {
	Name     string        `ds:"name,label"`
	Job      string        `ds:"job"`
	Interval time.Duration `ds:"interval,optional"`
}

// fields resolves sensor intervals from duration strings such as "45s" or
// "5m", falling back to DefaultSensorInterval when omitted.
var fields = resolve.FieldSet{
	"sensor.interval": {Resolver: resolveInterval},
}

func resolveInterval(rctx *scope.Context, field resolve.Field) (any, error) {
	if field.Expr == nil {
		return DefaultSensorInterval, nil
	}
	val, err := resolve.Expr(rctx, field.Path, field.Expr)
	if err != nil {
		return nil, err
	}
	if val.Type() != cty.String {
		return nil, &resolve.TypeError{Field: field.Path, Expected: "duration string", Actual: val.Type().FriendlyName()}
	}
	interval, err := time.ParseDuration(val.AsString())
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", field.Path, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("parsing %q: interval must be positive, got %s", field.Path, interval)
	}
	return interval, nil
}

// Component is the resolved core/automation instance.
type Component struct {
	schema *Schema
}

// BuildDefs materializes the declared jobs, schedules, and sensors.
func (c *Component) BuildDefs(lctx *component.LoadContext) (*defs.Definitions, error) {
	d := &defs.Definitions{}
	for _, j := range c.schema.Jobs {
		d.Jobs = append(d.Jobs, &defs.Job{Name: j.Name, Assets: j.Assets, Tags: j.Tags})
	}
	for _, s := range c.schema.Schedules {
		d.Schedules = append(d.Schedules, &defs.Schedule{Name: s.Name, Cron: s.Cron, Job: s.Job})
	}
	for _, s := range c.schema.Sensors {
		d.Sensors = append(d.Sensors, &defs.Sensor{Name: s.Name, Job: s.Job, Interval: s.Interval})
	}
	return d, nil
}

func build(rctx *scope.Context, schema any) (component.Component, error) {
	s := schema.(*Schema)
	if len(s.Jobs) == 0 {
		return nil, fmt.Errorf("an automation component declares at least one job")
	}
	local := make(map[string]bool, len(s.Jobs))
	for _, j := range s.Jobs {
		local[j.Name] = true
	}
	for _, sched := range s.Schedules {
		if !local[sched.Job] {
			return nil, fmt.Errorf("schedule %q targets job %q, which is not declared in this component", sched.Name, sched.Job)
		}
	}
	for _, sensor := range s.Sensors {
		if !local[sensor.Job] {
			return nil, fmt.Errorf("sensor %q targets job %q, which is not declared in this component", sensor.Name, sensor.Job)
		}
	}
	return &Component{schema: s}, nil
}

// Plugin registers the component type.
type Plugin struct{}

func (p *Plugin) Register(r *registry.Registry) error {
	return r.RegisterType(&registry.Type{
		Key:       typekey.MustParse("core/automation"),
		NewSchema: func() any { return &Schema{} },
		Fields:    fields,
		Build:     build,
	})
}
