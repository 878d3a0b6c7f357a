package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/defstack/defstack/defs"
)

// WriteSummary renders a human-readable build summary. Colors are disabled
// automatically when w is not a terminal.
func WriteSummary(w io.Writer, d *defs.Definitions) {
	color.New(color.FgGreen, color.Bold).Fprintln(w, "Build succeeded.")
	fmt.Fprintln(w)

	kind := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(w, "  %-10s %d\n", kind("assets"), len(d.Assets))
	fmt.Fprintf(w, "  %-10s %d\n", kind("jobs"), len(d.Jobs))
	fmt.Fprintf(w, "  %-10s %d\n", kind("resources"), len(d.Resources))
	fmt.Fprintf(w, "  %-10s %d\n", kind("schedules"), len(d.Schedules))
	fmt.Fprintf(w, "  %-10s %d\n", kind("sensors"), len(d.Sensors))

	if len(d.Jobs) > 0 {
		fmt.Fprintln(w)
		for _, j := range d.Jobs {
			fmt.Fprintf(w, "  %s %s (%d assets)\n", kind("job"), j.Name, len(j.Assets))
		}
	}
}

type jsonJob struct {
	Name   string   `json:"name"`
	Assets []string `json:"assets"`
}

type jsonSchedule struct {
	Name string `json:"name"`
	Cron string `json:"cron"`
	Job  string `json:"job"`
}

type jsonSensor struct {
	Name     string `json:"name"`
	Job      string `json:"job"`
	Interval string `json:"interval"`
}

type jsonSummary struct {
	Status    string         `json:"status"`
	Assets    []string       `json:"assets"`
	Jobs      []jsonJob      `json:"jobs"`
	Resources []string       `json:"resources"`
	Schedules []jsonSchedule `json:"schedules"`
	Sensors   []jsonSensor   `json:"sensors"`
}

// WriteJSON renders the machine-readable build summary.
func WriteJSON(w io.Writer, d *defs.Definitions) error {
	out := jsonSummary{
		Status:    "success",
		Assets:    d.AssetKeys(),
		Jobs:      make([]jsonJob, 0, len(d.Jobs)),
		Resources: make([]string, 0, len(d.Resources)),
		Schedules: make([]jsonSchedule, 0, len(d.Schedules)),
		Sensors:   make([]jsonSensor, 0, len(d.Sensors)),
	}
	for _, j := range d.Jobs {
		out.Jobs = append(out.Jobs, jsonJob{Name: j.Name, Assets: j.Assets})
	}
	for name := range d.Resources {
		out.Resources = append(out.Resources, name)
	}
	sort.Strings(out.Resources)
	for _, s := range d.Schedules {
		out.Schedules = append(out.Schedules, jsonSchedule{Name: s.Name, Cron: s.Cron, Job: s.Job})
	}
	for _, s := range d.Sensors {
		out.Sensors = append(out.Sensors, jsonSensor{Name: s.Name, Job: s.Job, Interval: s.Interval.String()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
