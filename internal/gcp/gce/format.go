package gce

import (
	"fmt"
	"github.com/fatih/color"
	"google.golang.org/api/compute/v1"
	"path"
	"sort"
	"strings"
)

var (
	running  = color.New(color.FgGreen)
	starting = color.New(color.FgCyan)
	stopped  = color.New(color.FgRed)
)

var Header = []string{"name", "type", "status", "id", "kind", "labels", "tags", "zone"}

func FormatHeader() string {
	return strings.Join(Header, " ")
}

// Columns is the instance summary in Header order, without color.
func Columns(instance *compute.Instance) []string {
	name, ok := instance.Labels["name"]
	if !ok {
		name = "missing-name-label:" + instance.Name
	}

	kind := "ondemand"
	if instance.Scheduling != nil && instance.Scheduling.Preemptible {
		kind = "preemptible"
	}

	var keys []string
	for k := range instance.Labels {
		if k != "name" && k != "local-user" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var labels []string
	for _, k := range keys {
		labels = append(labels, fmt.Sprintf("%s=%s", k, instance.Labels[k]))
	}

	tags := "-"
	if instance.Tags != nil && len(instance.Tags.Items) > 0 {
		tags = "tags=" + strings.Join(instance.Tags.Items, ",")
	}

	return []string{
		name,
		path.Base(instance.MachineType),
		strings.ToLower(instance.Status),
		fmt.Sprint(instance.Id),
		kind,
		orDash(strings.Join(labels, ",")),
		tags,
		path.Base(instance.Zone),
	}
}

// Format is a one line instance summary with the name colored by status.
func Format(instance *compute.Instance) string {
	columns := Columns(instance)
	switch columns[2] {
	case "running":
		columns[0] = running.Sprint(columns[0])
	case "provisioning", "staging":
		columns[0] = starting.Sprint(columns[0])
	default:
		columns[0] = stopped.Sprint(columns[0])
	}
	return strings.Join(columns, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
