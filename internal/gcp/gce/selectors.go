package gce

import (
	"fmt"
	"gcpctl/internal/lib/errs"
	strings2 "gcpctl/internal/lib/strings"
	"google.golang.org/api/compute/v1"
	"net"
	"strings"
)

type SelectorKind string

const (
	SelectorID    SelectorKind = "id"
	SelectorIP    SelectorKind = "ip"
	SelectorLabel SelectorKind = "label"
	SelectorTag   SelectorKind = "tag"
	SelectorName  SelectorKind = "name"
)

var States = []string{"all", "running", "provisioning", "staging", "repairing", "stopping", "terminated"}

// ClassifySelector tells what a selector token refers to from its shape alone.
func ClassifySelector(selector string) SelectorKind {
	switch {
	case strings2.IsDigits(selector):
		return SelectorID
	case strings.Count(selector, ".") == 3 && net.ParseIP(selector) != nil:
		return SelectorIP
	case strings.Contains(selector, "="):
		return SelectorLabel
	case strings.Contains(selector, ":"):
		return SelectorTag
	default:
		return SelectorName
	}
}

// Selection is the parsed form of instance selectors and a state. Filter is sent to the
// provider, the rest is matched locally.
type Selection struct {
	Filter     string
	Tags       []string
	PrivateIPs []string
	PublicIPs  []string
}

func NewSelection(selectors []string, state string) (*Selection, error) {
	if state == "" {
		state = "all"
	}
	if !strings2.AnyOf(state, States...) {
		if suggestion := strings2.Suggest(state, States...); suggestion != "" {
			return nil, errs.Assertf("bad state: %s, did you mean %s?", state, suggestion)
		}
		return nil, errs.Assertf("bad state: %s, expected one of: %s", state, strings.Join(States, ", "))
	}

	selection := &Selection{}
	var filters []string
	if state != "all" {
		filters = append(filters, fmt.Sprintf("(status = %s)", strings.ToUpper(state)))
	}

	if len(selectors) > 0 {
		kind := ClassifySelector(selectors[0])
		for _, s := range selectors[1:] {
			if other := ClassifySelector(s); other != kind {
				return nil, errs.Assertf("selectors must all be of one kind, got %s %q and %s %q", kind, selectors[0], other, s)
			}
		}

		var parts []string
		switch kind {
		case SelectorID:
			for _, s := range selectors {
				parts = append(parts, fmt.Sprintf("(id = %s)", s))
			}
			filters = append(filters, "("+strings.Join(parts, " OR ")+")")
		case SelectorName:
			for _, s := range selectors {
				parts = append(parts, fmt.Sprintf("(labels.name = %s)", s))
			}
			filters = append(filters, "("+strings.Join(parts, " OR ")+")")
		case SelectorLabel:
			for _, s := range selectors {
				k, v, _ := strings.Cut(s, "=")
				if k == "" || v == "" || strings.Contains(v, "=") {
					return nil, errs.Assertf("bad label selector: %s, expected key=value", s)
				}
				parts = append(parts, fmt.Sprintf("(labels.%s = %s)", k, v))
			}
			filters = append(filters, strings.Join(parts, " AND "))
		case SelectorTag:
			for _, s := range selectors {
				_, v, _ := strings.Cut(s, ":")
				if v == "" || strings.Contains(v, ":") {
					return nil, errs.Assertf("bad tag selector: %s, expected key:tag", s)
				}
				selection.Tags = append(selection.Tags, v)
			}
		case SelectorIP:
			for _, s := range selectors {
				if net.ParseIP(s).IsPrivate() {
					selection.PrivateIPs = append(selection.PrivateIPs, s)
				} else {
					selection.PublicIPs = append(selection.PublicIPs, s)
				}
			}
		}
	}

	selection.Filter = strings.Join(filters, " AND ")
	return selection, nil
}

// Match applies the selectors the provider filter cannot express.
func (s *Selection) Match(instance *compute.Instance) bool {
	if len(s.Tags) > 0 {
		var have []string
		if instance.Tags != nil {
			have = instance.Tags.Items
		}
		for _, tag := range s.Tags {
			if !strings2.AnyOf(tag, have...) {
				return false
			}
		}
	}
	if len(s.PrivateIPs) == 0 && len(s.PublicIPs) == 0 {
		return true
	}
	if len(instance.NetworkInterfaces) == 0 {
		return false
	}
	nic := instance.NetworkInterfaces[0]
	if strings2.AnyOf(nic.NetworkIP, s.PrivateIPs...) {
		return true
	}
	return len(nic.AccessConfigs) > 0 && strings2.AnyOf(nic.AccessConfigs[0].NatIP, s.PublicIPs...)
}
