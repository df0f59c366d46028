package resource

import (
	"fmt"
	"github.com/google/go-cmp/cmp"
	"sort"
)

type Comparison struct {
	Kind     string
	Field    string
	Expected any
	Actual   any
	Valid    bool
	Diff     string
}

func (c Comparison) String() string {
	if c.Valid {
		return fmt.Sprintf("%s is valid for: %s=%v", c.Kind, c.Field, c.Expected)
	}
	return fmt.Sprintf("%s is invalid for: %s, expected %v, got %v", c.Kind, c.Field, c.Expected, c.Actual)
}

// Compare checks every desired field against the same field of the actual resource.
// Nested maps in the actual resource are trimmed to the keys the desired side names, so
// defaults the provider fills in on its own are not reported.
func Compare(kind string, desired Config, actual Remote) []Comparison {
	fields := make([]string, 0, len(desired))
	for field := range desired {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	comparisons := make([]Comparison, 0, len(fields))
	for _, field := range fields {
		expected := desired[field]
		got, ok := actual[field]
		trimmed := trim(expected, got)
		c := Comparison{
			Kind:     kind,
			Field:    field,
			Expected: expected,
			Actual:   got,
			Valid:    ok && cmp.Equal(expected, trimmed),
		}
		if !c.Valid {
			c.Diff = cmp.Diff(expected, trimmed)
		}
		comparisons = append(comparisons, c)
	}
	return comparisons
}

func trim(expected, actual any) any {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return actual
		}
		out := make(map[string]any, len(e))
		for k, v := range e {
			if av, ok := a[k]; ok {
				out[k] = trim(v, av)
			}
		}
		return out
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return actual
		}
		out := make([]any, len(a))
		for i := range a {
			out[i] = trim(e[i], a[i])
		}
		return out
	}
	return actual
}
