package resource

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the desired field map of a resource, keyed by provider field names.
type Config map[string]any

// Remote is a resource as the provider returned it.
type Remote map[string]any

func (c Config) Clone() Config {
	return Config(clone(c))
}

func (r Remote) Clone() Remote {
	return Remote(clone(r))
}

func (r Remote) String(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Remote) Name() string {
	return r.String("name")
}

// URL returns the link later resources use to reference this one. Operations carry
// targetLink, resources carry selfLink.
func (r Remote) URL() string {
	if link := r.String("targetLink"); link != "" {
		return link
	}
	return r.String("selfLink")
}

// Fields converts a typed REST object into its wire field map. Empty optional fields are
// dropped the same way the provider drops them.
func Fields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal fields")
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, errors.Wrap(err, "unmarshal fields")
	}
	return fields, nil
}

func ConfigOf(v any) (Config, error) {
	fields, err := Fields(v)
	return Config(fields), err
}

func RemoteOf(v any) (Remote, error) {
	fields, err := Fields(v)
	return Remote(fields), err
}

// Decode fills a typed REST object from a field map.
func Decode(fields map[string]any, out any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "marshal fields")
	}
	return errors.Wrap(json.Unmarshal(b, out), "decode fields")
}

func clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return clone(t)
	case Config:
		return Config(clone(t))
	case Remote:
		return Remote(clone(t))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
