package resource

import (
	"context"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Resource interface {
	Kind() string
	Name() string
	Desired() Config
	Fetch(ctx context.Context) (Remote, error)
	Create(ctx context.Context) (Remote, error)
}

// Normalizer is implemented by kinds whose desired and actual shapes differ before
// comparison.
type Normalizer interface {
	NormalizeDesired(Config) Config
	NormalizeActual(Remote) Remote
}

type Result struct {
	Kind        string
	Name        string
	Remote      Remote
	Created     bool
	Comparisons []Comparison
}

func (r *Result) Drifted() bool {
	return len(r.Mismatches()) > 0
}

func (r *Result) Mismatches() (mismatches []Comparison) {
	for _, c := range r.Comparisons {
		if !c.Valid {
			mismatches = append(mismatches, c)
		}
	}
	return
}

func EnsureResource(ctx context.Context, r Resource) (*Result, error) {
	kind, name := r.Kind(), r.Name()
	logger := log.With().Str("kind", kind).Str("name", name).Logger()
	result := &Result{Kind: kind, Name: name}

	remote, err := r.Fetch(ctx)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		logger.Info().Msgf("creating resource %s %s ...", kind, name)
		remote, err = r.Create(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s %s", kind, name)
		}
		logger.Info().Msgf("%s created: %s", kind, name)
		result.Remote = remote
		result.Created = true
		return result, nil
	}

	logger.Info().Msgf("%s exists: %s", kind, name)
	desired := r.Desired().Clone()
	actual := remote.Clone()
	if n, ok := r.(Normalizer); ok {
		desired = n.NormalizeDesired(desired)
		actual = n.NormalizeActual(actual)
	}

	result.Remote = remote
	result.Comparisons = Compare(kind, desired, actual)
	for _, c := range result.Comparisons {
		logger.Debug().Str("field", c.Field).Bool("valid", c.Valid).Msg(c.String())
	}
	return result, nil
}

// AccessorFuncs adapts plain functions to Resource.
type AccessorFuncs struct {
	KindName      string
	ResourceName  string
	DesiredConfig Config
	FetchFunc     func(ctx context.Context) (Remote, error)
	CreateFunc    func(ctx context.Context) (Remote, error)
}

func (a *AccessorFuncs) Kind() string {
	return a.KindName
}

func (a *AccessorFuncs) Name() string {
	return a.ResourceName
}

func (a *AccessorFuncs) Desired() Config {
	return a.DesiredConfig
}

func (a *AccessorFuncs) Fetch(ctx context.Context) (Remote, error) {
	return a.FetchFunc(ctx)
}

func (a *AccessorFuncs) Create(ctx context.Context) (Remote, error) {
	return a.CreateFunc(ctx)
}
