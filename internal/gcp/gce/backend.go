package gce

import (
	"context"
	"gcpctl/internal/gcp"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"gcpctl/internal/retry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/compute/v1"
	"time"
)

const DefaultSettleTime = 180 * time.Second

type BackendMembershipParams struct {
	BackendService string `validate:"required"`
	InstanceGroup  string `validate:"required"`
	BalancingMode  string `validate:"omitempty,oneof=UTILIZATION RATE CONNECTION CUSTOM_METRICS"`
	// Settle is how long to wait after adding a group so it starts receiving traffic.
	Settle time.Duration `validate:"min=0"`
}

// Backend edits the instance groups listed on one backend service.
type Backend struct {
	scope  Scope
	params BackendMembershipParams
}

func NewBackend(scope Scope, params BackendMembershipParams) (*Backend, error) {
	if err := scope.check(true); err != nil {
		return nil, err
	}
	if err := errs.Validate("backend params", params); err != nil {
		return nil, err
	}
	return &Backend{scope: scope, params: params}, nil
}

func (b *Backend) instanceGroupURL(ctx context.Context) (string, error) {
	manager, err := b.scope.Service.InstanceGroupManagers.Get(b.scope.Project, b.scope.Zone, b.params.InstanceGroup).Context(ctx).Do()
	if err != nil {
		return "", gcp.Check(err)
	}
	return manager.InstanceGroup, nil
}

func (b *Backend) service(ctx context.Context) (*compute.BackendService, error) {
	service, err := b.scope.Service.BackendServices.Get(b.scope.Project, b.params.BackendService).Context(ctx).Do()
	return service, errors.Wrapf(gcp.Check(err), "get backend service %s", b.params.BackendService)
}

func (b *Backend) update(ctx context.Context, service *compute.BackendService) (resource.Remote, error) {
	update := retry.Wrap(dependencyPolicy, func(ctx context.Context) (*compute.Operation, error) {
		op, err := b.scope.Service.BackendServices.Update(b.scope.Project, b.params.BackendService, service).Context(ctx).Do()
		return op, gcp.Check(err)
	})
	op, err := update(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "update backend service %s", b.params.BackendService)
	}
	if err := b.scope.wait(ctx, op); err != nil {
		return nil, err
	}
	return remoteOf(b.service(ctx))
}

// EnsureHasInstanceGroup adds the managed instance group to the backend service, or
// validates its backend entry when it is already there.
func (b *Backend) EnsureHasInstanceGroup(ctx context.Context) (*resource.Result, error) {
	result := &resource.Result{Kind: "backend", Name: b.params.BackendService}
	groupURL, err := b.instanceGroupURL(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "get instance group manager %s", b.params.InstanceGroup)
	}
	service, err := b.service(ctx)
	if err != nil {
		return nil, err
	}

	desired := &compute.Backend{Group: groupURL, BalancingMode: b.params.BalancingMode}
	for _, backend := range service.Backends {
		if backend.Group != groupURL {
			continue
		}
		actual, err := resource.RemoteOf(backend)
		if err != nil {
			return nil, err
		}
		result.Remote = actual
		result.Comparisons = resource.Compare(result.Kind, mustConfig(desired), actual)
		for _, c := range result.Comparisons {
			log.Debug().Str("field", c.Field).Bool("valid", c.Valid).Msg(c.String())
		}
		return result, nil
	}

	service.Backends = append(service.Backends, desired)
	log.Debug().Interface("backendService", service).Msg("updating backend service")
	updated, err := b.update(ctx, service)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("backend has: %s", b.params.InstanceGroup)
	result.Remote = updated
	result.Created = true

	if b.params.Settle > 0 {
		log.Info().Msgf("sleeping %s to allow added backend to start receiving traffic", b.params.Settle)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.params.Settle):
		}
	}
	return result, nil
}

// EnsureHasntInstanceGroup removes the managed instance group from the backend service.
// A group that no longer exists is already gone from the backend's point of view.
func (b *Backend) EnsureHasntInstanceGroup(ctx context.Context) (removed bool, err error) {
	groupURL, err := b.instanceGroupURL(ctx)
	if err != nil {
		if resource.IsNotFound(err) {
			log.Info().Msgf("instance group manager %s does not exist", b.params.InstanceGroup)
			return false, nil
		}
		return false, errors.Wrapf(err, "get instance group manager %s", b.params.InstanceGroup)
	}
	service, err := b.service(ctx)
	if err != nil {
		return false, err
	}

	var kept []*compute.Backend
	for _, backend := range service.Backends {
		if backend.Group != groupURL {
			kept = append(kept, backend)
		}
	}
	if len(kept) == len(service.Backends) {
		log.Info().Msgf("backend hasnt: %s", b.params.InstanceGroup)
		return false, nil
	}

	service.Backends = kept
	if service.Backends == nil {
		service.ForceSendFields = append(service.ForceSendFields, "Backends")
	}
	if _, err := b.update(ctx, service); err != nil {
		return false, err
	}
	log.Info().Msgf("removed: %s", b.params.InstanceGroup)
	return true, nil
}
