package gce

import (
	"context"
	"fmt"
	"gcpctl/internal/gcp"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"gcpctl/internal/retry"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/compute/v1"
	"path"
	"strings"
)

// Scope is the project and zone compute calls run against.
type Scope struct {
	Service *compute.Service
	Project string
	Zone    string
}

var dependencyPolicy = retry.DependencyPolicy

func (s Scope) check(zonal bool) error {
	if s.Service == nil {
		return errs.Assertf("compute client is not configured")
	}
	if s.Project == "" {
		return errs.Assertf("project is required, pass --project or set GCPCTL_PROJECT")
	}
	if zonal && s.Zone == "" {
		return errs.Assertf("zone is required, pass --zone or set GCPCTL_ZONE")
	}
	return nil
}

type insertCall func(ctx context.Context, requestID string) (*compute.Operation, error)

// insert runs a create call, waits for its operation and returns the live resource. An
// insert that loses a race against another creator returns the existing resource. The
// request ID stays the same across retries so a retried insert is never applied twice.
func (s Scope) insert(ctx context.Context, policy *retry.Policy, call insertCall, fetch func(context.Context) (resource.Remote, error)) (resource.Remote, error) {
	requestID := uuid.NewString()
	do := func(ctx context.Context) (*compute.Operation, error) {
		op, err := call(ctx, requestID)
		return op, gcp.Check(err)
	}
	if policy != nil {
		do = retry.Wrap(*policy, do)
	}

	op, err := do(ctx)
	if gcp.IsAlreadyExists(err) {
		log.Info().Msg("resource appeared while creating it, reading it back")
		return fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx, op); err != nil {
		return nil, err
	}
	return fetch(ctx)
}

// wait blocks until the operation is DONE and turns operation errors into a Go error.
func (s Scope) wait(ctx context.Context, op *compute.Operation) error {
	name := op.Name
	for op.Status != "DONE" {
		log.Debug().Msgf("waiting for operation %s (%s)", name, op.Status)
		var err error
		switch {
		case op.Zone != "":
			op, err = s.Service.ZoneOperations.Wait(s.Project, path.Base(op.Zone), name).Context(ctx).Do()
		case op.Region != "":
			op, err = s.Service.RegionOperations.Wait(s.Project, path.Base(op.Region), name).Context(ctx).Do()
		default:
			op, err = s.Service.GlobalOperations.Wait(s.Project, name).Context(ctx).Do()
		}
		if err != nil {
			return errors.Wrapf(gcp.Check(err), "wait for operation %s", name)
		}
	}
	return operationError(op)
}

func operationError(op *compute.Operation) error {
	if op.Error == nil || len(op.Error.Errors) == 0 {
		return nil
	}
	var messages []string
	notFound := false
	for _, e := range op.Error.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Code, e.Message))
		if e.Code == "RESOURCE_NOT_FOUND" {
			notFound = true
		}
	}
	err := errors.Errorf("operation %s on %s failed: %s", op.Name, op.TargetLink, strings.Join(messages, "; "))
	if notFound {
		return fmt.Errorf("%w: %w", resource.ErrNotFound, err)
	}
	return err
}

func remoteOf(v any, err error) (resource.Remote, error) {
	if err != nil {
		return nil, gcp.Check(err)
	}
	return resource.RemoteOf(v)
}

func mustConfig(v any) resource.Config {
	c, err := resource.ConfigOf(v)
	if err != nil {
		panic(err)
	}
	return c
}
