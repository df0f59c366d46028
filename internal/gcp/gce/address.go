package gce

import (
	"context"
	"gcpctl/internal/gcp"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"gcpctl/internal/retry"
	"google.golang.org/api/compute/v1"
	"time"
)

type AddressParams struct {
	Name string `validate:"required"`
}

// GlobalAddress is a reserved external IPv4 address.
type GlobalAddress struct {
	scope Scope
	body  *compute.Address
}

// addressPolicy polls until the provider has allocated the address.
var addressPolicy = retry.Policy{
	BaseDelay:   time.Second,
	Exponent:    1.5,
	MaxAttempts: 20,
	MaxDelay:    30 * time.Second,
	Retryable:   retry.NotReadyOrNotFound,
}

func NewGlobalAddress(scope Scope, params AddressParams) (*GlobalAddress, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("ip address params", params); err != nil {
		return nil, err
	}
	return &GlobalAddress{scope: scope, body: &compute.Address{Name: params.Name, IpVersion: "IPV4"}}, nil
}

func (a *GlobalAddress) Kind() string {
	return "ip address"
}

func (a *GlobalAddress) Name() string {
	return a.body.Name
}

func (a *GlobalAddress) Desired() resource.Config {
	return mustConfig(a.body)
}

func (a *GlobalAddress) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(a.scope.Service.GlobalAddresses.Get(a.scope.Project, a.body.Name).Context(ctx).Do())
}

func (a *GlobalAddress) Create(ctx context.Context) (resource.Remote, error) {
	_, err := a.scope.Service.GlobalAddresses.Insert(a.scope.Project, a.body).Context(ctx).Do()
	if err != nil {
		return nil, gcp.Check(err)
	}
	return retry.FetchUntil(ctx, addressPolicy, a.Fetch, func(r resource.Remote) bool {
		return r.String("address") != ""
	})
}
