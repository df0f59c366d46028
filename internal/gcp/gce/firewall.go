package gce

import (
	"context"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"google.golang.org/api/compute/v1"
	"strconv"
	"strings"
)

type FirewallParams struct {
	Name         string   `validate:"required"`
	SourceRanges []string `validate:"required,dive,cidr"`
	NetworkTags  []string
	Port         int    `validate:"min=0,max=65535"`
	Protocol     string `validate:"required,oneof=tcp udp icmp esp ah sctp ipip all"`
	Direction    string `validate:"required,oneof=ingress egress INGRESS EGRESS"`
	Priority     int64  `validate:"min=0,max=65535"`
	Description  string
	Deny         bool
}

type Firewall struct {
	scope  Scope
	params FirewallParams
	body   *compute.Firewall
}

func NewFirewall(scope Scope, params FirewallParams) (*Firewall, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("firewall params", params); err != nil {
		return nil, err
	}

	rule := &compute.FirewallAllowed{IPProtocol: params.Protocol}
	if params.Port != 0 {
		rule.Ports = []string{strconv.Itoa(params.Port)}
	}
	body := &compute.Firewall{
		Name:         params.Name,
		Direction:    strings.ToUpper(params.Direction),
		Description:  params.Description,
		Priority:     params.Priority,
		SourceRanges: params.SourceRanges,
		TargetTags:   params.NetworkTags,
	}
	if params.Deny {
		body.Denied = []*compute.FirewallDenied{{IPProtocol: rule.IPProtocol, Ports: rule.Ports}}
	} else {
		body.Allowed = []*compute.FirewallAllowed{rule}
	}
	return &Firewall{scope: scope, params: params, body: body}, nil
}

func (f *Firewall) Kind() string {
	if f.params.Deny {
		return "firewall deny"
	}
	return "firewall allow"
}

func (f *Firewall) Name() string {
	return f.params.Name
}

func (f *Firewall) Desired() resource.Config {
	return mustConfig(f.body)
}

func (f *Firewall) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(f.scope.Service.Firewalls.Get(f.scope.Project, f.params.Name).Context(ctx).Do())
}

func (f *Firewall) Create(ctx context.Context) (resource.Remote, error) {
	return f.scope.insert(ctx, nil, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return f.scope.Service.Firewalls.Insert(f.scope.Project, f.body).RequestId(requestID).Context(ctx).Do()
	}, f.Fetch)
}
