package gce

import (
	"context"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"google.golang.org/api/compute/v1"
	"strings"
)

type ForwardingRuleParams struct {
	Name      string `validate:"required"`
	Target    string `validate:"required"`
	IPAddress string `validate:"required"`
	PortRange string `validate:"required"`
}

type ForwardingRule struct {
	scope Scope
	body  *compute.ForwardingRule
}

func NewForwardingRule(scope Scope, params ForwardingRuleParams) (*ForwardingRule, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("forwarding rule params", params); err != nil {
		return nil, err
	}
	return &ForwardingRule{scope: scope, body: &compute.ForwardingRule{
		Name:                params.Name,
		LoadBalancingScheme: "EXTERNAL",
		PortRange:           params.PortRange,
		Target:              params.Target,
		IPProtocol:          "TCP",
		IPAddress:           params.IPAddress,
	}}, nil
}

func (f *ForwardingRule) Kind() string { return "forwarding rule" }

func (f *ForwardingRule) Name() string { return f.body.Name }

func (f *ForwardingRule) Desired() resource.Config { return mustConfig(f.body) }

func (f *ForwardingRule) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(f.scope.Service.GlobalForwardingRules.Get(f.scope.Project, f.body.Name).Context(ctx).Do())
}

func (f *ForwardingRule) Create(ctx context.Context) (resource.Remote, error) {
	return f.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return f.scope.Service.GlobalForwardingRules.Insert(f.scope.Project, f.body).RequestId(requestID).Context(ctx).Do()
	}, f.Fetch)
}

type HttpsProxyParams struct {
	Name           string   `validate:"required"`
	SslCertificate []string `validate:"required,min=1"`
	UrlMap         string   `validate:"required"`
}

type HttpsProxy struct {
	scope Scope
	body  *compute.TargetHttpsProxy
}

func NewHttpsProxy(scope Scope, params HttpsProxyParams) (*HttpsProxy, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("https proxy params", params); err != nil {
		return nil, err
	}
	certificates := make([]string, len(params.SslCertificate))
	for i, url := range params.SslCertificate {
		certificates[i] = strings.Replace(url, "/beta/", "/v1/", 1)
	}
	return &HttpsProxy{scope: scope, body: &compute.TargetHttpsProxy{
		Name:            params.Name,
		SslCertificates: certificates,
		UrlMap:          params.UrlMap,
	}}, nil
}

func (p *HttpsProxy) Kind() string { return "https proxy" }

func (p *HttpsProxy) Name() string { return p.body.Name }

func (p *HttpsProxy) Desired() resource.Config { return mustConfig(p.body) }

func (p *HttpsProxy) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(p.scope.Service.TargetHttpsProxies.Get(p.scope.Project, p.body.Name).Context(ctx).Do())
}

func (p *HttpsProxy) Create(ctx context.Context) (resource.Remote, error) {
	return p.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return p.scope.Service.TargetHttpsProxies.Insert(p.scope.Project, p.body).RequestId(requestID).Context(ctx).Do()
	}, p.Fetch)
}

type HttpProxyParams struct {
	Name   string `validate:"required"`
	UrlMap string `validate:"required"`
}

type HttpProxy struct {
	scope Scope
	body  *compute.TargetHttpProxy
}

func NewHttpProxy(scope Scope, params HttpProxyParams) (*HttpProxy, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("http proxy params", params); err != nil {
		return nil, err
	}
	return &HttpProxy{scope: scope, body: &compute.TargetHttpProxy{Name: params.Name, UrlMap: params.UrlMap}}, nil
}

func (p *HttpProxy) Kind() string { return "http proxy" }

func (p *HttpProxy) Name() string { return p.body.Name }

func (p *HttpProxy) Desired() resource.Config { return mustConfig(p.body) }

func (p *HttpProxy) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(p.scope.Service.TargetHttpProxies.Get(p.scope.Project, p.body.Name).Context(ctx).Do())
}

func (p *HttpProxy) Create(ctx context.Context) (resource.Remote, error) {
	return p.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return p.scope.Service.TargetHttpProxies.Insert(p.scope.Project, p.body).RequestId(requestID).Context(ctx).Do()
	}, p.Fetch)
}

type UrlMapParams struct {
	Name           string `validate:"required"`
	DefaultService string `validate:"required"`
}

type UrlMap struct {
	scope Scope
	body  *compute.UrlMap
}

func NewUrlMap(scope Scope, params UrlMapParams) (*UrlMap, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("url map params", params); err != nil {
		return nil, err
	}
	return &UrlMap{scope: scope, body: &compute.UrlMap{Name: params.Name, DefaultService: params.DefaultService}}, nil
}

func (u *UrlMap) Kind() string { return "url map" }

func (u *UrlMap) Name() string { return u.body.Name }

func (u *UrlMap) Desired() resource.Config { return mustConfig(u.body) }

func (u *UrlMap) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(u.scope.Service.UrlMaps.Get(u.scope.Project, u.body.Name).Context(ctx).Do())
}

func (u *UrlMap) Create(ctx context.Context) (resource.Remote, error) {
	return u.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return u.scope.Service.UrlMaps.Insert(u.scope.Project, u.body).RequestId(requestID).Context(ctx).Do()
	}, u.Fetch)
}

type HealthCheckParams struct {
	Name        string `validate:"required"`
	Path        string `validate:"required,startswith=/"`
	Port        int64  `validate:"required,min=1,max=65535"`
	IntervalSec int64  `validate:"required,min=1"`
}

type HealthCheck struct {
	scope Scope
	body  *compute.HealthCheck
}

func NewHealthCheck(scope Scope, params HealthCheckParams) (*HealthCheck, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("health check params", params); err != nil {
		return nil, err
	}
	return &HealthCheck{scope: scope, body: &compute.HealthCheck{
		Name:               params.Name,
		Type:               "HTTP",
		TimeoutSec:         params.IntervalSec,
		CheckIntervalSec:   params.IntervalSec,
		UnhealthyThreshold: 2,
		HttpHealthCheck: &compute.HTTPHealthCheck{
			RequestPath: params.Path,
			Port:        params.Port,
		},
	}}, nil
}

func (h *HealthCheck) Kind() string { return "health check" }

func (h *HealthCheck) Name() string { return h.body.Name }

func (h *HealthCheck) Desired() resource.Config { return mustConfig(h.body) }

func (h *HealthCheck) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(h.scope.Service.HealthChecks.Get(h.scope.Project, h.body.Name).Context(ctx).Do())
}

func (h *HealthCheck) Create(ctx context.Context) (resource.Remote, error) {
	return h.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return h.scope.Service.HealthChecks.Insert(h.scope.Project, h.body).RequestId(requestID).Context(ctx).Do()
	}, h.Fetch)
}

type BackendServiceParams struct {
	Name               string `validate:"required"`
	HealthCheck        string `validate:"required"`
	PortName           string `validate:"required"`
	TimeoutSec         int64  `validate:"min=0"`
	DrainingTimeoutSec int64  `validate:"min=0"`
}

type BackendService struct {
	scope Scope
	body  *compute.BackendService
}

func NewBackendService(scope Scope, params BackendServiceParams) (*BackendService, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("backend service params", params); err != nil {
		return nil, err
	}
	return &BackendService{scope: scope, body: &compute.BackendService{
		Name:                params.Name,
		ConnectionDraining:  &compute.ConnectionDraining{DrainingTimeoutSec: params.DrainingTimeoutSec},
		Protocol:            "HTTP",
		LoadBalancingScheme: "EXTERNAL",
		HealthChecks:        []string{params.HealthCheck},
		PortName:            params.PortName,
		TimeoutSec:          params.TimeoutSec,
	}}, nil
}

func (b *BackendService) Kind() string { return "backend service" }

func (b *BackendService) Name() string { return b.body.Name }

func (b *BackendService) Desired() resource.Config { return mustConfig(b.body) }

func (b *BackendService) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(b.scope.Service.BackendServices.Get(b.scope.Project, b.body.Name).Context(ctx).Do())
}

func (b *BackendService) Create(ctx context.Context) (resource.Remote, error) {
	return b.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return b.scope.Service.BackendServices.Insert(b.scope.Project, b.body).RequestId(requestID).Context(ctx).Do()
	}, b.Fetch)
}
