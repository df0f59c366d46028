package gce

import (
	"context"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"google.golang.org/api/compute/v1"
)

type InstanceTemplateParams struct {
	Name       string                      `validate:"required"`
	Properties *compute.InstanceProperties `validate:"required"`
}

// InstanceTemplate changes with every deploy, so an existing template is reported but
// not validated.
type InstanceTemplate struct {
	scope Scope
	body  *compute.InstanceTemplate
}

func NewInstanceTemplate(scope Scope, params InstanceTemplateParams) (*InstanceTemplate, error) {
	if err := scope.check(false); err != nil {
		return nil, err
	}
	if err := errs.Validate("instance template params", params); err != nil {
		return nil, err
	}
	return &InstanceTemplate{scope: scope, body: &compute.InstanceTemplate{Name: params.Name, Properties: params.Properties}}, nil
}

func (t *InstanceTemplate) Kind() string { return "instance template" }

func (t *InstanceTemplate) Name() string { return t.body.Name }

func (t *InstanceTemplate) Desired() resource.Config { return mustConfig(t.body) }

func (t *InstanceTemplate) NormalizeDesired(resource.Config) resource.Config {
	return resource.Config{}
}

func (t *InstanceTemplate) NormalizeActual(r resource.Remote) resource.Remote {
	properties, _ := r["properties"].(map[string]any)
	return resource.Remote(properties)
}

func (t *InstanceTemplate) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(t.scope.Service.InstanceTemplates.Get(t.scope.Project, t.body.Name).Context(ctx).Do())
}

func (t *InstanceTemplate) Create(ctx context.Context) (resource.Remote, error) {
	return t.scope.insert(ctx, nil, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return t.scope.Service.InstanceTemplates.Insert(t.scope.Project, t.body).RequestId(requestID).Context(ctx).Do()
	}, t.Fetch)
}

type InstanceGroupParams struct {
	Name             string `validate:"required"`
	BaseInstanceName string `validate:"required"`
	HealthCheck      string `validate:"required"`
	InstanceTemplate string `validate:"required"`
	TargetSize       int64  `validate:"min=0"`
	TargetSizeMax    int64  `validate:"gtefield=TargetSize"`
	PortName         string `validate:"required"`
	Port             int64  `validate:"required,min=1,max=65535"`
}

// InstanceGroup is a zonal managed instance group.
type InstanceGroup struct {
	scope Scope
	body  *compute.InstanceGroupManager
}

func NewInstanceGroup(scope Scope, params InstanceGroupParams) (*InstanceGroup, error) {
	if err := scope.check(true); err != nil {
		return nil, err
	}
	if err := errs.Validate("instance group params", params); err != nil {
		return nil, err
	}
	return &InstanceGroup{scope: scope, body: &compute.InstanceGroupManager{
		Name: params.Name,
		AutoHealingPolicies: []*compute.InstanceGroupManagerAutoHealingPolicy{{
			HealthCheck:     params.HealthCheck,
			InitialDelaySec: 60,
		}},
		TargetSize:       params.TargetSize,
		BaseInstanceName: params.BaseInstanceName,
		UpdatePolicy: &compute.InstanceGroupManagerUpdatePolicy{
			Type:           "PROACTIVE",
			MaxSurge:       &compute.FixedOrPercent{Fixed: params.TargetSizeMax},
			MinimalAction:  "REPLACE",
			MaxUnavailable: &compute.FixedOrPercent{Percent: 50},
		},
		InstanceTemplate: params.InstanceTemplate,
		NamedPorts:       []*compute.NamedPort{{Name: params.PortName, Port: params.Port}},
	}}, nil
}

func (g *InstanceGroup) Kind() string { return "managed instance group" }

func (g *InstanceGroup) Name() string { return g.body.Name }

func (g *InstanceGroup) Desired() resource.Config { return mustConfig(g.body) }

func (g *InstanceGroup) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(g.scope.Service.InstanceGroupManagers.Get(g.scope.Project, g.scope.Zone, g.body.Name).Context(ctx).Do())
}

func (g *InstanceGroup) Create(ctx context.Context) (resource.Remote, error) {
	return g.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return g.scope.Service.InstanceGroupManagers.Insert(g.scope.Project, g.scope.Zone, g.body).RequestId(requestID).Context(ctx).Do()
	}, g.Fetch)
}

type AutoscalerParams struct {
	Name          string  `validate:"required"`
	InstanceGroup string  `validate:"required"`
	TargetSize    int64   `validate:"min=0"`
	TargetSizeMax int64   `validate:"gtefield=TargetSize"`
	CoolDownSec   int64   `validate:"min=0"`
	Utilization   float64 `validate:"gt=0,lte=1"`
}

type Autoscaler struct {
	scope Scope
	body  *compute.Autoscaler
}

func NewAutoscaler(scope Scope, params AutoscalerParams) (*Autoscaler, error) {
	if err := scope.check(true); err != nil {
		return nil, err
	}
	if err := errs.Validate("autoscaler params", params); err != nil {
		return nil, err
	}
	return &Autoscaler{scope: scope, body: &compute.Autoscaler{
		Name:   params.Name,
		Target: params.InstanceGroup,
		AutoscalingPolicy: &compute.AutoscalingPolicy{
			MaxNumReplicas:    params.TargetSizeMax,
			MinNumReplicas:    params.TargetSize,
			CoolDownPeriodSec: params.CoolDownSec,
			CpuUtilization:    &compute.AutoscalingPolicyCpuUtilization{UtilizationTarget: params.Utilization},
		},
	}}, nil
}

func (a *Autoscaler) Kind() string { return "autoscaler" }

func (a *Autoscaler) Name() string { return a.body.Name }

func (a *Autoscaler) Desired() resource.Config { return mustConfig(a.body) }

func (a *Autoscaler) Fetch(ctx context.Context) (resource.Remote, error) {
	return remoteOf(a.scope.Service.Autoscalers.Get(a.scope.Project, a.scope.Zone, a.body.Name).Context(ctx).Do())
}

func (a *Autoscaler) Create(ctx context.Context) (resource.Remote, error) {
	return a.scope.insert(ctx, &dependencyPolicy, func(ctx context.Context, requestID string) (*compute.Operation, error) {
		return a.scope.Service.Autoscalers.Insert(a.scope.Project, a.scope.Zone, a.body).RequestId(requestID).Context(ctx).Do()
	}, a.Fetch)
}
