package clouddns

import (
	"context"
	"gcpctl/internal/gcp"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"gcpctl/internal/retry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/dns/v1"
	"strings"
	"time"
)

type ARecordParams struct {
	Domain  string `validate:"required,fqdn"`
	Address string `validate:"required,ipv4"`
	TTL     int64  `validate:"min=1"`
}

// changePolicy polls a record change until the zone has applied it.
var changePolicy = retry.Policy{
	BaseDelay:   5 * time.Second,
	Exponent:    1,
	MaxAttempts: 120,
	Retryable:   retry.NotReadyOrNotFound,
}

// ARecord is a single address record in the managed zone of its parent domain.
type ARecord struct {
	service *dns.Service
	project string
	params  ARecordParams
	zone    string
}

func NewARecord(service *dns.Service, project string, params ARecordParams) (*ARecord, error) {
	if project == "" {
		return nil, errs.Assertf("project is required, pass --project or set GCPCTL_PROJECT")
	}
	if strings.HasSuffix(params.Domain, ".") {
		return nil, errs.Assertf("domain should not end with a dot: %s", params.Domain)
	}
	if err := errs.Validate("dns a record params", params); err != nil {
		return nil, err
	}
	return &ARecord{service: service, project: project, params: params}, nil
}

func (a *ARecord) Kind() string {
	return "dns a record"
}

func (a *ARecord) Name() string {
	return a.params.Domain + "."
}

// ZoneDNSName is the dns name of the zone holding domain, its last two labels.
func ZoneDNSName(domain string) string {
	labels := strings.Split(strings.TrimSuffix(domain, "."), ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return strings.Join(labels, ".") + "."
}

func (a *ARecord) body() *dns.ResourceRecordSet {
	return &dns.ResourceRecordSet{
		Name:    a.Name(),
		Type:    "A",
		Ttl:     a.params.TTL,
		Rrdatas: []string{a.params.Address},
	}
}

func (a *ARecord) Desired() resource.Config {
	c, err := resource.ConfigOf(a.body())
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeDesired keeps only the addresses, a ttl change is not drift.
func (a *ARecord) NormalizeDesired(c resource.Config) resource.Config {
	return resource.Config{"rrdatas": c["rrdatas"]}
}

func (a *ARecord) NormalizeActual(r resource.Remote) resource.Remote {
	return r
}

var errZoneFound = errors.New("zone found")

func (a *ARecord) managedZone(ctx context.Context) (string, error) {
	if a.zone != "" {
		return a.zone, nil
	}
	dnsName := ZoneDNSName(a.params.Domain)
	err := a.service.ManagedZones.List(a.project).Pages(ctx, func(page *dns.ManagedZonesListResponse) error {
		for _, zone := range page.ManagedZones {
			if zone.DnsName == dnsName {
				a.zone = zone.Name
				return errZoneFound
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errZoneFound) {
		return "", errors.Wrap(err, "list managed zones")
	}
	if a.zone == "" {
		return "", errs.Assertf("no managed zone for %s in project %s", dnsName, a.project)
	}
	return a.zone, nil
}

func (a *ARecord) Fetch(ctx context.Context) (resource.Remote, error) {
	zone, err := a.managedZone(ctx)
	if err != nil {
		return nil, err
	}
	records, err := a.service.ResourceRecordSets.List(a.project, zone).Name(a.Name()).Type("A").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(gcp.Check(err), "list records of %s", zone)
	}
	for _, record := range records.Rrsets {
		if record.Name == a.Name() && record.Type == "A" {
			return resource.RemoteOf(record)
		}
	}
	return nil, errors.Wrapf(resource.ErrNotFound, "a record %s", a.Name())
}

func (a *ARecord) Create(ctx context.Context) (resource.Remote, error) {
	zone, err := a.managedZone(ctx)
	if err != nil {
		return nil, err
	}
	change, err := a.service.Changes.Create(a.project, zone, &dns.Change{Additions: []*dns.ResourceRecordSet{a.body()}}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(gcp.Check(err), "add %s to %s", a.Name(), zone)
	}

	if change.Status != "done" {
		log.Info().Msgf("waiting for dns change %s", change.Id)
		_, err = retry.FetchUntil(ctx, changePolicy, func(ctx context.Context) (resource.Remote, error) {
			current, err := a.service.Changes.Get(a.project, zone, change.Id).Context(ctx).Do()
			if err != nil {
				return nil, gcp.Check(err)
			}
			return resource.RemoteOf(current)
		}, func(r resource.Remote) bool {
			return r.String("status") == "done"
		})
		if err != nil {
			return nil, errors.Wrapf(err, "wait for dns change %s", change.Id)
		}
	}
	return a.Fetch(ctx)
}
