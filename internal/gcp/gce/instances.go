package gce

import (
	"cloud.google.com/go/compute/metadata"
	"context"
	"gcpctl/internal/gcp"
	"gcpctl/internal/lib/errs"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/iterator"
)

type pageFunc func(ctx context.Context, pageToken string) (*compute.InstanceList, error)

// InstanceIterator walks a zone listing one page at a time. It is not restartable.
type InstanceIterator struct {
	fetch     pageFunc
	selection *Selection
	buffer    []*compute.Instance
	pageToken string
	last      bool
	seen      map[uint64]struct{}
}

func ListInstances(scope Scope, selectors []string, state string) (*InstanceIterator, error) {
	if err := scope.check(true); err != nil {
		return nil, err
	}
	selection, err := NewSelection(selectors, state)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("filter", selection.Filter).Msg("listing instances")
	fetch := func(ctx context.Context, pageToken string) (*compute.InstanceList, error) {
		call := scope.Service.Instances.List(scope.Project, scope.Zone).Context(ctx)
		if selection.Filter != "" {
			call = call.Filter(selection.Filter)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		return call.Do()
	}
	return newInstanceIterator(fetch, selection), nil
}

func newInstanceIterator(fetch pageFunc, selection *Selection) *InstanceIterator {
	return &InstanceIterator{fetch: fetch, selection: selection, seen: map[uint64]struct{}{}}
}

// Next returns the next matching instance, or iterator.Done when the listing is over.
func (it *InstanceIterator) Next(ctx context.Context) (*compute.Instance, error) {
	for {
		for len(it.buffer) > 0 {
			instance := it.buffer[0]
			it.buffer = it.buffer[1:]
			if !it.selection.Match(instance) {
				continue
			}
			if _, ok := it.seen[instance.Id]; ok {
				return nil, errors.Errorf("instance id %d listed twice, compute ids look unique per region and not per zone", instance.Id)
			}
			it.seen[instance.Id] = struct{}{}
			return instance, nil
		}
		if it.last {
			return nil, iterator.Done
		}
		page, err := it.fetch(ctx, it.pageToken)
		if err != nil {
			return nil, errors.Wrap(gcp.Check(err), "list instances")
		}
		it.buffer = page.Items
		it.pageToken = page.NextPageToken
		it.last = page.NextPageToken == ""
	}
}

// All drains the iterator.
func (it *InstanceIterator) All(ctx context.Context) ([]*compute.Instance, error) {
	var instances []*compute.Instance
	for {
		instance, err := it.Next(ctx)
		if err == iterator.Done {
			return instances, nil
		}
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
}

// IP is the public address of an instance with exactly one interface and access config.
func IP(instance *compute.Instance) (string, error) {
	if len(instance.NetworkInterfaces) != 1 {
		return "", errs.Assertf("instance %s has %d network interfaces, expected 1", instance.Name, len(instance.NetworkInterfaces))
	}
	if n := len(instance.NetworkInterfaces[0].AccessConfigs); n != 1 {
		return "", errs.Assertf("instance %s has %d access configs, expected 1", instance.Name, n)
	}
	return instance.NetworkInterfaces[0].AccessConfigs[0].NatIP, nil
}

func PrivateIP(instance *compute.Instance) (string, error) {
	if len(instance.NetworkInterfaces) != 1 {
		return "", errs.Assertf("instance %s has %d network interfaces, expected 1", instance.Name, len(instance.NetworkInterfaces))
	}
	return instance.NetworkInterfaces[0].NetworkIP, nil
}

var onGCE = metadata.OnGCE

// SmartIP is the private address when running inside the data center and the public one
// otherwise.
func SmartIP(instance *compute.Instance) (string, error) {
	if onGCE() {
		log.Debug().Msg("smart ip: using private ip address")
		return PrivateIP(instance)
	}
	log.Debug().Msg("smart ip: using public ip address")
	return IP(instance)
}
