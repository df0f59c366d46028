package gce

import (
	"context"
	"gcpctl/internal/lib/errs"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/iterator"
	"testing"
)

func instance(id uint64, name string, networkIP, natIP string, labels map[string]string, tags ...string) *compute.Instance {
	nic := &compute.NetworkInterface{NetworkIP: networkIP}
	if natIP != "" {
		nic.AccessConfigs = []*compute.AccessConfig{{NatIP: natIP}}
	}
	return &compute.Instance{
		Id:                id,
		Name:              name,
		Status:            "RUNNING",
		MachineType:       "https://www.googleapis.com/compute/v1/projects/p/zones/us-central1-a/machineTypes/e2-small",
		Zone:              "https://www.googleapis.com/compute/v1/projects/p/zones/us-central1-a",
		Labels:            labels,
		Tags:              &compute.Tags{Items: tags},
		Scheduling:        &compute.Scheduling{},
		NetworkInterfaces: []*compute.NetworkInterface{nic},
	}
}

type pages struct {
	pages   [][]*compute.Instance
	fetches int
	tokens  []string
}

func (p *pages) fetch(ctx context.Context, pageToken string) (*compute.InstanceList, error) {
	p.tokens = append(p.tokens, pageToken)
	i := p.fetches
	p.fetches++
	list := &compute.InstanceList{Items: p.pages[i]}
	if i+1 < len(p.pages) {
		list.NextPageToken = string(rune('a' + i))
	}
	return list, nil
}

func TestClassifySelector(t *testing.T) {
	cases := map[string]SelectorKind{
		"1234567890":   SelectorID,
		"10.0.0.5":     SelectorIP,
		"34.120.0.10":  SelectorIP,
		"env=prod":     SelectorLabel,
		"web:lb":       SelectorTag,
		"url=http://x": SelectorLabel,
		"web-1":        SelectorName,
		"a.b.c.d":      SelectorName,
	}
	for selector, kind := range cases {
		assert.Equal(t, kind, ClassifySelector(selector), selector)
	}
}

func TestNewSelectionFilters(t *testing.T) {
	cases := []struct {
		selectors []string
		state     string
		filter    string
	}{
		{nil, "all", ""},
		{nil, "running", "(status = RUNNING)"},
		{[]string{"1", "2"}, "running", "(status = RUNNING) AND ((id = 1) OR (id = 2))"},
		{[]string{"env=prod", "team=web"}, "", "(labels.env = prod) AND (labels.team = web)"},
		{[]string{"web-1", "web-2"}, "all", "((labels.name = web-1) OR (labels.name = web-2))"},
		{[]string{"web:lb"}, "all", ""},
		{[]string{"10.0.0.5"}, "terminated", "(status = TERMINATED)"},
	}
	for _, c := range cases {
		selection, err := NewSelection(c.selectors, c.state)
		require.NoError(t, err)
		assert.Equal(t, c.filter, selection.Filter, "%v", c.selectors)
	}
}

func TestNewSelectionRejectsBadInput(t *testing.T) {
	_, err := NewSelection(nil, "runing")
	require.Error(t, err)
	assert.True(t, errs.IsAssertion(err))
	assert.Contains(t, err.Error(), "did you mean running")

	_, err = NewSelection([]string{"env=prod", "web:lb"}, "all")
	assert.True(t, errs.IsAssertion(err))

	_, err = NewSelection([]string{"a=b=c"}, "all")
	assert.True(t, errs.IsAssertion(err))
}

func TestIteratorMatchesPrivateIP(t *testing.T) {
	selection, err := NewSelection([]string{"10.0.0.5"}, "all")
	require.NoError(t, err)
	src := &pages{pages: [][]*compute.Instance{{
		instance(1, "a", "10.0.0.4", "34.1.1.1", nil),
		instance(2, "b", "10.0.0.5", "34.1.1.2", nil),
		instance(3, "c", "10.0.0.6", "10.0.0.5", nil),
	}}}

	found, err := newInstanceIterator(src.fetch, selection).All(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint64(2), found[0].Id)
}

func TestIteratorMatchesPublicIP(t *testing.T) {
	selection, err := NewSelection([]string{"34.1.1.2"}, "all")
	require.NoError(t, err)
	src := &pages{pages: [][]*compute.Instance{{
		instance(1, "a", "10.0.0.4", "34.1.1.1", nil),
		instance(2, "b", "10.0.0.5", "34.1.1.2", nil),
		instance(3, "c", "10.0.0.6", "", nil),
	}}}

	found, err := newInstanceIterator(src.fetch, selection).All(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].Name)
}

func TestIteratorMatchesAllTags(t *testing.T) {
	selection, err := NewSelection([]string{"web:lb", "web:http"}, "all")
	require.NoError(t, err)
	src := &pages{pages: [][]*compute.Instance{{
		instance(1, "a", "10.0.0.4", "", nil, "lb"),
		instance(2, "b", "10.0.0.5", "", nil, "lb", "http"),
		instance(3, "c", "10.0.0.6", "", nil),
	}}}

	found, err := newInstanceIterator(src.fetch, selection).All(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].Name)
}

func TestIteratorPagesLazily(t *testing.T) {
	selection, err := NewSelection(nil, "all")
	require.NoError(t, err)
	src := &pages{pages: [][]*compute.Instance{
		{instance(1, "a", "10.0.0.1", "", nil), instance(2, "b", "10.0.0.2", "", nil)},
		{instance(3, "c", "10.0.0.3", "", nil)},
	}}
	it := newInstanceIterator(src.fetch, selection)
	ctx := context.Background()

	first, err := it.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Name)
	assert.Equal(t, 1, src.fetches)

	_, err = it.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.fetches)

	third, err := it.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", third.Name)
	assert.Equal(t, 2, src.fetches)
	assert.Equal(t, []string{"", "a"}, src.tokens)

	_, err = it.Next(ctx)
	assert.Equal(t, iterator.Done, err)
	_, err = it.Next(ctx)
	assert.Equal(t, iterator.Done, err)
	assert.Equal(t, 2, src.fetches)
}

func TestIteratorRejectsDuplicateIDs(t *testing.T) {
	selection, err := NewSelection(nil, "all")
	require.NoError(t, err)
	src := &pages{pages: [][]*compute.Instance{
		{instance(7, "a", "10.0.0.1", "", nil)},
		{instance(7, "a", "10.0.0.1", "", nil)},
	}}

	_, err = newInstanceIterator(src.fetch, selection).All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instance id 7 listed twice")
}

func TestFormat(t *testing.T) {
	color.NoColor = true
	i := instance(42, "web-abcd", "10.0.0.5", "34.1.1.2", map[string]string{"name": "web", "local-user": "me", "env": "prod", "app": "api"}, "lb", "http")
	assert.Equal(t, "web e2-small running 42 ondemand app=api,env=prod tags=lb,http us-central1-a", Format(i))

	bare := instance(43, "worker-1", "10.0.0.6", "", nil)
	bare.Status = "TERMINATED"
	bare.Scheduling.Preemptible = true
	bare.Tags = nil
	assert.Equal(t, "missing-name-label:worker-1 e2-small terminated 43 preemptible - - us-central1-a", Format(bare))

	assert.Equal(t, "name type status id kind labels tags zone", FormatHeader())
}

func TestIPHelpers(t *testing.T) {
	i := instance(1, "a", "10.0.0.5", "34.1.1.2", nil)
	ip, err := IP(i)
	require.NoError(t, err)
	assert.Equal(t, "34.1.1.2", ip)

	private, err := PrivateIP(i)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", private)

	previous := onGCE
	t.Cleanup(func() { onGCE = previous })
	onGCE = func() bool { return true }
	smart, err := SmartIP(i)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", smart)
	onGCE = func() bool { return false }
	smart, err = SmartIP(i)
	require.NoError(t, err)
	assert.Equal(t, "34.1.1.2", smart)

	noNat := instance(2, "b", "10.0.0.6", "", nil)
	_, err = IP(noNat)
	assert.True(t, errs.IsAssertion(err))
}

func TestListInstancesAgainstFake(t *testing.T) {
	fake := newFakeCompute(t)
	scope := fake.scope()
	scope.Zone = ""
	_, err := ListInstances(scope, nil, "all")
	assert.True(t, errs.IsAssertion(err))
}
