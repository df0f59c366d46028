package gce

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func seedBackend(fake *fakeCompute) string {
	groupURL := fake.link("zones/" + testZone + "/instanceGroups/web-v2")
	fake.put("zones/"+testZone+"/instanceGroupManagers/web-v2", map[string]any{
		"name":          "web-v2",
		"instanceGroup": groupURL,
	})
	fake.put("global/backendServices/web", map[string]any{
		"name":     "web",
		"protocol": "HTTP",
		"backends": []any{map[string]any{"group": fake.link("zones/" + testZone + "/instanceGroups/web-v1"), "balancingMode": "UTILIZATION"}},
	})
	return groupURL
}

func TestBackendHasInstanceGroup(t *testing.T) {
	fake := newFakeCompute(t)
	groupURL := seedBackend(fake)
	backend, err := NewBackend(fake.scope(), BackendMembershipParams{
		BackendService: "web",
		InstanceGroup:  "web-v2",
		BalancingMode:  "UTILIZATION",
	})
	require.NoError(t, err)

	added, err := backend.EnsureHasInstanceGroup(context.Background())
	require.NoError(t, err)
	assert.True(t, added.Created)
	backends := fake.get("global/backendServices/web")["backends"].([]any)
	require.Len(t, backends, 2)
	assert.Equal(t, groupURL, backends[1].(map[string]any)["group"])

	validated, err := backend.EnsureHasInstanceGroup(context.Background())
	require.NoError(t, err)
	assert.False(t, validated.Created)
	assert.False(t, validated.Drifted())
	assert.Len(t, validated.Comparisons, 2)
	assert.Equal(t, 1, fake.updates["global/backendServices/web"])
}

func TestBackendHasInstanceGroupReportsBalancingMode(t *testing.T) {
	fake := newFakeCompute(t)
	seedBackend(fake)
	backend, err := NewBackend(fake.scope(), BackendMembershipParams{
		BackendService: "web",
		InstanceGroup:  "web-v2",
		BalancingMode:  "UTILIZATION",
	})
	require.NoError(t, err)
	_, err = backend.EnsureHasInstanceGroup(context.Background())
	require.NoError(t, err)

	backend.params.BalancingMode = "RATE"
	result, err := backend.EnsureHasInstanceGroup(context.Background())
	require.NoError(t, err)
	mismatches := result.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, "balancingMode", mismatches[0].Field)
}

func TestBackendHasntInstanceGroup(t *testing.T) {
	fake := newFakeCompute(t)
	seedBackend(fake)
	scope := fake.scope()

	add, err := NewBackend(scope, BackendMembershipParams{BackendService: "web", InstanceGroup: "web-v2"})
	require.NoError(t, err)
	_, err = add.EnsureHasInstanceGroup(context.Background())
	require.NoError(t, err)

	removed, err := add.EnsureHasntInstanceGroup(context.Background())
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Len(t, fake.get("global/backendServices/web")["backends"], 1)

	removed, err = add.EnsureHasntInstanceGroup(context.Background())
	require.NoError(t, err)
	assert.False(t, removed)

	gone, err := NewBackend(scope, BackendMembershipParams{BackendService: "web", InstanceGroup: "web-v0"})
	require.NoError(t, err)
	removed, err = gone.EnsureHasntInstanceGroup(context.Background())
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, fake.updates["global/backendServices/web"])
}
