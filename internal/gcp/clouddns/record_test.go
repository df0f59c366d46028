package clouddns

import (
	"context"
	"encoding/json"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/dns/v1"
	"google.golang.org/api/option"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeDNS serves one managed zone of the Cloud DNS REST API.
type fakeDNS struct {
	mu      sync.Mutex
	zone    string
	dnsName string
	records []*dns.ResourceRecordSet
	changes int
	polls   int
	// pendingPolls is how many change reads report "pending" before "done".
	pendingPolls int
}

func (f *fakeDNS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/dns/v1/projects/test-project/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case path == "managedZones" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(&dns.ManagedZonesListResponse{ManagedZones: []*dns.ManagedZone{
			{Name: "other", DnsName: "example.org."},
			{Name: f.zone, DnsName: f.dnsName},
		}})
	case path == "managedZones/"+f.zone+"/rrsets":
		var found []*dns.ResourceRecordSet
		for _, record := range f.records {
			if record.Name == r.URL.Query().Get("name") && record.Type == r.URL.Query().Get("type") {
				found = append(found, record)
			}
		}
		_ = json.NewEncoder(w).Encode(&dns.ResourceRecordSetsListResponse{Rrsets: found})
	case path == "managedZones/"+f.zone+"/changes" && r.Method == http.MethodPost:
		change := &dns.Change{}
		_ = json.NewDecoder(r.Body).Decode(change)
		f.records = append(f.records, change.Additions...)
		f.changes++
		change.Id = "1"
		change.Status = "pending"
		_ = json.NewEncoder(w).Encode(change)
	case path == "managedZones/"+f.zone+"/changes/1":
		f.polls++
		status := "done"
		if f.polls <= f.pendingPolls {
			status = "pending"
		}
		_ = json.NewEncoder(w).Encode(&dns.Change{Id: "1", Status: status})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	}
}

func newService(t *testing.T, fake *fakeDNS) *dns.Service {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	svc, err := dns.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/dns/v1/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	previous := changePolicy
	changePolicy.BaseDelay = time.Millisecond
	t.Cleanup(func() { changePolicy = previous })
	return svc
}

func TestZoneDNSName(t *testing.T) {
	assert.Equal(t, "example.com.", ZoneDNSName("api.example.com"))
	assert.Equal(t, "example.com.", ZoneDNSName("a.b.example.com"))
	assert.Equal(t, "example.com.", ZoneDNSName("example.com"))
}

func TestARecordCreatesThenValidates(t *testing.T) {
	fake := &fakeDNS{zone: "example-com", dnsName: "example.com.", pendingPolls: 2}
	svc := newService(t, fake)
	record, err := NewARecord(svc, "test-project", ARecordParams{Domain: "api.example.com", Address: "34.120.0.10", TTL: 300})
	require.NoError(t, err)

	created, err := resource.EnsureResource(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, created.Created)
	assert.Equal(t, "api.example.com.", created.Remote.Name())
	assert.Equal(t, 3, fake.polls)

	existing, err := resource.EnsureResource(context.Background(), record)
	require.NoError(t, err)
	assert.False(t, existing.Created)
	require.Len(t, existing.Comparisons, 1)
	assert.Equal(t, "rrdatas", existing.Comparisons[0].Field)
	assert.True(t, existing.Comparisons[0].Valid)
	assert.Equal(t, 1, fake.changes)
}

func TestARecordReportsAddressDrift(t *testing.T) {
	fake := &fakeDNS{zone: "example-com", dnsName: "example.com.", records: []*dns.ResourceRecordSet{
		{Name: "api.example.com.", Type: "A", Ttl: 60, Rrdatas: []string{"34.120.0.99"}},
	}}
	record, err := NewARecord(newService(t, fake), "test-project", ARecordParams{Domain: "api.example.com", Address: "34.120.0.10", TTL: 300})
	require.NoError(t, err)

	result, err := resource.EnsureResource(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, result.Drifted())
	assert.Equal(t, 0, fake.changes)
}

func TestARecordWithoutZone(t *testing.T) {
	fake := &fakeDNS{zone: "example-com", dnsName: "example.com."}
	record, err := NewARecord(newService(t, fake), "test-project", ARecordParams{Domain: "api.example.net", Address: "34.120.0.10", TTL: 300})
	require.NoError(t, err)

	_, err = resource.EnsureResource(context.Background(), record)
	require.Error(t, err)
	assert.True(t, errs.IsAssertion(err))
	assert.False(t, resource.IsNotFound(err))
}

func TestNewARecordRejectsTrailingDot(t *testing.T) {
	_, err := NewARecord(nil, "test-project", ARecordParams{Domain: "api.example.com.", Address: "34.120.0.10", TTL: 300})
	assert.True(t, errs.IsAssertion(err))
}
