package gce

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/option"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testProject = "test-project"
	testZone    = "us-central1-a"
)

// fakeCompute serves the subset of the compute REST API the ensure kinds use. Objects
// are keyed by their path below the project, e.g. "global/firewalls/allow-http".
type fakeCompute struct {
	t       *testing.T
	mu      sync.Mutex
	server  *httptest.Server
	base    string
	objects map[string]map[string]any
	inserts map[string]int
	updates map[string]int
	// missing makes the next n inserts into a collection fail with 404.
	missing map[string]int
	// pending makes the next n reads of an object omit the named field.
	pending map[string]int
}

func newFakeCompute(t *testing.T) *fakeCompute {
	f := &fakeCompute{
		t:       t,
		objects: map[string]map[string]any{},
		inserts: map[string]int{},
		updates: map[string]int{},
		missing: map[string]int{},
		pending: map[string]int{},
	}
	f.server = httptest.NewServer(f)
	t.Cleanup(f.server.Close)
	f.base = f.server.URL + "/compute/v1/"

	previous, previousAddress := dependencyPolicy, addressPolicy
	dependencyPolicy.BaseDelay = time.Millisecond
	addressPolicy.BaseDelay = time.Millisecond
	t.Cleanup(func() { dependencyPolicy, addressPolicy = previous, previousAddress })
	return f
}

func (f *fakeCompute) scope() Scope {
	svc, err := compute.NewService(context.Background(),
		option.WithEndpoint(f.base),
		option.WithoutAuthentication(),
		option.WithHTTPClient(f.server.Client()),
	)
	require.NoError(f.t, err)
	return Scope{Service: svc, Project: testProject, Zone: testZone}
}

func (f *fakeCompute) put(key string, object map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	object["selfLink"] = f.link(key)
	f.objects[key] = object
}

func (f *fakeCompute) get(key string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

func (f *fakeCompute) link(key string) string {
	return f.base + "projects/" + testProject + "/" + key
}

func (f *fakeCompute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/compute/v1/projects/" + testProject + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusBadRequest, "unexpected path "+r.URL.Path)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, prefix)

	switch r.Method {
	case http.MethodGet:
		object, ok := f.objects[key]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("The resource 'projects/%s/%s' was not found", testProject, key))
			return
		}
		if f.pending[key] > 0 {
			f.pending[key]--
			object = withoutField(object, "address")
		}
		writeJSON(w, object)
	case http.MethodPost:
		if f.missing[key] > 0 {
			f.missing[key]--
			writeError(w, http.StatusNotFound, "The resource referenced by this request was not found")
			return
		}
		object := decodeBody(f.t, r.Body)
		name, _ := object["name"].(string)
		objectKey := key + "/" + name
		if _, exists := f.objects[objectKey]; exists {
			writeError(w, http.StatusConflict, "The resource already exists")
			return
		}
		object["selfLink"] = f.link(objectKey)
		if strings.HasSuffix(key, "addresses") {
			object["address"] = "34.120.0.10"
		}
		if strings.HasSuffix(key, "instanceGroupManagers") {
			object["instanceGroup"] = f.link(strings.Replace(objectKey, "instanceGroupManagers", "instanceGroups", 1))
		}
		f.objects[objectKey] = object
		f.inserts[key]++
		writeJSON(w, map[string]any{"name": "operation-insert", "status": "DONE", "targetLink": object["selfLink"]})
	case http.MethodPut:
		if _, ok := f.objects[key]; !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		object := decodeBody(f.t, r.Body)
		object["selfLink"] = f.link(key)
		f.objects[key] = object
		f.updates[key]++
		writeJSON(w, map[string]any{"name": "operation-update", "status": "DONE", "targetLink": object["selfLink"]})
	default:
		writeError(w, http.StatusMethodNotAllowed, r.Method)
	}
}

func withoutField(object map[string]any, field string) map[string]any {
	out := map[string]any{}
	for k, v := range object {
		if k != field {
			out[k] = v
		}
	}
	return out
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	object := map[string]any{}
	require.NoError(t, json.NewDecoder(body).Decode(&object))
	return object
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": code, "message": message}})
}
