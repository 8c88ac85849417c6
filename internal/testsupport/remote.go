package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Call records one request received by a FakeRemote.
type Call struct {
	Method string
	Path   string
	Query  url.Values
}

// FakeRemote is an httptest server standing in for the reconstruction
// service. Unregistered routes answer 404 with a JSON message.
type FakeRemote struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewFakeRemote starts a server and registers cleanup.
func NewFakeRemote(t testing.TB) *FakeRemote {
	t.Helper()

	f := &FakeRemote{routes: make(map[string]http.HandlerFunc)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the endpoint to configure clients with.
func (f *FakeRemote) URL() string {
	return f.Server.URL + "/cvat"
}

// HandleFunc registers a handler for method and path (relative to the endpoint).
func (f *FakeRemote) HandleFunc(method, path string, fn http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[routeKey(method, path)] = fn
}

// Respond registers a fixed JSON response.
func (f *FakeRemote) Respond(method, path string, status int, body any) {
	f.HandleFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Calls returns the requests received so far.
func (f *FakeRemote) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many requests matched method and path.
func (f *FakeRemote) CallCount(method, path string) int {
	count := 0
	for _, call := range f.Calls() {
		if call.Method == method && call.Path == strings.Trim(path, "/") {
			count++
		}
	}
	return count
}

func (f *FakeRemote) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/cvat"), "/")
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: r.Method, Path: path, Query: r.URL.Query()})
	handler, ok := f.routes[routeKey(r.Method, path)]
	f.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	handler(w, r)
}

// WriteJSON writes body as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + strings.Trim(path, "/")
}
