// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// StubResponse is a canned reply served by [FakeSpotify].
type StubResponse struct {
	Status int
	Body   string
	// Hijack closes the connection without a response, simulating a network failure.
	Hijack bool
}

// JSON builds a 200 StubResponse from v.
func JSON(t *testing.T, v any) StubResponse {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal stub: %v", err)
	}
	return StubResponse{Status: http.StatusOK, Body: string(data)}
}

// Playlists builds a /me/playlists body from name/uri pairs.
func Playlists(t *testing.T, pairs ...[2]string) StubResponse {
	t.Helper()
	items := make([]map[string]string, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, map[string]string{"name": p[0], "uri": p[1], "type": "playlist"})
	}
	return JSON(t, map[string]any{"items": items, "limit": 50, "total": len(items)})
}

// Artists builds a /me/following body from name/uri pairs.
func Artists(t *testing.T, pairs ...[2]string) StubResponse {
	t.Helper()
	items := make([]map[string]string, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, map[string]string{"name": p[0], "uri": p[1], "type": "artist"})
	}
	return JSON(t, map[string]any{"artists": map[string]any{"items": items, "limit": 50, "total": len(items)}})
}

// FakeSpotify is an httptest server standing in for the Spotify Web API under /v1.
type FakeSpotify struct {
	Server *httptest.Server

	mu       sync.Mutex
	stubs    map[string]StubResponse
	requests []*http.Request
}

// NewFakeSpotify starts a fake API. It is closed when the test ends.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()
	f := &FakeSpotify{stubs: map[string]StubResponse{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL returns the API root to configure the client with.
func (f *FakeSpotify) BaseURL() string {
	return f.Server.URL + "/v1"
}

// Stub sets the reply for path, e.g. "/v1/me/playlists".
func (f *FakeSpotify) Stub(path string, r StubResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs[path] = r
}

// Requests returns the requests received so far.
func (f *FakeSpotify) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

// RequestsTo returns the requests received for path.
func (f *FakeSpotify) RequestsTo(path string) []*http.Request {
	var out []*http.Request
	for _, r := range f.Requests() {
		if r.URL.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeSpotify) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(r.Context()))
	stub, ok := f.stubs[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":{"status":404,"message":"Service not found"}}`)
		return
	}

	if stub.Hijack {
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
		return
	}

	status := stub.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.Copy(w, strings.NewReader(stub.Body))
}
