package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotwidget/internal/metrics"
	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/shared"
)

func newTestServer(t *testing.T, opts ServerOpts) *Server {
	t.Helper()
	if opts.Router == nil {
		opts.Router = testRouter("/spotify")
	}
	s, err := NewServer(opts)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s
}

func TestServer(t *testing.T) {
	t.Run("NewServer", func(t *testing.T) {
		t.Run("requires router", func(t *testing.T) {
			if _, err := NewServer(ServerOpts{}); err == nil {
				t.Error("expected error without router")
			}
		})

		t.Run("invalid fallback", func(t *testing.T) {
			_, err := NewServer(ServerOpts{Router: testRouter(""), Config: shared.ServerConfig{FallbackURL: "://bad"}})
			if err == nil {
				t.Error("expected invalid fallback error")
			}
		})
	})

	t.Run("dispatches matched routes", func(t *testing.T) {
		s := newTestServer(t, ServerOpts{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/spotify/healthcheck", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "health" {
			t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
	})

	t.Run("keeps inbound request id", func(t *testing.T) {
		s := newTestServer(t, ServerOpts{})

		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Header().Get(RequestIDHeader) != "abc" {
			t.Errorf("expected inbound id, got %q", rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("passes body to handler", func(t *testing.T) {
		var got string
		router := NewRouter("", Route{Method: http.MethodPost, Endpoint: "/", Root: true, Handle: func(_ context.Context, req *Request) *Response {
			got = string(req.Body)
			return nil
		}})
		s := newTestServer(t, ServerOpts{Router: router})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"install":{}}`)))
		if got != `{"install":{}}` {
			t.Errorf("unexpected body %q", got)
		}
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		s := newTestServer(t, ServerOpts{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, MaxBodyBytes+10))))

		result := decodeResult(t, &Response{Status: rec.Code, Header: rec.Header(), Body: rec.Body.Bytes()})
		if result.Proceed || result.Errors[0].Type != models.ErrorTypeInvalidRequest {
			t.Errorf("expected invalid-request, got %+v", result)
		}
	})

	t.Run("not found without fallback", func(t *testing.T) {
		s := newTestServer(t, ServerOpts{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("forwards misses to fallback URL", func(t *testing.T) {
		var gotPath, gotBody string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			data, _ := io.ReadAll(r.Body)
			gotBody = string(data)
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte("upstream"))
		}))
		defer upstream.Close()

		s := newTestServer(t, ServerOpts{Config: shared.ServerConfig{FallbackURL: upstream.URL}})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/spotify/other", strings.NewReader("payload")))

		if rec.Code != http.StatusTeapot || rec.Body.String() != "upstream" {
			t.Errorf("expected proxied response, got %d %q", rec.Code, rec.Body.String())
		}
		if gotPath != "/spotify/other" || gotBody != "payload" {
			t.Errorf("expected request forwarded unchanged, got %q %q", gotPath, gotBody)
		}
	})

	t.Run("fallback upstream down", func(t *testing.T) {
		upstream := httptest.NewServer(http.NotFoundHandler())
		target := upstream.URL
		upstream.Close()

		s := newTestServer(t, ServerOpts{Config: shared.ServerConfig{FallbackURL: target}})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("custom fallback", func(t *testing.T) {
		fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		})
		s := newTestServer(t, ServerOpts{Fallback: fallback})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if rec.Code != http.StatusGone {
			t.Errorf("expected 410, got %d", rec.Code)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		prom := metrics.NewProm()
		s := newTestServer(t, ServerOpts{Metrics: prom})

		s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body := rec.Body.String()
		if !strings.Contains(body, `spotwidget_http_requests_total{method="GET",route="health",status="200"} 1`) {
			t.Errorf("expected health request counted, got:\n%s", body)
		}
		if !strings.Contains(body, `spotwidget_http_requests_total{method="GET",route="fallback",status="404"} 1`) {
			t.Errorf("expected fallback request counted, got:\n%s", body)
		}
	})

	t.Run("metrics disabled", func(t *testing.T) {
		s := newTestServer(t, ServerOpts{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("recovers panics", func(t *testing.T) {
		router := NewRouter("", Route{Name: "boom", Method: http.MethodGet, Endpoint: "/boom", Handle: func(context.Context, *Request) *Response {
			panic("boom")
		}})
		s := newTestServer(t, ServerOpts{Router: router})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		result := decodeResult(t, &Response{Status: rec.Code, Header: rec.Header(), Body: rec.Body.Bytes()})
		if result.Proceed || result.Errors[0].Type != models.ErrorTypeInternal {
			t.Errorf("expected 500 result, got %+v", result)
		}
	})

	t.Run("Use", func(t *testing.T) {
		s := newTestServer(t, ServerOpts{})
		var order []string
		s.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "custom")
				next.ServeHTTP(w, r)
			})
		})

		s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		if len(order) != 1 {
			t.Errorf("expected custom middleware to run once, got %v", order)
		}
	})

	t.Run("ListenAndServe", func(t *testing.T) {
		t.Run("shuts down on cancel", func(t *testing.T) {
			s := newTestServer(t, ServerOpts{Config: shared.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}})

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- s.ListenAndServe(ctx) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				if err != nil {
					t.Errorf("expected clean shutdown, got %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("server did not shut down")
			}
		})

		t.Run("listen failure", func(t *testing.T) {
			s := newTestServer(t, ServerOpts{Config: shared.ServerConfig{Host: "127.0.0.1", Port: -1}})
			if err := s.ListenAndServe(context.Background()); err == nil {
				t.Error("expected listen error")
			}
		})
	})
}
