package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/spotwidget/internal/models"
	json "github.com/goccy/go-json"
)

func TestEvent(t *testing.T) {
	t.Run("Payload", func(t *testing.T) {
		tc := []struct {
			name string
			body string
			want string
		}{
			{name: "absent", body: "", want: ""},
			{name: "null", body: "null", want: ""},
			{name: "string", body: `"{\"a\":1}"`, want: `{"a":1}`},
			{name: "object", body: `{"a":1}`, want: `{"a":1}`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := Event{Body: json.RawMessage(tt.body)}.Payload()
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if string(got) != tt.want {
					t.Errorf("Payload() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("ReadEvent", func(t *testing.T) {
		ev, err := ReadEvent(strings.NewReader(`{"method": "GET", "url": "https://w.example.com/healthcheck", "headers": {"authorization": "Bearer x"}}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Method != http.MethodGet || ev.Headers["authorization"] != "Bearer x" {
			t.Errorf("unexpected event %+v", ev)
		}

		if _, err := ReadEvent(strings.NewReader(`nope`)); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Encode", func(t *testing.T) {
		enc := JSONResponse(models.Success(nil)).Encode()
		if enc.Status != http.StatusOK || enc.Headers["Content-Type"] != "application/json" {
			t.Errorf("unexpected envelope %+v", enc)
		}
		if string(enc.Body) != `{"proceed":true}` {
			t.Errorf("expected embedded JSON body, got %s", enc.Body)
		}

		plain := (&Response{Status: http.StatusBadGateway, Body: []byte("bad gateway")}).Encode()
		if string(plain.Body) != `"bad gateway"` {
			t.Errorf("expected quoted body, got %s", plain.Body)
		}

		empty := (&Response{Status: http.StatusOK}).Encode()
		data, _ := json.Marshal(empty)
		if string(data) != `{"status":200}` {
			t.Errorf("unexpected empty envelope %s", data)
		}
	})
}

func TestEdge(t *testing.T) {
	ctx := context.Background()
	edge := NewEdge(testRouter("/spotify"), nil)

	t.Run("dispatches", func(t *testing.T) {
		resp := edge.Handle(ctx, Event{Method: http.MethodGet, URL: "https://w.example.com/spotify/healthcheck"})
		if string(resp.Body) != "health" {
			t.Errorf("expected health route, got %s", resp.Body)
		}
	})

	t.Run("passes headers and body", func(t *testing.T) {
		var got *Request
		router := NewRouter("", Route{Method: http.MethodPost, Endpoint: "/", Root: true, Handle: func(_ context.Context, req *Request) *Response {
			got = req
			return nil
		}})
		NewEdge(router, nil).Handle(ctx, Event{
			Method:  http.MethodPost,
			URL:     "https://w.example.com/",
			Headers: map[string]string{"authorization": "Bearer x"},
			Body:    json.RawMessage(`{"install": {}}`),
		})
		if got == nil {
			t.Fatal("expected handler to run")
		}
		if got.Header.Get("Authorization") != "Bearer x" {
			t.Errorf("expected canonical header, got %v", got.Header)
		}
		if string(got.Body) != `{"install": {}}` || got.Path != "/" {
			t.Errorf("unexpected request %+v", got)
		}
	})

	t.Run("route not found", func(t *testing.T) {
		url := "https://w.example.com/spotify/unknown"
		resp := edge.Handle(ctx, Event{Method: http.MethodGet, URL: url})

		result := decodeResult(t, resp)
		if result.Proceed || len(result.Errors) != 1 {
			t.Fatalf("expected one error, got %+v", result)
		}
		if result.Errors[0].Type != models.ErrorTypeRouteNotFound {
			t.Errorf("expected route-not-found, got %s", result.Errors[0].Type)
		}
		if !strings.Contains(result.Errors[0].Message, url) {
			t.Errorf("expected url in message, got %s", result.Errors[0].Message)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		result := decodeResult(t, edge.Handle(ctx, Event{Method: http.MethodPut, URL: "https://w.example.com/healthcheck"}))
		if result.Errors[0].Type != models.ErrorTypeRouteNotFound {
			t.Errorf("expected route-not-found, got %+v", result)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		result := decodeResult(t, edge.Handle(ctx, Event{Method: http.MethodGet, URL: "://bad"}))
		if result.Errors[0].Type != models.ErrorTypeInvalidRequest {
			t.Errorf("expected invalid-request, got %+v", result)
		}
	})

	t.Run("recovers panics", func(t *testing.T) {
		router := NewRouter("", Route{Method: http.MethodGet, Endpoint: "/boom", Handle: func(context.Context, *Request) *Response {
			panic("boom")
		}})
		result := decodeResult(t, NewEdge(router, nil).Handle(ctx, Event{Method: http.MethodGet, URL: "http://x/boom"}))
		if result.Errors[0].Type != models.ErrorTypeInternal {
			t.Errorf("expected 500 result, got %+v", result)
		}
	})
}
