package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotwidget/internal/models"
	json "github.com/goccy/go-json"
)

// Event is a single inbound request for a one-shot runtime.
//
// Body is either a JSON string holding the raw body or any other JSON value, which is used as is.
type Event struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// Payload returns the request body bytes.
func (e Event) Payload() ([]byte, error) {
	if len(e.Body) == 0 || string(e.Body) == "null" {
		return nil, nil
	}
	if e.Body[0] == '"' {
		var s string
		if err := json.Unmarshal(e.Body, &s); err != nil {
			return nil, fmt.Errorf("invalid event body: %w", err)
		}
		return []byte(s), nil
	}
	return e.Body, nil
}

// ReadEvent decodes an [Event] from r.
func ReadEvent(r io.Reader) (Event, error) {
	var ev Event
	if err := json.NewDecoder(io.LimitReader(r, 2*MaxBodyBytes)).Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return ev, nil
}

// EventResponse is the JSON envelope written for an [Event].
type EventResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// Encode converts resp into an envelope. JSON bodies are embedded, anything else is quoted.
func (resp *Response) Encode() EventResponse {
	out := EventResponse{Status: resp.Status}
	if len(resp.Header) > 0 {
		out.Headers = make(map[string]string, len(resp.Header))
		for k := range resp.Header {
			out.Headers[k] = resp.Header.Get(k)
		}
	}
	if len(resp.Body) > 0 {
		if json.Valid(resp.Body) {
			out.Body = resp.Body
		} else {
			out.Body, _ = json.Marshal(string(resp.Body))
		}
	}
	return out
}

// Edge is the single-request binding of a [Router]. Misses produce a "route-not-found" result.
type Edge struct {
	router *Router
	logger *log.Logger
}

// NewEdge creates an edge binding. A nil logger discards output.
func NewEdge(router *Router, logger *log.Logger) *Edge {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Edge{router: router, logger: logger}
}

// Handle dispatches ev and always returns a response.
func (e *Edge) Handle(ctx context.Context, ev Event) (resp *Response) {
	defer func() {
		if rv := recover(); rv != nil {
			e.logger.Error("handler panic", "url", ev.URL, "panic", rv)
			resp = JSONResponse(models.Failure(models.ErrorTypeInternal, "internal server error"))
		}
	}()

	u, err := url.Parse(ev.URL)
	if err != nil {
		return JSONResponse(models.Failure(models.ErrorTypeInvalidRequest, fmt.Sprintf("invalid url: %v", err)))
	}

	body, err := ev.Payload()
	if err != nil {
		return JSONResponse(models.Failure(models.ErrorTypeInvalidRequest, err.Error()))
	}

	header := make(http.Header, len(ev.Headers))
	for k, v := range ev.Headers {
		header.Set(k, v)
	}

	method := ev.Method
	if method == "" {
		method = http.MethodGet
	}

	resp, ok := e.router.Dispatch(ctx, &Request{
		Method: method,
		Path:   u.Path,
		URL:    ev.URL,
		Header: header,
		Body:   body,
	})
	if !ok {
		e.logger.Warn("route not found", "method", method, "url", ev.URL)
		return JSONResponse(models.Failure(models.ErrorTypeRouteNotFound, "route not defined on worker "+ev.URL))
	}
	return resp
}
