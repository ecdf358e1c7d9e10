package server

import (
	"context"
	"net/http"
	"strings"
)

// Request is a transport-neutral inbound request.
type Request struct {
	Method string
	Path   string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a transport-neutral outbound response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// HandlerFunc handles a matched [Request].
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Route binds a method and path suffix to a handler.
//
// Root routes also match the mount root aliases of the [Router].
type Route struct {
	Name     string
	Method   string
	Endpoint string
	Root     bool
	Handle   HandlerFunc
}

func (rt Route) matches(method, path string, roots map[string]struct{}) bool {
	if method != rt.Method {
		return false
	}
	if rt.Root {
		if _, ok := roots[path]; ok {
			return true
		}
	}
	return strings.HasSuffix(path, rt.Endpoint)
}

// Router dispatches requests to the first route, in declaration order, that matches.
//
// The zero value has no routes. A Router is immutable once built and safe for concurrent use.
type Router struct {
	routes []Route
	roots  map[string]struct{}
}

// NewRouter builds a router for a deployment mounted at mount (e.g. "/spotify").
func NewRouter(mount string, routes ...Route) *Router {
	mount = strings.TrimRight(mount, "/")
	roots := map[string]struct{}{"": {}, "/": {}}
	if mount != "" {
		roots[mount] = struct{}{}
		roots[mount+"/"] = struct{}{}
	}
	return &Router{routes: append([]Route(nil), routes...), roots: roots}
}

// Routes returns the route table in declaration order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Match returns the first route matching method and path.
func (r *Router) Match(method, path string) (Route, bool) {
	for _, rt := range r.routes {
		if rt.matches(method, path, r.roots) {
			return rt, true
		}
	}
	return Route{}, false
}

// Dispatch runs the matching route's handler. The boolean is false when no route matched.
func (r *Router) Dispatch(ctx context.Context, req *Request) (*Response, bool) {
	rt, ok := r.Match(req.Method, req.Path)
	if !ok {
		return nil, false
	}
	resp := rt.Handle(ctx, req)
	if resp == nil {
		resp = &Response{Status: http.StatusOK}
	}
	return resp, true
}
