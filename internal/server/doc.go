// Package server routes dashboard host requests to the widget handlers.
//
// # Router
//
// A [Router] holds an ordered [Route] table. A route matches when the method is equal and the
// path ends with the route's endpoint. Root routes also match the mount root aliases ("", "/",
// the mount, and the mount with a trailing slash). The first match in declaration order wins.
//
// # Bindings
//
// The same router is exposed through two thin bindings:
//
//   - [Server] is a long-lived [http.Handler]. Unmatched requests go to a fallback, which is a
//     reverse proxy when server.fallback_url is set.
//   - [Edge] handles one [Event] at a time, as read by `spotwidget handle`. Unmatched requests
//     produce a "route-not-found" result.
//
// # Middleware
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// The server installs request ids, request logging, Prometheus instrumentation and panic recovery.
//
// # Responses
//
// Every handler answers with status 200 and a JSON body, except the health check which has an
// empty body. Failures are reported in the body with proceed set to false.
package server
