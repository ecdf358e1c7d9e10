package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotwidget/internal/metrics"
	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/shared"
)

const metricsPath = "/metrics"

// Labels for requests that do not reach a route.
const (
	labelFallback = "fallback"
	labelMetrics  = "metrics"
)

// ServerOpts configures a [Server].
type ServerOpts struct {
	Config   shared.ServerConfig
	Router   *Router
	Logger   *log.Logger
	Metrics  *metrics.Prom // nil disables /metrics and instrumentation
	Fallback http.Handler  // overrides Config.FallbackURL
}

// Server is the long-lived HTTP binding of a [Router].
//
// Matched requests are dispatched to the router. Misses are forwarded to the fallback, which
// proxies to server.fallback_url when configured and otherwise answers 404.
type Server struct {
	config      shared.ServerConfig
	router      *Router
	logger      *log.Logger
	metrics     *metrics.Prom
	fallback    http.Handler
	middlewares []Middleware
	handler     http.Handler
}

// NewServer creates a Server with request id, logging, instrumentation and recovery middleware installed.
func NewServer(opts ServerOpts) (*Server, error) {
	if opts.Router == nil {
		return nil, fmt.Errorf("%w: router is required", shared.ErrMissingConfig)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	fallback := opts.Fallback
	if fallback == nil {
		var err error
		if fallback, err = NewFallback(opts.Config.FallbackURL, opts.Logger); err != nil {
			return nil, err
		}
	}

	s := &Server{
		config:   opts.Config,
		router:   opts.Router,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		fallback: fallback,
	}

	s.Use(WithRequestID(), Logging(s.logger, s.routeLabel))
	if s.metrics != nil {
		s.Use(Instrument(s.metrics, s.routeLabel))
	}
	s.Use(Recover(s.logger))
	return s, nil
}

// NewFallback returns a reverse proxy to target, or [http.NotFoundHandler] when target is empty.
func NewFallback(target string, logger *log.Logger) (http.Handler, error) {
	if target == "" {
		return http.NotFoundHandler(), nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: fallback_url: %v", shared.ErrInvalidConfig, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("fallback proxy failed", "id", RequestID(r.Context()), "target", target, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy, nil
}

// Use adds [Middleware] to the server's stack, applied in the order it's added.
//
// Use must not be called while the server is handling requests.
func (s *Server) Use(middleware ...Middleware) {
	s.middlewares = append(s.middlewares, middleware...)
	s.handler = s.Apply(http.HandlerFunc(s.dispatch))
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (s *Server) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		wrapped = s.middlewares[i](wrapped)
	}
	return wrapped
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routeLabel(r *http.Request) string {
	if s.metrics != nil && r.URL.Path == metricsPath && r.Method == http.MethodGet {
		return labelMetrics
	}
	if rt, ok := s.router.Match(r.Method, r.URL.Path); ok {
		return rt.Name
	}
	return labelFallback
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil && r.URL.Path == metricsPath && r.Method == http.MethodGet {
		s.metrics.Handler().ServeHTTP(w, r)
		return
	}

	if _, ok := s.router.Match(r.Method, r.URL.Path); !ok {
		s.fallback.ServeHTTP(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeResponse(w, JSONResponse(models.Failure(models.ErrorTypeInvalidRequest, fmt.Sprintf("failed to read request body: %v", err))))
		return
	}

	resp, _ := s.router.Dispatch(r.Context(), &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		URL:    requestURL(r),
		Header: r.Header,
		Body:   body,
	})
	writeResponse(w, resp)
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr, "mount", s.config.Mount, "metrics", s.metrics != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
